package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ecomart/internal/domain"
	applog "ecomart/internal/log"
	"ecomart/internal/repos"
	"ecomart/internal/services"
	"ecomart/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

var (
	sortOptions = map[string]bool{
		"expiring-soon": true, "price-low-high": true, "price-high-low": true,
		"rating": true, "newest": true, "discount": true,
	}
	timePeriods  = map[string]bool{"all": true, "today": true, "3-days": true, "1-week": true, "2-weeks": true}
	priceRanges  = map[string]bool{"0-500": true, "500-1500": true, "1500-3000": true, "3000+": true}
	availability = map[string]bool{"in-stock": true, "low-stock": true, "high-stock": true}
)

func (h *ProductHandler) List(c *fiber.Ctx) error {
	var errs []validate.FieldError
	f := repos.ListFilter{
		Category:     c.Query("category"),
		TimePeriod:   c.Query("time_period"),
		PriceRange:   c.Query("price_range"),
		Availability: c.Query("availability"),
		Sort:         c.Query("sort"),
	}
	if f.Category != "" && !domain.ValidCategory(f.Category) {
		errs = append(errs, validate.FieldError{Field: "category", Message: "Invalid category"})
	}
	if f.TimePeriod != "" && !timePeriods[f.TimePeriod] {
		errs = append(errs, validate.FieldError{Field: "time_period", Message: "Invalid time period"})
	}
	if f.PriceRange != "" && !priceRanges[f.PriceRange] {
		errs = append(errs, validate.FieldError{Field: "price_range", Message: "Invalid price range"})
	}
	if f.Availability != "" && !availability[f.Availability] {
		errs = append(errs, validate.FieldError{Field: "availability", Message: "Invalid availability filter"})
	}
	if f.Sort != "" && !sortOptions[f.Sort] {
		errs = append(errs, validate.FieldError{Field: "sort", Message: "Invalid sort option"})
	}
	if len(errs) > 0 {
		return invalid(c, errs)
	}

	page, limit := validate.Page(c.Query("page"), c.Query("limit"), 12)
	products, total, err := h.Catalog.List(f, page, limit)
	if err != nil {
		return fail(c, "products.list", err)
	}
	return c.JSON(fiber.Map{
		"products":   products,
		"pagination": productPagination(page, limit, total),
	})
}

func (h *ProductHandler) Search(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Params("query"))
	if !ok {
		return invalid(c, []validate.FieldError{{Field: "query", Message: "Invalid search query"}})
	}
	page, limit := validate.Page(c.Query("page"), c.Query("limit"), 12)
	products, total, err := h.Catalog.Search(q, page, limit)
	if err != nil {
		return fail(c, "products.search", err)
	}
	return c.JSON(fiber.Map{
		"products":     products,
		"search_query": q,
		"pagination":   productPagination(page, limit, total),
	})
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	p, err := h.Catalog.Get(c.Params("id"))
	if err != nil {
		return fail(c, "products.detail", err)
	}
	return c.JSON(fiber.Map{"product": p})
}

type productReq struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Category        *string  `json:"category"`
	OriginalPrice   *float64 `json:"original_price"`
	DiscountedPrice *float64 `json:"discounted_price"`
	Quantity        *int     `json:"quantity"`
	ExpiryDate      *string  `json:"expiry_date"`
	ImageURL        *string  `json:"image_url"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req productReq
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, []validate.FieldError{{Field: "body", Message: "Malformed request body"}})
	}

	var errs []validate.FieldError
	in := services.ProductInput{}
	if req.Name == nil {
		errs = append(errs, validate.FieldError{Field: "name", Message: "Product name required"})
	} else if name, ok := validate.ProductName(*req.Name); !ok {
		errs = append(errs, validate.FieldError{Field: "name", Message: "Product name must be 2-200 characters"})
	} else {
		in.Name = name
	}
	if req.Description != nil {
		desc, ok := validate.Description(*req.Description)
		if !ok {
			errs = append(errs, validate.FieldError{Field: "description", Message: "Description must be max 1000 characters"})
		}
		in.Description = desc
	}
	if req.Category == nil || !domain.ValidCategory(*req.Category) {
		errs = append(errs, validate.FieldError{Field: "category", Message: "Invalid category"})
	} else {
		in.Category = *req.Category
	}
	if req.OriginalPrice == nil || *req.OriginalPrice < 0 {
		errs = append(errs, validate.FieldError{Field: "original_price", Message: "Original price must be a positive number"})
	} else {
		in.OriginalPrice = *req.OriginalPrice
	}
	if req.DiscountedPrice == nil || *req.DiscountedPrice < 0 {
		errs = append(errs, validate.FieldError{Field: "discounted_price", Message: "Discounted price must be a positive number"})
	} else {
		in.DiscountedPrice = *req.DiscountedPrice
	}
	if req.Quantity == nil || *req.Quantity < 1 {
		errs = append(errs, validate.FieldError{Field: "quantity", Message: "Quantity must be at least 1"})
	} else {
		in.Quantity = *req.Quantity
	}
	if req.ExpiryDate == nil {
		errs = append(errs, validate.FieldError{Field: "expiry_date", Message: "Valid expiry date required"})
	} else {
		in.ExpiryDate = *req.ExpiryDate
	}
	if req.ImageURL != nil {
		in.ImageURL = *req.ImageURL
	}
	if len(errs) > 0 {
		return invalid(c, errs)
	}

	p, err := h.Catalog.Create(currentUser(c), in)
	if err != nil {
		return fail(c, "products.create", err)
	}
	applog.Audit(c, "products.create", map[string]any{"product_id": p.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product added successfully",
		"product": p,
	})
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var req productReq
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, []validate.FieldError{{Field: "body", Message: "Malformed request body"}})
	}

	var errs []validate.FieldError
	in := services.UpdateInput{
		OriginalPrice:   req.OriginalPrice,
		DiscountedPrice: req.DiscountedPrice,
		ExpiryDate:      req.ExpiryDate,
		ImageURL:        req.ImageURL,
	}
	if req.Name != nil {
		name, ok := validate.ProductName(*req.Name)
		if !ok {
			errs = append(errs, validate.FieldError{Field: "name", Message: "Product name must be 2-200 characters"})
		}
		in.Name = &name
	}
	if req.Description != nil {
		desc, ok := validate.Description(*req.Description)
		if !ok {
			errs = append(errs, validate.FieldError{Field: "description", Message: "Description must be max 1000 characters"})
		}
		in.Description = &desc
	}
	if req.Category != nil {
		if !domain.ValidCategory(*req.Category) {
			errs = append(errs, validate.FieldError{Field: "category", Message: "Invalid category"})
		}
		in.Category = req.Category
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		errs = append(errs, validate.FieldError{Field: "quantity", Message: "Quantity must be 0 or more"})
	}
	in.Quantity = req.Quantity
	if len(errs) > 0 {
		return invalid(c, errs)
	}

	p, err := h.Catalog.Update(currentUser(c), c.Params("id"), in)
	if err != nil {
		return fail(c, "products.update", err)
	}
	applog.Audit(c, "products.update", map[string]any{"product_id": p.ID})
	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"product": p,
	})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.Catalog.Delete(currentUser(c), c.Params("id")); err != nil {
		return fail(c, "products.delete", err)
	}
	applog.Audit(c, "products.delete", map[string]any{"product_id": c.Params("id")})
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

func (h *ProductHandler) MyProducts(c *fiber.Ctx) error {
	page, limit := validate.Page(c.Query("page"), c.Query("limit"), 10)
	products, total, err := h.Catalog.ListBySeller(currentUser(c).ID, page, limit)
	if err != nil {
		return fail(c, "products.mine", err)
	}
	return c.JSON(fiber.Map{
		"products":   products,
		"pagination": productPagination(page, limit, total),
	})
}

func productPagination(page, limit, total int) fiber.Map {
	pages := (total + limit - 1) / limit
	return fiber.Map{
		"current_page":   page,
		"total_pages":    pages,
		"total_products": total,
	}
}
