package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"ecomart/internal/domain"
	applog "ecomart/internal/log"
	"ecomart/internal/services"
	"ecomart/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type placeOrderReq struct {
	Items []struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	PaymentMethod   string `json:"payment_method"`
	DeliveryAddress string `json:"delivery_address"`
	Notes           string `json:"notes"`
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req placeOrderReq
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, []validate.FieldError{{Field: "body", Message: "Malformed request body"}})
	}

	var errs []validate.FieldError
	if len(req.Items) == 0 {
		errs = append(errs, validate.FieldError{Field: "items", Message: "Order must contain at least one item"})
	}
	for i, it := range req.Items {
		if it.ProductID == "" {
			errs = append(errs, validate.FieldError{
				Field: fmt.Sprintf("items.%d.product_id", i), Message: "Valid product ID required"})
		}
		if it.Quantity < 1 {
			errs = append(errs, validate.FieldError{
				Field: fmt.Sprintf("items.%d.quantity", i), Message: "Quantity must be at least 1"})
		}
	}
	if !domain.ValidPaymentMethod(req.PaymentMethod) {
		errs = append(errs, validate.FieldError{Field: "payment_method", Message: "Invalid payment method"})
	}
	if req.DeliveryAddress != "" {
		if _, ok := validate.Address(req.DeliveryAddress); !ok {
			errs = append(errs, validate.FieldError{Field: "delivery_address", Message: "Delivery address must be 10-500 characters"})
		}
	}
	notes, ok := validate.Notes(req.Notes)
	if !ok {
		errs = append(errs, validate.FieldError{Field: "notes", Message: "Notes must be max 500 characters"})
	}
	if len(errs) > 0 {
		return invalid(c, errs)
	}

	in := services.PlaceInput{
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           notes,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, services.LineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	placed, err := h.Orders.Place(currentUser(c), in)
	if err != nil {
		return fail(c, "orders.place", err)
	}
	applog.Audit(c, "orders.place", map[string]any{
		"order_id": placed.OrderID,
		"total":    placed.TotalAmount,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully",
		"order":   placed,
	})
}

func (h *OrderHandler) MyOrders(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" && !domain.ValidOrderStatus(status) {
		return invalid(c, []validate.FieldError{{Field: "status", Message: "Invalid status"}})
	}
	page, limit := validate.Page(c.Query("page"), c.Query("limit"), 10)

	orders, pg, err := h.Orders.ListForBuyer(currentUser(c).ID, status, page, limit)
	if err != nil {
		return fail(c, "orders.mine", err)
	}
	return c.JSON(fiber.Map{"orders": orders, "pagination": pg})
}

func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	view, err := h.Orders.Get(currentUser(c), c.Params("orderId"))
	if err != nil {
		return fail(c, "orders.detail", err)
	}
	return c.JSON(view)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	status, err := h.Orders.Cancel(currentUser(c), orderID)
	if err != nil {
		return fail(c, "orders.cancel", err)
	}
	applog.Audit(c, "orders.cancel", map[string]any{"order_id": orderID})
	return c.JSON(fiber.Map{
		"message": "Order cancelled successfully",
		"order":   fiber.Map{"order_id": orderID, "order_status": status},
	})
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req statusReq
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, []validate.FieldError{{Field: "body", Message: "Malformed request body"}})
	}
	if !domain.SellerTarget(req.Status) {
		return invalid(c, []validate.FieldError{{Field: "status", Message: "Invalid status"}})
	}

	orderID := c.Params("orderId")
	status, err := h.Orders.AdvanceStatus(currentUser(c), orderID, req.Status)
	if err != nil {
		return fail(c, "orders.status", err)
	}
	applog.Audit(c, "orders.status", map[string]any{"order_id": orderID, "status": status})
	return c.JSON(fiber.Map{
		"message": "Order status updated successfully",
		"order":   fiber.Map{"order_id": orderID, "order_status": status},
	})
}

func (h *OrderHandler) SellerOrders(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" && !domain.ValidOrderStatus(status) {
		return invalid(c, []validate.FieldError{{Field: "status", Message: "Invalid status"}})
	}
	page, limit := validate.Page(c.Query("page"), c.Query("limit"), 10)

	orders, pg, err := h.Orders.ListForSeller(currentUser(c).ID, status, page, limit)
	if err != nil {
		return fail(c, "orders.seller", err)
	}
	return c.JSON(fiber.Map{"orders": orders, "pagination": pg})
}
