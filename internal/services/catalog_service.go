package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"ecomart/internal/domain"
	"ecomart/internal/repos"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) List(f repos.ListFilter, page, limit int) ([]domain.Product, int, error) {
	return s.Prods.List(f, time.Now().UTC(), limit, (page-1)*limit)
}

func (s *CatalogService) Search(q string, page, limit int) ([]domain.Product, int, error) {
	return s.Prods.Search(q, time.Now().UTC(), limit, (page-1)*limit)
}

// Get returns an active product and counts the view. Inactive listings read
// as not found to the public.
func (s *CatalogService) Get(id string) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, bizErr(KindProductNotFound, "Product not found")
	}
	if err != nil {
		return domain.Product{}, err
	}
	if !p.Active {
		return domain.Product{}, bizErr(KindProductNotFound, "Product is no longer available")
	}
	if err := s.Prods.BumpViews(p.ID); err != nil {
		return domain.Product{}, err
	}
	p.Views++
	return p, nil
}

func (s *CatalogService) ListBySeller(sellerID string, page, limit int) ([]domain.Product, int, error) {
	return s.Prods.ListBySeller(sellerID, limit, (page-1)*limit)
}

// ProductInput carries the seller-editable fields. Field-shape validation
// happens at the handler; the price and expiry rules live here.
type ProductInput struct {
	Name            string
	Description     string
	Category        string
	OriginalPrice   float64
	DiscountedPrice float64
	Quantity        int
	ExpiryDate      string // RFC3339
	ImageURL        string
}

func (s *CatalogService) Create(seller *domain.User, in ProductInput) (domain.Product, error) {
	if err := checkPrices(in.OriginalPrice, in.DiscountedPrice); err != nil {
		return domain.Product{}, err
	}
	if err := checkExpiry(in.ExpiryDate); err != nil {
		return domain.Product{}, err
	}

	p := domain.Product{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Description:     in.Description,
		Category:        in.Category,
		OriginalPrice:   in.OriginalPrice,
		DiscountedPrice: in.DiscountedPrice,
		Quantity:        in.Quantity,
		ExpiryDate:      in.ExpiryDate,
		ImageURL:        in.ImageURL,
		SellerID:        seller.ID,
		SellerName:      seller.DisplaySellerName(),
		Active:          true,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Prods.Create(p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// UpdateInput holds optional field overrides; nil means "keep current".
type UpdateInput struct {
	Name            *string
	Description     *string
	Category        *string
	OriginalPrice   *float64
	DiscountedPrice *float64
	Quantity        *int
	ExpiryDate      *string
	ImageURL        *string
}

func (s *CatalogService) Update(seller *domain.User, id string, in UpdateInput) (domain.Product, error) {
	p, err := s.ownProduct(seller, id)
	if err != nil {
		return domain.Product{}, err
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.OriginalPrice != nil {
		p.OriginalPrice = *in.OriginalPrice
	}
	if in.DiscountedPrice != nil {
		p.DiscountedPrice = *in.DiscountedPrice
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.ExpiryDate != nil {
		p.ExpiryDate = *in.ExpiryDate
		if err := checkExpiry(p.ExpiryDate); err != nil {
			return domain.Product{}, err
		}
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	// The price rule holds against the merged values, not just the changed
	// ones.
	if err := checkPrices(p.OriginalPrice, p.DiscountedPrice); err != nil {
		return domain.Product{}, err
	}

	if err := s.Prods.Update(p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Delete soft-deletes: the row stays for historical orders.
func (s *CatalogService) Delete(seller *domain.User, id string) error {
	if _, err := s.ownProduct(seller, id); err != nil {
		return err
	}
	return s.Prods.SoftDelete(id)
}

func (s *CatalogService) ownProduct(seller *domain.User, id string) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, bizErr(KindProductNotFound, "Product not found")
	}
	if err != nil {
		return domain.Product{}, err
	}
	if p.SellerID != seller.ID {
		return domain.Product{}, bizErr(KindAccessDenied, "Access denied. You can only manage your own products.")
	}
	return p, nil
}

func checkPrices(original, discounted float64) error {
	if original < 0 || discounted < 0 {
		return bizErr(KindValidation, "Prices must be non-negative")
	}
	if discounted >= original {
		return bizErr(KindValidation, "Discounted price must be less than original price")
	}
	return nil
}

func checkExpiry(s string) error {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil || !t.After(time.Now()) {
		return bizErr(KindValidation, "Expiry date must be in the future")
	}
	return nil
}
