package repos

import (
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"ecomart/internal/domain"
)

// ErrStockConflict is returned when a guarded stock decrement affects no row:
// the product either disappeared or a concurrent order drained the stock.
var ErrStockConflict = errors.New("stock conflict")

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// DB exposes the underlying handle for callers that open transactions
// spanning products and orders.
func (r *ProductRepo) DB() *sqlx.DB { return r.db }

const productCols = `
  id, name, description, category, original_price, discounted_price, quantity,
  expiry_date, image_url, seller_id, seller_name, is_active, views,
  sold_quantity, created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	return getProduct(r.db, id)
}

// GetIn reads a product inside the caller's transaction.
func (r *ProductRepo) GetIn(q sqlx.Queryer, id string) (domain.Product, error) {
	return getProduct(q, id)
}

func getProduct(q sqlx.Queryer, id string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.Get(q, &p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

// ListFilter mirrors the public catalog query parameters. Zero values mean
// "no filter"; Sort defaults to newest.
type ListFilter struct {
	Category     string
	TimePeriod   string // all | today | 3-days | 1-week | 2-weeks
	PriceRange   string // 0-500 | 500-1500 | 1500-3000 | 3000+
	Availability string // in-stock | low-stock | high-stock
	Sort         string // expiring-soon | price-low-high | price-high-low | rating | newest | discount
}

func (f ListFilter) where(now time.Time) (string, []any) {
	where := `is_active = 1 AND quantity > 0`
	args := []any{}

	if f.Category != "" {
		where += ` AND category = ?`
		args = append(args, f.Category)
	}

	var horizon time.Duration
	switch f.TimePeriod {
	case "today":
		horizon = 24 * time.Hour
	case "3-days":
		horizon = 3 * 24 * time.Hour
	case "1-week":
		horizon = 7 * 24 * time.Hour
	case "2-weeks":
		horizon = 14 * 24 * time.Hour
	}
	if horizon > 0 {
		where += ` AND datetime(expiry_date) <= datetime(?) AND datetime(expiry_date) >= datetime(?)`
		args = append(args, now.Add(horizon).UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	} else {
		// Never list already-expired stock.
		where += ` AND datetime(expiry_date) >= datetime(?)`
		args = append(args, now.UTC().Format(time.RFC3339))
	}

	switch f.PriceRange {
	case "0-500":
		where += ` AND discounted_price <= 500`
	case "500-1500":
		where += ` AND discounted_price >= 500 AND discounted_price <= 1500`
	case "1500-3000":
		where += ` AND discounted_price >= 1500 AND discounted_price <= 3000`
	case "3000+":
		where += ` AND discounted_price >= 3000`
	}

	switch f.Availability {
	case "low-stock":
		where += ` AND quantity < 5`
	case "high-stock":
		where += ` AND quantity > 10`
	}

	return where, args
}

func (f ListFilter) orderBy() string {
	switch f.Sort {
	case "expiring-soon":
		return `datetime(expiry_date) ASC`
	case "price-low-high":
		return `discounted_price ASC`
	case "price-high-low":
		return `discounted_price DESC`
	case "rating":
		return `views DESC` // views as popularity proxy
	case "discount":
		return `(original_price - discounted_price) / MAX(original_price, 1) DESC`
	default:
		return `datetime(created_at) DESC`
	}
}

// List returns one page of active, in-stock, unexpired products plus the
// total match count.
func (r *ProductRepo) List(f ListFilter, now time.Time, limit, offset int) ([]domain.Product, int, error) {
	where, args := f.where(now)

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM products WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	var out []domain.Product
	err := r.db.Select(&out, `SELECT `+productCols+` FROM products WHERE `+where+`
	  ORDER BY `+f.orderBy()+` LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	return out, total, err
}

// Search matches name/description/category substrings, newest first.
func (r *ProductRepo) Search(q string, now time.Time, limit, offset int) ([]domain.Product, int, error) {
	where := `is_active = 1 AND quantity > 0 AND datetime(expiry_date) >= datetime(?)
	  AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?)`
	like := "%" + q + "%"
	args := []any{now.UTC().Format(time.RFC3339), like, like, like}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM products WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	var out []domain.Product
	err := r.db.Select(&out, `SELECT `+productCols+` FROM products WHERE `+where+`
	  ORDER BY datetime(created_at) DESC LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	return out, total, err
}

// ListBySeller includes inactive listings (the seller's own dashboard view).
func (r *ProductRepo) ListBySeller(sellerID string, limit, offset int) ([]domain.Product, int, error) {
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM products WHERE seller_id = ?`, sellerID); err != nil {
		return nil, 0, err
	}
	var out []domain.Product
	err := r.db.Select(&out, `SELECT `+productCols+` FROM products WHERE seller_id = ?
	  ORDER BY datetime(created_at) DESC LIMIT ? OFFSET ?`, sellerID, limit, offset)
	return out, total, err
}

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products
	    (id, name, description, category, original_price, discounted_price, quantity,
	     expiry_date, image_url, seller_id, seller_name, is_active, views, sold_quantity, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,1,0,0,?)`,
		p.ID, p.Name, p.Description, p.Category, p.OriginalPrice, p.DiscountedPrice,
		p.Quantity, p.ExpiryDate, p.ImageURL, p.SellerID, p.SellerName, p.CreatedAt)
	return err
}

// Update rewrites the seller-editable columns; callers merge and validate
// before calling.
func (r *ProductRepo) Update(p domain.Product) error {
	_, err := r.db.Exec(`
	  UPDATE products SET
	    name = ?, description = ?, category = ?, original_price = ?,
	    discounted_price = ?, quantity = ?, expiry_date = ?, image_url = ?,
	    updated_at = ?
	  WHERE id = ?`,
		p.Name, p.Description, p.Category, p.OriginalPrice, p.DiscountedPrice,
		p.Quantity, p.ExpiryDate, p.ImageURL, time.Now().UTC().Format(time.RFC3339), p.ID)
	return err
}

// SoftDelete keeps the row for historical orders and hides the listing.
func (r *ProductRepo) SoftDelete(id string) error {
	_, err := r.db.Exec(`UPDATE products SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *ProductRepo) BumpViews(id string) error {
	_, err := r.db.Exec(`UPDATE products SET views = views + 1 WHERE id = ?`, id)
	return err
}

// DecrementStock atomically reserves stock: quantity -= by and
// sold_quantity += by, guarded so quantity never goes negative. Returns
// ErrStockConflict when the guard fails.
func (r *ProductRepo) DecrementStock(e sqlx.Execer, productID string, by int) error {
	res, err := e.Exec(`
	  UPDATE products
	  SET quantity = quantity - ?, sold_quantity = sold_quantity + ?
	  WHERE id = ? AND quantity >= ?`, by, by, productID, by)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrStockConflict
	}
	return nil
}

// RestoreStock is the exact inverse of DecrementStock and is deliberately
// unguarded: a cancellation adds the units back even if the listing was
// deactivated or oversubscribed since.
func (r *ProductRepo) RestoreStock(e sqlx.Execer, productID string, by int) error {
	_, err := e.Exec(`
	  UPDATE products
	  SET quantity = quantity + ?, sold_quantity = sold_quantity - ?
	  WHERE id = ?`, by, by, productID)
	return err
}
