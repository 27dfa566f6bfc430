package repos

import (
	"github.com/jmoiron/sqlx"

	"ecomart/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `
  order_id, buyer_id, buyer_name, buyer_email, buyer_mobile, delivery_address,
  subtotal, delivery_fee, total_amount, payment_method, payment_status,
  order_status, notes, estimated_delivery, created_at`

// Insert writes the order header and its line items. The caller supplies the
// generated order id and (usually) an enclosing transaction.
func (r *OrderRepo) Insert(e sqlx.Execer, o domain.Order, items []domain.OrderItem) error {
	_, err := e.Exec(`
	  INSERT INTO orders
	    (order_id, buyer_id, buyer_name, buyer_email, buyer_mobile, delivery_address,
	     subtotal, delivery_fee, total_amount, payment_method, payment_status,
	     order_status, notes, estimated_delivery, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.OrderID, o.BuyerID, o.BuyerName, o.BuyerEmail, o.BuyerMobile, o.DeliveryAddress,
		o.Subtotal, o.DeliveryFee, o.TotalAmount, o.PaymentMethod, o.PaymentStatus,
		o.OrderStatus, o.Notes, o.EstimatedDelivery, o.CreatedAt)
	if err != nil {
		return err
	}
	for _, it := range items {
		if _, err := e.Exec(`
		  INSERT INTO order_items(order_id, product_id, product_name, quantity, price_per_item, total_price)
		  VALUES (?,?,?,?,?,?)`,
			o.OrderID, it.ProductID, it.ProductName, it.Quantity, it.PricePerItem, it.TotalPrice); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepo) Get(orderID string) (domain.Order, []domain.OrderItem, error) {
	var o domain.Order
	if err := r.db.Get(&o, `SELECT `+orderCols+` FROM orders WHERE order_id = ?`, orderID); err != nil {
		return domain.Order{}, nil, err
	}
	items, err := r.Items(orderID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	return o, items, nil
}

func (r *OrderRepo) Items(orderID string) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := r.db.Select(&items, `
	  SELECT order_id, product_id, product_name, quantity, price_per_item, total_price
	  FROM order_items WHERE order_id = ? ORDER BY product_name`, orderID)
	return items, err
}

// ListByBuyer returns one page of a buyer's orders, newest first, with the
// total count for pagination metadata.
func (r *OrderRepo) ListByBuyer(buyerID, status string, limit, offset int) ([]domain.Order, int, error) {
	where := `buyer_id = ?`
	args := []any{buyerID}
	if status != "" {
		where += ` AND order_status = ?`
		args = append(args, status)
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM orders WHERE `+where, args...); err != nil {
		return nil, 0, err
	}
	var out []domain.Order
	err := r.db.Select(&out, `SELECT `+orderCols+` FROM orders WHERE `+where+`
	  ORDER BY datetime(created_at) DESC LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	return out, total, err
}

// ListBySeller returns orders containing at least one of the seller's
// products, newest first.
func (r *OrderRepo) ListBySeller(sellerID, status string, limit, offset int) ([]domain.Order, int, error) {
	where := `EXISTS (
	    SELECT 1 FROM order_items oi
	    JOIN products p ON p.id = oi.product_id
	    WHERE oi.order_id = o.order_id AND p.seller_id = ?)`
	args := []any{sellerID}
	if status != "" {
		where += ` AND o.order_status = ?`
		args = append(args, status)
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM orders o WHERE `+where, args...); err != nil {
		return nil, 0, err
	}
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT o.order_id, o.buyer_id, o.buyer_name, o.buyer_email, o.buyer_mobile,
	         o.delivery_address, o.subtotal, o.delivery_fee, o.total_amount,
	         o.payment_method, o.payment_status, o.order_status, o.notes,
	         o.estimated_delivery, o.created_at
	  FROM orders o WHERE `+where+`
	  ORDER BY datetime(o.created_at) DESC LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	return out, total, err
}

// SellerHasItem reports whether any line item of the order belongs to the
// given seller.
func (r *OrderRepo) SellerHasItem(orderID, sellerID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `
	  SELECT COUNT(*) FROM order_items oi
	  JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id = ? AND p.seller_id = ?`, orderID, sellerID)
	return n > 0, err
}

func (r *OrderRepo) UpdateStatus(e sqlx.Execer, orderID, status string) error {
	_, err := e.Exec(`UPDATE orders SET order_status = ? WHERE order_id = ?`, status, orderID)
	return err
}

// MarkCancelled flips the order to cancelled only if it is not already, and
// reports whether this call won the flip. The guard keeps two concurrent
// cancels from both restoring stock.
func (r *OrderRepo) MarkCancelled(e sqlx.Execer, orderID string) (bool, error) {
	res, err := e.Exec(`UPDATE orders SET order_status = ? WHERE order_id = ? AND order_status != ?`,
		domain.OrderCancelled, orderID, domain.OrderCancelled)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
