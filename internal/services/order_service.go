package services

import (
	crand "crypto/rand"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"ecomart/internal/domain"
	"ecomart/internal/repos"
)

// Fixed business constants.
const (
	DeliveryFee      = 1.00
	CancelWindow     = 30 * time.Minute
	DeliveryLeadTime = 2 * 24 * time.Hour
)

type OrderService struct {
	Products *repos.ProductRepo
	Orders   *repos.OrderRepo
}

func NewOrderService(products *repos.ProductRepo, orders *repos.OrderRepo) *OrderService {
	return &OrderService{Products: products, Orders: orders}
}

type LineInput struct {
	ProductID string
	Quantity  int
}

type PlaceInput struct {
	Items           []LineInput
	PaymentMethod   string
	DeliveryAddress string // optional override of the buyer's saved address
	Notes           string
}

// PlacedOrder is the creation receipt returned to the buyer.
type PlacedOrder struct {
	OrderID           string  `json:"order_id"`
	TotalAmount       float64 `json:"total_amount"`
	PaymentMethod     string  `json:"payment_method"`
	EstimatedDelivery string  `json:"estimated_delivery"`
	OrderStatus       string  `json:"order_status"`
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalOrders int `json:"total_orders"`
}

// OrderView bundles a ledger entry with its snapshot line items.
type OrderView struct {
	Order domain.Order       `json:"order"`
	Items []domain.OrderItem `json:"items"`
}

// Place validates every line item, then writes the ledger entry and reserves
// stock in a single transaction. Either the whole order lands (header, items
// and every decrement) or nothing does.
func (s *OrderService) Place(buyer *domain.User, in PlaceInput) (PlacedOrder, error) {
	if len(in.Items) == 0 {
		return PlacedOrder{}, bizErr(KindValidation, "Order must contain at least one item")
	}

	// The same product may appear on several lines; collapse them into one
	// item so the quantities validate and decrement as a whole.
	lines := make([]LineInput, 0, len(in.Items))
	seen := make(map[string]int, len(in.Items))
	for _, line := range in.Items {
		if i, ok := seen[line.ProductID]; ok {
			lines[i].Quantity += line.Quantity
			continue
		}
		seen[line.ProductID] = len(lines)
		lines = append(lines, line)
	}

	now := time.Now().UTC()

	tx, err := s.Products.DB().Beginx()
	if err != nil {
		return PlacedOrder{}, err
	}
	defer func() { _ = tx.Rollback() }()

	// Validation pass: no stock is touched until every line checks out.
	var (
		items    []domain.OrderItem
		subtotal float64
	)
	for _, line := range lines {
		p, err := s.Products.GetIn(tx, line.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return PlacedOrder{}, bizErr(KindProductNotFound, "Product not found: "+line.ProductID)
		}
		if err != nil {
			return PlacedOrder{}, err
		}
		if !p.Active {
			return PlacedOrder{}, bizErr(KindProductUnavailable, "Product is no longer available: "+p.Name)
		}
		if expiry, perr := time.Parse(time.RFC3339, p.ExpiryDate); perr != nil || !expiry.After(now) {
			return PlacedOrder{}, bizErr(KindProductExpired, "Product has expired: "+p.Name)
		}
		if p.Quantity < line.Quantity {
			return PlacedOrder{}, insufficientStock(p.Name, p.Quantity)
		}

		lineTotal := p.DiscountedPrice * float64(line.Quantity)
		subtotal += lineTotal
		items = append(items, domain.OrderItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Quantity:     line.Quantity,
			PricePerItem: p.DiscountedPrice,
			TotalPrice:   lineTotal,
		})
	}

	address := in.DeliveryAddress
	if address == "" {
		address = buyer.DeliveryAddress
	}

	order := domain.Order{
		OrderID:           newOrderID(now),
		BuyerID:           buyer.ID,
		BuyerName:         buyer.Name,
		BuyerEmail:        buyer.Email,
		BuyerMobile:       buyer.MobileNumber,
		DeliveryAddress:   address,
		Subtotal:          subtotal,
		DeliveryFee:       DeliveryFee,
		TotalAmount:       subtotal + DeliveryFee,
		PaymentMethod:     in.PaymentMethod,
		PaymentStatus:     domain.PaymentPending,
		OrderStatus:       domain.OrderPlaced,
		Notes:             in.Notes,
		EstimatedDelivery: now.Add(DeliveryLeadTime).Format(time.RFC3339),
		CreatedAt:         now.Format(time.RFC3339),
	}

	if err := s.Orders.Insert(tx, order, items); err != nil {
		return PlacedOrder{}, err
	}
	for _, it := range items {
		err := s.Products.DecrementStock(tx, it.ProductID, it.Quantity)
		if errors.Is(err, repos.ErrStockConflict) {
			// A concurrent order drained the stock between our read and the
			// guarded write; the rollback undoes everything. Re-read so the
			// response still reports what is left.
			p, rerr := s.Products.GetIn(tx, it.ProductID)
			if rerr != nil {
				return PlacedOrder{}, rerr
			}
			return PlacedOrder{}, insufficientStock(it.ProductName, p.Quantity)
		}
		if err != nil {
			return PlacedOrder{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return PlacedOrder{}, err
	}

	return PlacedOrder{
		OrderID:           order.OrderID,
		TotalAmount:       order.TotalAmount,
		PaymentMethod:     order.PaymentMethod,
		EstimatedDelivery: order.EstimatedDelivery,
		OrderStatus:       order.OrderStatus,
	}, nil
}

// Cancel reverses a placed order: status flips to cancelled and every line's
// stock reservation is added back, as one transaction. The restore is an
// unconditional additive inverse; it applies even if the listing has since
// been deactivated or sold down further.
func (s *OrderService) Cancel(buyer *domain.User, orderID string) (string, error) {
	o, items, err := s.Orders.Get(orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", bizErr(KindOrderNotFound, "Order not found")
	}
	if err != nil {
		return "", err
	}
	if o.BuyerID != buyer.ID {
		return "", bizErr(KindAccessDenied, "Access denied")
	}
	if o.OrderStatus == domain.OrderCancelled {
		return "", bizErr(KindAlreadyCancelled, "Order is already cancelled")
	}
	if o.OrderStatus == domain.OrderShipped || o.OrderStatus == domain.OrderDelivered {
		return "", bizErr(KindCannotCancelShipped, "Cannot cancel order that has been shipped or delivered")
	}
	// Placed orders stay cancellable until shipped; any further-along order
	// only within the window.
	if o.OrderStatus != domain.OrderPlaced {
		created, perr := time.Parse(time.RFC3339, o.CreatedAt)
		if perr != nil || time.Since(created) > CancelWindow {
			return "", bizErr(KindCancelWindowExpired, "Order cannot be cancelled after 30 minutes")
		}
	}

	tx, err := s.Products.DB().Beginx()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := s.Orders.MarkCancelled(tx, orderID)
	if err != nil {
		return "", err
	}
	if !ok {
		// Lost a race with another cancel of the same order; the stock was
		// already restored by the winner.
		return "", bizErr(KindAlreadyCancelled, "Order is already cancelled")
	}
	for _, it := range items {
		if err := s.Products.RestoreStock(tx, it.ProductID, it.Quantity); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return domain.OrderCancelled, nil
}

// AdvanceStatus lets a seller move an order to confirmed/preparing/shipped/
// delivered. Status is tracked at whole-order granularity: any seller with an
// item in the order may set it, any target may be set regardless of the
// current value, last write wins. No stock side effects.
func (s *OrderService) AdvanceStatus(seller *domain.User, orderID, target string) (string, error) {
	if !domain.SellerTarget(target) {
		return "", bizErr(KindValidation, "Invalid status")
	}

	_, _, err := s.Orders.Get(orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", bizErr(KindOrderNotFound, "Order not found")
	}
	if err != nil {
		return "", err
	}

	ok, err := s.Orders.SellerHasItem(orderID, seller.ID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", bizErr(KindAccessDenied, "Access denied. You can only update orders containing your products.")
	}

	if err := s.Orders.UpdateStatus(s.Products.DB(), orderID, target); err != nil {
		return "", err
	}
	return target, nil
}

// Get returns full order detail to the owning buyer or to a seller with at
// least one product in the order.
func (s *OrderService) Get(u *domain.User, orderID string) (OrderView, error) {
	o, items, err := s.Orders.Get(orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderView{}, bizErr(KindOrderNotFound, "Order not found")
	}
	if err != nil {
		return OrderView{}, err
	}

	switch u.Role {
	case domain.RoleBuyer:
		if o.BuyerID != u.ID {
			return OrderView{}, bizErr(KindAccessDenied, "Access denied")
		}
	case domain.RoleSeller:
		ok, err := s.Orders.SellerHasItem(orderID, u.ID)
		if err != nil {
			return OrderView{}, err
		}
		if !ok {
			return OrderView{}, bizErr(KindAccessDenied, "Access denied")
		}
	}
	return OrderView{Order: o, Items: items}, nil
}

func (s *OrderService) ListForBuyer(buyerID, status string, page, limit int) ([]OrderView, Pagination, error) {
	orders, total, err := s.Orders.ListByBuyer(buyerID, status, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	views, err := s.withItems(orders)
	if err != nil {
		return nil, Pagination{}, err
	}
	return views, paginate(page, limit, total), nil
}

func (s *OrderService) ListForSeller(sellerID, status string, page, limit int) ([]OrderView, Pagination, error) {
	orders, total, err := s.Orders.ListBySeller(sellerID, status, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	views, err := s.withItems(orders)
	if err != nil {
		return nil, Pagination{}, err
	}
	return views, paginate(page, limit, total), nil
}

func (s *OrderService) withItems(orders []domain.Order) ([]OrderView, error) {
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		items, err := s.Orders.Items(o.OrderID)
		if err != nil {
			return nil, err
		}
		views = append(views, OrderView{Order: o, Items: items})
	}
	return views, nil
}

func paginate(page, limit, total int) Pagination {
	pages := (total + limit - 1) / limit
	return Pagination{CurrentPage: page, TotalPages: pages, TotalOrders: total}
}

const orderIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newOrderID builds the public order identifier: "ECO" + the last six digits
// of the millisecond timestamp + six random uppercase alphanumerics.
func newOrderID(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	suffix := make([]byte, 6)
	_, _ = crand.Read(suffix)
	for i, b := range suffix {
		suffix[i] = orderIDCharset[int(b)%len(orderIDCharset)]
	}
	return "ECO" + ms[len(ms)-6:] + string(suffix)
}
