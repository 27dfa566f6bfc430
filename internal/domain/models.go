package domain

// Product categories.
const (
	CategoryNormal   = "Normal"
	CategorySeasonal = "Seasonal"
	CategoryDerived  = "Derived"
)

func ValidCategory(c string) bool {
	return c == CategoryNormal || c == CategorySeasonal || c == CategoryDerived
}

type Product struct {
	ID              string  `db:"id" json:"id"`
	Name            string  `db:"name" json:"name"`
	Description     string  `db:"description" json:"description"`
	Category        string  `db:"category" json:"category"` // Normal | Seasonal | Derived
	OriginalPrice   float64 `db:"original_price" json:"original_price"`
	DiscountedPrice float64 `db:"discounted_price" json:"discounted_price"`
	Quantity        int     `db:"quantity" json:"quantity"`
	ExpiryDate      string  `db:"expiry_date" json:"expiry_date"` // RFC3339
	ImageURL        string  `db:"image_url" json:"image_url"`
	SellerID        string  `db:"seller_id" json:"seller_id"`
	SellerName      string  `db:"seller_name" json:"seller_name"`
	Active          bool    `db:"is_active" json:"is_active"`
	Views           int     `db:"views" json:"views"`
	SoldQuantity    int     `db:"sold_quantity" json:"sold_quantity"`
	CreatedAt       string  `db:"created_at" json:"created_at"`
	UpdatedAt       string  `db:"updated_at" json:"updated_at"`
}

// Order statuses. Placed is initial; delivered and cancelled are terminal
// for buyer-side operations.
const (
	OrderPlaced    = "placed"
	OrderConfirmed = "confirmed"
	OrderPreparing = "preparing"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPlaced, OrderConfirmed, OrderPreparing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// SellerTarget reports whether a seller may set s as an order's status.
func SellerTarget(s string) bool {
	switch s {
	case OrderConfirmed, OrderPreparing, OrderShipped, OrderDelivered:
		return true
	}
	return false
}

// Payment methods and statuses.
const (
	PayCard = "card"
	PayUPI  = "upi"
	PayCOD  = "cod"

	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

func ValidPaymentMethod(m string) bool {
	return m == PayCard || m == PayUPI || m == PayCOD
}

type Order struct {
	OrderID           string  `db:"order_id" json:"order_id"` // ECO-prefixed, immutable
	BuyerID           string  `db:"buyer_id" json:"buyer_id"`
	BuyerName         string  `db:"buyer_name" json:"buyer_name"`
	BuyerEmail        string  `db:"buyer_email" json:"buyer_email"`
	BuyerMobile       string  `db:"buyer_mobile" json:"buyer_mobile"`
	DeliveryAddress   string  `db:"delivery_address" json:"delivery_address"`
	Subtotal          float64 `db:"subtotal" json:"subtotal"`
	DeliveryFee       float64 `db:"delivery_fee" json:"delivery_fee"`
	TotalAmount       float64 `db:"total_amount" json:"total_amount"`
	PaymentMethod     string  `db:"payment_method" json:"payment_method"`
	PaymentStatus     string  `db:"payment_status" json:"payment_status"`
	OrderStatus       string  `db:"order_status" json:"order_status"`
	Notes             string  `db:"notes" json:"notes"`
	EstimatedDelivery string  `db:"estimated_delivery" json:"estimated_delivery"` // RFC3339
	CreatedAt         string  `db:"created_at" json:"created_at"`                 // RFC3339
}

// OrderItem is a snapshot taken at order time; later product edits do not
// alter it.
type OrderItem struct {
	OrderID      string  `db:"order_id" json:"order_id"`
	ProductID    string  `db:"product_id" json:"product_id"`
	ProductName  string  `db:"product_name" json:"product_name"`
	Quantity     int     `db:"quantity" json:"quantity"`
	PricePerItem float64 `db:"price_per_item" json:"price_per_item"`
	TotalPrice   float64 `db:"total_price" json:"total_price"`
}
