package domain

// Product availability states. A resale piece is one-of-one, so the
// status field doubles as inventory.
const (
	ProductAvailable = "available"
	ProductReserved  = "reserved"
	ProductSold      = "sold"
)

type Product struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Brand       string  `db:"brand"`
	Category    string  `db:"category"`
	Subcategory string  `db:"subcategory"`
	Description string  `db:"description"`
	Condition   string  `db:"condition"` // new | like_new | excellent | good | fair
	Price       float64 `db:"price"`
	SizesJSON   string  `db:"sizes_json"`
	ImageURL    string  `db:"image_url"`
	Status      string  `db:"status"`
	CreatedAt   string  `db:"created_at"`
	UpdatedAt   string  `db:"updated_at"`
}

type Client struct {
	ID        string  `db:"id"`
	Name      string  `db:"name"`
	Email     string  `db:"email"`
	Phone     string  `db:"phone"`
	Tier      Tier    `db:"tier"`
	LTV       float64 `db:"ltv"`
	CreatedAt string  `db:"created_at"`
}

type Order struct {
	ID          string  `db:"id"`
	OrderNumber int64   `db:"order_number"`
	ClientID    *string `db:"client_id"` // nil for guest orders
	Subtotal    float64 `db:"subtotal"`
	Discount    float64 `db:"discount"`
	Total       float64 `db:"total"`
	Delivery    string  `db:"delivery_address"`
	Notes       string  `db:"notes"`
	Status      Status  `db:"status"`
	CreatedAt   string  `db:"created_at"`
}

// OrderItem is immutable once written. Original and final price diverge
// only when a per-item discount is applied after the fact.
type OrderItem struct {
	OrderID       string  `db:"order_id"`
	ProductID     string  `db:"product_id"`
	Size          string  `db:"size"`
	OriginalPrice float64 `db:"original_price"`
	FinalPrice    float64 `db:"final_price"`
}

// StatusHistoryEntry rows are append-only; the order's status column is a
// denormalized projection of the latest entry.
type StatusHistoryEntry struct {
	ID        int64  `db:"id"`
	OrderID   string `db:"order_id"`
	Status    Status `db:"status"`
	ChangedBy string `db:"changed_by"`
	Notes     string `db:"notes"`
	CreatedAt string `db:"created_at"`
}
