package repos

import (
	"github.com/jmoiron/sqlx"

	"velours/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `
  id, order_number, client_id, subtotal, discount, total,
  COALESCE(delivery_address,'') AS delivery_address, COALESCE(notes,'') AS notes,
  status, created_at`

// ---------- Joined rows for order detail / admin pages ----------

type OrderItemRow struct {
	ProductID     string  `db:"product_id"`
	ProductName   string  `db:"product_name"`
	Brand         string  `db:"brand"`
	Size          string  `db:"size"`
	OriginalPrice float64 `db:"original_price"`
	FinalPrice    float64 `db:"final_price"`
}

type OrderSummary struct {
	ID          string  `db:"id"`
	OrderNumber int64   `db:"order_number"`
	ClientName  string  `db:"client_name"`
	ClientEmail string  `db:"client_email"`
	Total       float64 `db:"total"`
	Status      string  `db:"status"`
	CreatedAt   string  `db:"created_at"`
}

// ---------- Writes (all scoped to the caller's transaction) ----------

// NextOrderNumber issues the next human-readable order number. Called
// inside the creation transaction so concurrent checkouts serialize.
func (r *OrderRepo) NextOrderNumber(tx *sqlx.Tx) (int64, error) {
	var n int64
	if err := tx.Get(&n, `SELECT COALESCE(MAX(order_number), 999) + 1 FROM orders`); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *OrderRepo) Create(tx *sqlx.Tx, o domain.Order) error {
	_, err := tx.Exec(`
	  INSERT INTO orders
	    (id, order_number, client_id, subtotal, discount, total, delivery_address, notes, status, created_at)
	  VALUES
	    (?,  ?,            ?,         ?,        ?,        ?,     ?,                ?,     ?, CURRENT_TIMESTAMP)
	`, o.ID, o.OrderNumber, o.ClientID, o.Subtotal, o.Discount, o.Total, o.Delivery, o.Notes, o.Status)
	return err
}

func (r *OrderRepo) InsertItem(tx *sqlx.Tx, it domain.OrderItem) error {
	_, err := tx.Exec(`
	  INSERT INTO order_items(order_id, product_id, size, original_price, final_price)
	  VALUES(?, ?, ?, ?, ?)
	`, it.OrderID, it.ProductID, it.Size, it.OriginalPrice, it.FinalPrice)
	return err
}

// AppendHistory adds an audit-trail entry. History rows are never updated
// or deleted.
func (r *OrderRepo) AppendHistory(tx *sqlx.Tx, orderID string, status domain.Status, changedBy, notes string) error {
	_, err := tx.Exec(`
	  INSERT INTO order_status_history(order_id, status, changed_by, notes, created_at)
	  VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, orderID, status, changedBy, notes)
	return err
}

func (r *OrderRepo) UpdateStatus(tx *sqlx.Tx, orderID string, status domain.Status) error {
	_, err := tx.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	return err
}

// GetForUpdate reads an order inside the caller's transaction so the
// status read-modify-write cannot interleave with a concurrent transition.
func (r *OrderRepo) GetForUpdate(tx *sqlx.Tx, orderID string) (domain.Order, error) {
	var o domain.Order
	err := tx.Get(&o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, orderID)
	return o, err
}

// ProductIDs lists the products on an order, inside the transaction.
func (r *OrderRepo) ProductIDs(tx *sqlx.Tx, orderID string) ([]string, error) {
	var out []string
	err := tx.Select(&out, `SELECT product_id FROM order_items WHERE order_id = ?`, orderID)
	return out, err
}

// ---------- Reads ----------

func (r *OrderRepo) Get(orderID string) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, orderID)
	return o, err
}

func (r *OrderRepo) Items(orderID string) ([]OrderItemRow, error) {
	var items []OrderItemRow
	err := r.db.Select(&items, `
		SELECT oi.product_id, p.name AS product_name, p.brand,
		       COALESCE(oi.size,'') AS size, oi.original_price, oi.final_price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY p.name
	`, orderID)
	return items, err
}

func (r *OrderRepo) History(orderID string) ([]domain.StatusHistoryEntry, error) {
	var out []domain.StatusHistoryEntry
	err := r.db.Select(&out, `
		SELECT id, order_id, status, changed_by, COALESCE(notes,'') AS notes, created_at
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY id
	`, orderID)
	return out, err
}

func (r *OrderRepo) ListLatest(limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT o.id, o.order_number, COALESCE(c.name,'') AS client_name,
		       COALESCE(c.email,'') AS client_email, o.total, o.status, o.created_at
		FROM orders o
		LEFT JOIN clients c ON c.id = o.client_id
		ORDER BY datetime(o.created_at) DESC, o.order_number DESC
		LIMIT ?
	`, limit)
	return out, err
}

func (r *OrderRepo) ListByClient(clientID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT o.id, o.order_number, c.name AS client_name, c.email AS client_email,
		       o.total, o.status, o.created_at
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		WHERE o.client_id = ?
		ORDER BY datetime(o.created_at) DESC, o.order_number DESC
	`, clientID)
	return out, err
}
