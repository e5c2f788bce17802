package repos

import (
	"github.com/jmoiron/sqlx"
)

type WishlistRepo struct{ db *sqlx.DB }

func NewWishlistRepo(db *sqlx.DB) *WishlistRepo { return &WishlistRepo{db: db} }

// Add is an idempotent set insert; saving an already-saved product is a no-op.
func (r *WishlistRepo) Add(clientID, productID string) error {
	_, err := r.db.Exec(`
	  INSERT INTO wishlist_items(client_id, product_id, created_at)
	  VALUES(?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(client_id, product_id) DO NOTHING
	`, clientID, productID)
	return err
}

// Remove deletes unconditionally; removing a non-member is a no-op.
func (r *WishlistRepo) Remove(clientID, productID string) error {
	_, err := r.db.Exec(`DELETE FROM wishlist_items WHERE client_id=? AND product_id=?`, clientID, productID)
	return err
}

type WishlistRow struct {
	ProductID string  `db:"product_id"`
	Name      string  `db:"name"`
	Brand     string  `db:"brand"`
	Price     float64 `db:"price"`
	Status    string  `db:"status"`
}

func (r *WishlistRepo) List(clientID string) ([]WishlistRow, error) {
	var out []WishlistRow
	err := r.db.Select(&out, `
	  SELECT p.id AS product_id, p.name, p.brand, p.price, p.status
	  FROM wishlist_items wi
	  JOIN products p ON p.id = wi.product_id
	  WHERE wi.client_id = ?
	  ORDER BY wi.created_at DESC
	`, clientID)
	return out, err
}

func (r *WishlistRepo) Count(clientID, productID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM wishlist_items WHERE client_id=? AND product_id=?`, clientID, productID)
	return n, err
}

// AddToWaitlist upserts a waitlist membership, stamping priority with the
// given ltv snapshot. Re-joining refreshes the stored priority.
func (r *WishlistRepo) AddToWaitlist(clientID, productID string, priority float64) error {
	_, err := r.db.Exec(`
	  INSERT INTO waitlist_items(client_id, product_id, priority, created_at)
	  VALUES(?, ?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(client_id, product_id) DO UPDATE SET priority = excluded.priority
	`, clientID, productID, priority)
	return err
}

type WaitlistRow struct {
	ClientID   string  `db:"client_id"`
	ClientName string  `db:"client_name"`
	Tier       string  `db:"tier"`
	Priority   float64 `db:"priority"`
	CreatedAt  string  `db:"created_at"`
}

// Waitlist lists a product's waitlist, highest-value clients first.
func (r *WishlistRepo) Waitlist(productID string) ([]WaitlistRow, error) {
	var out []WaitlistRow
	err := r.db.Select(&out, `
	  SELECT w.client_id, c.name AS client_name, c.tier, w.priority, w.created_at
	  FROM waitlist_items w
	  JOIN clients c ON c.id = w.client_id
	  WHERE w.product_id = ?
	  ORDER BY w.priority DESC, w.created_at
	`, productID)
	return out, err
}
