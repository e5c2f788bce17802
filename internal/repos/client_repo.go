package repos

import (
	"github.com/jmoiron/sqlx"

	"velours/internal/domain"
)

type ClientRepo struct{ db *sqlx.DB }

func NewClientRepo(db *sqlx.DB) *ClientRepo { return &ClientRepo{db: db} }

const clientCols = `id, name, email, COALESCE(phone,'') AS phone, tier, ltv, created_at`

func (r *ClientRepo) ByID(id string) (domain.Client, error) {
	var c domain.Client
	err := r.db.Get(&c, `SELECT `+clientCols+` FROM clients WHERE id = ?`, id)
	return c, err
}

func (r *ClientRepo) ByEmail(email string) (domain.Client, error) {
	var c domain.Client
	err := r.db.Get(&c, `SELECT `+clientCols+` FROM clients WHERE LOWER(email)=LOWER(?)`, email)
	return c, err
}

func (r *ClientRepo) List(limit int) ([]domain.Client, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Client
	err := r.db.Select(&out, `
		SELECT `+clientCols+` FROM clients
		ORDER BY ltv DESC, created_at DESC
		LIMIT ?`, limit)
	return out, err
}

// Ensure is get-or-create by email. The unique index on LOWER(email) plus
// the conflict-tolerant insert makes concurrent calls converge on one row;
// an existing client is returned verbatim, whatever name/phone were passed.
func (r *ClientRepo) Ensure(tx *sqlx.Tx, id, name, email, phone string) (domain.Client, error) {
	if _, err := tx.Exec(`
		INSERT INTO clients(id, name, email, phone, tier, ltv)
		VALUES(?, ?, ?, ?, 'new', 0)
		ON CONFLICT DO NOTHING
	`, id, name, email, phone); err != nil {
		return domain.Client{}, err
	}
	var c domain.Client
	err := tx.Get(&c, `SELECT `+clientCols+` FROM clients WHERE LOWER(email)=LOWER(?)`, email)
	return c, err
}

// LTV reads a client's lifetime value inside the caller's transaction.
func (r *ClientRepo) LTV(tx *sqlx.Tx, clientID string) (float64, error) {
	var ltv float64
	err := tx.Get(&ltv, `SELECT ltv FROM clients WHERE id = ?`, clientID)
	return ltv, err
}

// SetLTV persists a recomputed lifetime value and its derived tier together.
func (r *ClientRepo) SetLTV(tx *sqlx.Tx, clientID string, ltv float64, tier domain.Tier) error {
	_, err := tx.Exec(`UPDATE clients SET ltv = ?, tier = ? WHERE id = ?`, ltv, tier, clientID)
	return err
}

// TrackView appends a product-view event. Views are an analytics trail,
// not a set; repeat views insert repeat rows.
func (r *ClientRepo) TrackView(clientID, productID string) error {
	_, err := r.db.Exec(`
		INSERT INTO client_views(client_id, product_id, created_at)
		VALUES(?, ?, CURRENT_TIMESTAMP)
	`, clientID, productID)
	return err
}

func (r *ClientRepo) ViewCount(clientID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM client_views WHERE client_id = ?`, clientID)
	return n, err
}
