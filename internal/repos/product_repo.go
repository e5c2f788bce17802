package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"velours/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
  id, name, brand, category, COALESCE(subcategory,'') AS subcategory,
  COALESCE(description,'') AS description, condition, price,
  COALESCE(sizes_json,'[]') AS sizes_json, COALESCE(image_url,'') AS image_url,
  status, created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

// List returns products matching the optional brand/category/status filters,
// newest first.
func (r *ProductRepo) List(brand, category, status string, limit, offset int) ([]domain.Product, error) {
	where := `1=1`
	args := []any{}
	if brand != "" {
		where += ` AND brand = ?`
		args = append(args, brand)
	}
	if category != "" {
		where += ` AND category = ?`
		args = append(args, category)
	}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}
	args = append(args, limit, offset)

	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE `+where+`
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?`, args...)
	return out, err
}

func (r *ProductRepo) Brands() ([]string, error) {
	var out []string
	err := r.db.Select(&out, `SELECT DISTINCT brand FROM products ORDER BY brand`)
	return out, err
}

func (r *ProductRepo) Categories() ([]string, error) {
	var out []string
	err := r.db.Select(&out, `SELECT DISTINCT category FROM products ORDER BY category`)
	return out, err
}

// Exists reports whether a product row is present, inside the caller's
// transaction.
func (r *ProductRepo) Exists(tx *sqlx.Tx, productID string) (bool, error) {
	var n int
	if err := tx.Get(&n, `SELECT COUNT(*) FROM products WHERE id = ?`, productID); err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetStatus moves a product between availability states inside the caller's
// transaction, guarded by the expected current state. Zero rows affected
// means the product is missing or was already moved.
func (r *ProductRepo) SetStatus(tx *sqlx.Tx, productID, from, to string) error {
	res, err := tx.Exec(`
		UPDATE products
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, to, productID, from)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("product %s is not %s", productID, from)
	}
	return nil
}
