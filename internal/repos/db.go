package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed demo catalog if the DB is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure back-office users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Products (one-of-one resale pieces; status doubles as inventory)
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  brand TEXT NOT NULL,
  category TEXT NOT NULL,
  subcategory TEXT,
  description TEXT,
  condition TEXT NOT NULL CHECK (condition IN ('new','like_new','excellent','good','fair')),
  price NUMERIC NOT NULL CHECK (price >= 0),
  sizes_json TEXT,
  image_url TEXT,
  status TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available','reserved','sold')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_brand      ON products(brand);
CREATE INDEX IF NOT EXISTS idx_products_category   ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_status     ON products(status);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Clients
CREATE TABLE IF NOT EXISTS clients(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT,
  tier TEXT NOT NULL DEFAULT 'new' CHECK (tier IN ('new','regular','vip','vvip')),
  ltv NUMERIC NOT NULL DEFAULT 0 CHECK (ltv >= 0),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_clients_email ON clients(LOWER(email));

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL UNIQUE,
  client_id TEXT NULL REFERENCES clients(id) ON DELETE SET NULL,
  subtotal NUMERIC NOT NULL,
  discount NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  delivery_address TEXT,
  notes TEXT,
  status TEXT NOT NULL DEFAULT 'new',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_client     ON orders(client_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id  TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id),
  size TEXT,
  original_price NUMERIC NOT NULL,
  final_price NUMERIC NOT NULL,
  PRIMARY KEY (order_id, product_id)
);

-- Append-only audit trail of status transitions
CREATE TABLE IF NOT EXISTS order_status_history(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  status TEXT NOT NULL,
  changed_by TEXT NOT NULL,
  notes TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_status_history_order ON order_status_history(order_id);

-- Wishlist / waitlist memberships
CREATE TABLE IF NOT EXISTS wishlist_items(
  client_id  TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (client_id, product_id)
);

CREATE TABLE IF NOT EXISTS waitlist_items(
  client_id  TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  priority NUMERIC NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (client_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_waitlist_product ON waitlist_items(product_id);

-- View events (analytics trail, deliberately not deduplicated)
CREATE TABLE IF NOT EXISTS client_views(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  client_id TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_client_views_client ON client_views(client_id);

-- Back-office users & sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('STAFF','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo catalog")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(id,name,brand,category,subcategory,description,condition,price,sizes_json,image_url) VALUES
	  ('prd-ch-hoodie','Chrome Hearts Hoodie','Chrome Hearts','Clothing','Hoodies','Authentic Chrome Hearts hoodie with signature cross design.','excellent',1250,'["S","M","L","XL"]','/products/product_1.png'),
	  ('prd-lp-coat','Loro Piana Cashmere Coat','Loro Piana','Clothing','Coats','Luxurious cashmere coat from Loro Piana.','like_new',3500,'["S","M","L"]','/products/product_2.png'),
	  ('prd-he-birkin','Hermes Birkin 25','Hermes','Bags','Handbags','Iconic Birkin bag in pristine condition.','excellent',12000,'["One Size"]','/products/product_3.png'),
	  ('prd-ch-ring','Chrome Hearts Ring','Chrome Hearts','Jewelry','Rings','Sterling silver ring with cross motif.','excellent',890,'["7","8","9","10"]','/products/product_4.png'),
	  ('prd-lp-sneakers','Loro Piana Sneakers','Loro Piana','Shoes','Sneakers','Premium leather sneakers.','like_new',950,'["40","41","42","43","44"]','/products/product_5.png'),
	  ('prd-he-scarf','Hermes Scarf','Hermes','Accessories','Scarves','Classic silk scarf with equestrian print.','excellent',450,'["One Size"]','/products/product_6.png'),
	  ('prd-ch-jacket','Chrome Hearts Jacket','Chrome Hearts','Clothing','Jackets','Leather jacket with Chrome Hearts hardware.','excellent',2800,'["M","L","XL"]','/products/product_7.png'),
	  ('prd-ba-track','Balenciaga Track Sneakers','Balenciaga','Shoes','Sneakers','Track sneakers in excellent condition.','excellent',750,'["39","40","41","42","43"]','/products/product_8.png')`)

	return tx.Commit()
}

// seedUsers ensures one STAFF and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-concierge", "concierge@velours.test", "Concierge", "STAFF", "Passw0rd!"),
		mk("u-admin", "admin@velours.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
