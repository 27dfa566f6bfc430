package repos

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// OpenDB opens the configured sqlite store and falls back to an in-memory
// database when the file cannot be opened (offline/test mode). The returned
// mode is "file" or "memory".
func OpenDB(dsn string) (*sqlx.DB, string, error) {
	mode := "file"
	if dsn == ":memory:" {
		mode = "memory"
	}

	db, err := open(dsn)
	if err != nil && mode == "file" {
		log.Printf("[db] could not open %s (%v), falling back to in-memory store", dsn, err)
		mode = "memory"
		db, err = open(":memory:")
	}
	if err != nil {
		return nil, "", err
	}

	if err := ensureSchema(db); err != nil {
		return nil, "", err
	}
	// Seed demo users/products if the store is empty (idempotent; safe to run
	// every start).
	if err := seedIfEmpty(db); err != nil {
		return nil, "", err
	}

	log.Printf("[db] using %s store", mode)
	return db, mode, nil
}

func open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		// A pooled :memory: handle opens a fresh empty database per
		// connection; pin the pool to one so every caller shares it.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users (buyers and sellers)
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('buyer','seller')),
  mobile_number TEXT NOT NULL,
  delivery_address TEXT NOT NULL DEFAULT '',
  business_name TEXT NOT NULL DEFAULT '',
  business_address TEXT NOT NULL DEFAULT '',
  business_license TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT NOT NULL,
  expires_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL CHECK (category IN ('Normal','Seasonal','Derived')),
  original_price NUMERIC NOT NULL CHECK (original_price >= 0),
  discounted_price NUMERIC NOT NULL CHECK (discounted_price >= 0),
  quantity INTEGER NOT NULL CHECK (quantity >= 0),
  expiry_date TEXT NOT NULL,
  image_url TEXT NOT NULL DEFAULT '',
  seller_id TEXT NOT NULL REFERENCES users(id),
  seller_name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  views INTEGER NOT NULL DEFAULT 0,
  sold_quantity INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category, is_active);
CREATE INDEX IF NOT EXISTS idx_products_expiry   ON products(expiry_date, is_active);
CREATE INDEX IF NOT EXISTS idx_products_seller   ON products(seller_id);

-- Orders (header carries the buyer snapshot; items are price snapshots)
CREATE TABLE IF NOT EXISTS orders(
  order_id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL REFERENCES users(id),
  buyer_name TEXT NOT NULL,
  buyer_email TEXT NOT NULL,
  buyer_mobile TEXT NOT NULL,
  delivery_address TEXT NOT NULL,
  subtotal NUMERIC NOT NULL CHECK (subtotal >= 0),
  delivery_fee NUMERIC NOT NULL,
  total_amount NUMERIC NOT NULL CHECK (total_amount >= 0),
  payment_method TEXT NOT NULL CHECK (payment_method IN ('card','upi','cod')),
  payment_status TEXT NOT NULL DEFAULT 'pending'
    CHECK (payment_status IN ('pending','completed','failed','refunded')),
  order_status TEXT NOT NULL DEFAULT 'placed'
    CHECK (order_status IN ('placed','confirmed','preparing','shipped','delivered','cancelled')),
  notes TEXT NOT NULL DEFAULT '',
  estimated_delivery TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_buyer  ON orders(buyer_id, created_at);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(order_status);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id),
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  price_per_item NUMERIC NOT NULL CHECK (price_per_item >= 0),
  total_price NUMERIC NOT NULL CHECK (total_price >= 0),
  PRIMARY KEY (order_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id);
`
	_, err := db.Exec(schema)
	return err
}

// seedIfEmpty inserts demo accounts and a few near-expiry listings so a fresh
// or in-memory store is browsable immediately.
func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo users and products")

	now := time.Now().UTC()
	ts := now.Format(time.RFC3339)
	hash := func(raw string) string {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return string(h)
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO users(id,name,email,password_hash,role,mobile_number,delivery_address,business_name,business_address,business_license,created_at) VALUES
	  ('u-priya','Priya','priya@ecomart.test',?,'buyer','9876543210','14 Lakeview Road, Pune 411001','','','',?),
	  ('u-green','Ravi','ravi@greenharvest.test',?,'seller','9123456780','','Green Harvest Foods','2 Market Yard, Pune 411037','LIC-2024-0042',?)`,
		hash("Passw0rd!"), ts, hash("Passw0rd!"), ts)

	expiry := func(days int) string { return now.AddDate(0, 0, days).Format(time.RFC3339) }
	tx.MustExec(`INSERT INTO products(id,name,description,category,original_price,discounted_price,quantity,expiry_date,image_url,seller_id,seller_name,created_at) VALUES
	  (?,'Whole Wheat Bread','Bakery fresh, best before this week','Normal',60,25,20,?,'','u-green','Green Harvest Foods',?),
	  (?,'Alphonso Mangoes (1kg)','End of season stock','Seasonal',450,280,12,?,'','u-green','Green Harvest Foods',?),
	  (?,'Sawdust Briquettes (5kg)','Made from mill byproduct','Derived',300,220,40,?,'','u-green','Green Harvest Foods',?)`,
		uuid.NewString(), expiry(3), ts,
		uuid.NewString(), expiry(5), ts,
		uuid.NewString(), expiry(60), ts)

	return tx.Commit()
}
