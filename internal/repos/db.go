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
	// Seed demo accounts/farms/products if DB is empty (idempotent).
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users (identity store; credential issuance lives elsewhere)
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('user','farmer','admin')),
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

-- Farmers (one profile per farmer user)
CREATE TABLE IF NOT EXISTS farmers(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
  farm_name TEXT NOT NULL,
  first_name TEXT,
  last_name TEXT,
  location TEXT,
  phone TEXT,
  description TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_farmers_location ON farmers(location);

-- Products (active=0 is a tombstone: inquiries keep pointing at it)
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  farmer_id TEXT NOT NULL REFERENCES farmers(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL CHECK (price >= 0),
  unit TEXT NOT NULL DEFAULT 'lb' CHECK (unit IN ('lb','kg','bunch','dozen','each')),
  category TEXT,
  image_url TEXT,
  available INTEGER NOT NULL DEFAULT 1,
  active INTEGER NOT NULL DEFAULT 1,
  view_count INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_farmer   ON products(farmer_id);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_name     ON products(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_products_created  ON products(created_at);

-- Inquiries (farmer_id frozen at creation, never rewritten)
CREATE TABLE IF NOT EXISTS inquiries(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  farmer_id TEXT NOT NULL REFERENCES farmers(id) ON DELETE CASCADE,
  buyer_id TEXT,
  customer_name TEXT NOT NULL,
  contact_phone TEXT NOT NULL,
  message TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'new'
    CHECK (status IN ('new','viewed','contacted','closed','archived')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_inquiries_farmer  ON inquiries(farmer_id);
CREATE INDEX IF NOT EXISTS idx_inquiries_product ON inquiries(product_id);

-- Per-farmer notification event log; seq is gapless and monotonic per farmer
CREATE TABLE IF NOT EXISTS events(
  farmer_id TEXT NOT NULL REFERENCES farmers(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL,
  id TEXT NOT NULL,
  inquiry_id TEXT NOT NULL,
  kind TEXT NOT NULL CHECK (kind IN ('created','status_changed')),
  payload TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(farmer_id, seq)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo users/farmers/products")

	hash := func(raw string) string {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return string(h)
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO users(id,email,name,password_hash,role,active) VALUES
	  ('u-rosa',  'rosa@harvestlink.test',  'Rosa',  ?, 'farmer', 1),
	  ('u-sam',   'sam@harvestlink.test',   'Sam',   ?, 'farmer', 1),
	  ('u-buyer', 'buyer@harvestlink.test', 'Bea',   ?, 'user',   1),
	  ('u-admin', 'admin@harvestlink.test', 'Admin', ?, 'admin',  1)`,
		hash("Passw0rd!"), hash("Passw0rd!"), hash("Passw0rd!"), hash("Passw0rd!"))

	tx.MustExec(`INSERT INTO farmers(id,user_id,farm_name,first_name,last_name,location,phone,description) VALUES
	  ('f-rosa','u-rosa','Rosa Valley Farm','Rosa','Nguyen','Da Lat','+84123450001','Highland vegetables and herbs'),
	  ('f-sam', 'u-sam', 'Sunrise Orchard', 'Sam', 'Tran',  'Can Tho','+84123450002','Tropical fruit, picked to order')`)

	tx.MustExec(`INSERT INTO products(id,farmer_id,name,description,price,unit,category,available) VALUES
	  ('p-kale',    'f-rosa','Curly Kale',     'Crisp winter kale, pesticide free', 3.50,'bunch','Vegetables',1),
	  ('p-carrot',  'f-rosa','Baby Carrots',   'Sweet baby carrots',                2.20,'lb',   'Vegetables',1),
	  ('p-mango',   'f-sam', 'Cat Chu Mango',  'Aromatic mango, tree ripened',      4.80,'kg',   'Fruit',     1),
	  ('p-longan',  'f-sam', 'Fresh Longan',   'Seasonal longan in small crates',   6.00,'kg',   'Fruit',     0)`)

	return tx.Commit()
}
