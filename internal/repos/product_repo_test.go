package repos_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"ecomart/internal/domain"
	"ecomart/internal/repos"
)

func openMem(t *testing.T) *sqlx.DB {
	t.Helper()
	db, mode, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if mode != "memory" {
		t.Fatalf("want memory mode, got %s", mode)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertProduct(t *testing.T, db *sqlx.DB, id string, qty int) {
	t.Helper()
	now := time.Now().UTC()
	_, err := db.Exec(`
	  INSERT INTO products(id,name,description,category,original_price,discounted_price,
	    quantity,expiry_date,seller_id,seller_name,is_active,created_at)
	  VALUES (?,?,?,?,?,?,?,?,'u-green','Seller',1,?)`,
		id, "Product "+id, "", domain.CategoryNormal, 10.0, 5.0, qty,
		now.Add(48*time.Hour).Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		t.Fatal(err)
	}
}

func TestOpenDB_FileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	db, mode, err := repos.OpenDB(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if mode != "file" {
		t.Fatalf("want file mode, got %s", mode)
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal("fresh store should be seeded")
	}
}

func TestDecrementStock_Guard(t *testing.T) {
	db := openMem(t)
	insertProduct(t, db, "p1", 2)
	r := repos.NewProductRepo(db)

	if err := r.DecrementStock(db, "p1", 2); err != nil {
		t.Fatal(err)
	}
	var qty, sold int
	if err := db.QueryRow(`SELECT quantity, sold_quantity FROM products WHERE id='p1'`).
		Scan(&qty, &sold); err != nil {
		t.Fatal(err)
	}
	if qty != 0 || sold != 2 {
		t.Fatalf("qty=%d sold=%d", qty, sold)
	}

	// Below zero is refused, not clamped.
	err := r.DecrementStock(db, "p1", 1)
	if !errors.Is(err, repos.ErrStockConflict) {
		t.Fatalf("want ErrStockConflict, got %v", err)
	}
	if err := db.QueryRow(`SELECT quantity FROM products WHERE id='p1'`).Scan(&qty); err != nil {
		t.Fatal(err)
	}
	if qty != 0 {
		t.Fatalf("guarded decrement mutated stock: %d", qty)
	}
}

func TestRestoreStock_Inverse(t *testing.T) {
	db := openMem(t)
	insertProduct(t, db, "p1", 5)
	r := repos.NewProductRepo(db)

	if err := r.DecrementStock(db, "p1", 3); err != nil {
		t.Fatal(err)
	}
	if err := r.RestoreStock(db, "p1", 3); err != nil {
		t.Fatal(err)
	}
	var qty, sold int
	if err := db.QueryRow(`SELECT quantity, sold_quantity FROM products WHERE id='p1'`).
		Scan(&qty, &sold); err != nil {
		t.Fatal(err)
	}
	if qty != 5 || sold != 0 {
		t.Fatalf("restore is not the exact inverse: qty=%d sold=%d", qty, sold)
	}
}
