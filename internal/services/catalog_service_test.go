package services_test

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"ecomart/internal/domain"
	"ecomart/internal/repos"
	"ecomart/internal/services"
)

// blankdb strips the demo seed so list counts are deterministic.
func blankdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db := memdb(t)
	for _, table := range []string{"order_items", "orders", "sessions", "products", "users"} {
		if _, err := db.Exec(`DELETE FROM ` + table); err != nil {
			t.Fatal(err)
		}
	}
	return db
}

func newCatalog(db *sqlx.DB) *services.CatalogService {
	return services.NewCatalogService(repos.NewProductRepo(db))
}

func productInput(name string, price float64) services.ProductInput {
	return services.ProductInput{
		Name:            name,
		Description:     "fresh stock, short dated",
		Category:        domain.CategoryNormal,
		OriginalPrice:   price * 2,
		DiscountedPrice: price,
		Quantity:        10,
		ExpiryDate:      time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339),
	}
}

func TestCreateProduct(t *testing.T) {
	db := blankdb(t)
	seller := addUser(t, db, "s1", domain.RoleSeller)
	svc := newCatalog(db)

	p, err := svc.Create(seller, productInput("Day-Old Bread", 40))
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == "" || !p.Active {
		t.Fatalf("bad product: %+v", p)
	}
	if p.SellerName != seller.BusinessName {
		t.Fatalf("want seller name %q, got %q", seller.BusinessName, p.SellerName)
	}

	got, err := svc.Get(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Day-Old Bread" || got.DiscountedPrice != 40 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Views != 1 {
		t.Fatalf("view not counted, got %d", got.Views)
	}
}

func TestCreateProduct_Rules(t *testing.T) {
	db := blankdb(t)
	seller := addUser(t, db, "s1", domain.RoleSeller)
	svc := newCatalog(db)

	bad := productInput("Overpriced", 40)
	bad.DiscountedPrice = bad.OriginalPrice
	_, err := svc.Create(seller, bad)
	wantKind(t, err, services.KindValidation)

	stale := productInput("Stale", 40)
	stale.ExpiryDate = time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	_, err = svc.Create(seller, stale)
	wantKind(t, err, services.KindValidation)

	garbled := productInput("Garbled", 40)
	garbled.ExpiryDate = "tomorrow"
	_, err = svc.Create(seller, garbled)
	wantKind(t, err, services.KindValidation)
}

func TestUpdateProduct(t *testing.T) {
	db := blankdb(t)
	seller := addUser(t, db, "s1", domain.RoleSeller)
	other := addUser(t, db, "s2", domain.RoleSeller)
	svc := newCatalog(db)

	p, err := svc.Create(seller, productInput("Mixed Crate", 40))
	if err != nil {
		t.Fatal(err)
	}

	// Partial update: untouched fields survive.
	name := "Mixed Crate (large)"
	qty := 3
	updated, err := svc.Update(seller, p.ID, services.UpdateInput{Name: &name, Quantity: &qty})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != name || updated.Quantity != 3 || updated.DiscountedPrice != 40 {
		t.Fatalf("merge broke fields: %+v", updated)
	}

	// The price rule holds against merged values: dropping the original
	// price under the standing discounted price must fail.
	lowOriginal := 30.0
	_, err = svc.Update(seller, p.ID, services.UpdateInput{OriginalPrice: &lowOriginal})
	wantKind(t, err, services.KindValidation)

	_, err = svc.Update(other, p.ID, services.UpdateInput{Name: &name})
	wantKind(t, err, services.KindAccessDenied)

	_, err = svc.Update(seller, "missing", services.UpdateInput{Name: &name})
	wantKind(t, err, services.KindProductNotFound)
}

func TestDeleteProduct_Soft(t *testing.T) {
	db := blankdb(t)
	seller := addUser(t, db, "s1", domain.RoleSeller)
	other := addUser(t, db, "s2", domain.RoleSeller)
	svc := newCatalog(db)

	p, err := svc.Create(seller, productInput("Pulled Item", 40))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(other, p.ID); err == nil {
		t.Fatal("foreign seller deleted a product")
	}
	if err := svc.Delete(seller, p.ID); err != nil {
		t.Fatal(err)
	}

	// Public reads treat it as gone; the row survives for order history.
	_, err = svc.Get(p.ID)
	wantKind(t, err, services.KindProductNotFound)
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products WHERE id=?`, p.ID); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("row should remain, got %d", n)
	}

	// The seller's own listing still shows it.
	mine, total, err := svc.ListBySeller(seller.ID, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(mine) != 1 {
		t.Fatalf("seller listing should include inactive rows: total=%d", total)
	}
}

func TestCatalogList_FiltersAndSorts(t *testing.T) {
	db := blankdb(t)
	addUser(t, db, "s1", domain.RoleSeller)
	now := time.Now().UTC()

	add := func(id, category string, price float64, qty int, until time.Duration) {
		t.Helper()
		_, err := db.Exec(`
		  INSERT INTO products(id,name,description,category,original_price,discounted_price,
		    quantity,expiry_date,seller_id,seller_name,is_active,created_at)
		  VALUES (?,?,?,?,?,?,?,?,'s1','Seller',1,?)`,
			id, "Product "+id, "", category, price*2, price, qty,
			now.Add(until).Format(time.RFC3339), now.Format(time.RFC3339))
		if err != nil {
			t.Fatal(err)
		}
	}
	add("cheap", domain.CategoryNormal, 100, 20, 12*time.Hour)
	add("mid", domain.CategorySeasonal, 900, 3, 5*24*time.Hour)
	add("dear", domain.CategoryDerived, 2000, 8, 10*24*time.Hour)
	add("gone", domain.CategoryNormal, 50, 10, -time.Hour)
	add("empty", domain.CategoryNormal, 50, 0, 24*time.Hour)

	svc := newCatalog(db)
	ids := func(ps []domain.Product) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}

	// Expired and out-of-stock rows never list.
	all, total, err := svc.List(repos.ListFilter{}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("want 3 listable products, got %d (%v)", total, ids(all))
	}

	byCat, total, err := svc.List(repos.ListFilter{Category: domain.CategorySeasonal}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || byCat[0].ID != "mid" {
		t.Fatalf("category filter: %v", ids(byCat))
	}

	today, total, err := svc.List(repos.ListFilter{TimePeriod: "today"}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || today[0].ID != "cheap" {
		t.Fatalf("today filter: %v", ids(today))
	}

	priced, total, err := svc.List(repos.ListFilter{PriceRange: "500-1500"}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || priced[0].ID != "mid" {
		t.Fatalf("price filter: %v", ids(priced))
	}

	low, total, err := svc.List(repos.ListFilter{Availability: "low-stock"}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || low[0].ID != "mid" {
		t.Fatalf("availability filter: %v", ids(low))
	}

	sorted, _, err := svc.List(repos.ListFilter{Sort: "price-low-high"}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"cheap", "mid", "dear"}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Fatalf("price sort: %v", ids(sorted))
		}
	}

	soon, _, err := svc.List(repos.ListFilter{Sort: "expiring-soon"}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if soon[0].ID != "cheap" || soon[2].ID != "dear" {
		t.Fatalf("expiry sort: %v", ids(soon))
	}

	// Pagination slices but reports the full count.
	page2, total, err := svc.List(repos.ListFilter{Sort: "price-low-high"}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(page2) != 1 || page2[0].ID != "dear" {
		t.Fatalf("pagination: total=%d page=%v", total, ids(page2))
	}
}

func TestCatalogSearch(t *testing.T) {
	db := blankdb(t)
	seller := addUser(t, db, "s1", domain.RoleSeller)
	svc := newCatalog(db)

	if _, err := svc.Create(seller, productInput("Alphonso Mangoes", 250)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(seller, productInput("Sourdough Loaf", 60)); err != nil {
		t.Fatal(err)
	}

	hits, total, err := svc.Search("mango", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || hits[0].Name != "Alphonso Mangoes" {
		t.Fatalf("search miss: total=%d", total)
	}

	none, total, err := svc.Search("durian", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 || len(none) != 0 {
		t.Fatalf("want no hits, got %d", total)
	}
}
