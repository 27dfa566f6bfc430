package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"ecomart/internal/domain"
	"ecomart/internal/http/handlers"
	"ecomart/internal/repos"
)

// newApp wires the API routes the way the server binary does, minus the
// rate limiters and static assets.
func newApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, _, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	deps := handlers.NewDeps(db)
	app := fiber.New()

	auth := app.Group("/api/auth")
	auth.Post("/register-consumer", deps.AuthHandler.RegisterConsumer)
	auth.Post("/register-seller", deps.AuthHandler.RegisterSeller)
	auth.Post("/login", deps.AuthHandler.Login)
	auth.Post("/logout", deps.AuthHandler.Logout)
	auth.Get("/me", handlers.RequireAuth(deps.Auth), deps.AuthHandler.Me)

	products := app.Group("/api/products")
	products.Get("/", deps.ProductHandler.List)
	products.Get("/search/:query", deps.ProductHandler.Search)
	products.Get("/seller/my-products", handlers.RequireRole(deps.Auth, domain.RoleSeller), deps.ProductHandler.MyProducts)
	products.Post("/", handlers.RequireRole(deps.Auth, domain.RoleSeller), deps.ProductHandler.Create)
	products.Get("/:id", deps.ProductHandler.Detail)
	products.Put("/:id", handlers.RequireRole(deps.Auth, domain.RoleSeller), deps.ProductHandler.Update)
	products.Delete("/:id", handlers.RequireRole(deps.Auth, domain.RoleSeller), deps.ProductHandler.Delete)

	orders := app.Group("/api/orders")
	orders.Post("/", handlers.RequireRole(deps.Auth, domain.RoleBuyer), deps.OrderHandler.Place)
	orders.Get("/my-orders", handlers.RequireRole(deps.Auth, domain.RoleBuyer), deps.OrderHandler.MyOrders)
	orders.Get("/seller/orders", handlers.RequireRole(deps.Auth, domain.RoleSeller), deps.OrderHandler.SellerOrders)
	orders.Get("/:orderId", handlers.RequireAuth(deps.Auth), deps.OrderHandler.Detail)
	orders.Patch("/:orderId/cancel", handlers.RequireRole(deps.Auth, domain.RoleBuyer), deps.OrderHandler.Cancel)
	orders.Patch("/:orderId/status", handlers.RequireRole(deps.Auth, domain.RoleSeller), deps.OrderHandler.UpdateStatus)

	return app, db
}

// seedUser inserts a user directly with a cheap hash so tests stay fast.
func seedUser(t *testing.T, db *sqlx.DB, id, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	deliveryAddr, bizName, bizAddr, bizLic := "", "", "", ""
	if role == domain.RoleBuyer {
		deliveryAddr = "12 Harbor Lane, Springfield 00001"
	} else {
		bizName = id + " Foods"
		bizAddr = "3 Market Street, Springfield 00001"
		bizLic = "LIC-" + id
	}
	_, err = db.Exec(`
	  INSERT INTO users(id,name,email,password_hash,role,mobile_number,delivery_address,
	    business_name,business_address,business_license,created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		id, "Test "+id, id+"@test.local", string(hash), role, "9876543210",
		deliveryAddr, bizName, bizAddr, bizLic,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatal(err)
	}
}

func seedProduct(t *testing.T, db *sqlx.DB, id, sellerID string, qty int, price float64) {
	t.Helper()
	now := time.Now().UTC()
	_, err := db.Exec(`
	  INSERT INTO products(id,name,description,category,original_price,discounted_price,
	    quantity,expiry_date,seller_id,seller_name,is_active,created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,1,?)`,
		id, "Product "+id, "", domain.CategoryNormal, price*2, price, qty,
		now.Add(72*time.Hour).Format(time.RFC3339), sellerID, "Seller", now.Format(time.RFC3339))
	if err != nil {
		t.Fatal(err)
	}
}

// login authenticates a seeded user and returns the session cookie.
func login(t *testing.T, app *fiber.App, id string) *http.Cookie {
	t.Helper()
	resp := do(t, app, "POST", "/api/auth/login",
		fiber.Map{"email": id + "@test.local", "password": "Passw0rd!"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", id, resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	t.Fatal("no sid cookie on login")
	return nil
}

// do issues a JSON request through the in-process app.
func do(t *testing.T, app *fiber.App, method, path string, body any, sid *http.Cookie) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != nil {
		req.AddCookie(sid)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}
