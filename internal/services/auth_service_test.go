package services_test

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"ecomart/internal/domain"
	"ecomart/internal/repos"
	"ecomart/internal/services"
)

func buyerSignup(email string) services.BuyerSignup {
	return services.BuyerSignup{
		Name:            "Priya Nair",
		Email:           email,
		Password:        "Passw0rd!",
		MobileNumber:    "9876543210",
		DeliveryAddress: "12 Harbor Lane, Springfield 00001",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := blankdb(t)
	users := repos.NewUserRepo(db)
	svc := services.NewAuthService(users)

	u, err := svc.RegisterBuyer(buyerSignup("priya@test.local"))
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != domain.RoleBuyer || u.Hash == "Passw0rd!" {
		t.Fatalf("bad user: %+v", u)
	}

	logged, err := svc.Login("sid-1", "priya@test.local", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if logged.ID != u.ID {
		t.Fatalf("want %s, got %s", u.ID, logged.ID)
	}

	cur, err := svc.CurrentUser("sid-1")
	if err != nil {
		t.Fatal(err)
	}
	if cur.ID != u.ID {
		t.Fatalf("session resolves to wrong user: %s", cur.ID)
	}

	if err := svc.Logout("sid-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CurrentUser("sid-1"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("session should be gone, got %v", err)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	db := blankdb(t)
	svc := services.NewAuthService(repos.NewUserRepo(db))

	if _, err := svc.RegisterBuyer(buyerSignup("priya@test.local")); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login("sid-1", "priya@test.local", "wrong"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds, got %v", err)
	}
	if _, err := svc.Login("sid-1", "nobody@test.local", "Passw0rd!"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds, got %v", err)
	}

	// Deactivated accounts cannot log in even with the right password.
	if _, err := db.Exec(`UPDATE users SET is_active=0`); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login("sid-1", "priya@test.local", "Passw0rd!"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds for inactive account, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := blankdb(t)
	svc := services.NewAuthService(repos.NewUserRepo(db))

	if _, err := svc.RegisterBuyer(buyerSignup("priya@test.local")); err != nil {
		t.Fatal(err)
	}
	_, err := svc.RegisterBuyer(buyerSignup("Priya@Test.Local"))
	be := wantKind(t, err, services.KindValidation)
	if be.Message != "User already exists with this email" {
		t.Fatalf("message: %s", be.Message)
	}
}

func TestRegisterSeller_RequiredFields(t *testing.T) {
	db := blankdb(t)
	svc := services.NewAuthService(repos.NewUserRepo(db))

	in := services.SellerSignup{
		Name:         "Green Harvest",
		Email:        "shop@test.local",
		Password:     "Passw0rd!",
		MobileNumber: "9876543210",
		BusinessName: "Green Harvest Foods",
	}
	// Missing business address and license.
	_, err := svc.RegisterSeller(in)
	wantKind(t, err, services.KindValidation)

	in.BusinessAddress = "3 Market Street, Springfield 00001"
	in.BusinessLicense = "LIC-1234"
	u, err := svc.RegisterSeller(in)
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != domain.RoleSeller || u.DisplaySellerName() != "Green Harvest Foods" {
		t.Fatalf("bad seller: %+v", u)
	}
}

func TestSessionExpiry(t *testing.T) {
	db := blankdb(t)
	users := repos.NewUserRepo(db)
	svc := services.NewAuthService(users)

	u, err := svc.RegisterBuyer(buyerSignup("priya@test.local"))
	if err != nil {
		t.Fatal(err)
	}

	// An already-expired binding reads as no session.
	if err := users.BindSession("sid-old", u.ID, -time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CurrentUser("sid-old"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expired session should not resolve, got %v", err)
	}

	// A fresh write purges expired rows for the same user.
	if err := users.BindSession("sid-new", u.ID, time.Hour); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM sessions WHERE id='sid-old'`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatal("expired session row should be purged on write")
	}
	if _, err := svc.CurrentUser("sid-new"); err != nil {
		t.Fatal(err)
	}
}
