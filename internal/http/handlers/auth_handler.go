package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "ecomart/internal/log"
	"ecomart/internal/services"
	"ecomart/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type consumerSignupReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	MobileNumber    string `json:"mobile_number"`
	DeliveryAddress string `json:"delivery_address"`
}

func (h *AuthHandler) RegisterConsumer(c *fiber.Ctx) error {
	var req consumerSignupReq
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, []validate.FieldError{{Field: "body", Message: "Malformed request body"}})
	}

	var errs []validate.FieldError
	name, ok := validate.Name(req.Name)
	if !ok {
		errs = append(errs, validate.FieldError{Field: "name", Message: "Name must be 2-100 characters"})
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		errs = append(errs, validate.FieldError{Field: "email", Message: "Valid email required"})
	}
	mobile, ok := validate.Mobile(req.MobileNumber)
	if !ok {
		errs = append(errs, validate.FieldError{Field: "mobile_number", Message: "Mobile number must be 10-15 digits"})
	}
	address, ok := validate.Address(req.DeliveryAddress)
	if !ok {
		errs = append(errs, validate.FieldError{Field: "delivery_address", Message: "Address must be 10-500 characters"})
	}
	if !validate.Password(req.Password) {
		errs = append(errs, validate.FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	if req.ConfirmPassword != req.Password {
		errs = append(errs, validate.FieldError{Field: "confirm_password", Message: "Passwords do not match"})
	}
	if len(errs) > 0 {
		return invalid(c, errs)
	}

	u, err := h.Auth.RegisterBuyer(services.BuyerSignup{
		Name: name, Email: email, Password: req.Password,
		MobileNumber: mobile, DeliveryAddress: address,
	})
	if err != nil {
		return fail(c, "auth.register.consumer", err)
	}

	h.startSession(c, u.ID)
	applog.Audit(c, "auth.register.consumer", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Consumer registered successfully",
		"user":    u,
	})
}

type sellerSignupReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	MobileNumber    string `json:"mobile_number"`
	BusinessName    string `json:"business_name"`
	BusinessAddress string `json:"business_address"`
	BusinessLicense string `json:"business_license"`
}

func (h *AuthHandler) RegisterSeller(c *fiber.Ctx) error {
	var req sellerSignupReq
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, []validate.FieldError{{Field: "body", Message: "Malformed request body"}})
	}

	var errs []validate.FieldError
	name, ok := validate.Name(req.Name)
	if !ok {
		errs = append(errs, validate.FieldError{Field: "name", Message: "Name must be 2-100 characters"})
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		errs = append(errs, validate.FieldError{Field: "email", Message: "Valid email required"})
	}
	mobile, ok := validate.Mobile(req.MobileNumber)
	if !ok {
		errs = append(errs, validate.FieldError{Field: "mobile_number", Message: "Mobile number must be 10-15 digits"})
	}
	bizName, ok := validate.ProductName(req.BusinessName)
	if !ok {
		errs = append(errs, validate.FieldError{Field: "business_name", Message: "Business name must be 2-200 characters"})
	}
	bizAddr, ok := validate.Address(req.BusinessAddress)
	if !ok {
		errs = append(errs, validate.FieldError{Field: "business_address", Message: "Business address must be 10-500 characters"})
	}
	license := req.BusinessLicense
	if len(license) < 5 || len(license) > 100 {
		errs = append(errs, validate.FieldError{Field: "business_license", Message: "Business license must be 5-100 characters"})
	}
	if !validate.Password(req.Password) {
		errs = append(errs, validate.FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	if req.ConfirmPassword != req.Password {
		errs = append(errs, validate.FieldError{Field: "confirm_password", Message: "Passwords do not match"})
	}
	if len(errs) > 0 {
		return invalid(c, errs)
	}

	u, err := h.Auth.RegisterSeller(services.SellerSignup{
		Name: name, Email: email, Password: req.Password, MobileNumber: mobile,
		BusinessName: bizName, BusinessAddress: bizAddr, BusinessLicense: license,
	})
	if err != nil {
		return fail(c, "auth.register.seller", err)
	}

	h.startSession(c, u.ID)
	applog.Audit(c, "auth.register.seller", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Seller registered successfully",
		"user":    u,
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, []validate.FieldError{{Field: "body", Message: "Malformed request body"}})
	}

	sid := h.startSession(c, "")
	u, err := h.Auth.Login(sid, req.Email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}
	applog.Audit(c, "auth.login", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"message": "Login successful", "user": u})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		if err := h.Auth.Logout(sid); err != nil {
			return fail(c, "auth.logout", err)
		}
	}
	c.ClearCookie("sid")
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": currentUser(c)})
}

// startSession makes sure a sid cookie exists and returns its value. Sessions
// are only bound to a user at login/registration time.
func (h *AuthHandler) startSession(c *fiber.Ctx, userID string) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	if userID != "" {
		_ = h.Auth.Users.BindSession(sid, userID, services.SessionTTL)
	}
	return sid
}
