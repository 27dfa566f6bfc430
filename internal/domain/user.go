package domain

import "errors"

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

type User struct {
	ID              string `db:"id" json:"id"`
	Name            string `db:"name" json:"name"`
	Email           string `db:"email" json:"email"`
	Hash            string `db:"password_hash" json:"-"`
	Role            string `db:"role" json:"role"` // buyer | seller
	MobileNumber    string `db:"mobile_number" json:"mobile_number"`
	DeliveryAddress string `db:"delivery_address" json:"delivery_address"` // buyers only
	BusinessName    string `db:"business_name" json:"business_name"`       // sellers only
	BusinessAddress string `db:"business_address" json:"business_address"` // sellers only
	BusinessLicense string `db:"business_license" json:"business_license"` // sellers only
	Active          bool   `db:"is_active" json:"is_active"`
	CreatedAt       string `db:"created_at" json:"created_at"`
}

// DisplaySellerName is the name stamped onto products a seller lists.
func (u *User) DisplaySellerName() string {
	if u.BusinessName != "" {
		return u.BusinessName
	}
	return u.Name
}

// NewBuyer and NewSeller are the only ways to build a User: the role-specific
// required fields are checked at construction, so a buyer can never carry a
// half-filled seller profile and vice versa.

func NewBuyer(id, name, email, hash, mobile, deliveryAddress string) (*User, error) {
	if name == "" || email == "" || hash == "" || mobile == "" {
		return nil, errors.New("buyer: missing required field")
	}
	if deliveryAddress == "" {
		return nil, errors.New("buyer: delivery address required")
	}
	return &User{
		ID: id, Name: name, Email: email, Hash: hash, Role: RoleBuyer,
		MobileNumber: mobile, DeliveryAddress: deliveryAddress, Active: true,
	}, nil
}

func NewSeller(id, name, email, hash, mobile, businessName, businessAddress, businessLicense string) (*User, error) {
	if name == "" || email == "" || hash == "" || mobile == "" {
		return nil, errors.New("seller: missing required field")
	}
	if businessName == "" || businessAddress == "" || businessLicense == "" {
		return nil, errors.New("seller: business profile required")
	}
	return &User{
		ID: id, Name: name, Email: email, Hash: hash, Role: RoleSeller,
		MobileNumber: mobile, BusinessName: businessName,
		BusinessAddress: businessAddress, BusinessLicense: businessLicense,
		Active: true,
	}, nil
}
