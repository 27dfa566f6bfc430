package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ecomart/internal/domain"
	"ecomart/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

const SessionTTL = 7 * 24 * time.Hour

type AuthService struct {
	Users *repos.UserRepo
}

func NewAuthService(users *repos.UserRepo) *AuthService { return &AuthService{Users: users} }

type BuyerSignup struct {
	Name            string
	Email           string
	Password        string
	MobileNumber    string
	DeliveryAddress string
}

type SellerSignup struct {
	Name            string
	Email           string
	Password        string
	MobileNumber    string
	BusinessName    string
	BusinessAddress string
	BusinessLicense string
}

func (s *AuthService) RegisterBuyer(in BuyerSignup) (*domain.User, error) {
	hash, err := s.hashNewUser(in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	u, err := domain.NewBuyer(uuid.NewString(), in.Name, in.Email, hash, in.MobileNumber, in.DeliveryAddress)
	if err != nil {
		return nil, bizErr(KindValidation, err.Error())
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) RegisterSeller(in SellerSignup) (*domain.User, error) {
	hash, err := s.hashNewUser(in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	u, err := domain.NewSeller(uuid.NewString(), in.Name, in.Email, hash, in.MobileNumber,
		in.BusinessName, in.BusinessAddress, in.BusinessLicense)
	if err != nil {
		return nil, bizErr(KindValidation, err.Error())
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) hashNewUser(email, password string) (string, error) {
	if _, err := s.Users.ByEmail(email); err == nil {
		return "", bizErr(KindValidation, "User already exists with this email")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if !u.Active {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID, SessionTTL); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}
