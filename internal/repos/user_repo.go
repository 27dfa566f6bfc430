package repos

import (
	"time"

	"github.com/jmoiron/sqlx"

	"ecomart/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `
  id, name, email, password_hash, role, mobile_number, delivery_address,
  business_name, business_address, business_license, is_active, created_at`

func (r *UserRepo) Create(u *domain.User) error {
	_, err := r.DB.Exec(`
	  INSERT INTO users
	    (id, name, email, password_hash, role, mobile_number, delivery_address,
	     business_name, business_address, business_license, is_active, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,1,?)`,
		u.ID, u.Name, u.Email, u.Hash, u.Role, u.MobileNumber, u.DeliveryAddress,
		u.BusinessName, u.BusinessAddress, u.BusinessLicense,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Sessions are a time-bounded binding: every row carries an explicit
// expires_at, reads ignore expired rows and writes purge them.

func (r *UserRepo) BindSession(sid, userID string, ttl time.Duration) error {
	now := time.Now().UTC()
	if _, err := r.DB.Exec(`DELETE FROM sessions WHERE datetime(expires_at) <= datetime(?)`,
		now.Format(time.RFC3339)); err != nil {
		return err
	}
	_, err := r.DB.Exec(`
	  INSERT INTO sessions(id, user_id, created_at, expires_at)
	  VALUES(?,?,?,?)
	  ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id, expires_at=excluded.expires_at`,
		sid, userID, now.Format(time.RFC3339), now.Add(ttl).Format(time.RFC3339))
	return err
}

func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
	  SELECT u.id, u.name, u.email, u.password_hash, u.role, u.mobile_number,
	         u.delivery_address, u.business_name, u.business_address,
	         u.business_license, u.is_active, u.created_at
	  FROM sessions s
	  JOIN users u ON u.id = s.user_id
	  WHERE s.id = ? AND datetime(s.expires_at) > datetime(?)`,
		sid, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`DELETE FROM sessions WHERE id=?`, sid)
	return err
}
