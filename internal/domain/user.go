package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleClient Role = "CLIENT"
	RoleAdmin  Role = "ADMIN"
)

type User struct {
	ID        string
	Name      string
	Email     string
	Password  password
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewUser(name, email string, role Role) *User {
	now := time.Now().UTC()

	return &User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type password struct {
	plaintext *string
	Hash      []byte
}

func (p *password) Set(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}

	p.plaintext = &plaintext
	p.Hash = hash

	return nil
}

func (p *password) Matches(plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.Hash, []byte(plaintext))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}

	return true, nil
}

// dummyHash is compared against when no account matches an email, so a
// failed login costs one bcrypt round either way.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-account"), 12)

// CheckCredentials verifies plaintext against the user's password. A nil user
// stands for an unknown email. Both mismatches return ErrInvalidCredentials.
func CheckCredentials(user *User, plaintext string) error {
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plaintext))
		return ErrInvalidCredentials
	}

	match, err := user.Password.Matches(plaintext)
	if err != nil {
		return err
	}

	if !match {
		return ErrInvalidCredentials
	}

	return nil
}

// Requester identifies the authenticated caller of a ledger operation.
type Requester struct {
	UserID string
	Role   Role
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetById(ctx context.Context, id string) (*User, error)
}
