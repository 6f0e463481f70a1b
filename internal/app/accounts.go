package app

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"innkeep/internal/domain"
)

type AccountService struct {
	users domain.UserRepository
}

func NewAccountService(users domain.UserRepository) *AccountService {
	return &AccountService{users: users}
}

// dummyHash keeps Authenticate doing one bcrypt comparison whether or
// not the email exists, so response timing does not reveal accounts.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Register creates a user from self-registration input. The email is
// case-folded to lowercase before the uniqueness check and storage.
func (s *AccountService) Register(ctx context.Context, email, name, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	ve := domain.NewValidationError()
	if email == "" {
		ve.Add("email", "required")
	}
	if name == "" {
		ve.Add("name", "required")
	}
	if password == "" {
		ve.Add("password", "required")
	}
	if !ve.Empty() {
		return domain.User{}, ve
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{Email: email, Name: name, PasswordHash: string(hash)}
	id, err := s.users.CreateUser(ctx, u)
	if err != nil {
		return domain.User{}, err
	}
	u.ID = id
	return u, nil
}

// Authenticate verifies credentials. Unknown email and wrong password
// both return ErrAuthenticationFailed with no way to tell which.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return domain.User{}, domain.ErrAuthenticationFailed
		}
		return domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, domain.ErrAuthenticationFailed
	}
	return u, nil
}
