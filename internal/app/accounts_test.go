package app_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"innkeep/internal/app"
	"innkeep/internal/domain"
)

func TestRegister_Validation(t *testing.T) {
	svc := app.NewAccountService(newFakeStore())

	_, err := svc.Register(context.Background(), "", "", "")
	ve := domain.IsValidationError(err)
	if ve == nil {
		t.Fatalf("want ValidationError, got %v", err)
	}
	for _, field := range []string{"email", "name", "password"} {
		if _, ok := ve.Fields()[field]; !ok {
			t.Fatalf("missing field %q in %v", field, ve.Fields())
		}
	}
}

func TestRegister_HashesAndLowercases(t *testing.T) {
	f := newFakeStore()
	svc := app.NewAccountService(f)

	u, err := svc.Register(context.Background(), "  Alice@Example.COM ", "Alice", "s3cret")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("email not folded: %q", u.Email)
	}
	if u.PasswordHash == "s3cret" || u.PasswordHash == "" {
		t.Fatalf("password stored without hashing")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegister_DuplicateEmail_CaseInsensitive(t *testing.T) {
	svc := app.NewAccountService(newFakeStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob@example.com", "Bob", "pw"); err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err := svc.Register(ctx, "BOB@EXAMPLE.COM", "Bobby", "pw2")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("want ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthenticate_GenericFailure(t *testing.T) {
	svc := app.NewAccountService(newFakeStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "carol@example.com", "Carol", "right-horse"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, errUnknown := svc.Authenticate(ctx, "nobody@example.com", "whatever")
	_, errWrongPw := svc.Authenticate(ctx, "carol@example.com", "wrong")

	if !errors.Is(errUnknown, domain.ErrAuthenticationFailed) {
		t.Fatalf("unknown email: %v", errUnknown)
	}
	if !errors.Is(errWrongPw, domain.ErrAuthenticationFailed) {
		t.Fatalf("wrong password: %v", errWrongPw)
	}
	// both paths surface the identical message
	if errUnknown.Error() != errWrongPw.Error() {
		t.Fatalf("failure messages differ: %q vs %q", errUnknown, errWrongPw)
	}
}

func TestAuthenticate_OK(t *testing.T) {
	svc := app.NewAccountService(newFakeStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dave@example.com", "Dave", "hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}
	u, err := svc.Authenticate(ctx, " DAVE@example.com ", "hunter2")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if u.Email != "dave@example.com" || u.Name != "Dave" {
		t.Fatalf("unexpected user: %+v", u)
	}
}
