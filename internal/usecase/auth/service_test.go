package auth

import (
	"context"
	"errors"
	"testing"

	"parttime-match/internal/domain/match"
	"parttime-match/internal/repository/memory"
)

func TestRegister_AssignsRoleAndHidesHash(t *testing.T) {
	svc := NewService(memory.New())

	u, err := svc.Register(context.Background(), RegisterInput{Email: " Owner@Example.com ", Password: "secret-pass", Role: "Owner"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != match.RoleOwner {
		t.Fatalf("expected owner role, got %q", u.Role)
	}
	if u.Email != "owner@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if u.PasswordHash != "" {
		t.Fatalf("password hash leaked")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := NewService(memory.New())
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"empty email", RegisterInput{Password: "secret-pass", Role: "seeker"}},
		{"short password", RegisterInput{Email: "a@b.c", Password: "short", Role: "seeker"}},
		{"unknown role", RegisterInput{Email: "a@b.c", Password: "secret-pass", Role: "admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewService(memory.New())
	ctx := context.Background()
	in := RegisterInput{Email: "dup@example.com", Password: "secret-pass", Role: "seeker"}

	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := NewService(memory.New())
	ctx := context.Background()
	_, _ = svc.Register(ctx, RegisterInput{Email: "seeker@example.com", Password: "secret-pass", Role: "seeker"})

	if _, err := svc.Login(ctx, LoginInput{Email: "seeker@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	u, err := svc.Login(ctx, LoginInput{Email: "SEEKER@example.com", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.Role != match.RoleSeeker {
		t.Fatalf("expected seeker role, got %q", u.Role)
	}
}
