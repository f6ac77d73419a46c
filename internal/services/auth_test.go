package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/synaptiq/synapse-backend/internal/logger"
	apperrors "github.com/synaptiq/synapse-backend/internal/pkg/errors"
	"github.com/synaptiq/synapse-backend/internal/repos"
	"github.com/synaptiq/synapse-backend/internal/requestdata"
	"github.com/synaptiq/synapse-backend/internal/types"
)

func newTestAuth(t *testing.T) AuthService {
	t.Helper()

	gormDB := newTestDB(t)
	log := logger.NewNop()
	return NewAuthService(
		gormDB,
		log,
		repos.NewUserRepo(gormDB, log),
		repos.NewUserTokenRepo(gormDB, log),
		"test-secret",
		time.Hour,
		24*time.Hour,
	)
}

func registerTestUser(t *testing.T, svc AuthService, email string) {
	t.Helper()
	err := svc.RegisterUser(context.Background(), &types.User{
		Email:     email,
		Password:  "hunter22",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	if err != nil {
		t.Fatalf("RegisterUser() error = %v", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuth(t)
	registerTestUser(t, svc, "ada@example.com")

	access, refresh, err := svc.LoginUser(context.Background(), "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("LoginUser() error = %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected non-empty token pair")
	}

	ctx, err := svc.SetContextFromToken(context.Background(), access)
	if err != nil {
		t.Fatalf("SetContextFromToken() error = %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		t.Fatal("expected user id in request data")
	}
	if rd.RefreshToken != refresh {
		t.Fatalf("expected refresh token %q in context, got %q", refresh, rd.RefreshToken)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuth(t)
	registerTestUser(t, svc, "ada@example.com")

	err := svc.RegisterUser(context.Background(), &types.User{
		Email:     "ADA@example.com",
		Password:  "another",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for duplicate email, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuth(t)
	registerTestUser(t, svc, "ada@example.com")

	if _, _, err := svc.LoginUser(context.Background(), "ada@example.com", "wrong"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, _, err := svc.LoginUser(context.Background(), "nobody@example.com", "hunter22"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc := newTestAuth(t)
	registerTestUser(t, svc, "ada@example.com")

	access, refresh, err := svc.LoginUser(context.Background(), "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("LoginUser() error = %v", err)
	}

	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		TokenString:  access,
		RefreshToken: refresh,
	})
	newAccess, newRefresh, err := svc.RefreshUser(ctx)
	if err != nil {
		t.Fatalf("RefreshUser() error = %v", err)
	}
	if newRefresh == refresh {
		t.Fatal("expected refresh token to rotate")
	}
	if newAccess == "" {
		t.Fatal("expected new access token")
	}

	// The old refresh token is gone after rotation.
	if _, _, err := svc.RefreshUser(ctx); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for spent refresh token, got %v", err)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc := newTestAuth(t)
	registerTestUser(t, svc, "ada@example.com")

	access, _, err := svc.LoginUser(context.Background(), "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("LoginUser() error = %v", err)
	}

	ctx, err := svc.SetContextFromToken(context.Background(), access)
	if err != nil {
		t.Fatalf("SetContextFromToken() error = %v", err)
	}
	if err := svc.LogoutUser(ctx); err != nil {
		t.Fatalf("LogoutUser() error = %v", err)
	}

	// The JWT is still signature-valid, but its refresh pairing is gone.
	ctx, err = svc.SetContextFromToken(context.Background(), access)
	if err != nil {
		t.Fatalf("SetContextFromToken() after logout error = %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken != "" {
		t.Fatalf("expected no refresh token after logout, got %+v", rd)
	}
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuth(t)

	if _, err := svc.SetContextFromToken(context.Background(), "not-a-jwt"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.SetContextFromToken(context.Background(), ""); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
}
