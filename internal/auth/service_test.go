package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/ovenline/storefront-backend/pkg/auth"
	"github.com/ovenline/storefront-backend/pkg/config"
	"github.com/ovenline/storefront-backend/pkg/db/models"
	"github.com/ovenline/storefront-backend/pkg/enums"
	pkgerrors "github.com/ovenline/storefront-backend/pkg/errors"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "ovenline",
	ExpirationMinutes: 30,
}

func TestServiceRegisterAndLogin(t *testing.T) {
	svc, sessions := buildTestService(t)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "customer@example.com",
		Password: "correct-horse-battery",
		FullName: "Test Customer",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.User.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", result.User.Role)
	}
	if result.Token == "" {
		t.Fatal("expected access token on register")
	}
	if len(sessions.created) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions.created))
	}

	login, err := svc.Login(context.Background(), LoginInput{
		Email:    "customer@example.com",
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, login.Token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != result.User.ID {
		t.Fatalf("expected user_id %s in claims, got %s", result.User.ID, claims.UserID)
	}
	if claims.ID == "" {
		t.Fatal("expected jti in claims")
	}
}

func TestServiceRegisterDuplicateEmail(t *testing.T) {
	svc, _ := buildTestService(t)

	input := RegisterInput{
		Email:    "dupe@example.com",
		Password: "correct-horse-battery",
		FullName: "First",
	}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestServiceLoginDoesNotRevealAccounts(t *testing.T) {
	svc, _ := buildTestService(t)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "known@example.com",
		Password: "correct-horse-battery",
		FullName: "Known User",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, unknownErr := svc.Login(context.Background(), LoginInput{
		Email:    "unknown@example.com",
		Password: "whatever",
	})
	_, wrongPassErr := svc.Login(context.Background(), LoginInput{
		Email:    "known@example.com",
		Password: "wrong-password",
	})

	for _, err := range []error{unknownErr, wrongPassErr} {
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	}

	// Unknown email and wrong password must be indistinguishable.
	if pkgerrors.As(unknownErr).Message() != pkgerrors.As(wrongPassErr).Message() {
		t.Fatal("login errors leak which accounts exist")
	}
}

func TestServiceLogout(t *testing.T) {
	svc, sessions := buildTestService(t)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "logout@example.com",
		Password: "correct-horse-battery",
		FullName: "Logout User",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, result.Token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != claims.ID {
		t.Fatalf("expected session %s revoked, got %v", claims.ID, sessions.revoked)
	}

	err = svc.Logout(context.Background(), "  ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank jti, got %v", err)
	}
}

func TestServiceMeUnknownUser(t *testing.T) {
	svc, _ := buildTestService(t)

	_, err := svc.Me(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func buildTestService(t *testing.T) (*Service, *stubSessionWriter) {
	t.Helper()
	store := &stubUserStore{byEmail: map[string]*models.User{}}
	sessions := &stubSessionWriter{}
	svc, err := NewService(store, sessions, testJWTConfig, config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions
}

type stubUserStore struct {
	byEmail map[string]*models.User
}

func (s *stubUserStore) Create(ctx context.Context, user *models.User) error {
	key := strings.ToLower(strings.TrimSpace(user.Email))
	if _, exists := s.byEmail[key]; exists {
		return errors.New(`duplicate key value violates unique constraint "users_email_key"`)
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.byEmail[key] = user
	return nil
}

func (s *stubUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSessionWriter struct {
	created []string
	revoked []string
}

func (s *stubSessionWriter) Create(ctx context.Context, jti string) error {
	s.created = append(s.created, jti)
	return nil
}

func (s *stubSessionWriter) Revoke(ctx context.Context, jti string) error {
	s.revoked = append(s.revoked, jti)
	return nil
}
