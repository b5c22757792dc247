package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/veiculos/internal/model"
)

// --- モック定義 ---

type mockAdministratorFinder struct {
	findByEmailFn func(ctx context.Context, email string) (*model.Administrator, error)
}

func (m *mockAdministratorFinder) FindByEmail(ctx context.Context, email string) (*model.Administrator, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

var _ AdministratorFinder = (*mockAdministratorFinder)(nil)

// --- ヘルパー ---

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return hash
}

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	return issuer
}

func seededFinder(t *testing.T) *mockAdministratorFinder {
	t.Helper()
	admin := &model.Administrator{
		ID:           1,
		Email:        "adm@teste.com",
		PasswordHash: mustHash(t, "123456"),
		Role:         model.RoleAdmin,
	}
	return &mockAdministratorFinder{
		findByEmailFn: func(ctx context.Context, email string) (*model.Administrator, error) {
			if email == admin.Email {
				return admin, nil
			}
			return nil, nil
		},
	}
}

// --- テスト ---

func TestVerifyCredentials_Match_ReturnsAdministrator(t *testing.T) {
	svc := NewService(seededFinder(t), newTestIssuer(t), ServiceConfig{BcryptCost: bcrypt.MinCost})

	admin, err := svc.VerifyCredentials(context.Background(), "adm@teste.com", "123456")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if admin.ID != 1 {
		t.Errorf("admin.ID = %d, want 1", admin.ID)
	}
}

func TestVerifyCredentials_WrongPassword_ReturnsErrInvalidCredentials(t *testing.T) {
	svc := NewService(seededFinder(t), newTestIssuer(t), ServiceConfig{BcryptCost: bcrypt.MinCost})

	_, err := svc.VerifyCredentials(context.Background(), "adm@teste.com", "654321")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyCredentials_UnknownEmail_ReturnsErrInvalidCredentials(t *testing.T) {
	svc := NewService(seededFinder(t), newTestIssuer(t), ServiceConfig{BcryptCost: bcrypt.MinCost})

	_, err := svc.VerifyCredentials(context.Background(), "nobody@teste.com", "123456")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyCredentials_EmailIsExactMatch(t *testing.T) {
	svc := NewService(seededFinder(t), newTestIssuer(t), ServiceConfig{BcryptCost: bcrypt.MinCost})

	_, err := svc.VerifyCredentials(context.Background(), "ADM@teste.com", "123456")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyCredentials_StoreError_Propagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	finder := &mockAdministratorFinder{
		findByEmailFn: func(ctx context.Context, email string) (*model.Administrator, error) {
			return nil, storeErr
		},
	}
	svc := NewService(finder, newTestIssuer(t), ServiceConfig{BcryptCost: bcrypt.MinCost})

	_, err := svc.VerifyCredentials(context.Background(), "adm@teste.com", "123456")
	if !errors.Is(err, storeErr) {
		t.Errorf("err = %v, want wrapped %v", err, storeErr)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Error("store error must not be reported as invalid credentials")
	}
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	svc := NewService(seededFinder(t), newTestIssuer(t), ServiceConfig{BcryptCost: bcrypt.MinCost})

	result, err := svc.Login(context.Background(), model.LoginInput{Email: "adm@teste.com", Password: "123456"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected non-empty token")
	}

	verifier, err := NewTokenVerifier(TokenConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}
	claims, err := verifier.Verify(result.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Email != "adm@teste.com" || claims.Role != model.RoleAdmin {
		t.Errorf("claims = (%q, %q), want (adm@teste.com, Admin)", claims.Email, claims.Role)
	}
}

func TestLogin_WrongPassword_NoToken(t *testing.T) {
	svc := NewService(seededFinder(t), newTestIssuer(t), ServiceConfig{BcryptCost: bcrypt.MinCost})

	result, err := svc.Login(context.Background(), model.LoginInput{Email: "adm@teste.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
	if result != nil {
		t.Error("expected nil result")
	}
}

func TestVerifyCredentials_DummyHashFailure_FallsBack(t *testing.T) {
	svc := NewService(seededFinder(t), newTestIssuer(t), ServiceConfig{BcryptCost: bcrypt.MinCost})
	svc.hashDummy = func(password string, cost int) (string, error) {
		return "", errors.New("hash failed")
	}

	_, err := svc.VerifyCredentials(context.Background(), "nobody@teste.com", "123456")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}

	hash := svc.dummy()
	if hash == "" {
		t.Fatal("dummy hash is empty, want fallback hash")
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost: %v", err)
	}
	if cost != bcrypt.MinCost {
		t.Errorf("fallback cost = %d, want %d", cost, bcrypt.MinCost)
	}
}

func TestDummy_UsesConfiguredCost(t *testing.T) {
	svc := NewService(seededFinder(t), newTestIssuer(t), ServiceConfig{BcryptCost: bcrypt.MinCost + 1})

	cost, err := bcrypt.Cost([]byte(svc.dummy()))
	if err != nil {
		t.Fatalf("bcrypt.Cost: %v", err)
	}
	if cost != bcrypt.MinCost+1 {
		t.Errorf("cost = %d, want %d", cost, bcrypt.MinCost+1)
	}
}
