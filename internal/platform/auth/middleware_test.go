package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var testSigningKey = []byte("test-signing-key")

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func invokeMiddleware(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c)
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})
	_, err := invokeMiddleware(t, mw, "")
	if err == nil {
		t.Fatal("expected error for missing header")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_InvalidFormat(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})
	_, err := invokeMiddleware(t, mw, "Basic abc123")
	if err == nil {
		t.Fatal("expected error for non-bearer header")
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	accountID := uuid.NewString()
	token := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "family@example.com",
	})

	mw := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})
	c, err := invokeMiddleware(t, mw, "Bearer "+token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := AccountIDFromContext(c.Request().Context())
	if got.String() != accountID {
		t.Errorf("expected account %s, got %s", accountID, got)
	}
	if email := EmailFromContext(c.Request().Context()); email != "family@example.com" {
		t.Errorf("expected email claim, got %q", email)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	mw := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})
	_, err := invokeMiddleware(t, mw, "Bearer "+token)
	if err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestJWTMiddleware_NonUUIDSubject(t *testing.T) {
	token := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	mw := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})
	_, err := invokeMiddleware(t, mw, "Bearer "+token)
	if err == nil {
		t.Fatal("expected error for non-UUID subject")
	}
}

func TestJWTMiddleware_WrongIssuer(t *testing.T) {
	token := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    "https://other.example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	mw := JWTMiddleware(JWTConfig{
		SigningKey: testSigningKey,
		Issuer:     "https://auth.example.com",
	})
	_, err := invokeMiddleware(t, mw, "Bearer "+token)
	if err == nil {
		t.Fatal("expected error for wrong issuer")
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	c, err := invokeMiddleware(t, DevAuthMiddleware(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := AccountIDFromContext(c.Request().Context())
	if got.String() != DevAccountID {
		t.Errorf("expected dev account %s, got %s", DevAccountID, got)
	}
}

func TestAccountIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := AccountIDFromContext(req.Context()); got != uuid.Nil {
		t.Errorf("expected uuid.Nil for empty context, got %s", got)
	}
}
