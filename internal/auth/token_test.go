package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/innometrics/innometrics-backend/internal/model"
)

var testCfg = Config{Secret: "test-secret", TTL: time.Hour}

func TestIssueParseRoundTrip(t *testing.T) {
	token, err := Issue("user-42", testCfg)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	subject, err := Parse(token, testCfg)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if subject != "user-42" {
		t.Fatalf("expected subject user-42, got %q", subject)
	}
}

func TestParseRejectsEmptyToken(t *testing.T) {
	if _, err := Parse("", testCfg); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := Parse("   ", testCfg); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := Issue("user-42", Config{Secret: "other-secret", TTL: time.Hour})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := Parse(token, testCfg); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := Issue("user-42", Config{Secret: testCfg.Secret, TTL: -time.Minute})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := Parse(token, testCfg); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestParseRejectsTokenWithoutExpiry(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-42"})
	token, err := raw.SignedString([]byte(testCfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := Parse(token, testCfg); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestParseRejectsMissingSubject(t *testing.T) {
	now := time.Now().UTC()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(time.Hour)),
	})
	token, err := raw.SignedString([]byte(testCfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := Parse(token, testCfg); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestParseRejectsUnexpectedAlgorithm(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-42",
		"exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := raw.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := Parse(token, testCfg); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
