package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerifySession(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	raw, exp, err := m.IssueSession("sid-1", "42", "FARMER")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry in the past: %v", exp)
	}

	claims, err := m.VerifySession(raw)
	if err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
	if claims.SessionID != "sid-1" || claims.UserID != "42" || claims.Role != "FARMER" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestVerifySessionRejects(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	foreign, _, _ := other.IssueSession("sid", "1", "ADMIN")

	expired := NewManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.IssueSession("sid", "1", "ADMIN")

	wrongType, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: "sid",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))

	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		SessionID: "sid",
		TokenType: sessionTokenType,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"garbage":     "not-a-jwt",
		"wrong_key":   foreign,
		"expired":     old,
		"wrong_type":  wrongType,
		"none_method": noneAlg,
	}

	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := m.VerifySession(tok); err == nil {
				t.Fatalf("expected %s token to be rejected", name)
			}
		})
	}
}
