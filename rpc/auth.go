package rpc

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

type contextKey string

const contextKeyCaller contextKey = "rpc.caller"

// Authenticator resolves the caller identity for mutating operations. Callers
// present an HS256 bearer token whose subject is the account id every
// ledger operation acts for.
type Authenticator struct {
	secret    []byte
	clockSkew time.Duration
}

// NewAuthenticator constructs an authenticator around the shared HMAC secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{
		secret:    []byte(strings.TrimSpace(secret)),
		clockSkew: 2 * time.Minute,
	}
}

// Middleware rejects requests without a valid bearer token and stores the
// token subject as the caller account id in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractBearer(r.Header.Get("Authorization"))
		if tokenString == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		caller, err := a.callerFromToken(tokenString)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyCaller, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) callerFromToken(tokenString string) (string, error) {
	if len(a.secret) == 0 {
		return "", fmt.Errorf("rpc: auth secret not configured")
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("rpc: unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithLeeway(a.clockSkew))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("rpc: invalid token")
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", fmt.Errorf("rpc: token subject required")
	}
	return subject, nil
}

// NewToken mints a caller identity token. Used by operator tooling and tests.
func NewToken(secret, subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strings.TrimSpace(subject),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(strings.TrimSpace(secret)))
}

// CallerFrom returns the authenticated caller account id, if any.
func CallerFrom(ctx context.Context) (string, bool) {
	caller, ok := ctx.Value(contextKeyCaller).(string)
	return caller, ok && caller != ""
}

func extractBearer(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
