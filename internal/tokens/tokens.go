// Package tokens issues and verifies the HS256 bearer tokens handed out to
// admins and customers.
package tokens

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"storefront/internal/models"
)

// Kind tells admin tokens apart from customer tokens.
type Kind string

const (
	KindAdmin    Kind = "admin"
	KindCustomer Kind = "customer"
)

// Claims is the verified content of a token.
type Claims struct {
	Subject     uint64
	Kind        Kind
	Username    string
	Email       string
	Role        models.AdminRole
	Permissions []string
	ExpiresAt   time.Time
}

// Issuer signs and verifies tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer whose tokens stay valid for ttl.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns how long issued tokens stay valid.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// IssueAdmin signs a token for an admin. The permissions are copied into the
// token for clients; the guards re-check them against the stored admin.
func (i *Issuer) IssueAdmin(admin *models.Admin) (string, error) {
	perms := make([]string, len(admin.Permissions))
	copy(perms, admin.Permissions)
	return i.sign(jwt.MapClaims{
		"sub":         admin.ID,
		"kind":        string(KindAdmin),
		"username":    admin.Username,
		"role":        string(admin.Role),
		"permissions": perms,
	})
}

// IssueCustomer signs a token for a storefront customer.
func (i *Issuer) IssueCustomer(customer *models.Customer) (string, error) {
	return i.sign(jwt.MapClaims{
		"sub":   customer.ID,
		"kind":  string(KindCustomer),
		"email": customer.Email,
	})
}

func (i *Issuer) sign(claims jwt.MapClaims) (string, error) {
	now := i.now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(i.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry of tokenString and returns its
// claims. Every failure wraps models.ErrUnauthorized.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token: %v", models.ErrUnauthorized, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", models.ErrUnauthorized)
	}

	sub, ok := mc["sub"].(float64)
	if !ok || sub <= 0 {
		return nil, fmt.Errorf("%w: token has no subject", models.ErrUnauthorized)
	}
	claims := &Claims{
		Subject:  uint64(sub),
		Kind:     Kind(stringClaim(mc, "kind")),
		Username: stringClaim(mc, "username"),
		Email:    stringClaim(mc, "email"),
		Role:     models.AdminRole(stringClaim(mc, "role")),
	}
	if exp, ok := mc["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if raw, ok := mc["permissions"].([]interface{}); ok {
		for _, p := range raw {
			if s, ok := p.(string); ok {
				claims.Permissions = append(claims.Permissions, s)
			}
		}
	}
	if claims.Kind != KindAdmin && claims.Kind != KindCustomer {
		return nil, fmt.Errorf("%w: unknown token kind", models.ErrUnauthorized)
	}
	return claims, nil
}

func stringClaim(mc jwt.MapClaims, key string) string {
	s, _ := mc[key].(string)
	return s
}
