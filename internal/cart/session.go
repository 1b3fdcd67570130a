package cart

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"Storefront/pkg/kit"
)

// Shoppers are anonymous: the service mints a guest token on request and
// the token's subject names the cart. There are no accounts.

type TokenMaker struct {
	secret []byte
	issuer string
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{
		secret: []byte(secret),
		issuer: "storefront-cart",
	}
}

type Claims struct {
	ShopperID string `json:"shopper_id"`
	jwt.RegisteredClaims
}

func (t *TokenMaker) New(shopperID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ShopperID: shopperID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   shopperID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenMaker) Parse(tokenStr string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if c.Issuer != t.issuer {
		return Claims{}, errors.New("invalid issuer")
	}
	if c.ShopperID == "" {
		return Claims{}, errors.New("missing shopper id")
	}

	return c, nil
}

type ctxKey string

const shopperKey ctxKey = "shopper"

func ShopperFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(shopperKey).(string)
	return id, ok
}

// RequireShopper rejects requests without a valid shopper token and puts
// the shopper id in the request context.
func RequireShopper(jwt *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := jwt.Parse(strings.TrimPrefix(authz, "Bearer "))
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), shopperKey, claims.ShopperID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
