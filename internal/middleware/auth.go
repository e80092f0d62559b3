package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

const CtxOwnerIDKey = "owner_id"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims identify the user every request acts for. Tokens are issued by the
// account service that owns logins; this service only verifies them.
type Claims struct {
	UserID uint `json:"user_id"`
	jwtlib.RegisteredClaims
}

type TokenVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), now: time.Now}
}

// Issue signs an HS256 token for userID. Used by the CLI and tests.
func (v *TokenVerifier) Issue(userID uint, ttl time.Duration) (string, error) {
	now := v.now().UTC()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *TokenVerifier) Verify(tokenString string) (Claims, error) {
	p := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(v.now),
	)

	var c Claims
	tok, err := p.ParseWithClaims(tokenString, &c, func(*jwtlib.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if tok == nil || !tok.Valid || c.UserID == 0 {
		return Claims{}, ErrTokenInvalid
	}

	return c, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// owner id in the request locals.
func RequireAuth(v *TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c, "Unauthorized")
		}

		claims, err := v.Verify(token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				return unauthorized(c, "Token expired")
			}
			return unauthorized(c, "Invalid token")
		}

		c.Locals(CtxOwnerIDKey, claims.UserID)
		return c.Next()
	}
}

// OwnerID returns the authenticated user. It is zero outside RequireAuth.
func OwnerID(c *fiber.Ctx) uint {
	id, _ := c.Locals(CtxOwnerIDKey).(uint)
	return id
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": msg,
		"kind":  "unauthorized",
		"code":  fiber.StatusUnauthorized,
	})
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
