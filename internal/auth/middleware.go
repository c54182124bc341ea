package auth

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// LoginPath is where anonymous callers of protected endpoints are sent.
// The original location is carried in the next parameter.
const LoginPath = "/auth/login"

const accessTokenCookie = "access_token"

var parseMiddlewareClaimsFn = jwt.ParseWithClaims

// RequireUser resolves the caller from the access_token cookie or a bearer
// header and redirects anonymous callers to the login endpoint.
func RequireUser(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		claims, ok := claimsFromRequest(c, secretBytes)
		if !ok {
			return redirectToLogin(c)
		}
		c.Locals("user_id", claims.UserID)
		c.Locals("username", claims.Username)
		return c.Next()
	}
}

// OptionalUser resolves the caller when a valid token is present and lets
// the request through either way.
func OptionalUser(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		if claims, ok := claimsFromRequest(c, secretBytes); ok {
			c.Locals("user_id", claims.UserID)
			c.Locals("username", claims.Username)
		}
		return c.Next()
	}
}

func claimsFromRequest(c *fiber.Ctx, secret []byte) (*Claims, bool) {
	token := c.Cookies(accessTokenCookie)
	if token == "" {
		token = bearerFromHeader(c.Get("Authorization"))
	}
	if token == "" {
		return nil, false
	}

	parsed, err := parseMiddlewareClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, false
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, false
	}
	return claims, true
}

func redirectToLogin(c *fiber.Ctx) error {
	next := url.QueryEscape(c.OriginalURL())
	return c.Redirect(LoginPath+"?next="+next, fiber.StatusFound)
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
