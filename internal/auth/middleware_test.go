package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestRequireUserRedirectsAnonymous(t *testing.T) {
	app := fiber.New()
	app.Get("/new", RequireUser("secret"), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/new?draft=1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if location != "/auth/login?next=%2Fnew%3Fdraft%3D1" {
		t.Fatalf("unexpected login redirect: %s", location)
	}
}

func TestRequireUserAcceptsCookie(t *testing.T) {
	svc := NewService("secret", nil)
	token, err := svc.signToken("user-1", "leo", accessTokenTTL)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	app := fiber.New()
	app.Get("/new", RequireUser("secret"), func(c *fiber.Ctx) error {
		if c.Locals("user_id") != "user-1" || c.Locals("username") != "leo" {
			return fiber.NewError(fiber.StatusInternalServerError, "missing locals")
		}
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/new", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok with cookie token")
	}
}

func TestRequireUserAcceptsBearer(t *testing.T) {
	svc := NewService("secret", nil)
	token, _ := svc.signToken("user-1", "leo", accessTokenTTL)

	app := fiber.New()
	app.Get("/new", RequireUser("secret"), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/new", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok with bearer token")
	}
}

func TestRequireUserRejectsForgedToken(t *testing.T) {
	other := NewService("other", nil)
	token, _ := other.signToken("user-1", "leo", accessTokenTTL)

	app := fiber.New()
	app.Get("/new", RequireUser("secret"), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/new", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect for forged token, got %d", resp.StatusCode)
	}
}

func TestOptionalUserNeverBlocks(t *testing.T) {
	svc := NewService("secret", nil)
	token, _ := svc.signToken("user-1", "leo", accessTokenTTL)

	app := fiber.New()
	app.Get("/profile", OptionalUser("secret"), func(c *fiber.Ctx) error {
		if _, ok := c.Locals("user_id").(string); ok {
			return c.SendString("known")
		}
		return c.SendString("anonymous")
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok for anonymous viewer")
	}

	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok for known viewer")
	}
}

func TestBearerFromHeader(t *testing.T) {
	if bearerFromHeader("Bearer abc") != "abc" {
		t.Fatalf("expected token from bearer header")
	}
	if bearerFromHeader("Basic abc") != "" {
		t.Fatalf("expected empty for non-bearer scheme")
	}
	if bearerFromHeader("") != "" {
		t.Fatalf("expected empty for missing header")
	}
}
