package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

// cookieHeader returns the lowercased Set-Cookie header produced by handler;
// fasthttp is not consistent about attribute casing.
func cookieHeader(t *testing.T, production bool, handler func(*SessionCookies, *fiber.Ctx)) string {
	t.Helper()
	return cookieHeaderTTL(t, production, 168*time.Hour, handler)
}

func cookieHeaderTTL(t *testing.T, production bool, ttl time.Duration, handler func(*SessionCookies, *fiber.Ctx)) string {
	t.Helper()

	cookies := NewSessionCookies(production, ttl)
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		handler(cookies, c)
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()

	return strings.ToLower(resp.Header.Get("Set-Cookie"))
}

func TestAttach_DevelopmentAttributes(t *testing.T) {
	t.Parallel()

	header := cookieHeader(t, false, func(s *SessionCookies, c *fiber.Ctx) {
		s.Attach(c, "tok-value")
	})

	if !strings.HasPrefix(header, "token=tok-value") {
		t.Fatalf("unexpected cookie header: %q", header)
	}
	if !strings.Contains(header, "httponly") {
		t.Fatalf("missing HttpOnly: %q", header)
	}
	if strings.Contains(header, "secure") {
		t.Fatalf("Secure must be off outside production: %q", header)
	}
	if !strings.Contains(header, "samesite=lax") {
		t.Fatalf("expected SameSite=Lax: %q", header)
	}
	if !strings.Contains(header, "max-age=604800") {
		t.Fatalf("expected 7 day max-age: %q", header)
	}
}

func TestAttach_MaxAgeFollowsTokenTTL(t *testing.T) {
	t.Parallel()

	header := cookieHeaderTTL(t, false, 24*time.Hour, func(s *SessionCookies, c *fiber.Ctx) {
		s.Attach(c, "tok-value")
	})

	if !strings.Contains(header, "max-age=86400") {
		t.Fatalf("cookie lifetime must track the token TTL: %q", header)
	}
}

func TestAttach_ProductionAttributes(t *testing.T) {
	t.Parallel()

	header := cookieHeader(t, true, func(s *SessionCookies, c *fiber.Ctx) {
		s.Attach(c, "tok-value")
	})

	if !strings.Contains(header, "secure") {
		t.Fatalf("expected Secure in production: %q", header)
	}
	if !strings.Contains(header, "samesite=none") {
		t.Fatalf("expected SameSite=None in production: %q", header)
	}
}

func TestAttachStrict_ProductionUsesStrict(t *testing.T) {
	t.Parallel()

	header := cookieHeader(t, true, func(s *SessionCookies, c *fiber.Ctx) {
		s.AttachStrict(c, "tok-value")
	})

	if !strings.Contains(header, "samesite=strict") {
		t.Fatalf("expected SameSite=Strict: %q", header)
	}
}

func TestAttachStrict_DevelopmentStaysLax(t *testing.T) {
	t.Parallel()

	header := cookieHeader(t, false, func(s *SessionCookies, c *fiber.Ctx) {
		s.AttachStrict(c, "tok-value")
	})

	if !strings.Contains(header, "samesite=lax") {
		t.Fatalf("expected SameSite=Lax outside production: %q", header)
	}
}

func TestClear_ExpiresCookie(t *testing.T) {
	t.Parallel()

	header := cookieHeader(t, false, func(s *SessionCookies, c *fiber.Ctx) {
		s.Clear(c)
	})

	if !strings.HasPrefix(header, "token=") {
		t.Fatalf("unexpected cookie header: %q", header)
	}
	if !strings.Contains(header, "expires=") {
		t.Fatalf("clear must expire the cookie: %q", header)
	}
	if !strings.Contains(header, "1970") {
		t.Fatalf("expected epoch expiry: %q", header)
	}
}
