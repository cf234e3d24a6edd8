package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie carrying the session JWT.
const SessionCookieName = "token"

// SessionCookies writes and clears the session cookie with environment
// dependent attributes. The cookie Max-Age is derived from the token TTL so
// the browser drops the cookie when the token inside it expires.
type SessionCookies struct {
	production bool
	maxAge     int
}

// NewSessionCookies builds the cookie writer for the given session lifetime.
func NewSessionCookies(production bool, ttl time.Duration) *SessionCookies {
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	return &SessionCookies{production: production, maxAge: int(ttl.Seconds())}
}

// Attach sets the session cookie on the response. Cross-site frontends need
// SameSite=None in production; development stays on Lax.
func (s *SessionCookies) Attach(c *fiber.Ctx, token string) {
	c.Cookie(s.build(token, s.defaultSameSite()))
}

// AttachStrict sets the session cookie with SameSite=Strict in production.
// The verify-email flow ships with this stricter attribute; whether that
// difference is intentional is an open product question, so it is preserved.
func (s *SessionCookies) AttachStrict(c *fiber.Ctx, token string) {
	sameSite := fiber.CookieSameSiteLaxMode
	if s.production {
		sameSite = fiber.CookieSameSiteStrictMode
	}
	c.Cookie(s.build(token, sameSite))
}

// Clear removes the session cookie using attribute-compatible expiry.
func (s *SessionCookies) Clear(c *fiber.Ctx) {
	cookie := s.build("", s.defaultSameSite())
	cookie.MaxAge = 0
	cookie.Expires = time.Unix(0, 0)
	c.Cookie(cookie)
}

func (s *SessionCookies) defaultSameSite() string {
	if s.production {
		return fiber.CookieSameSiteNoneMode
	}
	return fiber.CookieSameSiteLaxMode
}

func (s *SessionCookies) build(token, sameSite string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   s.maxAge,
		HTTPOnly: true,
		Secure:   s.production,
		SameSite: sameSite,
	}
}
