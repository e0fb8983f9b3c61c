package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionCookie  = "session_token"
	RememberCookie = "remember_token"
)

func SetSessionCookie(c *fiber.Ctx, token string, expires time.Time, secure bool) {
	c.Cookie(cookie(c, SessionCookie, token, expires, secure))
}

func SetRememberCookie(c *fiber.Ctx, token string, expires time.Time, secure bool) {
	c.Cookie(cookie(c, RememberCookie, token, expires, secure))
}

// ClearSessionCookies expires both auth cookies in the browser.
func ClearSessionCookies(c *fiber.Ctx, secure bool) {
	for _, name := range []string{SessionCookie, RememberCookie} {
		ck := cookie(c, name, "", time.Unix(0, 0), secure)
		ck.MaxAge = -1
		c.Cookie(ck)
	}
}

func cookie(c *fiber.Ctx, name, value string, expires time.Time, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   secure || c.Secure(),
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
