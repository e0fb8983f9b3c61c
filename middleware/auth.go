package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"github.com/meinhoongagan/wellness-portal/auth"
	"github.com/meinhoongagan/wellness-portal/utils"
)

const sessionKey = "session"

// Protected requires a session. The session token is read from the
// Authorization header or the session cookie; when it is missing or expired a
// valid remember cookie opens a fresh session instead.
func Protected(issuer *auth.TokenIssuer, accounts *auth.Service, secureCookies bool) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    issuer.Secret(),
		SigningMethod: "HS256",
		TokenLookup:   "header:Authorization,cookie:" + SessionCookie,
		AuthScheme:    "Bearer",
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return utils.Fail(c, utils.Unauthorized("Invalid token"))
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return utils.Fail(c, utils.Unauthorized("Invalid token claims"))
			}
			sess, err := auth.SessionFromClaims(claims)
			if err != nil {
				return utils.Fail(c, utils.Unauthorized("Invalid token claims"))
			}

			if err := accounts.Authorize(c.UserContext(), sess); err != nil {
				if utils.KindOf(err) != utils.KindUnauthorized {
					logrus.WithError(err).Error("session authorization failed")
				}
				return utils.Fail(c, err)
			}

			c.Locals(sessionKey, sess)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			remember := c.Cookies(RememberCookie)
			if remember == "" {
				return utils.Fail(c, utils.Unauthorized("Invalid or expired token"))
			}

			res, restoreErr := accounts.RestoreSession(c.UserContext(), remember)
			if restoreErr != nil {
				ClearSessionCookies(c, secureCookies)
				return utils.Fail(c, restoreErr)
			}
			SetSessionCookie(c, res.Token, res.Session.ExpiresAt, secureCookies)
			SetRememberCookie(c, remember, *res.User.RememberExpiresAt, secureCookies)
			logrus.WithField("user_id", res.Session.UserID).Debug("session restored from remember token")

			c.Locals(sessionKey, res.Session)
			return c.Next()
		},
	})
}

// CurrentSession returns the session Protected stored on c, or nil.
func CurrentSession(c *fiber.Ctx) *auth.Session {
	sess, _ := c.Locals(sessionKey).(*auth.Session)
	return sess
}
