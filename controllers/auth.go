package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/wellness-portal/auth"
	"github.com/meinhoongagan/wellness-portal/middleware"
	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/utils"
)

type AuthHandler struct {
	accounts      *auth.Service
	secureCookies bool
}

func NewAuthHandler(accounts *auth.Service, secureCookies bool) *AuthHandler {
	return &AuthHandler{accounts: accounts, secureCookies: secureCookies}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register handles client sign-up.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in auth.RegisterInput
	if err := ParseBody(c, &in); err != nil {
		return utils.Fail(c, err)
	}
	user, err := h.accounts.Register(c.UserContext(), in)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusCreated, user)
}

// Login opens a session and sets the session cookie; with "remember" the
// remember cookie is set as well.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := ParseBody(c, &req); err != nil {
		return utils.Fail(c, err)
	}
	if req.Email == "" || req.Password == "" {
		return utils.Fail(c, utils.Validation("Email and password are required"))
	}

	res, err := h.accounts.Login(c.UserContext(), req.Email, req.Password, req.Remember)
	if err != nil {
		return utils.Fail(c, err)
	}

	middleware.SetSessionCookie(c, res.Token, res.Session.ExpiresAt, h.secureCookies)
	if res.RememberToken != "" {
		middleware.SetRememberCookie(c, res.RememberToken, *res.User.RememberExpiresAt, h.secureCookies)
	}
	return utils.OK(c, fiber.StatusOK, sessionResponse{
		Token:     res.Token,
		ExpiresAt: res.Session.ExpiresAt,
		User:      res.User,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.accounts.Logout(c.UserContext(), Session(c)); err != nil {
		return utils.Fail(c, err)
	}
	middleware.ClearSessionCookies(c, h.secureCookies)
	return utils.OK(c, fiber.StatusOK, fiber.Map{"message": "Successfully logged out"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.accounts.Me(c.UserContext(), Session(c).UserID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var in auth.ProfileInput
	if err := ParseBody(c, &in); err != nil {
		return utils.Fail(c, err)
	}
	user, err := h.accounts.UpdateProfile(c.UserContext(), Session(c).UserID, in)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := ParseBody(c, &req); err != nil {
		return utils.Fail(c, err)
	}
	if err := h.accounts.ChangePassword(c.UserContext(), Session(c).UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return utils.Fail(c, err)
	}
	middleware.ClearSessionCookies(c, h.secureCookies)
	if err := h.accounts.Logout(c.UserContext(), Session(c)); err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, fiber.Map{"message": "Password changed, please log in again"})
}

// ForgotPassword always answers the same way so it cannot be used to probe
// for accounts.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := ParseBody(c, &req); err != nil {
		return utils.Fail(c, err)
	}
	if err := h.accounts.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, fiber.Map{
		"message": "If the email is registered, a reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := ParseBody(c, &req); err != nil {
		return utils.Fail(c, err)
	}
	if err := h.accounts.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, fiber.Map{"message": "Password has been reset"})
}
