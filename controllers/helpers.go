// Package controllers holds the HTTP handlers shared by every role.
// Role-specific handlers live in the sub-packages.
package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/wellness-portal/auth"
	"github.com/meinhoongagan/wellness-portal/middleware"
	"github.com/meinhoongagan/wellness-portal/utils"
)

// Paged is the data of list endpoints that paginate.
type Paged struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// ParamID reads a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.Validation("Invalid " + name)
	}
	return uint(id), nil
}

// PageParams reads ?page= and ?limit=.
func PageParams(c *fiber.Ctx) (page, limit int) {
	return c.QueryInt("page", 1), c.QueryInt("limit", 20)
}

// Session returns the caller's session. Routes using it sit behind
// middleware.Protected, so it is never nil there.
func Session(c *fiber.Ctx) *auth.Session {
	return middleware.CurrentSession(c)
}

// ParseBody decodes the request body into out.
func ParseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return utils.Validation("Cannot parse request body")
	}
	return nil
}
