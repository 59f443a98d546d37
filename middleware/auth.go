package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"dealdrip/utils"
)

// Protected validates the company-scoped API token and stores the company
// ID on the request context.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Try to get token from Authorization header first
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid authorization format",
				})
			}
			token = tokenParts[1]
		} else {
			// Fall back to cookie if header not present
			token = c.Cookies("access_token")
			if token == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authorization required",
				})
			}
		}

		claims, err := utils.ParseJWTToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		if claims.CompanyID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token is not scoped to a company",
			})
		}

		c.Locals("companyID", claims.CompanyID)

		return c.Next()
	}
}

// CompanyID reads the authenticated company from the request context
func CompanyID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("companyID").(uint); ok {
		return id
	}
	return 0
}
