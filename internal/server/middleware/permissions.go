package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// IsAdmin reports whether the user carries the admin role.
func IsAdmin(user *AppUser) bool {
	return user != nil && user.Role == "admin"
}

// HasPermission reports whether the user may perform the named action.
// Admins pass every check regardless of their permission claims.
func HasPermission(user *AppUser, permission string) bool {
	if user == nil {
		return false
	}
	if IsAdmin(user) {
		return true
	}
	return slices.Contains(user.Permissions, permission)
}

// HasAnyPermission reports whether the user holds at least one of the
// named permissions.
func HasAnyPermission(user *AppUser, permissions ...string) bool {
	for _, permission := range permissions {
		if HasPermission(user, permission) {
			return true
		}
	}
	return false
}

// RequirePermission guards a route behind one permission.
func RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := c.(*AppContext).User
			if user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}

			if !HasPermission(user, permission) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden: missing permission " + permission})
			}

			return next(c)
		}
	}
}

// RequireAnyPermission guards a route group behind a permission set; one
// match is enough. The aggregate admin group uses it so viewers and
// refreshers share the prefix without sharing each other's actions.
func RequireAnyPermission(permissions ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := c.(*AppContext).User
			if user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}

			if !HasAnyPermission(user, permissions...) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden: missing required permission"})
			}

			return next(c)
		}
	}
}
