package rbac

import (
	"net/http"

	"workshop-intake/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireWorkshop enforces the tenant invariant: workshop_id must exist in context.
// Route handlers that take a workshop id parameter must additionally check it
// against the token's workshop (admin excepted).
func RequireWorkshop() gin.HandlerFunc {
	return func(c *gin.Context) {
		wid, err := auth.WorkshopID(c.Request.Context())
		if err != nil || wid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workshop_id required"})
			return
		}
		c.Next()
	}
}

// RequireAnyRole allows access if the caller has any of the provided roles.
// admin bypasses all checks.
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role required"})
			return
		}

		if IsAdmin(role) {
			c.Next()
			return
		}

		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// CanAccessWorkshop reports whether the caller identity may read data for the
// given workshop. Admin tokens may read any workshop.
func CanAccessWorkshop(tokenWorkshopID, role, targetWorkshopID string) bool {
	if IsAdmin(role) {
		return true
	}
	return tokenWorkshopID != "" && tokenWorkshopID == targetWorkshopID
}
