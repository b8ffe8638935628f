package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/plradhouane-dev/gmao/internal/apierror"
	"github.com/plradhouane-dev/gmao/internal/model"
	"github.com/plradhouane-dev/gmao/internal/repository"
	"github.com/plradhouane-dev/gmao/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ClaimsKey  = "claims"
	SessionKey = "session"
)

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}

		claims, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireFullScope rejects tokens issued during the forced
// password-change flow. Only the change-password route skips it.
func RequireFullScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || claims.Scope != service.ScopeFull {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("password change required before using the API"))
			return
		}
		c.Next()
	}
}

// SessionLoader resolves the authenticated user and its permission flags
// from the database on every request, so a flag revoked by an admin takes
// effect immediately rather than at the next login.
func SessionLoader(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid token claims"))
			return
		}

		u, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("account no longer exists"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("internal server error"))
			return
		}
		if !u.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("account is deactivated"))
			return
		}

		sess := &model.Session{
			UserID:   u.ID,
			Username: u.Username,
			Role:     u.Role,
		}
		if u.Permissions != nil {
			sess.Perms = *u.Permissions
		}
		c.Set(SessionKey, sess)
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	claims, _ := c.MustGet(ClaimsKey).(*service.Claims)
	return claims
}

// GetSession retrieves the resolved session from the Gin context.
func GetSession(c *gin.Context) *model.Session {
	sess, _ := c.MustGet(SessionKey).(*model.Session)
	return sess
}
