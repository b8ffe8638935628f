package handler

import (
	"net/http"

	"github.com/plradhouane-dev/gmao/internal/apierror"
	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/middleware"
	"github.com/plradhouane-dev/gmao/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChangePassword works with either token scope: it is the only mutation
// a password_change token can reach.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := middleware.GetClaims(c)
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("invalid token claims"))
		return
	}
	var req dto.ChangePasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), userID, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "password changed"})
}

// Me returns the session the middleware resolved: identity plus the
// effective permission flags, which the front end uses to hide buttons.
func (h *AuthHandler) Me(c *gin.Context) {
	sess := middleware.GetSession(c)
	c.JSON(http.StatusOK, gin.H{
		"id":       sess.UserID.String(),
		"username": sess.Username,
		"role":     sess.Role,
		"permissions": dto.PermissionsResponse{
			ViewInterventions:   sess.Perms.ViewInterventions,
			AddInterventions:    sess.Perms.AddInterventions,
			EditInterventions:   sess.Perms.EditInterventions,
			DeleteInterventions: sess.Perms.DeleteInterventions,
			ViewStock:           sess.Perms.ViewStock,
			AddStock:            sess.Perms.AddStock,
			EditStock:           sess.Perms.EditStock,
			DeleteStock:         sess.Perms.DeleteStock,
			ManageUsers:         sess.Perms.ManageUsers,
		},
	})
}
