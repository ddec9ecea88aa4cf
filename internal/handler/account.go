package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studio/internal/auth"
	"studio/internal/model"
)

type loginRequest struct {
	Role     model.Role `json:"role" binding:"required"`
	ID       string     `json:"id"`
	Password string     `json:"password" binding:"required"`
}

type sessionResponse struct {
	User   model.User     `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

// Login checks credentials and returns the user with a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.portal.Login(c.Request.Context(), req.Role, req.ID, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	tokens, err := h.issuer.Issue(user.ID, user.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{User: user, Tokens: tokens})
}

// Refresh trades a refresh token for a new pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tokens, _, err := h.issuer.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (h *Handler) Me(c *gin.Context) {
	claims := caller(c)
	user, err := h.portal.Profile(claims.Role, claims.Subject)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe changes the caller's name or photo. Other fields are not part of the patch.
func (h *Handler) UpdateMe(c *gin.Context) {
	var patch model.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	claims := caller(c)
	user, err := h.portal.UpdateProfile(claims.Role, claims.Subject, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.portal.ChangePassword(c.Request.Context(), caller(c).Subject, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

var errForbiddenStudent = errors.New("not allowed to access this student")

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": errForbiddenStudent.Error()})
}
