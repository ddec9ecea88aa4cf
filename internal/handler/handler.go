// Package handler exposes the portal over HTTP.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"studio/internal/advice"
	"studio/internal/auth"
	"studio/internal/cloudinary"
	"studio/internal/model"
	"studio/internal/portal"
	"studio/internal/store"
)

// Uploader stores media and returns its public URL.
type Uploader interface {
	UploadDataURL(ctx context.Context, subfolder, data string) (*cloudinary.UploadResult, error)
	UploadFile(ctx context.Context, subfolder, filename string, r io.Reader) (*cloudinary.UploadResult, error)
}

// Pinger reports the health of a dependency.
type Pinger interface {
	Healthy(ctx context.Context) bool
}

// Deps are the collaborators of Handler. Uploader and Redis may be nil.
type Deps struct {
	Portal   *portal.Service
	Advice   *advice.Service
	Issuer   *auth.Issuer
	Uploader Uploader
	Redis    Pinger
	Log      zerolog.Logger
}

type Handler struct {
	portal   *portal.Service
	advice   *advice.Service
	issuer   *auth.Issuer
	uploader Uploader
	redis    Pinger
	log      zerolog.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		portal:   d.Portal,
		advice:   d.Advice,
		issuer:   d.Issuer,
		uploader: d.Uploader,
		redis:    d.Redis,
		log:      d.Log.With().Str("component", "http").Logger(),
	}
}

// Register mounts every route on r. limiter runs after authentication so signed-in
// callers are limited per user.
func (h *Handler) Register(r gin.IRouter, limiter gin.HandlerFunc) {
	r.GET("/healthz", h.Healthz)

	pub := r.Group("/v1")
	pub.GET("/syllabus", h.Syllabus)
	pub.GET("/gallery", h.Gallery)
	pub.POST("/auth/login", limiter, h.Login)
	pub.POST("/auth/refresh", limiter, h.Refresh)

	v1 := r.Group("/v1", auth.Bearer(h.issuer), limiter)
	staff := auth.RequireRole(model.RoleTeacher, model.RoleAdmin)

	v1.GET("/me", h.Me)
	v1.PATCH("/me", h.UpdateMe)
	v1.PUT("/me/password", h.ChangePassword)

	v1.GET("/students", staff, h.ListStudents)
	v1.POST("/students", auth.RequireRole(model.RoleAdmin), h.AddStudent)
	v1.GET("/students/:id", h.GetStudent)
	v1.GET("/students/:id/logs", h.StudentLogs)
	v1.GET("/students/:id/artworks", h.StudentArtworks)
	v1.POST("/students/:id/artworks", h.AddArtwork)
	v1.GET("/teachers", h.ListTeachers)

	v1.GET("/logs", staff, h.ListLogs)
	v1.POST("/logs", staff, h.AddLog)
	v1.GET("/announcements", h.ListAnnouncements)
	v1.POST("/announcements", staff, h.AddAnnouncement)

	v1.GET("/contacts", h.Contacts)
	v1.GET("/conversations/:peer", h.Conversation)
	v1.POST("/conversations/:peer", h.SendMessage)
	v1.POST("/conversations/:peer/read", h.MarkRead)
	v1.GET("/notifications", h.Notifications)
	v1.DELETE("/notifications/:kind", h.ClearNotifications)

	v1.POST("/advice", h.Advice)
	v1.POST("/uploads", h.Upload)
}

func (h *Handler) Healthz(c *gin.Context) {
	body := gin.H{"status": "ok"}
	status := http.StatusOK
	if h.redis != nil {
		healthy := h.redis.Healthy(c.Request.Context())
		body["redis"] = healthy
		if !healthy {
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, body)
}

func caller(c *gin.Context) auth.Claims {
	claims, _ := auth.ClaimsFrom(c)
	return claims
}

// canSeeStudent lets parents reach only their own student; staff reach everyone.
func canSeeStudent(claims auth.Claims, studentID string) bool {
	switch claims.Role {
	case model.RoleTeacher, model.RoleAdmin:
		return true
	case model.RoleParent:
		return claims.Subject == studentID
	}
	return false
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// fail maps domain errors onto HTTP statuses.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateID):
		status = http.StatusConflict
	case errors.Is(err, portal.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, portal.ErrProfileReadOnly):
		status = http.StatusForbidden
	case errors.Is(err, portal.ErrEmptyPassword),
		errors.Is(err, portal.ErrNoStudents),
		errors.Is(err, portal.ErrEmptyMessage),
		errors.Is(err, portal.ErrUnknownRole),
		errors.Is(err, cloudinary.ErrEmptyFile):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
