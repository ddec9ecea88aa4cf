package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studio/internal/model"
)

func (h *Handler) ListLogs(c *gin.Context) {
	c.JSON(http.StatusOK, h.portal.Logs())
}

type addLogRequest struct {
	StudentIDs          []string `json:"studentIds" binding:"required,min=1"`
	Date                string   `json:"date"`
	EntryTime           string   `json:"entryTime"`
	ExitTime            string   `json:"exitTime"`
	ActivityTitle       string   `json:"activityTitle" binding:"required"`
	ActivityDescription string   `json:"activityDescription"`
	Homework            string   `json:"homework"`
	MediaURLs           []string `json:"mediaUrls"`
	TeacherNote         string   `json:"teacherNote"`
}

func (h *Handler) AddLog(c *gin.Context) {
	var req addLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.portal.AddLog(c.Request.Context(), caller(c).Subject, model.NewLog(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) ListAnnouncements(c *gin.Context) {
	c.JSON(http.StatusOK, h.portal.Announcements(caller(c).Subject))
}

type addAnnouncementRequest struct {
	Title       string         `json:"title" binding:"required"`
	Content     string         `json:"content" binding:"required"`
	Priority    model.Priority `json:"priority" binding:"omitempty,oneof=low high"`
	RecipientID string         `json:"recipientId"`
}

func (h *Handler) AddAnnouncement(c *gin.Context) {
	var req addAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created := h.portal.AddAnnouncement(c.Request.Context(), caller(c).Subject, model.NewAnnouncement(req))
	c.JSON(http.StatusCreated, created)
}
