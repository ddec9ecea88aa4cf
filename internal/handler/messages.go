package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studio/internal/model"
	"studio/internal/queue"
)

type contactView struct {
	model.Contact
	LastMessage *model.DirectMessage `json:"lastMessage,omitempty"`
}

// Contacts lists who the caller may chat with, each with the newest message of the conversation.
func (h *Handler) Contacts(c *gin.Context) {
	claims := caller(c)
	contacts := h.portal.Contacts(claims.Role)
	out := make([]contactView, 0, len(contacts))
	for _, ct := range contacts {
		v := contactView{Contact: ct}
		if last, ok := h.portal.LastMessage(claims.Subject, ct.ID); ok {
			v.LastMessage = &last
		}
		out = append(out, v)
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Conversation(c *gin.Context) {
	c.JSON(http.StatusOK, h.portal.MessagesBetween(caller(c).Subject, c.Param("peer")))
}

func (h *Handler) SendMessage(c *gin.Context) {
	peer := c.Param("peer")
	if !h.portal.UserExists(peer) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown recipient"})
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	msg, err := h.portal.SendMessage(c.Request.Context(), caller(c).Subject, peer, req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) MarkRead(c *gin.Context) {
	n := h.portal.MarkConversationRead(c.Request.Context(), caller(c).Subject, c.Param("peer"))
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *Handler) Notifications(c *gin.Context) {
	counts, err := h.portal.Notifications(c.Request.Context(), caller(c).Subject)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) ClearNotifications(c *gin.Context) {
	kind := c.Param("kind")
	switch kind {
	case queue.KindMessage, queue.KindLog, queue.KindAnnouncement:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown notification kind"})
		return
	}
	if err := h.portal.ClearNotifications(c.Request.Context(), caller(c).Subject, kind); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
