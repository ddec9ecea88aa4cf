package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studio/internal/cloudinary"
)

func (h *Handler) Syllabus(c *gin.Context) {
	c.JSON(http.StatusOK, h.portal.Syllabus())
}

func (h *Handler) Gallery(c *gin.Context) {
	c.JSON(http.StatusOK, h.portal.Gallery())
}

type adviceRequest struct {
	Topic    string `json:"topic" binding:"required"`
	ChildAge int    `json:"childAge" binding:"gte=0,lte=18"`
}

// Advice always answers 200; generation failures come back as fallback text.
func (h *Handler) Advice(c *gin.Context) {
	var req adviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"advice": h.advice.Advice(c.Request.Context(), req.Topic, req.ChildAge)})
}

var uploadKinds = map[string]bool{"artworks": true, "logs": true, "profiles": true}

// Upload stores a multipart "file" or a JSON {"data": "<data URL>"} and returns its URL.
// The kind query parameter picks the folder: artworks, logs or profiles.
func (h *Handler) Upload(c *gin.Context) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}
	kind := c.DefaultQuery("kind", "artworks")
	if !uploadKinds[kind] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be artworks, logs or profiles"})
		return
	}

	ctx := c.Request.Context()
	var res *cloudinary.UploadResult
	if strings.Contains(c.ContentType(), "multipart/form-data") {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
			return
		}
		defer file.Close()
		res, err = h.uploader.UploadFile(ctx, kind, header.Filename, file)
		if err != nil {
			h.uploadFailed(c, err)
			return
		}
	} else {
		var body struct {
			Data string `json:"data" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": `provide {"data": "<base64 data URL>"}`})
			return
		}
		var err error
		res, err = h.uploader.UploadDataURL(ctx, kind, body.Data)
		if err != nil {
			h.uploadFailed(c, err)
			return
		}
	}
	c.JSON(http.StatusCreated, gin.H{
		"url":      res.SecureURL,
		"publicId": res.PublicID,
		"width":    res.Width,
		"height":   res.Height,
		"bytes":    res.Bytes,
	})
}

func (h *Handler) uploadFailed(c *gin.Context, err error) {
	if errors.Is(err, cloudinary.ErrEmptyFile) {
		badRequest(c, err)
		return
	}
	h.log.Error().Err(err).Msg("upload failed")
	c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
}
