package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studio/internal/model"
)

func (h *Handler) ListStudents(c *gin.Context) {
	c.JSON(http.StatusOK, h.portal.Students())
}

type addStudentRequest struct {
	ID            string                `json:"id"`
	Name          string                `json:"name" binding:"required"`
	Age           int                   `json:"age" binding:"gte=0"`
	SchoolName    string                `json:"schoolName"`
	Address       string                `json:"address"`
	AdmissionDate string                `json:"admissionDate"`
	CurrentLevel  model.ClassLevel      `json:"currentLevel" binding:"required,min=1,max=7"`
	ProfileImage  string                `json:"profileImage"`
	Schedule      []model.ClassSchedule `json:"schedule"`
}

func (h *Handler) AddStudent(c *gin.Context) {
	var req addStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.portal.AddStudent(model.Student{
		ID:            req.ID,
		Name:          req.Name,
		Age:           req.Age,
		SchoolName:    req.SchoolName,
		Address:       req.Address,
		AdmissionDate: req.AdmissionDate,
		CurrentLevel:  req.CurrentLevel,
		ProfileImage:  req.ProfileImage,
		Schedule:      req.Schedule,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetStudent(c *gin.Context) {
	id := c.Param("id")
	if !canSeeStudent(caller(c), id) {
		forbidden(c)
		return
	}
	st, err := h.portal.StudentByID(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) StudentLogs(c *gin.Context) {
	id := c.Param("id")
	if !canSeeStudent(caller(c), id) {
		forbidden(c)
		return
	}
	c.JSON(http.StatusOK, h.portal.LogsForStudent(id))
}

func (h *Handler) StudentArtworks(c *gin.Context) {
	id := c.Param("id")
	if !canSeeStudent(caller(c), id) {
		forbidden(c)
		return
	}
	c.JSON(http.StatusOK, h.portal.ArtworksForStudent(id))
}

type addArtworkRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl" binding:"required"`
}

func (h *Handler) AddArtwork(c *gin.Context) {
	id := c.Param("id")
	if !canSeeStudent(caller(c), id) {
		forbidden(c)
		return
	}
	var req addArtworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	art, err := h.portal.AddArtwork(c.Request.Context(), model.NewArtwork{
		StudentID:   id,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, art)
}

func (h *Handler) ListTeachers(c *gin.Context) {
	c.JSON(http.StatusOK, h.portal.Teachers())
}
