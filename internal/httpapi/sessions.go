package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendverify/internal/auth"
	"attendverify/internal/geofence"
	"attendverify/internal/session"
)

type createSessionRequest struct {
	ClassID   string    `json:"class_id" binding:"required"`
	Name      string    `json:"session_name" binding:"required"`
	Date      time.Time `json:"session_date" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`

	Latitude     *float64 `json:"location_latitude"`
	Longitude    *float64 `json:"location_longitude"`
	FenceRadiusM *float64 `json:"geo_fence_radius"`

	RequireFace     *bool `json:"require_face_recognition"`
	RequireGeo      *bool `json:"require_geo_fencing"`
	RequireLiveness *bool `json:"require_liveness_detection"`
}

func (h *Handler) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := session.CreateParams{
		ClassID:         req.ClassID,
		FacultyID:       auth.FromContext(c).Subject,
		Name:            req.Name,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		FenceRadiusM:    req.FenceRadiusM,
		RequireFace:     req.RequireFace,
		RequireGeo:      req.RequireGeo,
		RequireLiveness: req.RequireLiveness,
	}
	if req.Latitude != nil && req.Longitude != nil {
		params.Center = &geofence.Point{Lat: *req.Latitude, Lon: *req.Longitude}
	}

	s, err := h.Sessions.Create(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) getSession(c *gin.Context) {
	s, err := h.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) listSessions(c *gin.Context) {
	ctx := c.Request.Context()
	if classID := c.Query("class_id"); classID != "" {
		sessions, err := h.Sessions.ListActiveByClass(ctx, classID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": sessions})
		return
	}
	facultyID := c.Query("faculty_id")
	if facultyID == "" {
		facultyID = auth.FromContext(c).Subject
	}
	sessions, err := h.Sessions.ListByFaculty(ctx, facultyID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *Handler) pauseSession(c *gin.Context) {
	h.transition(c, h.Sessions.Pause)
}

func (h *Handler) resumeSession(c *gin.Context) {
	h.transition(c, h.Sessions.Resume)
}

func (h *Handler) endSession(c *gin.Context) {
	h.transition(c, h.Sessions.End)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, id, facultyID string) (session.Session, error)) {
	s, err := fn(c.Request.Context(), c.Param("id"), auth.FromContext(c).Subject)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
