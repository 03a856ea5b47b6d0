package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendverify/internal/attendance"
	"attendverify/internal/auth"
	"attendverify/internal/bus"
	"attendverify/internal/registration"
	"attendverify/internal/session"
)

// Handler exposes the engine over HTTP.
type Handler struct {
	Sessions      *session.Manager
	Attendance    *attendance.Service
	Registrations *registration.Service
	Bus           bus.Bus

	JWTIssuer     string
	JWTSigningKey string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Register mounts all v1 routes on r.
func (h *Handler) Register(r *gin.Engine) {
	v1 := r.Group("/v1")

	v1.POST("/auth/token", h.issueToken)
	v1.POST("/registrations", h.submitRegistration)

	admin := v1.Group("", auth.RequireAuth(h.JWTSigningKey, h.JWTIssuer, auth.RoleAdmin))
	admin.GET("/registrations", h.listRegistrations)
	admin.POST("/registrations/:id/approve", h.approveRegistration)
	admin.POST("/registrations/:id/reject", h.rejectRegistration)

	faculty := v1.Group("", auth.RequireAuth(h.JWTSigningKey, h.JWTIssuer, auth.RoleFaculty, auth.RoleAdmin))
	faculty.POST("/sessions", h.createSession)
	faculty.POST("/sessions/:id/pause", h.pauseSession)
	faculty.POST("/sessions/:id/resume", h.resumeSession)
	faculty.POST("/sessions/:id/end", h.endSession)
	faculty.GET("/sessions/:id/attendance", h.listAttendance)
	faculty.POST("/sessions/:id/attendance/:subject/override", h.overrideAttendance)

	authed := v1.Group("", auth.RequireAuth(h.JWTSigningKey, h.JWTIssuer))
	authed.GET("/sessions", h.listSessions)
	authed.GET("/sessions/:id", h.getSession)
	authed.GET("/sessions/:id/analytics", h.sessionAnalytics)
	authed.POST("/sessions/:id/attendance", h.submitAttendance)
	authed.GET("/stream", h.stream)
}

// fail maps domain errors onto HTTP statuses with their specific messages.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, registration.ErrNotFound),
		errors.Is(err, registration.ErrSubjectNotFound),
		errors.Is(err, attendance.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, registration.ErrAlreadyReviewed),
		errors.Is(err, attendance.ErrSessionEnded),
		errors.Is(err, attendance.ErrSessionNotActive):
		status = http.StatusConflict
	case errors.Is(err, registration.ErrReasonRequired),
		errors.Is(err, registration.ErrDuplicateEmail):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
