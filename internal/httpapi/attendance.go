package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendverify/internal/attendance"
	"attendverify/internal/auth"
)

type submitAttendanceRequest struct {
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	ImageURL   string   `json:"image_url"`
	DeviceInfo string   `json:"device_info"`
}

func (h *Handler) submitAttendance(c *gin.Context) {
	var req submitAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := auth.FromContext(c)
	kind := attendance.SubjectStudent
	if claims.Role == auth.RoleFaculty {
		kind = attendance.SubjectFaculty
	}

	sub := attendance.Submission{
		SessionID:   c.Param("id"),
		SubjectID:   claims.Subject,
		SubjectKind: kind,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ImageURL:    req.ImageURL,
		DeviceInfo:  req.DeviceInfo,
		IPAddress:   c.ClientIP(),
	}

	rec, vector, err := h.Attendance.Submit(c.Request.Context(), sub)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record":   rec,
		"status":   rec.Status,
		"failures": failureReasons(vector),
	})
}

// failureReasons renders per-check failures the way a subject sees them:
// specific, including the measured distance for geo.
func failureReasons(v attendance.ResultVector) []string {
	var out []string
	switch v.FaceCause {
	case attendance.CauseMismatch:
		out = append(out, "face did not match enrolled face")
	case attendance.CauseUnavailable:
		out = append(out, "face verification unavailable, submission failed closed")
	}
	switch v.GeoCause {
	case attendance.CauseMismatch:
		if v.DistanceM != nil {
			out = append(out, fmt.Sprintf("location outside allowed radius (distance %.0fm)", *v.DistanceM))
		} else {
			out = append(out, "location outside allowed radius")
		}
	case attendance.CauseUnavailable:
		out = append(out, "location could not be verified, submission failed closed")
	}
	switch v.LivenessCause {
	case attendance.CauseMismatch:
		out = append(out, "liveness check failed")
	case attendance.CauseUnavailable:
		out = append(out, "liveness verification unavailable, submission failed closed")
	}
	return out
}

func (h *Handler) listAttendance(c *gin.Context) {
	records, err := h.Attendance.Records(c.Request.Context(), c.Param("id"), auth.FromContext(c).Subject)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

type overrideRequest struct {
	Status      string `json:"attendance_status" binding:"required"`
	SubjectKind string `json:"subject_kind"`
}

func (h *Handler) overrideAttendance(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := attendance.Status(req.Status)
	switch status {
	case attendance.StatusPresent, attendance.StatusAbsent, attendance.StatusLate, attendance.StatusExcused:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown attendance status"})
		return
	}
	kind := attendance.SubjectKind(req.SubjectKind)
	if kind == "" {
		kind = attendance.SubjectStudent
	}

	rec, err := h.Attendance.Override(c.Request.Context(), c.Param("id"), auth.FromContext(c).Subject, c.Param("subject"), kind, status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) sessionAnalytics(c *gin.Context) {
	summary, err := h.Attendance.Analytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
