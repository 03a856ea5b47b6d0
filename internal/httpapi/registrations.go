package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendverify/internal/auth"
	"attendverify/internal/registration"
)

type submitRegistrationRequest struct {
	Email      string `json:"email" binding:"required"`
	Role       string `json:"role" binding:"required"`
	Name       string `json:"name" binding:"required"`
	PRN        string `json:"prn"`
	ClassID    string `json:"class_id"`
	Department string `json:"department"`
}

func (h *Handler) submitRegistration(c *gin.Context) {
	var req submitRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reg, err := h.Registrations.Submit(c.Request.Context(), registration.PendingRegistration{
		Email:      req.Email,
		Role:       registration.Role(req.Role),
		Name:       req.Name,
		PRN:        req.PRN,
		ClassID:    req.ClassID,
		Department: req.Department,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, reg)
}

func (h *Handler) listRegistrations(c *gin.Context) {
	status := registration.Status(c.DefaultQuery("status", string(registration.StatusPending)))
	regs, err := h.Registrations.ListByStatus(c.Request.Context(), status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registrations": regs})
}

func (h *Handler) approveRegistration(c *gin.Context) {
	reg, subj, err := h.Registrations.Approve(c.Request.Context(), c.Param("id"), auth.FromContext(c).Email)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registration": reg, "subject": subj})
}

type rejectRegistrationRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) rejectRegistration(c *gin.Context) {
	var req rejectRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reg, err := h.Registrations.Reject(c.Request.Context(), c.Param("id"), req.Reason, auth.FromContext(c).Email)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}
