package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendverify/internal/auth"
	"attendverify/internal/registration"
)

type tokenRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role"`
}

// issueToken exchanges an email for a signed token pair. Real credential
// verification is outside this engine's scope; approved subjects get their
// migrated id and role, anything else falls back to the requested role
// (dev/demo behavior, same spirit as open device registration).
func (h *Handler) issueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subjectID := req.Email
	role := req.Role
	if role == "" {
		role = auth.RoleStudent
	}

	subj, err := h.Registrations.FindSubjectByEmail(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		subjectID = subj.ID
		role = string(subj.Role)
	case !errors.Is(err, registration.ErrSubjectNotFound):
		fail(c, err)
		return
	}

	tokens, err := auth.Issue(subjectID, req.Email, role, h.JWTIssuer, h.JWTSigningKey, h.AccessTTL, h.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
		"role":          role,
		"subject_id":    subjectID,
	})
}
