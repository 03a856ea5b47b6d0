package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendverify/internal/attendance"
	"attendverify/internal/auth"
	"attendverify/internal/bus"
	"attendverify/internal/registration"
	"attendverify/internal/session"
	"attendverify/internal/verifier"
)

const (
	testIssuer = "attendverify-test"
	testKey    = "test-signing-key"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessionStore := session.NewMemoryStore()
	changeBus := bus.NewMemory()
	collector := attendance.NewCollector(
		verifier.NewFace("", true),
		verifier.NewLiveness("", true),
		time.Second, nil)

	h := &Handler{
		Sessions:      session.NewManager(sessionStore, changeBus, 100),
		Attendance:    attendance.NewService(sessionStore, attendance.NewMemoryLedger(), collector, changeBus, 10*time.Minute, nil),
		Registrations: registration.NewService(registration.NewMemoryStore(), changeBus),
		Bus:           changeBus,
		JWTIssuer:     testIssuer,
		JWTSigningKey: testKey,
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}

	r := gin.New()
	h.Register(r)
	return r
}

func bearerFor(t *testing.T, subjectID, email, role string) string {
	t.Helper()
	tokens, err := auth.Issue(subjectID, email, role, testIssuer, testKey, time.Hour, 24*time.Hour)
	require.NoError(t, err)
	return "Bearer " + tokens.AccessToken
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitAttendanceOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	faculty := bearerFor(t, "fac1", "fac1@campus.edu", auth.RoleFaculty)
	student := bearerFor(t, "stu1", "stu1@campus.edu", auth.RoleStudent)

	now := time.Now().UTC()
	w := doJSON(t, r, http.MethodPost, "/v1/sessions", faculty, gin.H{
		"class_id":           "TY-A",
		"session_name":       "Morning Lecture",
		"session_date":       now,
		"start_time":         now.Add(-time.Minute),
		"end_time":           now.Add(time.Hour),
		"location_latitude":  19.0761,
		"location_longitude": 72.8774,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sess session.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.ID)

	w = doJSON(t, r, http.MethodPost, "/v1/sessions/"+sess.ID+"/attendance", student, gin.H{
		"latitude":  19.0761,
		"longitude": 72.8774,
		"image_url": "https://img.example/selfie.jpg",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Record   attendance.Record `json:"record"`
		Status   attendance.Status `json:"status"`
		Failures []string          `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, attendance.StatusPresent, resp.Status)
	assert.Equal(t, "stu1", resp.Record.SubjectID)
	assert.Empty(t, resp.Failures)
}

func TestSubmitAttendanceOutsideFenceIsAbsentWithReason(t *testing.T) {
	r := newTestRouter(t)
	faculty := bearerFor(t, "fac1", "fac1@campus.edu", auth.RoleFaculty)
	student := bearerFor(t, "stu1", "stu1@campus.edu", auth.RoleStudent)

	now := time.Now().UTC()
	w := doJSON(t, r, http.MethodPost, "/v1/sessions", faculty, gin.H{
		"class_id":           "TY-A",
		"session_name":       "Morning Lecture",
		"session_date":       now,
		"start_time":         now.Add(-time.Minute),
		"end_time":           now.Add(time.Hour),
		"location_latitude":  19.0761,
		"location_longitude": 72.8774,
		"geo_fence_radius":   50,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sess session.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))

	// Roughly one degree of longitude away, far outside 50m.
	w = doJSON(t, r, http.MethodPost, "/v1/sessions/"+sess.ID+"/attendance", student, gin.H{
		"latitude":  19.0761,
		"longitude": 73.8774,
		"image_url": "https://img.example/selfie.jpg",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Status   attendance.Status `json:"status"`
		Failures []string          `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, attendance.StatusAbsent, resp.Status)
	require.Len(t, resp.Failures, 1)
	assert.Contains(t, resp.Failures[0], "outside allowed radius")
}

func TestSubmitAttendanceRequiresToken(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/v1/sessions/s1/attendance", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateSessionForbiddenForStudents(t *testing.T) {
	r := newTestRouter(t)
	student := bearerFor(t, "stu1", "stu1@campus.edu", auth.RoleStudent)
	w := doJSON(t, r, http.MethodPost, "/v1/sessions", student, gin.H{})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
