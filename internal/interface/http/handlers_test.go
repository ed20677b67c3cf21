package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landmark-lsms/lsms-backend/internal/domain/admin"
	"github.com/landmark-lsms/lsms-backend/internal/domain/lecturer"
	"github.com/landmark-lsms/lsms-backend/internal/domain/otp"
	"github.com/landmark-lsms/lsms-backend/internal/domain/record"
	"github.com/landmark-lsms/lsms-backend/internal/infrastructure/mail"
	"github.com/landmark-lsms/lsms-backend/internal/infrastructure/persistence/blobfile"
	"github.com/landmark-lsms/lsms-backend/pkg/clock"
)

// newTestServer wires the full stack over a temp-dir blob store with
// mail dropped. The blob store is returned so tests can peek at state
// the API does not expose, like issued OTP codes.
func newTestServer(t *testing.T) (*Server, *blobfile.Store) {
	t.Helper()

	store, err := blobfile.New(t.TempDir(), nil)
	require.NoError(t, err)

	notifier := mail.NewNotifier(mail.Noop{}, "http://localhost:5500/")
	directory := lecturer.NewDirectory(store, notifier, nil)

	deps := Dependencies{
		Roster:     record.NewRoster(store, nil),
		CrossCheck: record.NewCrossCheck(store),
		Directory:  directory,
		Admin:      admin.NewService(store, store, nil),
		OTP:        otp.NewManager(store, directory, notifier, clock.System(), nil),
		Approvals:  notifier,
	}
	return NewServer(DefaultConfig(), deps), store
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestStudentUpsertAndFetch(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/students", map[string]any{
		"level":        "200",
		"roll_number":  42,
		"student_name": "Jane Doe",
		"SWE210_mark":  80,
		"MAE101_mark":  70,
		"SWE200_mark":  90,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Student record added/updated for level 200.", decodeBody(t, rec)["message"])

	rec = doJSON(t, srv, http.MethodGet, "/students/42?level=200", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Jane Doe", body["student_name"])
	assert.Equal(t, "200", body["level"])

	rec = doJSON(t, srv, http.MethodGet, "/students/42/average?level=200", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 80.0, decodeBody(t, rec)["average"], 1e-9)
}

func TestStudentUpsertOutOfRangeRoll(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/students", map[string]any{
		"level":        "200",
		"roll_number":  250,
		"student_name": "Jane Doe",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Roll number for level 200 must be between 1 and 199.",
		decodeBody(t, rec)["error"])
}

func TestStudentUpsertInvalidLevel(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, level := range []any{"500", nil, 200} {
		rec := doJSON(t, srv, http.MethodPost, "/students", map[string]any{
			"level":        level,
			"roll_number":  42,
			"student_name": "Jane Doe",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid or missing level.", decodeBody(t, rec)["error"])
	}
}

func TestStudentNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/students/42?level=200", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Student not found", decodeBody(t, rec)["error"])
}

func TestListStudentsEmptyPartition(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/students?level=300", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestClassList(t *testing.T) {
	srv, _ := newTestServer(t)

	for i, name := range []string{"A", "B"} {
		rec := doJSON(t, srv, http.MethodPost, "/students", map[string]any{
			"level":        "200",
			"roll_number":  i + 1,
			"student_name": name,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/class-list?level=200", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
}

func TestCrossCheckStatuses(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/students", map[string]any{
		"level":        "300",
		"roll_number":  250,
		"student_name": "Jane Doe",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	cases := []struct {
		name   string
		roll   any
		status string
		file   string
	}{
		{"jane doe", 250, "success", "students lv 300.json"},
		{"Jane Doe", "250", "success", "students lv 300.json"},
		{"Jane Doe", 251, "roll_mismatch", ""},
		{"Nobody", 250, "not_found", ""},
		{"", 250, "invalid", ""},
	}
	for _, tc := range cases {
		rec := doJSON(t, srv, http.MethodPost, "/api/student-validate", map[string]any{
			"name":        tc.name,
			"roll_number": tc.roll,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, tc.status, body["status"], "name=%q roll=%v", tc.name, tc.roll)
		if tc.file != "" {
			assert.Equal(t, tc.file, body["foundFile"])
		} else {
			assert.NotContains(t, body, "foundFile")
		}
	}
}

func TestCrossCheckMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/student-validate",
		bytes.NewBufferString("{nonsense"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "invalid", decodeBody(t, rec)["status"])
}

func TestPartitionSearchAndAverage(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/students", map[string]any{
		"level":        "200",
		"roll_number":  42,
		"student_name": "Jane Doe",
		"SWE210_mark":  60,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/student-search-file", map[string]any{
		"level":       "200",
		"roll_number": "42",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane Doe", decodeBody(t, rec)["student_name"])

	rec = doJSON(t, srv, http.MethodPost, "/api/student-average-file", map[string]any{
		"level":       "200",
		"roll_number": "42",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 20.0, decodeBody(t, rec)["average"], 1e-9)

	rec = doJSON(t, srv, http.MethodPost, "/api/student-search-file", map[string]any{
		"level": "200",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required.", decodeBody(t, rec)["error"])
}

func TestLecturerSignupAndLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/lecturer/signup", map[string]any{
		"lec_name":        "Dr. Jane",
		"signin_email":    "jane@example.edu",
		"signin_password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeBody(t, rec)["success"])

	// Duplicate email, case-insensitive.
	rec = doJSON(t, srv, http.MethodPost, "/api/lecturer/signup", map[string]any{
		"lec_name":        "Imposter",
		"signin_email":    "JANE@example.edu",
		"signin_password": "other",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already exists.", decodeBody(t, rec)["error"])

	rec = doJSON(t, srv, http.MethodPost, "/api/lecturer/login", map[string]any{
		"signin_email":    "jane@example.edu",
		"signin_password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dr. Jane", decodeBody(t, rec)["lec_name"])

	rec = doJSON(t, srv, http.MethodPost, "/api/lecturer/login", map[string]any{
		"signin_email":    "jane@example.edu",
		"signin_password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password.", decodeBody(t, rec)["error"])
}

func TestLecturerCheckEmail(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/lecturer/signup", map[string]any{
		"lec_name":        "Dr. Jane",
		"signin_email":    "jane@example.edu",
		"signin_password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/lecturer/check-email", map[string]any{
		"email": "Jane@Example.edu",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["exists"])

	rec = doJSON(t, srv, http.MethodPost, "/api/lecturer/check-email", map[string]any{
		"email": "nobody@example.edu",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["exists"])
}

func TestOTPFlow(t *testing.T) {
	srv, store := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/lecturer/signup", map[string]any{
		"lec_name":        "Dr. Jane",
		"signin_email":    "jane@example.edu",
		"signin_password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/lecturer/send-otp", map[string]any{
		"email": "jane@example.edu",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])

	// The issued code is in the challenge store, not the response.
	challenge, ok, err := store.Get(context.Background(), otp.Key("jane@example.edu"))
	require.NoError(t, err)
	require.True(t, ok)

	rec = doJSON(t, srv, http.MethodPost, "/api/lecturer/validate-otp", map[string]any{
		"email": "jane@example.edu",
		"otp":   "0000",
	})
	if challenge.Code != "0000" {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Incorrect OTP.", decodeBody(t, rec)["error"])
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/lecturer/validate-otp", map[string]any{
		"email": "jane@example.edu",
		"otp":   challenge.Code,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])

	// Single use.
	rec = doJSON(t, srv, http.MethodPost, "/api/lecturer/validate-otp", map[string]any{
		"email": "jane@example.edu",
		"otp":   challenge.Code,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No OTP found. Please request a new code.", decodeBody(t, rec)["error"])
}

func TestOTPUnknownEmail(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/lecturer/send-otp", map[string]any{
		"email": "nobody@example.edu",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Lecturer email not found.", decodeBody(t, rec)["error"])
}

func TestAdminBootstrapFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/admin/exists", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["exists"])

	rec = doJSON(t, srv, http.MethodPost, "/api/lecturer/signup", map[string]any{
		"lec_name":        "Dr. Jane",
		"signin_email":    "jane@example.edu",
		"signin_password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/admin/copy", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/admin/exists", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["exists"])

	rec = doJSON(t, srv, http.MethodPost, "/api/admin/check-pass", map[string]any{"pass": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])

	rec = doJSON(t, srv, http.MethodPost, "/api/admin/check-pass", map[string]any{"pass": "wrong"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["success"])
}

func TestApprovalRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	image := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	rec := doJSON(t, srv, http.MethodPost, "/api/send-approval-email", map[string]any{
		"adminEmail": "admin@example.edu",
		"userEmail":  "jane@example.edu",
		"image":      image,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeBody(t, rec)["success"])

	rec = doJSON(t, srv, http.MethodPost, "/api/send-approval-email", map[string]any{
		"adminEmail": "admin@example.edu",
		"userEmail":  "jane@example.edu",
		"image":      "not a data url",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid image data", decodeBody(t, rec)["error"])
}

func TestDecodeDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8})
	att, err := decodeDataURL(fmt.Sprintf("data:image/jpeg;base64,%s", payload))
	require.NoError(t, err)
	assert.Equal(t, "lecturer_id.jpeg", att.Filename)
	assert.Equal(t, "image/jpeg", att.MIMEType)
	assert.Equal(t, []byte{0xFF, 0xD8}, att.Content)

	_, err = decodeDataURL("data:image/png,unencoded")
	assert.Error(t, err)
	_, err = decodeDataURL("image/png;base64,AAAA")
	assert.Error(t, err)
	_, err = decodeDataURL("data:image/png;base64,@@@")
	assert.Error(t, err)
}
