package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/auth"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/handler/http/middleware"
	"github.com/niwaya/kintai-backend/internal/handler/http/response"
	"github.com/niwaya/kintai-backend/internal/pkg/jwt"
	"github.com/niwaya/kintai-backend/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	applicantID = "0192b3c4-0000-7000-8000-000000000001"
	colleagueID = "0192b3c4-0000-7000-8000-000000000002"
	requestID   = "0192b3c4-0000-7000-8000-0000000000aa"
)

type stubRequests struct {
	request.RequestService
	created request.Draftable
}

func (s *stubRequests) Get(_ context.Context, actor user.Actor, id string) (request.RequestResponse, error) {
	if id != requestID {
		return request.RequestResponse{}, request.ErrRequestNotFound
	}
	if actor.ID != applicantID && !actor.CanApprove() {
		return request.RequestResponse{}, request.ErrAccessDenied
	}
	return request.RequestResponse{ID: id, ApplicantID: applicantID, Status: string(request.StatusApplied)}, nil
}

func (s *stubRequests) Create(_ context.Context, actor user.Actor, payload request.Draftable) (request.RequestResponse, error) {
	if err := payload.Validate(); err != nil {
		return request.RequestResponse{}, err
	}
	s.created = payload
	return request.RequestResponse{ID: requestID, ApplicantID: actor.ID, Status: string(request.StatusDraft)}, nil
}

type stubAuth struct {
	auth.AuthService
	jwt jwt.Service
}

func (s *stubAuth) Login(_ context.Context, _ auth.LoginRequest) (auth.TokenResponse, error) {
	return auth.TokenResponse{}, auth.ErrInvalidCredentials
}

func (s *stubAuth) Logout(_ context.Context, token string, expiresAt int64) error {
	s.jwt.RevokeToken(token, expiresAt)
	return nil
}

type testServer struct {
	router   http.Handler
	jwt      *jwt.JWTService
	requests *stubRequests
	metrics  *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jwtService := jwt.NewJWTService("router-test-secret", time.Hour)
	requests := &stubRequests{}
	m := metrics.New()

	limiter, err := middleware.NewLoginLimiter("3-M")
	require.NoError(t, err)

	router := NewRouter(RouterOptions{
		AllowedOrigins: []string{"http://localhost:3000"},
		Metrics:        m,
		LoginLimiter:   limiter,
	}, jwtService, Handlers{
		Auth:         NewAuthHandler(&stubAuth{jwt: jwtService}),
		User:         NewUserHandler(nil),
		Request:      NewRequestHandler(requests, 1<<20),
		Attendance:   NewAttendanceHandler(nil, nil),
		DailyReport:  NewDailyReportHandler(nil),
		Report:       NewReportHandler(nil),
		Dashboard:    NewDashboardHandler(nil),
		Notification: NewNotificationHandler(nil),
	})

	return &testServer{router: router, jwt: jwtService, requests: requests, metrics: m}
}

func (s *testServer) token(t *testing.T, userID string, role user.Role) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(userID, role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

// Scenario C
func TestRouter_ColleagueCannotReadRequest(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/requests/"+requestID, s.token(t, colleagueID, user.RoleUser), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := errorBody(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "ACCESS_DENIED", body.ErrorCode)
	assert.Equal(t, http.StatusForbidden, body.StatusCode)

	rec = s.do(http.MethodGet, "/api/v1/requests/"+requestID, s.token(t, applicantID, user.RoleUser), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Authentication(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/requests/"+requestID, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_ERROR", errorBody(t, rec).ErrorCode)

	rec = s.do(http.MethodGet, "/api/v1/requests/"+requestID, "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := jwt.NewJWTService("another-secret", time.Hour)
	forged, _, err := other.GenerateAccessToken(applicantID, user.RoleAdmin)
	require.NoError(t, err)
	rec = s.do(http.MethodGet, "/api/v1/requests/"+requestID, forged, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, applicantID, user.RoleUser)

	rec := s.do(http.MethodPost, "/api/v1/auth/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/requests/"+requestID, token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RoleGuards(t *testing.T) {
	s := newTestServer(t)
	userToken := s.token(t, applicantID, user.RoleUser)

	for _, path := range []string{
		"/api/v1/approvals",
		"/api/v1/attendance/shift/2025/8",
		"/api/v1/users",
		"/api/v1/admin/stats",
		"/api/v1/notifications/settings",
		"/api/v1/reports/summary",
	} {
		rec := s.do(http.MethodGet, path, userToken, "")
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.Equal(t, "ACCESS_DENIED", errorBody(t, rec).ErrorCode, path)
	}

	rec := s.do(http.MethodPost, "/api/v1/requests/"+requestID+"/approve", userToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_CreateLeave(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, applicantID, user.RoleUser)

	rec := s.do(http.MethodPost, "/api/v1/requests/leave", token,
		`{"leave_type":"paid","start_date":"2025-08-01","end_date":"2025-08-03","reason":"family trip"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.IsType(t, &request.CreateLeaveRequest{}, s.requests.created)

	rec = s.do(http.MethodPost, "/api/v1/requests/leave", token, `{"leave_type":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errorBody(t, rec).ErrorCode)

	rec = s.do(http.MethodPost, "/api/v1/requests/leave", token, `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := errorBody(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.ErrorCode)
	assert.NotEmpty(t, body.Details)
}

func TestRouter_LoginRateLimit(t *testing.T) {
	s := newTestServer(t)
	body := `{"email":"someone@example.com","password":"wrong-password"}`

	for i := 0; i < 3; i++ {
		rec := s.do(http.MethodPost, "/api/v1/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := s.do(http.MethodPost, "/api/v1/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/health", "", "")

	count, err := testutil.GatherAndCount(s.metrics.Registry(), "kintai_http_requests_total")
	require.NoError(t, err)
	assert.Positive(t, count)

	rec := s.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kintai_http_requests_total")
}
