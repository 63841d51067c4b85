package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/auth"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
)

const handlerTestSecret = "handler-test-secret"

var (
	portalUser      = &models.User{ID: 7, Username: "jdoe", Role: models.RoleUser}
	portalOther     = &models.User{ID: 8, Username: "other", Role: models.RoleUser}
	portalModerator = &models.User{ID: 9, Username: "mod", Role: models.RoleModerator}
)

// newPortalMux wires the usecase handler behind real auth middleware, the
// same shape main assembles.
func newPortalMux(t *testing.T, svc *mockUsecaseService) *http.ServeMux {
	t.Helper()
	users := &stubUsers{users: map[int64]*models.User{
		portalUser.ID:      portalUser,
		portalOther.ID:     portalOther,
		portalModerator.ID: portalModerator,
	}}
	store := auth.NewSessionStore("handler-test-session-key", false)
	mw := auth.NewMiddleware(users, store, handlerTestSecret, zap.NewNop())

	mux := http.NewServeMux()
	NewUsecaseHandler(svc, zap.NewNop()).RegisterRoutes(mux, mw)
	return mux
}

func asUser(t *testing.T, req *http.Request, user *models.User) *http.Request {
	t.Helper()
	token, err := auth.IssueToken(user, handlerTestSecret, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func approvedRecord(id int64, title string) models.UseCase {
	return models.UseCase{
		ID:          id,
		Title:       title,
		Project:     "Phoenix",
		PromptsUsed: "Prompts that shipped this",
		ServiceLine: models.NewStringSet("DA&AI"),
		SDLCPhase:   models.NewStringSet("Testing"),
		ToolsUsed:   models.NewStringSet("ChatGPT"),
		Status:      models.StatusApproved,
		UserID:      portalUser.ID,
		SubmittedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour),
	}
}

func TestListUsecases_ReturnsBareArray(t *testing.T) {
	svc := &mockUsecaseService{records: []models.UseCase{approvedRecord(1, "First"), approvedRecord(2, "Second")}}
	mux := newPortalMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usecases", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	// The body is the array itself, no envelope.
	var records []models.UseCase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 2)
}

func TestListUsecases_StorageFailureDegradesToEmpty(t *testing.T) {
	svc := &mockUsecaseService{listErr: fmt.Errorf("boom: %w", apperrors.ErrStorage)}
	mux := newPortalMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usecases", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestGetUsecase(t *testing.T) {
	pending := approvedRecord(1, "Mine pending")
	pending.Status = models.StatusPending
	svc := &mockUsecaseService{records: []models.UseCase{pending, approvedRecord(2, "Public")}}
	mux := newPortalMux(t, svc)

	// Anonymous fetch of an approved record.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usecases/2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.UseCase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(2), got.ID)

	// Anonymous fetch of a pending record: 404.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usecases/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Owner fetch of the same: 200.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(t, httptest.NewRequest(http.MethodGet, "/api/usecases/1", nil), portalUser))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Garbage id reads as not found.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usecases/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func validCreateBody() string {
	return `{
		"usecase": "Automated test generation",
		"project": "Phoenix",
		"prompts_used": "Generate table-driven tests for the parser package",
		"service_line": ["DA&AI"],
		"sdlc_phase": ["Testing"],
		"tools_used": ["ChatGPT"],
		"estimated_efforts": 10,
		"actual_hours": 4
	}`
}

func TestCreateUsecase(t *testing.T) {
	svc := &mockUsecaseService{}
	mux := newPortalMux(t, svc)

	req := asUser(t, httptest.NewRequest(http.MethodPost, "/api/usecases", strings.NewReader(validCreateBody())), portalUser)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got models.UseCase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, portalUser.ID, got.UserID)
}

func TestCreateUsecase_RequiresAuth(t *testing.T) {
	mux := newPortalMux(t, &mockUsecaseService{})

	req := httptest.NewRequest(http.MethodPost, "/api/usecases", strings.NewReader(validCreateBody()))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateUsecase_ValidationError(t *testing.T) {
	mux := newPortalMux(t, &mockUsecaseService{})

	body := `{"usecase": "abc"}`
	req := asUser(t, httptest.NewRequest(http.MethodPost, "/api/usecases", strings.NewReader(body)), portalUser)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_failed")
}

func TestCreateUsecase_MalformedBody(t *testing.T) {
	mux := newPortalMux(t, &mockUsecaseService{})

	req := asUser(t, httptest.NewRequest(http.MethodPost, "/api/usecases", strings.NewReader("{nope")), portalUser)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}

func TestUpdateUsecase_OwnerAndStranger(t *testing.T) {
	record := approvedRecord(1, "Before edit")
	svc := &mockUsecaseService{records: []models.UseCase{record}}
	mux := newPortalMux(t, svc)

	// A stranger may not edit.
	req := asUser(t, httptest.NewRequest(http.MethodPut, "/api/usecases/1", strings.NewReader(validCreateBody())), portalOther)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The owner may; the record returns to pending.
	req = asUser(t, httptest.NewRequest(http.MethodPut, "/api/usecases/1", strings.NewReader(validCreateBody())), portalUser)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.UseCase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.ModeratedAt)
}

func TestSetStatus_ModeratorGate(t *testing.T) {
	pendingRecord := approvedRecord(1, "Queued")
	pendingRecord.Status = models.StatusPending
	svc := &mockUsecaseService{records: []models.UseCase{pendingRecord}}
	mux := newPortalMux(t, svc)

	body := `{"status": "approved"}`

	// Plain users are forbidden before the service is ever reached.
	req := asUser(t, httptest.NewRequest(http.MethodPut, "/api/usecases/1/status", strings.NewReader(body)), portalUser)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, svc.lastSetStatus.id)

	// Anonymous gets 401.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/usecases/1/status", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Moderator succeeds.
	req = asUser(t, httptest.NewRequest(http.MethodPut, "/api/usecases/1/status", strings.NewReader(body)), portalModerator)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusApproved, svc.lastSetStatus.status)

	var got models.UseCase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotNil(t, got.ModeratedAt)
}

func TestSetStatus_InvalidTransition(t *testing.T) {
	record := approvedRecord(1, "Already approved")
	mux := newPortalMux(t, &mockUsecaseService{records: []models.UseCase{record}})

	req := asUser(t, httptest.NewRequest(http.MethodPut, "/api/usecases/1/status",
		strings.NewReader(`{"status": "pending"}`)), portalModerator)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_transition")
}

func TestDeleteUsecase(t *testing.T) {
	record := approvedRecord(1, "Doomed")
	svc := &mockUsecaseService{records: []models.UseCase{record}}
	mux := newPortalMux(t, svc)

	// Owners may not delete their own records.
	req := asUser(t, httptest.NewRequest(http.MethodDelete, "/api/usecases/1", nil), portalUser)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = asUser(t, httptest.NewRequest(http.MethodDelete, "/api/usecases/1", nil), portalModerator)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, int64(1), svc.deletedID)

	// Gone now.
	req = asUser(t, httptest.NewRequest(http.MethodDelete, "/api/usecases/1", nil), portalModerator)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMine(t *testing.T) {
	other := approvedRecord(2, "Someone else's")
	other.UserID = portalOther.ID
	svc := &mockUsecaseService{records: []models.UseCase{approvedRecord(1, "Mine"), other}}
	mux := newPortalMux(t, svc)

	req := asUser(t, httptest.NewRequest(http.MethodGet, "/api/usecases/mine", nil), portalUser)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var records []models.UseCase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].ID)
}

func TestBrowse(t *testing.T) {
	pendingRecord := approvedRecord(3, "Hidden pending")
	pendingRecord.Status = models.StatusPending
	oracle := approvedRecord(2, "Oracle migration helper")
	oracle.ServiceLine = models.NewStringSet("Oracle")
	svc := &mockUsecaseService{records: []models.UseCase{approvedRecord(1, "Code review assistant"), oracle, pendingRecord}}
	mux := newPortalMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usecases/browse?service_line=Oracle&sort=newest", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Items     []models.UseCase          `json:"items"`
		Page      int                       `json:"page"`
		PageCount int                       `json:"page_count"`
		Total     int                       `json:"total"`
		Facets    map[string]map[string]int `json:"facets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	require.Equal(t, 1, result.Total)
	assert.Equal(t, int64(2), result.Items[0].ID)
	assert.Equal(t, 1, result.Page)
	// Tallies reflect the whole approved collection.
	assert.Equal(t, 1, result.Facets["service_line"]["DA&AI"])
	assert.Equal(t, 1, result.Facets["service_line"]["Oracle"])
}

func TestBrowse_BadPageParam(t *testing.T) {
	mux := newPortalMux(t, &mockUsecaseService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usecases/browse?page=two", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_page")
}
