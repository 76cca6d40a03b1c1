package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"church-service/internal/handler"
	"church-service/internal/model"
	"church-service/internal/setup"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore mirrors the Postgres store contract: re-check and inserts are
// one atomic unit, nothing is persisted on failure.
type memoryStore struct {
	mu       sync.Mutex
	churches []model.Church
	users    []model.User
	nextID   uint
}

func (m *memoryStore) SuperAdminCount(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.Role == model.RoleSuperAdmin {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) CreateChurchWithAdmin(ctx context.Context, church *model.Church, admin *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Role == model.RoleSuperAdmin {
			return setup.ErrAlreadyInitialized
		}
	}
	m.nextID++
	church.ID = m.nextID
	m.churches = append(m.churches, *church)
	m.nextID++
	admin.ID = m.nextID
	admin.ChurchID = &church.ID
	m.users = append(m.users, *admin)
	return nil
}

func newSetupServer() (*echo.Echo, *memoryStore) {
	store := &memoryStore{}
	h := handler.NewSetupHandler(setup.NewService(store))

	e := echo.New()
	e.GET("/setup/status", h.Status)
	e.POST("/setup/initialize", h.Initialize)
	return e, store
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const initializeBody = `{
	"email": "pastor@igreja.org",
	"password": "secret123",
	"first_name": "João",
	"last_name": "Silva",
	"church_name": "Igreja Batista Central"
}`

func TestSetupStatusBeforeAndAfterInitialize(t *testing.T) {
	e, _ := newSetupServer()

	rec := doJSON(e, http.MethodGet, "/setup/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		IsInitialized bool `json:"is_initialized"`
		NeedsSetup    bool `json:"needs_setup"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.IsInitialized)
	assert.True(t, status.NeedsSetup)

	rec = doJSON(e, http.MethodPost, "/setup/initialize", initializeBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodGet, "/setup/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.IsInitialized)
	assert.False(t, status.NeedsSetup)
}

func TestSetupInitializeResponseShape(t *testing.T) {
	e, store := newSetupServer()

	rec := doJSON(e, http.MethodPost, "/setup/initialize", initializeBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "message")
	require.Contains(t, resp, "user")
	require.Contains(t, resp, "church")

	var user map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp["user"], &user))
	assert.Contains(t, user, "email")
	assert.NotContains(t, user, "password")

	var church struct {
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(resp["church"], &church))
	assert.Equal(t, "igreja-batista-central", church.Slug)

	assert.Len(t, store.churches, 1)
	assert.Len(t, store.users, 1)
}

func TestSetupInitializeValidationError(t *testing.T) {
	e, store := newSetupServer()

	body := `{"email":"not-an-email","password":"five5","first_name":"A","last_name":"B","church_name":"C"}`
	rec := doJSON(e, http.MethodPost, "/setup/initialize", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error  string             `json:"error"`
		Fields []setup.FieldError `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Error)

	fields := make([]string, 0, len(resp.Fields))
	for _, f := range resp.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	assert.Empty(t, store.churches)
	assert.Empty(t, store.users)
}

func TestSetupInitializeTwiceRejected(t *testing.T) {
	e, store := newSetupServer()

	rec := doJSON(e, http.MethodPost, "/setup/initialize", initializeBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPost, "/setup/initialize", initializeBody)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "system already initialized", resp.Error)

	assert.Len(t, store.churches, 1)
	assert.Len(t, store.users, 1)
}
