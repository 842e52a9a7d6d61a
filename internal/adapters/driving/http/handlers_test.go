package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
	"github.com/custodia-labs/dorkdesk-core/internal/core/ports/driving"
)

// Mock services for testing

type mockAuthService struct {
	enabled         bool
	loginFn         func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	validateTokenFn func(ctx context.Context, token string) (*domain.Session, error)
	logoutFn        func(ctx context.Context, token string) error
}

func (m *mockAuthService) Enabled() bool {
	return m.enabled
}

func (m *mockAuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.validateTokenFn != nil {
		return m.validateTokenFn(ctx, token)
	}
	// Default: open instance
	return &domain.Session{ID: "open", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

type mockWorkspaceService struct {
	snapshot *driving.StateSnapshot

	createCategoryFn func(ctx context.Context, label string) error
	addDorkFn        func(ctx context.Context, key, text, tooltip string) error
	moveDorksFn      func(ctx context.Context, src, dst string, indices []int) error
	toggleCheckedFn  func(ctx context.Context, key string, index int) error
	makeOrGroupFn    func(ctx context.Context, key string, indices []int) error
	setVariableFn    func(ctx context.Context, name, value string) error
	setEngineFn      func(ctx context.Context, engine domain.SearchEngine) error
	saveProfileFn    func(ctx context.Context, name string) error
	openFn           func(ctx context.Context) error
}

func newMockWorkspace() *mockWorkspaceService {
	return &mockWorkspaceService{
		snapshot: &driving.StateSnapshot{
			Categories:     []*domain.Category{},
			Query:          "",
			SearchURL:      "",
			Variables:      map[string]string{},
			ProfileNames:   []string{},
			SearchEngine:   domain.SearchEngineGoogle,
			ActiveCategory: "",
		},
	}
}

func (m *mockWorkspaceService) Load(ctx context.Context) error { return nil }
func (m *mockWorkspaceService) Snapshot() *driving.StateSnapshot {
	return m.snapshot
}
func (m *mockWorkspaceService) Subscribe(l driving.Listener) {}

func (m *mockWorkspaceService) SetActiveCategory(ctx context.Context, key string) error { return nil }
func (m *mockWorkspaceService) CreateCategory(ctx context.Context, label string) error {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(ctx, label)
	}
	return nil
}
func (m *mockWorkspaceService) RenameCategory(ctx context.Context, key, label string) error {
	return nil
}
func (m *mockWorkspaceService) DeleteCategory(ctx context.Context, key string) error { return nil }

func (m *mockWorkspaceService) AddDork(ctx context.Context, key, text, tooltip string) error {
	if m.addDorkFn != nil {
		return m.addDorkFn(ctx, key, text, tooltip)
	}
	return nil
}
func (m *mockWorkspaceService) EditDork(ctx context.Context, key string, index int, text string) error {
	return nil
}
func (m *mockWorkspaceService) DeleteDorks(ctx context.Context, key string, indices []int) error {
	return nil
}
func (m *mockWorkspaceService) MoveDorks(ctx context.Context, src, dst string, indices []int) error {
	if m.moveDorksFn != nil {
		return m.moveDorksFn(ctx, src, dst, indices)
	}
	return nil
}
func (m *mockWorkspaceService) SetTooltip(ctx context.Context, key, text, hint string) error {
	return nil
}

func (m *mockWorkspaceService) ToggleChecked(ctx context.Context, key string, index int) error {
	if m.toggleCheckedFn != nil {
		return m.toggleCheckedFn(ctx, key, index)
	}
	return nil
}
func (m *mockWorkspaceService) SetChecked(ctx context.Context, key string, indices []int) error {
	return nil
}
func (m *mockWorkspaceService) ToggleNegated(ctx context.Context, key string, index int) error {
	return nil
}
func (m *mockWorkspaceService) MakeOrGroup(ctx context.Context, key string, indices []int) error {
	if m.makeOrGroupFn != nil {
		return m.makeOrGroupFn(ctx, key, indices)
	}
	return nil
}
func (m *mockWorkspaceService) ClearGroups(ctx context.Context, key string) error { return nil }

func (m *mockWorkspaceService) SetVariable(ctx context.Context, name, value string) error {
	if m.setVariableFn != nil {
		return m.setVariableFn(ctx, name, value)
	}
	return nil
}
func (m *mockWorkspaceService) SetSearchEngine(ctx context.Context, engine domain.SearchEngine) error {
	if m.setEngineFn != nil {
		return m.setEngineFn(ctx, engine)
	}
	return nil
}

func (m *mockWorkspaceService) SaveProfile(ctx context.Context, name string) error {
	if m.saveProfileFn != nil {
		return m.saveProfileFn(ctx, name)
	}
	return nil
}
func (m *mockWorkspaceService) ApplyProfile(ctx context.Context, name string) error  { return nil }
func (m *mockWorkspaceService) DeleteProfile(ctx context.Context, name string) error { return nil }

func (m *mockWorkspaceService) OpenInBrowser(ctx context.Context) error {
	if m.openFn != nil {
		return m.openFn(ctx)
	}
	return nil
}

// Test helpers

func newTestServer(workspace *mockWorkspaceService, auth *mockAuthService) *Server {
	if auth == nil {
		auth = &mockAuthService{}
	}
	return NewServer(DefaultConfig(), auth, workspace, nil)
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// Tests

func TestHandleHealth(t *testing.T) {
	s := newTestServer(newMockWorkspace(), nil)

	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandleGetState(t *testing.T) {
	workspace := newMockWorkspace()
	workspace.snapshot.Query = `site:example.com ext:pdf`
	s := newTestServer(workspace, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/state", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var snap driving.StateSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.Query != `site:example.com ext:pdf` {
		t.Errorf("unexpected query %q", snap.Query)
	}
}

func TestHandleLogin(t *testing.T) {
	auth := &mockAuthService{
		enabled: true,
		loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
			if req.Passphrase != "s3cret" {
				return nil, domain.ErrInvalidCredentials
			}
			return &domain.LoginResponse{Token: "jwt-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	s := newTestServer(newMockWorkspace(), auth)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/auth/login", map[string]string{"passphrase": "s3cret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token != "jwt-token" {
		t.Errorf("unexpected token %q", resp.Token)
	}
}

func TestHandleLoginWrongPassphrase(t *testing.T) {
	auth := &mockAuthService{
		enabled: true,
		loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	s := newTestServer(newMockWorkspace(), auth)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/auth/login", map[string]string{"passphrase": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandleCreateCategory(t *testing.T) {
	workspace := newMockWorkspace()
	var gotLabel string
	workspace.createCategoryFn = func(ctx context.Context, label string) error {
		gotLabel = label
		return nil
	}
	s := newTestServer(workspace, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/categories", map[string]string{"label": "Login Pages"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotLabel != "Login Pages" {
		t.Errorf("expected label passed through, got %q", gotLabel)
	}
}

func TestHandleAddDork(t *testing.T) {
	workspace := newMockWorkspace()
	var gotKey, gotText, gotTooltip string
	workspace.addDorkFn = func(ctx context.Context, key, text, tooltip string) error {
		gotKey, gotText, gotTooltip = key, text, tooltip
		return nil
	}
	s := newTestServer(workspace, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/categories/files/dorks",
		map[string]string{"text": "ext:pdf", "tooltip": "PDF documents"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotKey != "files" || gotText != "ext:pdf" || gotTooltip != "PDF documents" {
		t.Errorf("unexpected args: %q %q %q", gotKey, gotText, gotTooltip)
	}
}

func TestHandleMoveDorks(t *testing.T) {
	workspace := newMockWorkspace()
	var gotSrc, gotDst string
	var gotIndices []int
	workspace.moveDorksFn = func(ctx context.Context, src, dst string, indices []int) error {
		gotSrc, gotDst, gotIndices = src, dst, indices
		return nil
	}
	s := newTestServer(workspace, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/categories/files/dorks/move",
		map[string]interface{}{"destination": "secrets", "indices": []int{0, 2}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotSrc != "files" || gotDst != "secrets" || len(gotIndices) != 2 {
		t.Errorf("unexpected args: %q %q %v", gotSrc, gotDst, gotIndices)
	}
}

func TestHandleToggleChecked(t *testing.T) {
	workspace := newMockWorkspace()
	var gotIndex int
	workspace.toggleCheckedFn = func(ctx context.Context, key string, index int) error {
		gotIndex = index
		return nil
	}
	s := newTestServer(workspace, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/categories/files/selection/toggle",
		map[string]int{"index": 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotIndex != 3 {
		t.Errorf("expected index 3, got %d", gotIndex)
	}
}

func TestHandleMakeOrGroup(t *testing.T) {
	workspace := newMockWorkspace()
	var gotIndices []int
	workspace.makeOrGroupFn = func(ctx context.Context, key string, indices []int) error {
		gotIndices = indices
		return nil
	}
	s := newTestServer(workspace, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/categories/files/selection/group",
		map[string][]int{"indices": {1, 2}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(gotIndices) != 2 {
		t.Errorf("unexpected indices %v", gotIndices)
	}
}

func TestHandleEditDorkInvalidIndex(t *testing.T) {
	s := newTestServer(newMockWorkspace(), nil)

	rec := doRequest(t, s, http.MethodPut, "/api/v1/categories/files/dorks/notanumber",
		map[string]string{"text": "ext:pdf"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleSetSearchEngine(t *testing.T) {
	workspace := newMockWorkspace()
	var gotEngine domain.SearchEngine
	workspace.setEngineFn = func(ctx context.Context, engine domain.SearchEngine) error {
		gotEngine = engine
		return nil
	}
	s := newTestServer(workspace, nil)

	rec := doRequest(t, s, http.MethodPut, "/api/v1/engine", map[string]string{"engine": "bing"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotEngine != domain.SearchEngineBing {
		t.Errorf("expected bing, got %q", gotEngine)
	}
}

func TestHandleSetSearchEngineUnknown(t *testing.T) {
	s := newTestServer(newMockWorkspace(), nil)

	rec := doRequest(t, s, http.MethodPut, "/api/v1/engine", map[string]string{"engine": "altavista"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleSetVariable(t *testing.T) {
	workspace := newMockWorkspace()
	var gotName, gotValue string
	workspace.setVariableFn = func(ctx context.Context, name, value string) error {
		gotName, gotValue = name, value
		return nil
	}
	s := newTestServer(workspace, nil)

	rec := doRequest(t, s, http.MethodPut, "/api/v1/variables/domain",
		map[string]string{"value": "example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotName != "domain" || gotValue != "example.com" {
		t.Errorf("unexpected args: %q %q", gotName, gotValue)
	}
}

func TestHandleSaveProfile(t *testing.T) {
	workspace := newMockWorkspace()
	var gotName string
	workspace.saveProfileFn = func(ctx context.Context, name string) error {
		gotName = name
		return nil
	}
	s := newTestServer(workspace, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/profiles", map[string]string{"name": "pdf hunt"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotName != "pdf hunt" {
		t.Errorf("expected name passed through, got %q", gotName)
	}
}

func TestMutationStoreFailureIs500(t *testing.T) {
	workspace := newMockWorkspace()
	workspace.createCategoryFn = func(ctx context.Context, label string) error {
		return errors.New("disk full")
	}
	s := newTestServer(workspace, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/categories", map[string]string{"label": "X"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestHandleOpenInBrowser(t *testing.T) {
	workspace := newMockWorkspace()
	opened := false
	workspace.openFn = func(ctx context.Context) error {
		opened = true
		return nil
	}
	s := newTestServer(workspace, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/open", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !opened {
		t.Error("expected launcher invoked")
	}
}

func TestHandleInvalidBody(t *testing.T) {
	s := newTestServer(newMockWorkspace(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
