package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks the backing store)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleLogin godoc
// @Summary      Analyst login
// @Description  Exchange the instance passphrase for a JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Passphrase"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid passphrase"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		switch err {
		case domain.ErrInvalidCredentials:
			writeError(w, http.StatusUnauthorized, "invalid passphrase")
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "passphrase required")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLogout godoc
// @Summary      Logout
// @Description  Invalidate the current session token
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	_ = s.authService.Logout(r.Context(), token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// State

// handleGetState godoc
// @Summary      Get workspace state
// @Description  Returns the full snapshot: categories, active category, rendered query, search URL, variables and profile names
// @Tags         Workspace
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.StateSnapshot
// @Router       /state [get]
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.workspaceService.Snapshot())
}

// Category endpoints

// handleCreateCategory godoc
// @Summary      Create category
// @Description  Creates a category from a display label; the key is the slugified label
// @Tags         Categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.StateSnapshot
// @Router       /categories [post]
func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, s.workspaceService.CreateCategory(r.Context(), req.Label))
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, s.workspaceService.RenameCategory(r.Context(), key, req.Label))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.workspaceService.DeleteCategory(r.Context(), r.PathValue("key")))
}

func (s *Server) handleActivateCategory(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.workspaceService.SetActiveCategory(r.Context(), r.PathValue("key")))
}

// Dork endpoints

// handleAddDork godoc
// @Summary      Add dork fragment
// @Description  Appends a fragment to the category; an optional tooltip documents it
// @Tags         Dorks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.StateSnapshot
// @Router       /categories/{key}/dorks [post]
func (s *Server) handleAddDork(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req struct {
		Text    string `json:"text"`
		Tooltip string `json:"tooltip"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, s.workspaceService.AddDork(r.Context(), key, req.Text, req.Tooltip))
}

func (s *Server) handleEditDork(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, s.workspaceService.EditDork(r.Context(), key, index, req.Text))
}

func (s *Server) handleDeleteDorks(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req struct {
		Indices []int `json:"indices"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, s.workspaceService.DeleteDorks(r.Context(), key, req.Indices))
}

// handleMoveDorks godoc
// @Summary      Move dork fragments
// @Description  Moves the indexed fragments to the end of the destination category
// @Tags         Dorks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.StateSnapshot
// @Router       /categories/{key}/dorks/move [post]
func (s *Server) handleMoveDorks(w http.ResponseWriter, r *http.Request) {
	src := r.PathValue("key")
	var req struct {
		Destination string `json:"destination"`
		Indices     []int  `json:"indices"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, s.workspaceService.MoveDorks(r.Context(), src, req.Destination, req.Indices))
}

func (s *Server) handleSetTooltip(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req struct {
		Text string `json:"text"`
		Hint string `json:"hint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, s.workspaceService.SetTooltip(r.Context(), key, req.Text, req.Hint))
}

// Selection endpoints

func (s *Server) handleToggleChecked(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, s.workspaceService.ToggleChecked(r.Context(), key, req.Index))
}

func (s *Server) handleSetChecked(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req struct {
		Indices []int `json:"indices"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, s.workspaceService.SetChecked(r.Context(), key, req.Indices))
}

func (s *Server) handleToggleNegated(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, s.workspaceService.ToggleNegated(r.Context(), key, req.Index))
}

// handleMakeOrGroup godoc
// @Summary      Group fragments with OR
// @Description  Binds the indexed fragments into an OR group; overlapping groups merge
// @Tags         Selection
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.StateSnapshot
// @Router       /categories/{key}/selection/group [post]
func (s *Server) handleMakeOrGroup(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req struct {
		Indices []int `json:"indices"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, s.workspaceService.MakeOrGroup(r.Context(), key, req.Indices))
}

func (s *Server) handleClearGroups(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.workspaceService.ClearGroups(r.Context(), r.PathValue("key")))
}

// Variables and search engine

func (s *Server) handleSetVariable(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, s.workspaceService.SetVariable(r.Context(), name, req.Value))
}

func (s *Server) handleSetSearchEngine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Engine string `json:"engine"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	engine := domain.SearchEngine(req.Engine)
	if !engine.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown search engine")
		return
	}

	s.mutate(w, r, s.workspaceService.SetSearchEngine(r.Context(), engine))
}

// Profile endpoints

// handleSaveProfile godoc
// @Summary      Save profile
// @Description  Snapshots the active category's selection and variables under a name
// @Tags         Profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.StateSnapshot
// @Router       /profiles [post]
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, s.workspaceService.SaveProfile(r.Context(), req.Name))
}

func (s *Server) handleApplyProfile(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.workspaceService.ApplyProfile(r.Context(), r.PathValue("name")))
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.workspaceService.DeleteProfile(r.Context(), r.PathValue("name")))
}

// Browser launch

// handleOpenInBrowser godoc
// @Summary      Open query in browser
// @Description  Fires the local launcher with the current search URL; a no-op when the query is empty or no launcher is configured
// @Tags         Workspace
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.StateSnapshot
// @Router       /open [post]
func (s *Server) handleOpenInBrowser(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.workspaceService.OpenInBrowser(r.Context()))
}

// mutate finishes a state-changing call: persistence failures are a 500,
// everything else answers with the fresh snapshot. Domain no-ops land here
// with a nil error and simply echo the unchanged state.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist state")
		return
	}
	writeJSON(w, http.StatusOK, s.workspaceService.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
