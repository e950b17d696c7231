// Package api exposes the session over HTTP: GET endpoints deliver
// the render snapshot to spectating clients, POST endpoints carry
// player actions from the lobby/networking layer, which is the
// trusted caller and authenticates with a bearer token. All mutation
// is serialized behind one mutex — single-writer discipline.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jzheng/societygame/internal/engine"
	"github.com/jzheng/societygame/internal/game"
	"github.com/jzheng/societygame/internal/persistence"
	"github.com/jzheng/societygame/internal/society"
)

// Server serves one game session over HTTP.
type Server struct {
	Session *engine.Session
	DB      *persistence.DB
	Port    int
	// ActionKey is the bearer token for POST endpoints. Empty
	// disables all actions (read-only server).
	ActionKey string

	mu sync.Mutex
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	chatLimiter := NewRateLimiter(30, time.Minute)

	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()

	// Public read-only endpoints.
	v1.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	v1.HandleFunc("/players", s.handlePlayers).Methods(http.MethodGet)
	v1.HandleFunc("/players/{idx}/inbox", s.handleInbox).Methods(http.MethodGet)
	v1.HandleFunc("/messages", s.handleMessages).Methods(http.MethodGet)
	v1.HandleFunc("/promises", s.handlePromises).Methods(http.MethodGet)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	v1.HandleFunc("/society", s.handleSociety).Methods(http.MethodGet)
	v1.HandleFunc("/candidates/{role}", s.handleCandidates).Methods(http.MethodGet)
	v1.HandleFunc("/buildings", s.handleBuildings).Methods(http.MethodGet)

	// Player actions (POST, bearer token).
	a := v1.PathPrefix("/actions").Subrouter()
	a.Use(s.requireActionKey)
	a.HandleFunc("/declare", s.action(s.actDeclare)).Methods(http.MethodPost)
	a.HandleFunc("/vote", s.action(s.actVote)).Methods(http.MethodPost)
	a.HandleFunc("/advance", s.action(s.actAdvance)).Methods(http.MethodPost)
	a.HandleFunc("/continue", s.action(s.actContinue)).Methods(http.MethodPost)
	a.HandleFunc("/message", RateLimitMiddleware(chatLimiter, s.action(s.actMessage))).Methods(http.MethodPost)
	a.HandleFunc("/rally", RateLimitMiddleware(chatLimiter, s.action(s.actRally))).Methods(http.MethodPost)
	a.HandleFunc("/promise", s.action(s.actProposePromise)).Methods(http.MethodPost)
	a.HandleFunc("/promise/{id}/accept", s.action(s.actAcceptPromise)).Methods(http.MethodPost)
	a.HandleFunc("/promise/{id}/reject", s.action(s.actRejectPromise)).Methods(http.MethodPost)
	a.HandleFunc("/end-turn", s.action(s.actEndTurn)).Methods(http.MethodPost)
	a.HandleFunc("/building/request", s.action(s.actRequestBuilding)).Methods(http.MethodPost)
	a.HandleFunc("/building/approve", s.action(s.actApproveBuilding)).Methods(http.MethodPost)
	a.HandleFunc("/building/deny", s.action(s.actDenyBuilding)).Methods(http.MethodPost)
	a.HandleFunc("/speech", s.action(s.actSpeech)).Methods(http.MethodPost)
	a.HandleFunc("/executive-order", s.action(s.actExecutiveOrder)).Methods(http.MethodPost)
	a.HandleFunc("/veto", s.action(s.actVeto)).Methods(http.MethodPost)
	a.HandleFunc("/project", s.action(s.actProposeProject)).Methods(http.MethodPost)
	a.HandleFunc("/project/{id}/veto", s.action(s.actVetoProject)).Methods(http.MethodPost)
	a.HandleFunc("/reset", s.action(s.actReset)).Methods(http.MethodPost)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "actions_enabled", s.ActionKey != "")

	go func() {
		handler := corsMiddleware(r)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list; localhost dev servers
// are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireActionKey gates action endpoints behind the bearer token.
func (s *Server) requireActionKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.ActionKey == "" {
			http.Error(w, "actions disabled (no SOCIETY_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.ActionKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// action wraps an action handler with the session mutex and the
// common error/snapshot response shape.
func (s *Server) action(fn func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		err := fn(r)
		snap := s.Session.Snapshot()
		s.mu.Unlock()

		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true, "state": snap})
	}
}

// writeError maps core errors to HTTP statuses so the lobby layer can
// surface feedback instead of swallowing failures.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, game.ErrInsufficientGold),
		errors.Is(err, game.ErrInsufficientWorkers),
		errors.Is(err, game.ErrInsufficientMaterial):
		status = http.StatusPaymentRequired
	case errors.Is(err, game.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, game.ErrInvalidStage), errors.Is(err, game.ErrApprovalPending):
		status = http.StatusConflict
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.Session.Snapshot()
	s.mu.Unlock()
	writeJSON(w, snap)
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.Session.Snapshot()
	s.mu.Unlock()
	writeJSON(w, snap.Players)
}

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(mux.Vars(r)["idx"])
	if err != nil {
		http.Error(w, "invalid player index", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	inbox := s.Session.Inbox(idx)
	s.mu.Unlock()
	writeJSON(w, inbox)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]game.ChatMessage(nil), s.Session.Messages...)
	s.mu.Unlock()
	writeJSON(w, out)
}

func (s *Server) handlePromises(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q := r.URL.Query().Get("player"); q != "" {
		idx, err := strconv.Atoi(q)
		if err != nil {
			http.Error(w, "invalid player index", http.StatusBadRequest)
			return
		}
		writeJSON(w, s.Session.PromisesFor(idx))
		return
	}
	writeJSON(w, s.Session.Promises)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	s.mu.Lock()
	events := s.Session.Events
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := append([]engine.Event(nil), events...)
	s.mu.Unlock()
	writeJSON(w, out)
}

func (s *Server) handleSociety(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.Session.Snapshot()
	s.mu.Unlock()
	writeJSON(w, snap.Society)
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	role, ok := parseRole(mux.Vars(r)["role"])
	if !ok {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	candidates := s.Session.CandidatesFor(role)
	s.mu.Unlock()
	writeJSON(w, map[string]any{"role": role.String(), "candidates": candidates})
}

func (s *Server) handleBuildings(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Name         string `json:"name"`
		Workers      int    `json:"workers"`
		Gold         int    `json:"gold"`
		RawMaterials int    `json:"raw_materials"`
		Kind         string `json:"kind"`
		Approver     string `json:"approver"`
	}
	out := make([]entry, 0, len(society.AllBuildings))
	for _, b := range society.AllBuildings {
		req := b.Requirements()
		out = append(out, entry{
			Name:         b.String(),
			Workers:      req.Workers,
			Gold:         req.Gold,
			RawMaterials: req.RawMaterials,
			Kind:         req.Kind.String(),
			Approver:     b.Approver().String(),
		})
	}
	writeJSON(w, out)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func (s *Server) actDeclare(r *http.Request) error {
	var req struct {
		Player int      `json:"player"`
		Roles  []string `json:"roles"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	roles := make([]game.Role, 0, len(req.Roles))
	for _, name := range req.Roles {
		role, ok := parseRole(name)
		if !ok {
			return fmt.Errorf("unknown role %q: %w", name, game.ErrInvalidBallot)
		}
		roles = append(roles, role)
	}
	return s.Session.DeclareCandidacy(req.Player, roles)
}

func (s *Server) actVote(r *http.Request) error {
	var req struct {
		Player int    `json:"player"`
		Role   string `json:"role"`
		Chosen []int  `json:"chosen"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	role, ok := parseRole(req.Role)
	if !ok {
		return fmt.Errorf("unknown role %q: %w", req.Role, game.ErrInvalidBallot)
	}
	return s.Session.CastVote(req.Player, role, req.Chosen)
}

func (s *Server) actAdvance(r *http.Request) error {
	if s.Session.Stage == game.StageCampaigning {
		return s.Session.AdvanceCampaignPlayer()
	}
	return s.Session.AdvanceVotingPlayer()
}

func (s *Server) actContinue(r *http.Request) error {
	return s.Session.ContinueToRunning()
}

func (s *Server) actMessage(r *http.Request) error {
	var req struct {
		Player int    `json:"player"`
		To     int    `json:"to"`
		Text   string `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	return s.Session.SendText(req.Player, req.To, req.Text)
}

func (s *Server) actRally(r *http.Request) error {
	var req struct {
		Player int    `json:"player"`
		Text   string `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	return s.Session.SendRally(req.Player, req.Text)
}

func (s *Server) actProposePromise(r *http.Request) error {
	var req struct {
		Player    int    `json:"player"`
		Recipient int    `json:"recipient"`
		Gold      int    `json:"gold"`
		Role      string `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	role, ok := parseRole(req.Role)
	if !ok {
		return fmt.Errorf("unknown role %q: %w", req.Role, game.ErrInvalidBallot)
	}
	_, err := s.Session.ProposePromise(req.Player, req.Recipient, req.Gold, role)
	return err
}

func (s *Server) actAcceptPromise(r *http.Request) error {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return fmt.Errorf("invalid promise id: %w", game.ErrNotFound)
	}
	return s.Session.AcceptPromise(id)
}

func (s *Server) actRejectPromise(r *http.Request) error {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return fmt.Errorf("invalid promise id: %w", game.ErrNotFound)
	}
	return s.Session.RejectPromise(id)
}

func (s *Server) actEndTurn(r *http.Request) error {
	var req struct {
		Player int `json:"player"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if err := s.Session.EndTurn(req.Player); err != nil {
		return err
	}
	// Persist at round boundaries; an end-of-turn save also covers
	// game finalization.
	if s.DB != nil && s.Session.TurnPos == 0 {
		if err := s.DB.SaveSession(s.Session); err != nil {
			slog.Error("round save failed", "error", err)
		}
	}
	return nil
}

func (s *Server) actRequestBuilding(r *http.Request) error {
	var req struct {
		Player   int    `json:"player"`
		Building string `json:"building"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	b, ok := parseBuilding(req.Building)
	if !ok {
		return fmt.Errorf("unknown building %q: %w", req.Building, game.ErrNotFound)
	}
	return s.Session.RequestBuilding(b, req.Player)
}

func (s *Server) actApproveBuilding(r *http.Request) error {
	var req struct {
		Player int `json:"player"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	return s.Session.ApprovePendingBuilding(req.Player)
}

func (s *Server) actDenyBuilding(r *http.Request) error {
	var req struct {
		Player int `json:"player"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	return s.Session.DenyPendingBuilding(req.Player)
}

func (s *Server) actSpeech(r *http.Request) error {
	var req struct {
		Player int    `json:"player"`
		Text   string `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	return s.Session.SendPresidentialSpeech(req.Player, req.Text)
}

func (s *Server) actExecutiveOrder(r *http.Request) error {
	var req struct {
		Player      int    `json:"player"`
		Description string `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	_, err := s.Session.IssueExecutiveOrder(req.Player, req.Description)
	return err
}

func (s *Server) actVeto(r *http.Request) error {
	var req struct {
		Player int    `json:"player"`
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	return s.Session.UseVeto(req.Player, req.Reason)
}

func (s *Server) actProposeProject(r *http.Request) error {
	var req struct {
		Player      int    `json:"player"`
		Name        string `json:"name"`
		Department  string `json:"department"`
		Description string `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	dept, ok := parseRole(req.Department)
	if !ok {
		return fmt.Errorf("unknown department %q: %w", req.Department, game.ErrNotFound)
	}
	_, err := s.Session.ProposeGovernmentProject(req.Player, req.Name, dept, req.Description)
	return err
}

func (s *Server) actVetoProject(r *http.Request) error {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return fmt.Errorf("invalid project id: %w", game.ErrNotFound)
	}
	var req struct {
		Player int `json:"player"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	return s.Session.VetoProject(req.Player, id)
}

func (s *Server) actReset(r *http.Request) error {
	s.Session.ResetGame()
	if s.DB != nil {
		if err := s.DB.SaveSession(s.Session); err != nil {
			slog.Error("reset save failed", "error", err)
		}
	}
	return nil
}

// parseRole resolves a role from its display name.
func parseRole(name string) (game.Role, bool) {
	for _, r := range game.RoleOrder {
		if strings.EqualFold(r.String(), name) {
			return r, true
		}
	}
	return 0, false
}

// parseBuilding resolves a building from its display name.
func parseBuilding(name string) (society.Building, bool) {
	for _, b := range society.AllBuildings {
		if strings.EqualFold(b.String(), name) {
			return b, true
		}
	}
	return 0, false
}
