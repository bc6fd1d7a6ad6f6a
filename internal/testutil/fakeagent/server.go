// Package fakeagent is an in-process stand-in for a generated agent server.
// It serves the discovery card and the JSON-RPC task endpoint the way the
// scaffolded projects do under mock mode, and can be gated behind a payment
// check.
package fakeagent

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/pkg/jsonrpc"
)

// MockMarker prefixes every agent reply.
const MockMarker = "[MOCK]"

// Gate decides whether a request to the task endpoint may proceed. It
// writes its own response and returns false to block.
type Gate func(w http.ResponseWriter, r *http.Request) bool

// Server is a fake agent.
type Server struct {
	Streaming bool
	Gate      Gate

	mu      sync.Mutex
	tasks   map[string]*domain.Task
	history map[string][]domain.Message

	processed atomic.Int64
}

// New creates a fake agent.
func New(streaming bool) *Server {
	return &Server{
		Streaming: streaming,
		tasks:     make(map[string]*domain.Task),
		history:   make(map[string][]domain.Message),
	}
}

// Processed returns how many message/send calls were executed.
func (s *Server) Processed() int64 { return s.processed.Load() }

// History returns the messages recorded for a context.
func (s *Server) History(contextID string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.history[contextID]...)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/.well-known/agent-card.json":
		s.serveCard(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/a2a":
		if s.Gate != nil && !s.Gate(w, r) {
			return
		}
		s.serveRPC(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) serveCard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.AgentCard{
		Name:         "test-agent",
		Description:  "fake agent",
		URL:          "http://" + r.Host + "/a2a",
		Version:      "1.0.0",
		Capabilities: &domain.AgentCapabilities{Streaming: s.Streaming},
	})
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

type sendParams struct {
	Message   domain.Message `json:"message"`
	ContextID string         `json:"contextId"`
}

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRPCError(w, nil, jsonrpc.CodeParseError, "Parse error")
		return
	}
	if req.JSONRPC != jsonrpc.Version {
		writeRPCError(w, req.ID, jsonrpc.CodeInvalidRequest, "Invalid Request: jsonrpc must be \"2.0\"")
		return
	}

	switch req.Method {
	case "message/send":
		var p sendParams
		if err := json.Unmarshal(req.Params, &p); err != nil || len(p.Message.Parts) == 0 {
			writeRPCError(w, req.ID, jsonrpc.CodeInvalidParams, "Invalid params: message required")
			return
		}
		writeRPCResult(w, req.ID, s.send(p))
	case "message/stream":
		if !s.Streaming {
			writeRPCError(w, req.ID, jsonrpc.CodeMethodNotFound, "Method not found")
			return
		}
		var p sendParams
		_ = json.Unmarshal(req.Params, &p)
		s.stream(w, req.ID, p)
	case "tasks/get", "tasks/cancel":
		var p struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(req.Params, &p)
		task, ok := s.lookup(p.ID, req.Method == "tasks/cancel")
		if !ok {
			writeRPCError(w, req.ID, -32001, "Task not found")
			return
		}
		writeRPCResult(w, req.ID, task)
	default:
		writeRPCError(w, req.ID, jsonrpc.CodeMethodNotFound, "Method not found")
	}
}

func (s *Server) send(p sendParams) *domain.Task {
	s.processed.Add(1)

	contextID := p.ContextID
	if contextID == "" {
		contextID = uuid.NewString()
	}
	user := p.Message
	user.Role = domain.RoleUser

	s.mu.Lock()
	defer s.mu.Unlock()

	prior := len(s.history[contextID]) / 2
	agent := domain.NewTextMessage(domain.RoleAgent, fmt.Sprintf("%s turn %d: %s", MockMarker, prior+1, user.Text()))
	s.history[contextID] = append(s.history[contextID], user, agent)

	task := &domain.Task{
		ID:        uuid.NewString(),
		ContextID: contextID,
		Status:    domain.TaskCompleted,
		Messages:  []domain.Message{user, agent},
	}
	s.tasks[task.ID] = task
	return task
}

func (s *Server) lookup(id string, cancel bool) (*domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	if cancel {
		task.Status = domain.TaskCanceled
	}
	cp := *task
	return &cp, true
}

func (s *Server) stream(w http.ResponseWriter, id any, p sendParams) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	text := p.Message.Text()
	chunks := []string{MockMarker + " ", strings.TrimSpace(text)}
	for _, chunk := range chunks {
		writeEvent(w, "message", map[string]any{"jsonrpc": jsonrpc.Version, "id": id, "result": map[string]any{"kind": "chunk", "text": chunk}})
		if flusher != nil {
			flusher.Flush()
		}
	}
	writeEvent(w, "message", map[string]any{"jsonrpc": jsonrpc.Version, "id": id, "result": map[string]any{"kind": "status", "status": domain.TaskCompleted, "final": true}})
}

func writeEvent(w http.ResponseWriter, event string, data any) {
	b, _ := json.Marshal(data)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
}

func writeRPCResult(w http.ResponseWriter, id, result any) {
	writeJSON(w, http.StatusOK, map[string]any{"jsonrpc": jsonrpc.Version, "id": id, "result": result})
}

func writeRPCError(w http.ResponseWriter, id any, code int, msg string) {
	writeJSON(w, http.StatusOK, map[string]any{
		"jsonrpc": jsonrpc.Version,
		"id":      id,
		"error":   jsonrpc.Error{Code: code, Message: msg},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
