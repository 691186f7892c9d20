package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
	"github.com/dsuniblu/internal-docs-assistant/internal/core/ports"
	"github.com/dsuniblu/internal-docs-assistant/internal/observability/metrics"
)

const sessionIDHeader = "X-Session-Id"

// TrafficConfig holds the adapter-level throttling knobs.
type TrafficConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxConcurrent  int
	MaxWait        time.Duration
}

type Router struct {
	chat    ports.ChatService
	metrics *metrics.AssistantMetrics
	traffic TrafficConfig
}

func NewRouter(chat ports.ChatService, m *metrics.AssistantMetrics, traffic TrafficConfig) *Router {
	if traffic.MaxWait <= 0 {
		traffic.MaxWait = 2 * time.Second
	}
	return &Router{
		chat:    chat,
		metrics: m,
		traffic: traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", rt.health)
	mux.HandleFunc("/chat", rt.handleChat)
	mux.HandleFunc("/clear", rt.handleClear)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.traffic.MaxConcurrent, rt.traffic.MaxWait)
	handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequestBody struct {
	Question     string `json:"question"`
	Message      string `json:"message"`
	SessionID    string `json:"session_id"`
	K            int    `json:"k"`
	Namespace    string `json:"namespace"`
	RerankMethod string `json:"rerank_method"`
	RerankTopK   int    `json:"rerank_top_k"`
}

func (rt *Router) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var body chatRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	question := strings.TrimSpace(body.Question)
	if question == "" {
		question = strings.TrimSpace(body.Message)
	}
	if question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}
	sessionID := resolveSessionID(body.SessionID, r)
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required"})
		return
	}

	result, err := rt.chat.Chat(r.Context(), domain.ChatRequest{
		Question:     question,
		SessionID:    sessionID,
		K:            body.K,
		Namespace:    body.Namespace,
		RerankMethod: body.RerankMethod,
		RerankTopK:   body.RerankTopK,
	})
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		if status >= 500 {
			slog.Error("chat_failed",
				"request_id", requestIDFromContext(r.Context()),
				"session_id", sessionID,
				"error", err,
			)
			writeJSON(w, status, map[string]string{"error": "internal error"})
			return
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordChatTurn(result.QuestionType, result.UsedTool)
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var body struct {
		SessionID string `json:"session_id"`
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
	}

	sessionID := resolveSessionID(body.SessionID, r)
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required"})
		return
	}

	if !rt.chat.ClearSession(sessionID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func resolveSessionID(fromBody string, r *http.Request) string {
	if id := strings.TrimSpace(fromBody); id != "" {
		return id
	}
	return strings.TrimSpace(r.Header.Get(sessionIDHeader))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
