package domain

import "time"

type ChatRequest struct {
	Question     string `json:"question"`
	SessionID    string `json:"session_id"`
	K            int    `json:"k,omitempty"`
	Namespace    string `json:"namespace,omitempty"`
	RerankMethod string `json:"rerank_method,omitempty"`
	RerankTopK   int    `json:"rerank_top_k,omitempty"`
}

// SourceRef is the externally visible citation shape attached to an answer.
type SourceRef struct {
	Rank           int      `json:"rank"`
	Source         string   `json:"source"`
	Score          float64  `json:"score"`
	RerankScore    *float64 `json:"rerank_score,omitempty"`
	ContentPreview string   `json:"content_preview"`
}

type ChatResult struct {
	Answer       string      `json:"answer"`
	QuestionType Intent      `json:"question_type"`
	UsedTool     bool        `json:"used_tool"`
	Sources      []SourceRef `json:"sources"`
	LatencyMS    int64       `json:"latency_ms"`
}

// Turn is one user/assistant exchange kept in session history.
type Turn struct {
	UserMessage      string    `json:"user_message"`
	AssistantMessage string    `json:"assistant_message"`
	QuestionType     Intent    `json:"question_type"`
	At               time.Time `json:"at"`
}

// TurnEvent is the analytics record published after each completed exchange.
type TurnEvent struct {
	SessionID    string    `json:"session_id"`
	Question     string    `json:"question"`
	QuestionType Intent    `json:"question_type"`
	UsedTool     bool      `json:"used_tool"`
	SourceCount  int       `json:"source_count"`
	LatencyMS    int64     `json:"latency_ms"`
	At           time.Time `json:"at"`
}
