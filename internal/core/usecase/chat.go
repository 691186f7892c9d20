package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
	"github.com/dsuniblu/internal-docs-assistant/internal/core/ports"
)

const (
	maxContextDocuments = 3
	previewLimit        = 500
)

const (
	noDocumentsAnswer = "I could not find relevant documents about that topic in the " +
		"knowledge base. Could you rephrase the question or add more detail?"
	degradedAnswer = "Something went wrong while preparing the answer. Please rephrase and try again."
)

// ChatUseCase routes an utterance through intent classification and the
// matching response strategy, one of which is retrieval-augmented generation.
type ChatUseCase struct {
	classifier ports.IntentClassifier
	fallback   ports.IntentClassifier
	searcher   ports.DocumentSearcher
	generator  ports.ReplyGenerator
	sessions   ports.SessionStore
	events     ports.TurnEventPublisher

	chatRerankMethod domain.RerankMethod
	chatRerankTopK   int
}

type ChatConfig struct {
	// Rerank policy for the internal-docs path when the request does not
	// override it.
	RerankMethod domain.RerankMethod
	RerankTopK   int
}

func NewChatUseCase(
	classifier ports.IntentClassifier,
	fallback ports.IntentClassifier,
	searcher ports.DocumentSearcher,
	generator ports.ReplyGenerator,
	sessions ports.SessionStore,
	events ports.TurnEventPublisher,
	cfg ChatConfig,
) *ChatUseCase {
	if cfg.RerankMethod == "" {
		cfg.RerankMethod = domain.RerankCrossEncoder
	}
	if cfg.RerankTopK <= 0 {
		cfg.RerankTopK = maxContextDocuments
	}
	return &ChatUseCase{
		classifier:       classifier,
		fallback:         fallback,
		searcher:         searcher,
		generator:        generator,
		sessions:         sessions,
		events:           events,
		chatRerankMethod: cfg.RerankMethod,
		chatRerankTopK:   cfg.RerankTopK,
	}
}

func (uc *ChatUseCase) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", fmt.Errorf("question is required"))
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", fmt.Errorf("session id is required"))
	}

	start := time.Now()
	history := uc.sessions.History(sessionID)
	intent := uc.classify(ctx, question, history)

	var result *domain.ChatResult
	if intent == domain.IntentInternalDocs {
		result = uc.answerFromDocuments(ctx, question, history, req)
	} else {
		result = uc.answerDirect(ctx, intent, question, history)
	}
	result.LatencyMS = time.Since(start).Milliseconds()

	uc.sessions.AppendTurn(sessionID, domain.Turn{
		UserMessage:      question,
		AssistantMessage: result.Answer,
		QuestionType:     result.QuestionType,
		At:               time.Now().UTC(),
	})
	uc.publishTurn(ctx, sessionID, question, result)

	return result, nil
}

func (uc *ChatUseCase) ClearSession(sessionID string) bool {
	return uc.sessions.Clear(strings.TrimSpace(sessionID))
}

// classify tries the primary classifier first and falls back to the keyword
// heuristic. Both paths collapse invalid labels to clarification_needed, so
// classification can never fail a request.
func (uc *ChatUseCase) classify(ctx context.Context, question string, history []domain.Turn) domain.Intent {
	if uc.classifier != nil {
		intent, err := uc.classifier.Classify(ctx, question, history)
		if err == nil {
			return intent
		}
		slog.Warn("intent_classification_failed", "error", err)
	}

	if uc.fallback != nil {
		intent, err := uc.fallback.Classify(ctx, question, history)
		if err == nil {
			return intent
		}
	}
	return domain.IntentClarificationNeeded
}

func (uc *ChatUseCase) answerDirect(
	ctx context.Context,
	intent domain.Intent,
	question string,
	history []domain.Turn,
) *domain.ChatResult {
	answer, err := uc.generator.GenerateReply(ctx, intent, question, history)
	if err != nil {
		slog.Error("reply_generation_failed", "intent", intent, "error", err)
		answer = degradedAnswer
	}
	return &domain.ChatResult{
		Answer:       answer,
		QuestionType: intent,
		UsedTool:     false,
		Sources:      nil,
	}
}

func (uc *ChatUseCase) answerFromDocuments(
	ctx context.Context,
	question string,
	history []domain.Turn,
	req domain.ChatRequest,
) *domain.ChatResult {
	results := uc.searcher.Search(ctx, uc.retrievalRequest(question, req))
	if len(results) == 0 {
		return &domain.ChatResult{
			Answer:       noDocumentsAnswer,
			QuestionType: domain.IntentInternalDocs,
			UsedTool:     true,
			Sources:      []domain.SourceRef{},
		}
	}

	contextBlock := FormatForContext(results, maxContextDocuments)
	answer, err := uc.generator.GenerateGroundedAnswer(ctx, question, contextBlock, history)
	if err != nil {
		slog.Error("grounded_generation_failed", "error", err)
		answer = degradedAnswer
	}

	return &domain.ChatResult{
		Answer:       answer,
		QuestionType: domain.IntentInternalDocs,
		UsedTool:     true,
		Sources:      serializeSources(results, maxContextDocuments),
	}
}

func (uc *ChatUseCase) retrievalRequest(question string, req domain.ChatRequest) domain.RetrievalRequest {
	method := uc.chatRerankMethod
	if parsed, ok := domain.ParseRerankMethod(req.RerankMethod); ok {
		method = parsed
	}
	topK := req.RerankTopK
	if topK <= 0 {
		topK = uc.chatRerankTopK
	}
	return domain.RetrievalRequest{
		Query:        question,
		Namespace:    req.Namespace,
		K:            req.K,
		RerankMethod: method,
		RerankTopK:   topK,
	}
}

func (uc *ChatUseCase) publishTurn(ctx context.Context, sessionID, question string, result *domain.ChatResult) {
	if uc.events == nil {
		return
	}
	event := domain.TurnEvent{
		SessionID:    sessionID,
		Question:     question,
		QuestionType: result.QuestionType,
		UsedTool:     result.UsedTool,
		SourceCount:  len(result.Sources),
		LatencyMS:    result.LatencyMS,
		At:           time.Now().UTC(),
	}
	if err := uc.events.PublishTurn(ctx, event); err != nil {
		slog.Warn("turn_event_publish_failed", "session_id", sessionID, "error", err)
	}
}

func serializeSources(results []domain.RankedResult, limit int) []domain.SourceRef {
	if limit <= 0 || limit > len(results) {
		limit = len(results)
	}
	out := make([]domain.SourceRef, 0, limit)
	for _, result := range results[:limit] {
		preview := result.Text
		if len(preview) > previewLimit {
			preview = preview[:previewLimit]
		}
		out = append(out, domain.SourceRef{
			Rank:           result.Rank,
			Source:         result.FormattedSource(),
			Score:          result.Score,
			RerankScore:    result.RerankScore,
			ContentPreview: preview,
		})
	}
	return out
}
