package usecase

import (
	"context"
	"strings"
	"unicode"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
)

// KeywordClassifier is the deterministic classifier variant: a keyword lookup
// over the utterance. It backs up the LLM classifier and never fails.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var (
	greetingWords = []string{
		"hello", "hi", "hey", "good morning", "good afternoon", "good evening",
		"olá", "ola", "oi", "bom dia", "boa tarde", "boa noite", "tudo bem",
	}
	farewellWords = []string{
		"bye", "goodbye", "see you", "thanks, that's all", "that is all",
		"tchau", "até logo", "ate logo", "valeu", "obrigado, é só isso",
	}
	internalDocWords = []string{
		"policy", "policies", "manual", "procedure", "handbook", "company",
		"internal", "hr", "benefit", "reimbursement", "expense",
		"política", "politica", "norma", "procedimento", "empresa",
		"reembolso", "férias", "ferias", "benefício", "beneficio", "rh",
	}
)

func (c *KeywordClassifier) Classify(_ context.Context, question string, _ []domain.Turn) (domain.Intent, error) {
	normalized := strings.ToLower(strings.TrimSpace(question))
	if normalized == "" {
		return domain.IntentClarificationNeeded, nil
	}

	if matchesAny(normalized, farewellWords) {
		return domain.IntentFarewell, nil
	}
	if matchesAny(normalized, greetingWords) {
		return domain.IntentGreeting, nil
	}
	if matchesAny(normalized, internalDocWords) {
		return domain.IntentInternalDocs, nil
	}
	if wordCount(normalized) < 3 {
		return domain.IntentClarificationNeeded, nil
	}
	return domain.IntentGeneralKnowledge, nil
}

func matchesAny(normalized string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}

func wordCount(s string) int {
	return len(strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}))
}
