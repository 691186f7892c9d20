package domain

import "strings"

// Intent is the classifier's fixed-vocabulary decision about how a user
// utterance should be handled.
type Intent string

const (
	IntentGreeting            Intent = "greeting"
	IntentFarewell            Intent = "farewell"
	IntentClarificationNeeded Intent = "clarification_needed"
	IntentInternalDocs        Intent = "internal_docs"
	IntentGeneralKnowledge    Intent = "general_knowledge"
)

// ParseIntent maps raw classifier output to a known intent. Anything
// unrecognized collapses to clarification_needed: misrouting toward a
// clarifying question is cheaper than a wrong confident answer.
func ParseIntent(raw string) Intent {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "greeting", "greetings":
		return IntentGreeting
	case "farewell":
		return IntentFarewell
	case "clarification_needed":
		return IntentClarificationNeeded
	case "internal_docs":
		return IntentInternalDocs
	case "general_knowledge":
		return IntentGeneralKnowledge
	default:
		return IntentClarificationNeeded
	}
}
