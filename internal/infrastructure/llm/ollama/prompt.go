package ollama

import (
	"fmt"
	"strings"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
)

const classificationInstructions = `You are a precise question classifier. Classify the user question into exactly ONE of these categories:

1. greeting: opening salutations ("Hello", "Hi", "Good morning", "How are you?")
2. farewell: goodbyes ("Bye", "See you", "Thanks, that's all")
3. clarification_needed: vague or ambiguous questions lacking enough context ("I want to know about reimbursement", very short questions)
4. internal_docs: questions about company procedures, policies, norms or internal documents ("How does the company reimburse travel expenses?", "What does the manual say about overtime?")
5. general_knowledge: conceptual or general questions that need no internal documents ("What is reimbursement?", "What is the capital of France?")

Decision rules:
- Mentions the company, policies, manuals or internal procedures -> internal_docs
- Vague question without enough context -> clarification_needed
- Conceptual or general question -> general_knowledge

Answer with ONLY one of these exact words: greeting, farewell, clarification_needed, internal_docs, general_knowledge`

func buildClassificationPrompt(question string, history []domain.Turn) string {
	var b strings.Builder
	b.WriteString(classificationInstructions)
	if summary := renderHistory(history, 3); summary != "" {
		b.WriteString("\n\nRecent conversation:\n")
		b.WriteString(summary)
	}
	fmt.Fprintf(&b, "\n\nUser question: %s", question)
	return b.String()
}

var replyInstructions = map[domain.Intent]string{
	domain.IntentGreeting: `You are a cordial, professional assistant.
Reply to the greeting briefly and warmly, and invite the user to ask their question.`,

	domain.IntentFarewell: `You are a cordial, professional assistant.
Reply to the farewell kindly: thank the user and reinforce that you remain available. Be brief.`,

	domain.IntentClarificationNeeded: `You need to clarify the user's request.
Ask one or two short, objective questions. Ask whether they want general information or the company's internal procedure. Be cordial and direct.`,

	domain.IntentGeneralKnowledge: `You are a helpful, responsible assistant.
Answer clearly and precisely using general knowledge. Do not invent facts about companies, do not share personal data, and say so when you do not know. Keep a professional, friendly tone.`,
}

func buildReplyPrompt(intent domain.Intent, question string, history []domain.Turn) string {
	instructions, ok := replyInstructions[intent]
	if !ok {
		instructions = replyInstructions[domain.IntentClarificationNeeded]
	}

	var b strings.Builder
	b.WriteString(instructions)
	if summary := renderHistory(history, 5); summary != "" {
		b.WriteString("\n\nConversation so far:\n")
		b.WriteString(summary)
	}
	fmt.Fprintf(&b, "\n\nUser: %s", question)
	return b.String()
}

func buildGroundedPrompt(question, contextBlock string, history []domain.Turn) string {
	var b strings.Builder
	b.WriteString(`You are the internal assistant for employee questions.

Instructions:
1. Use ONLY the information from the documents in the Context below
2. Be precise, objective and professional
3. Mention the source when available (manual, policy, handbook)
4. If the context is insufficient, say so honestly and suggest rephrasing
5. Do not include file names or internal document codes
6. Do not repeat the user's question`)

	if summary := renderHistory(history, 5); summary != "" {
		b.WriteString("\n\nConversation so far:\n")
		b.WriteString(summary)
	}
	fmt.Fprintf(&b, "\n\n# Context:\n%s\n\n# Question:\n%s", contextBlock, question)
	return b.String()
}

func buildVariantPrompt(query string, n int) string {
	return fmt.Sprintf(`Rewrite the search query below into %d alternate phrasings that keep the same meaning but use different wording (synonyms, more specific terms). Return ONLY a JSON array of strings, no markdown, no extra keys.

Query: %s`, n, query)
}

func renderHistory(history []domain.Turn, lastN int) string {
	if len(history) == 0 {
		return ""
	}
	if lastN > 0 && len(history) > lastN {
		history = history[len(history)-lastN:]
	}

	lines := make([]string, 0, len(history)*2)
	for _, turn := range history {
		lines = append(lines, "User: "+turn.UserMessage)
		lines = append(lines, "Assistant: "+turn.AssistantMessage)
	}
	return strings.Join(lines, "\n")
}
