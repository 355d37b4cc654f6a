package search

import (
	"strings"

	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"
)

const answerTemplate = `You are an expert AI assistant for a knowledge base. Your task is to answer user questions based ONLY on the provided document snippets (context).
Your response MUST be in a valid JSON format with the following keys: "answer", "confidence", "missing_info", and "enrichment_suggestion".

**Instructions:**
1.  **Analyze the Context:** Carefully read the provided context below.
2.  **Answer the Question:** Based solely on the context, provide a clear and concise answer to the user's question. If the context does not contain the answer, state that you cannot answer based on the provided information.
3.  **Assess Confidence:** Rate your confidence in the answer on a scale from 0.0 to 1.0, where 1.0 is highly confident. Confidence is high if the context directly and completely answers the question. Confidence is low if the context is only partially relevant or insufficient. If you cannot answer, confidence must be 0.0.
4.  **Identify Missing Information:** If the context is insufficient, explicitly state what specific information is missing that would be needed to fully answer the question. If the context is sufficient, this must be an empty string.
5.  **Suggest Enrichment:** If information is missing, suggest how the knowledge base could be improved (e.g., "Add a document detailing the 'Project Alpha' budget specifications."). If no information is missing, this must be an empty string.
6.  **Handle Irrelevance:** If the documents in the context are not relevant to the question at all, state that the provided information is not relevant to the question, set confidence to 0.0, and suggest what kind of document might be useful.

**Context:**
{{.context}}

**Question:**
{{.question}}

**JSON Output:**`

func newAnswerPrompt() prompts.PromptTemplate {
	return prompts.NewPromptTemplate(answerTemplate, []string{"context", "question"})
}

// joinContext renders retrieved chunks as the prompt context, one block per
// chunk separated by a blank line.
func joinContext(docs []schema.Document) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		text := strings.TrimSpace(doc.PageContent)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}
