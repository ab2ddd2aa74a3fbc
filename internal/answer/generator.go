package answer

import (
	"context"
	"fmt"
	"strings"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/search"
)

// maxContextTokens caps the prompt context built from search results,
// estimated at roughly four characters per token.
const maxContextTokens = 3000

const systemPrompt = `You are a helpful AI assistant that answers questions based on provided document excerpts.

Guidelines:
1. Answer questions accurately based only on the provided sources
2. Include specific citations in your answer using [Source X] format
3. If the sources don't contain enough information, say so clearly
4. Be concise but comprehensive
5. Maintain a professional, helpful tone
6. If asked about something not in the sources, politely explain the limitation

Always cite your sources when making specific claims.`

const (
	noResultsAnswer        = "I couldn't find relevant information in the uploaded documents to answer your question."
	emptyContextAnswer     = "I couldn't extract enough relevant information from the documents to answer your question."
	generationFailedAnswer = "I encountered an error while processing your question. Please try again."
)

// Record is the complete outcome of answering one question.
type Record struct {
	Answer      string     `json:"answer"`
	Confidence  float64    `json:"confidence"`
	Citations   []Citation `json:"citations"`
	ContextUsed int        `json:"context_used"`
	FollowUps   []string   `json:"follow_up_questions,omitempty"`
}

// Generator turns fused search results into a cited natural language
// answer via an LLM.
type Generator struct {
	completer llm.Completer
}

// NewGenerator creates an answer generator backed by the given completer.
func NewGenerator(completer llm.Completer) *Generator {
	return &Generator{completer: completer}
}

// Generate answers a question from search results. Retrieval misses and
// LLM failures are not errors from the caller's perspective: both produce
// a fallback answer with confidence 0 so the API always has something to
// return.
func (g *Generator) Generate(ctx context.Context, question string, results []search.FusedResult) Record {
	logger := contextutil.LoggerFromContext(ctx)

	if len(results) == 0 {
		return Record{Answer: noResultsAnswer, Confidence: 0, Citations: []Citation{}}
	}

	promptContext, candidates := BuildContext(results, maxContextTokens)
	if promptContext == "" {
		return Record{Answer: emptyContextAnswer, Confidence: 0, Citations: []Citation{}}
	}

	userPrompt := buildUserPrompt(question, promptContext)
	answerText, err := g.completer.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		logger.ErrorContext(ctx, "answer generation failed", "error", err)
		return Record{Answer: generationFailedAnswer, Confidence: 0, Citations: []Citation{}}
	}

	// Confidence is judged on the raw ranker scores, not the combined RRF
	// scores: RRF values top out near 1/61 and would flatten the quality
	// factor for every answer.
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	confidence := CalculateConfidence(answerText, scores)
	citations := ExtractCitations(answerText, candidates)

	record := Record{
		Answer:      answerText,
		Confidence:  confidence,
		Citations:   citations,
		ContextUsed: len(candidates),
	}
	record.FollowUps = FollowUpQuestions(answerText, citations)

	logger.InfoContext(ctx, "generated answer",
		"confidence", confidence,
		"citations", len(citations),
		"context_sources", len(candidates),
	)
	return record
}

// BuildContext renders search results as a [Source N] prefixed context
// block and the matching citation candidates. Results are consumed in
// rank order until the token budget would be exceeded; the first result
// that does not fit stops the scan.
func BuildContext(results []search.FusedResult, tokenBudget int) (string, []Citation) {
	if len(results) == 0 {
		return "", nil
	}

	var parts []string
	var candidates []Citation
	currentTokens := 0

	for i, result := range results {
		estimated := len(result.Text) / 4
		if currentTokens+estimated > tokenBudget {
			break
		}

		id := i + 1
		parts = append(parts, fmt.Sprintf("[Source %d] %s", id, result.Text))
		candidates = append(candidates, Citation{
			ID:       id,
			DocID:    result.DocID,
			ChunkID:  result.ChunkID,
			Filename: result.Filename,
			FileType: result.FileType,
			Text:     result.Text,
			Score:    result.Score,
		})
		currentTokens += estimated
	}

	return strings.Join(parts, "\n\n"), candidates
}

func buildUserPrompt(question, promptContext string) string {
	return fmt.Sprintf(`Question: %s

Sources:
%s

Please answer the question based on the provided sources. Include citations using [Source X] format when referencing specific information.`, question, promptContext)
}
