package answer

import "strings"

// uncertaintyPhrases each cost 0.2 confidence when present in the answer.
var uncertaintyPhrases = []string{
	"i don't know",
	"i'm not sure",
	"unclear",
	"might be",
	"possibly",
	"perhaps",
	"could be",
	"not enough information",
}

const uncertaintyPenalty = 0.2

// CalculateConfidence scores an answer between 0 and 1 from four equally
// weighted factors, then subtracts a penalty per uncertainty phrase found
// in the answer:
//
//   - source count, saturating at 3 sources
//   - mean retrieval score of the results, clamped to [0, 1] (0 when
//     there are no results)
//   - answer length, saturating at 200 characters
//   - citation markers in the answer, saturating at 2
func CalculateConfidence(answerText string, resultScores []float64) float64 {
	sourceFactor := clamp01(float64(len(resultScores)) / 3.0)

	qualityFactor := 0.0
	if len(resultScores) > 0 {
		sum := 0.0
		for _, score := range resultScores {
			sum += score
		}
		qualityFactor = clamp01(sum / float64(len(resultScores)))
	}

	lengthFactor := clamp01(float64(len(answerText)) / 200.0)
	citationFactor := clamp01(float64(CountCitationMarkers(answerText)) / 2.0)

	confidence := (sourceFactor + qualityFactor + lengthFactor + citationFactor) / 4.0

	lower := strings.ToLower(answerText)
	for _, phrase := range uncertaintyPhrases {
		if strings.Contains(lower, phrase) {
			confidence -= uncertaintyPenalty
		}
	}

	return clamp01(confidence)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
