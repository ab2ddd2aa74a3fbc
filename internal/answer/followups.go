package answer

import (
	"fmt"
	"sort"
	"strings"
)

// FollowUpQuestions suggests up to three follow-up questions from the
// cited source filenames and a couple of content triggers. Pure
// heuristics, no extra LLM call.
func FollowUpQuestions(answerText string, citations []Citation) []string {
	topics := make(map[string]bool)
	for _, citation := range citations {
		if citation.Filename == "" {
			continue
		}
		base := citation.Filename
		if dot := strings.Index(base, "."); dot >= 0 {
			base = base[:dot]
		}
		base = strings.ReplaceAll(base, "_", " ")
		base = strings.ReplaceAll(base, "-", " ")
		if base != "" {
			topics[base] = true
		}
	}

	sortedTopics := make([]string, 0, len(topics))
	for topic := range topics {
		sortedTopics = append(sortedTopics, topic)
	}
	sort.Strings(sortedTopics)
	if len(sortedTopics) > 3 {
		sortedTopics = sortedTopics[:3]
	}

	var followUps []string
	for _, topic := range sortedTopics {
		followUps = append(followUps, fmt.Sprintf("What else does %s say about this topic?", topic))
	}

	lower := strings.ToLower(answerText)
	if strings.Contains(lower, "policy") {
		followUps = append(followUps, "What are the exceptions to this policy?")
	}
	if strings.Contains(lower, "process") || strings.Contains(lower, "procedure") {
		followUps = append(followUps, "What are the next steps in this process?")
	}

	if len(followUps) > 3 {
		followUps = followUps[:3]
	}
	return followUps
}
