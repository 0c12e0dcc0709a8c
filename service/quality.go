package service

import "regexp"

// Quality score policy: a bounded, deterministic signal derived from citation
// density. Statute references (「…」) weigh more than bare article references
// (제N조); the base covers any non-empty answer. Tunable, not load-bearing.
const (
	lawRefWeight     = 10
	articleRefWeight = 5
	scoreBase        = 35
	scoreMax         = 100
)

var (
	lawRefPattern     = regexp.MustCompile(`「.*?」`)
	articleRefPattern = regexp.MustCompile(`제\d+조`)
)

// EvaluateAnswerQuality computes the quality score for an answer.
func EvaluateAnswerQuality(answer string) int {
	lawRefs := len(lawRefPattern.FindAllString(answer, -1))
	articleRefs := len(articleRefPattern.FindAllString(answer, -1))

	score := lawRefs*lawRefWeight + articleRefs*articleRefWeight + scoreBase
	if score > scoreMax {
		score = scoreMax
	}
	return score
}
