// Package engine holds the pure parts of game play: progression over a quiz's
// ordered questions, per-question scoring and the results summary.
package engine

import "github.com/bersena911/quizapi/internal/domain"

// Score computes the signed score of one choice set.
//
// SINGLE_ANSWER yields +1 for the correct answer and -1 for an incorrect one.
// MULTIPLE_ANSWERS yields hits/|correct| - misses/|incorrect|. Duplicate ids
// count once per occurrence. Ids that match no answer fail with
// domain.ErrInvalidChoice.
func Score(choices []string, answers []domain.Answer, questionType domain.QuestionType) (float64, error) {
	correct := make(map[string]struct{}, len(answers))
	incorrect := make(map[string]struct{}, len(answers))
	for _, answer := range answers {
		if answer.IsCorrect {
			correct[answer.ID] = struct{}{}
		} else {
			incorrect[answer.ID] = struct{}{}
		}
	}

	switch questionType {
	case domain.SingleAnswer:
		if len(choices) != 1 {
			return 0, domain.ErrTypeMismatch
		}
		if _, ok := correct[choices[0]]; ok {
			return 1, nil
		}
		if _, ok := incorrect[choices[0]]; ok {
			return -1, nil
		}
		return 0, domain.ErrInvalidChoice

	case domain.MultipleAnswers:
		hits, misses := 0, 0
		for _, choice := range choices {
			if _, ok := correct[choice]; ok {
				hits++
			} else if _, ok := incorrect[choice]; ok {
				misses++
			} else {
				return 0, domain.ErrInvalidChoice
			}
		}
		return ratio(hits, len(correct)) - ratio(misses, len(incorrect)), nil
	}

	return 0, domain.ErrUnknownQuestionType
}

// ratio treats an empty candidate set as contributing nothing.
func ratio(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of)
}
