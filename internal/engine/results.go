package engine

import (
	"math"

	"github.com/bersena911/quizapi/internal/domain"
)

// Summarize builds the results of a game from its cumulative score, the
// game questions served so far and the choices recorded for them. Every
// served question counts in the denominator, skipped and pending ones
// included. Stats follow quiz order.
func Summarize(game domain.Game, quiz domain.Quiz, served []domain.GameQuestion, answers []domain.GameAnswer) domain.Results {
	byQuestion := make(map[string]domain.GameQuestion, len(served))
	for _, gq := range served {
		byQuestion[gq.QuestionID] = gq
	}
	choices := make(map[string][]string)
	for _, answer := range answers {
		choices[answer.GameQuestionID] = append(choices[answer.GameQuestionID], answer.Choice)
	}

	stats := make([]domain.QuestionStat, 0, len(served))
	for _, question := range Ordered(quiz.Questions) {
		gq, ok := byQuestion[question.ID]
		if !ok {
			continue
		}
		stats = append(stats, domain.QuestionStat{
			Title:       question.Title,
			State:       string(gq.State),
			AnswerScore: gq.AnswerScore,
			Choices:     choices[gq.ID],
		})
	}

	return domain.Results{
		Score:           game.Score,
		ScorePercentage: Percentage(game.Score, len(served)),
		QuestionStats:   stats,
	}
}

// Percentage returns score/total*100 rounded to two decimals; 0/0 is 0.
func Percentage(score float64, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(score/float64(total)*100*100) / 100
}
