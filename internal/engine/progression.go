package engine

import (
	"sort"

	"github.com/bersena911/quizapi/internal/domain"
)

// Next returns the question at offset in the quiz's stable ordering, or false
// once offset is past the last question.
func Next(quiz domain.Quiz, offset int) (domain.Question, bool) {
	if offset < 0 || offset >= len(quiz.Questions) {
		return domain.Question{}, false
	}
	return Ordered(quiz.Questions)[offset], true
}

// Ordered returns the questions sorted by ascending order key. Loaders already
// return them sorted; the check keeps Next correct for any input.
func Ordered(questions []domain.Question) []domain.Question {
	if sort.SliceIsSorted(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order }) {
		return questions
	}
	sorted := make([]domain.Question, len(questions))
	copy(sorted, questions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}

// Present strips correctness from a question before it is served.
func Present(gameQuestionID string, question domain.Question) domain.NextQuestion {
	answers := make([]domain.AnswerOption, 0, len(question.Answers))
	for _, answer := range question.Answers {
		answers = append(answers, domain.AnswerOption{ID: answer.ID, Value: answer.Value})
	}
	return domain.NextQuestion{
		ID:      gameQuestionID,
		Type:    question.Type,
		Title:   question.Title,
		Answers: answers,
	}
}
