package domain

import "strings"

const (
	MaxQuestionsPerQuiz = 10
	MinAnswers          = 2
	MaxAnswers          = 5
)

// NormalizeTitle trims surrounding whitespace and rejects empty titles.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	return title, nil
}

// ValidateQuestion checks the authoring invariants of a question and its answers.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.Title) == "" {
		return ErrEmptyTitle
	}
	if !q.Type.Valid() {
		return ErrUnknownType
	}
	if len(q.Answers) < MinAnswers || len(q.Answers) > MaxAnswers {
		return ErrAnswerCount
	}
	return ValidateAnswers(q.Answers, q.Type)
}

// ValidateAnswers checks the correct-answer count against the question type.
func ValidateAnswers(answers []Answer, questionType QuestionType) error {
	correct := 0
	for _, answer := range answers {
		if strings.TrimSpace(answer.Value) == "" {
			return ErrEmptyAnswer
		}
		if answer.IsCorrect {
			correct++
		}
	}
	if questionType == SingleAnswer && correct > 1 {
		return ErrManyCorrect
	}
	if correct == 0 {
		return ErrNoCorrectAnswer
	}
	return nil
}
