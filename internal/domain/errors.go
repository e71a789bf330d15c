package domain

import "errors"

// Error kinds. Every concrete error below wraps exactly one of them, so callers
// can branch on the kind with errors.Is and still match the concrete sentinel.
var (
	// ErrNotFound covers absent entities and entities owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned when an operation does not fit the lifecycle stage.
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrLogic signals a data integrity bug rather than a user error.
	ErrLogic = errors.New("logic error")
)

var (
	ErrQuizNotFound         = newError(ErrNotFound, "quiz not found")
	ErrQuestionNotFound     = newError(ErrNotFound, "question not found")
	ErrGameNotFound         = newError(ErrNotFound, "game not found")
	ErrGameQuestionNotFound = newError(ErrNotFound, "question not found in game")

	ErrAlreadyPlayed   = newError(ErrInvalidState, "you already played this game")
	ErrGameFinished    = newError(ErrInvalidState, "game is already finished")
	ErrGameNotFinished = newError(ErrInvalidState, "game is not finished yet")
	ErrAlreadyAnswered = newError(ErrInvalidState, "question already answered")
	ErrAlreadySkipped  = newError(ErrInvalidState, "question already skipped")
	ErrQuizPublished   = newError(ErrInvalidState, "quiz is already published")
	ErrPublishEmpty    = newError(ErrInvalidState, "can't publish quiz without questions")

	ErrTypeMismatch     = newError(ErrValidation, "question type does not support multiple answers")
	ErrInvalidChoice    = newError(ErrValidation, "choice not in choices list")
	ErrNoChoices        = newError(ErrValidation, "at least one choice is required")
	ErrTooManyQuestions = newError(ErrValidation, "maximum number of questions per quiz is 10")
	ErrNoQuestions      = newError(ErrValidation, "at least one question is required")
	ErrEmptyTitle       = newError(ErrValidation, "title must not be empty")
	ErrAnswerCount      = newError(ErrValidation, "a question must have between 2 and 5 answers")
	ErrEmptyAnswer      = newError(ErrValidation, "answer value must not be empty")
	ErrNoCorrectAnswer  = newError(ErrValidation, "there must be at least one correct answer")
	ErrManyCorrect      = newError(ErrValidation, "SINGLE_ANSWER can't have multiple correct answers")
	ErrUnknownType      = newError(ErrValidation, "unknown question type")

	ErrUnknownQuestionType = newError(ErrLogic, "unknown question type in stored data")
)

type kindError struct {
	kind error
	msg  string
}

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
