package domain

import "time"

// QuestionType decides how a choice set is scored.
type QuestionType string

const (
	SingleAnswer    QuestionType = "SINGLE_ANSWER"
	MultipleAnswers QuestionType = "MULTIPLE_ANSWERS"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	return t == SingleAnswer || t == MultipleAnswers
}

// Answer is one candidate option of a question.
type Answer struct {
	ID        string `json:"id"`
	Value     string `json:"value"`
	IsCorrect bool   `json:"is_correct"`
}

// Question belongs to exactly one quiz. Order is the monotonic key that
// defines the play sequence.
type Question struct {
	ID      string       `json:"id"`
	QuizID  string       `json:"quiz_id"`
	Title   string       `json:"title"`
	Type    QuestionType `json:"type"`
	Order   int64        `json:"order"`
	Answers []Answer     `json:"answers"`
}

// Quiz is an authored collection of questions, ordered by Question.Order.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	OwnerID   string     `json:"owner_id"`
	Published bool       `json:"published"`
	Deleted   bool       `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Questions []Question `json:"questions,omitempty"`
}

// Question looks up a question of the quiz by id.
func (q Quiz) Question(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// Game is one user's play-through of one quiz. Offset is the zero-based index
// of the next unanswered question.
type Game struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	QuizID    string    `json:"quiz_id"`
	Finished  bool      `json:"finished"`
	Score     float64   `json:"score"`
	Offset    int       `json:"offset"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuestionState is the write-once sub-state of a served question.
type QuestionState string

const (
	StatePending  QuestionState = "pending"
	StateAnswered QuestionState = "answered"
	StateSkipped  QuestionState = "skipped"
)

// GameQuestion records one question as served within one game.
type GameQuestion struct {
	ID          string        `json:"id"`
	GameID      string        `json:"game_id"`
	QuestionID  string        `json:"question_id"`
	State       QuestionState `json:"state"`
	AnswerScore float64       `json:"answer_score"`
}

// CheckPending returns the InvalidState error matching a terminal state.
func (gq GameQuestion) CheckPending() error {
	switch gq.State {
	case StateAnswered:
		return ErrAlreadyAnswered
	case StateSkipped:
		return ErrAlreadySkipped
	}
	return nil
}

// GameAnswer is one chosen answer of an answered game question.
type GameAnswer struct {
	ID             string `json:"id"`
	GameQuestionID string `json:"game_question_id"`
	Choice         string `json:"choice"`
}

// Transition moves a pending game question into a terminal state and applies
// its score to the game. Stores apply it atomically or not at all.
type Transition struct {
	GameID         string
	GameQuestionID string
	State          QuestionState
	Score          float64
	Choices        []string
}

// User is the caller identity as seen by the engine.
type User struct {
	ID       string
	Disabled bool
}

// AnswerOption is an answer as shown to a player; correctness is never exposed.
type AnswerOption struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// NextQuestion is served by the game state machine. ID is the game question id.
type NextQuestion struct {
	ID      string         `json:"id"`
	Type    QuestionType   `json:"type"`
	Title   string         `json:"title"`
	Answers []AnswerOption `json:"answers"`
}

// QuestionStat is one row of a results breakdown.
type QuestionStat struct {
	Title       string   `json:"title"`
	State       string   `json:"state"`
	AnswerScore float64  `json:"answer_score"`
	Choices     []string `json:"choices,omitempty"`
}

// Results summarises a finished game.
type Results struct {
	Score           float64        `json:"score"`
	ScorePercentage float64        `json:"score_percentage"`
	QuestionStats   []QuestionStat `json:"question_stats"`
}

// GameSummary is a list row of a user's games.
type GameSummary struct {
	ID        string  `json:"id"`
	QuizID    string  `json:"quiz_id"`
	QuizTitle string  `json:"title"`
	Finished  bool    `json:"finished"`
	Score     float64 `json:"score"`
}
