package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bersena911/quizapi/internal/app"
	"github.com/bersena911/quizapi/internal/domain"
	"github.com/bersena911/quizapi/internal/infra/memory"
)

var (
	owner  = domain.User{ID: "owner"}
	player = domain.User{ID: "player"}
)

type fixture struct {
	catalog *memory.Catalog
	games   *memory.GameStore
	quizzes *app.QuizService
	play    *app.GameService
}

func newFixture() *fixture {
	catalog := memory.NewCatalog()
	games := memory.NewGameStore()
	cache := memory.NewQuizCache(catalog, time.Minute)
	return &fixture{
		catalog: catalog,
		games:   games,
		quizzes: app.NewQuizService(catalog, games),
		play:    app.NewGameService(games, catalog, cache),
	}
}

func singleQuestion(title string) app.QuestionInput {
	return app.QuestionInput{
		Title: title,
		Type:  domain.SingleAnswer,
		Answers: []app.AnswerInput{
			{Value: "right", IsCorrect: true},
			{Value: "wrong"},
		},
	}
}

func multipleQuestion(title string) app.QuestionInput {
	return app.QuestionInput{
		Title: title,
		Type:  domain.MultipleAnswers,
		Answers: []app.AnswerInput{
			{Value: "2", IsCorrect: true},
			{Value: "3", IsCorrect: true},
			{Value: "4"},
			{Value: "6"},
		},
	}
}

// publishedQuiz creates and publishes a quiz with the given questions.
func (f *fixture) publishedQuiz(t *testing.T, inputs ...app.QuestionInput) domain.Quiz {
	t.Helper()
	ctx := context.Background()
	quiz, err := f.quizzes.CreateQuiz(ctx, owner, "Quiz")
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if _, err := f.quizzes.AddQuestions(ctx, owner, quiz.ID, inputs); err != nil {
		t.Fatalf("add questions: %v", err)
	}
	if err := f.quizzes.PublishQuiz(ctx, owner, quiz.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	quiz, err = f.quizzes.GetQuiz(ctx, owner, quiz.ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	return quiz
}

func TestCreateQuizTrimsTitle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	quiz, err := f.quizzes.CreateQuiz(ctx, owner, "  Capitals  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.Title != "Capitals" || quiz.Published {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if _, err := f.quizzes.CreateQuiz(ctx, owner, "   "); !errors.Is(err, domain.ErrEmptyTitle) {
		t.Fatalf("expected empty title error, got %v", err)
	}
}

func TestQuizIsScopedToOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	quiz, err := f.quizzes.CreateQuiz(ctx, owner, "Mine")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.quizzes.GetQuiz(ctx, player, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected foreign quiz to be not found, got %v", err)
	}
	if err := f.quizzes.DeleteQuiz(ctx, player, quiz.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on foreign delete, got %v", err)
	}
	quizzes, err := f.quizzes.ListQuizzes(ctx, player)
	if err != nil || len(quizzes) != 0 {
		t.Fatalf("expected player to see no quizzes, got %v %v", quizzes, err)
	}
}

func TestPublishRules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	quiz, err := f.quizzes.CreateQuiz(ctx, owner, "Quiz")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.quizzes.PublishQuiz(ctx, owner, quiz.ID); !errors.Is(err, domain.ErrPublishEmpty) {
		t.Fatalf("expected publish without questions to fail, got %v", err)
	}
	questions, err := f.quizzes.AddQuestions(ctx, owner, quiz.ID, []app.QuestionInput{singleQuestion("one")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.quizzes.PublishQuiz(ctx, owner, quiz.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := f.quizzes.PublishQuiz(ctx, owner, quiz.ID); !errors.Is(err, domain.ErrQuizPublished) {
		t.Fatalf("expected second publish to fail, got %v", err)
	}

	if err := f.quizzes.UpdateQuiz(ctx, owner, quiz.ID, "Renamed"); !errors.Is(err, domain.ErrQuizPublished) {
		t.Fatalf("expected published quiz to be frozen, got %v", err)
	}
	if _, err := f.quizzes.AddQuestions(ctx, owner, quiz.ID, []app.QuestionInput{singleQuestion("two")}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state on add, got %v", err)
	}
	title := "changed"
	if _, err := f.quizzes.UpdateQuestion(ctx, owner, quiz.ID, questions[0].ID, app.QuestionPatch{Title: &title}); !errors.Is(err, domain.ErrQuizPublished) {
		t.Fatalf("expected invalid state on question update, got %v", err)
	}
	if err := f.quizzes.DeleteQuestion(ctx, owner, quiz.ID, questions[0].ID); !errors.Is(err, domain.ErrQuizPublished) {
		t.Fatalf("expected invalid state on question delete, got %v", err)
	}
}

func TestAddQuestionsValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	quiz, err := f.quizzes.CreateQuiz(ctx, owner, "Quiz")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	twoCorrect := singleQuestion("two correct")
	twoCorrect.Answers[1].IsCorrect = true
	noCorrect := multipleQuestion("none correct")
	for i := range noCorrect.Answers {
		noCorrect.Answers[i].IsCorrect = false
	}
	oneAnswer := singleQuestion("lonely")
	oneAnswer.Answers = oneAnswer.Answers[:1]
	unknown := singleQuestion("essay")
	unknown.Type = "ESSAY"

	cases := []struct {
		name  string
		input app.QuestionInput
		want  error
	}{
		{name: "single with two correct", input: twoCorrect, want: domain.ErrManyCorrect},
		{name: "no correct answer", input: noCorrect, want: domain.ErrNoCorrectAnswer},
		{name: "too few answers", input: oneAnswer, want: domain.ErrAnswerCount},
		{name: "unknown type", input: unknown, want: domain.ErrUnknownType},
		{name: "blank title", input: singleQuestion("  "), want: domain.ErrEmptyTitle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.quizzes.AddQuestions(ctx, owner, quiz.ID, []app.QuestionInput{tc.input})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation kind, got %v", err)
			}
		})
	}

	inputs := make([]app.QuestionInput, domain.MaxQuestionsPerQuiz+1)
	for i := range inputs {
		inputs[i] = singleQuestion("q")
	}
	if _, err := f.quizzes.AddQuestions(ctx, owner, quiz.ID, inputs); !errors.Is(err, domain.ErrTooManyQuestions) {
		t.Fatalf("expected question limit, got %v", err)
	}
	if _, err := f.quizzes.AddQuestions(ctx, owner, quiz.ID, nil); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected empty batch to fail, got %v", err)
	}
}

func TestAddQuestionsAppendsInOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	quiz, err := f.quizzes.CreateQuiz(ctx, owner, "Quiz")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.quizzes.AddQuestions(ctx, owner, quiz.ID, []app.QuestionInput{singleQuestion("one"), singleQuestion("two")}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := f.quizzes.AddQuestions(ctx, owner, quiz.ID, []app.QuestionInput{singleQuestion("three")}); err != nil {
		t.Fatalf("add more: %v", err)
	}

	questions, err := f.quizzes.ListQuestions(ctx, owner, quiz.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	for i, title := range []string{"one", "two", "three"} {
		if questions[i].Title != title || questions[i].Order != int64(i+1) {
			t.Fatalf("question %d: unexpected %+v", i, questions[i])
		}
	}
}

func TestUpdateQuestionRevalidates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	quiz, err := f.quizzes.CreateQuiz(ctx, owner, "Quiz")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	questions, err := f.quizzes.AddQuestions(ctx, owner, quiz.ID, []app.QuestionInput{multipleQuestion("pick primes")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	id := questions[0].ID

	single := domain.SingleAnswer
	if _, err := f.quizzes.UpdateQuestion(ctx, owner, quiz.ID, id, app.QuestionPatch{Type: &single}); !errors.Is(err, domain.ErrManyCorrect) {
		t.Fatalf("expected type change to be checked against answers, got %v", err)
	}

	updated, err := f.quizzes.UpdateQuestion(ctx, owner, quiz.ID, id, app.QuestionPatch{
		Type:    &single,
		Answers: []app.AnswerInput{{Value: "2", IsCorrect: true}, {Value: "4"}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Type != domain.SingleAnswer || len(updated.Answers) != 2 || updated.Order != 1 {
		t.Fatalf("unexpected updated question %+v", updated)
	}

	if _, err := f.quizzes.UpdateQuestion(ctx, owner, quiz.ID, "missing", app.QuestionPatch{}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question not found, got %v", err)
	}
}

func TestDeleteQuizHidesItFromNewGames(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	quiz := f.publishedQuiz(t, singleQuestion("one"))

	if err := f.quizzes.DeleteQuiz(ctx, owner, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.play.Start(ctx, player, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected deleted quiz to be unplayable, got %v", err)
	}
}

func TestQuizGameDetails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	quiz := f.publishedQuiz(t, singleQuestion("one"), singleQuestion("two"))

	gameID, err := f.play.Start(ctx, player, quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	next, err := f.play.Next(ctx, player, gameID)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := f.play.Answer(ctx, player, gameID, next.ID, []string{correctAnswerID(quiz, 0)}); err != nil {
		t.Fatalf("answer: %v", err)
	}

	games, err := f.quizzes.QuizGames(ctx, owner, quiz.ID)
	if err != nil || len(games) != 1 || games[0].ID != gameID {
		t.Fatalf("expected the player's game, got %v %v", games, err)
	}
	details, err := f.quizzes.QuizGameDetails(ctx, owner, quiz.ID, gameID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if details.Score != 1 || len(details.QuestionStats) != 1 || details.QuestionStats[0].Title != "one" {
		t.Fatalf("unexpected details %+v", details)
	}
	if got := details.QuestionStats[0].Choices; len(got) != 1 || got[0] != correctAnswerID(quiz, 0) {
		t.Fatalf("expected the recorded choice in details, got %v", got)
	}

	if _, err := f.quizzes.QuizGames(ctx, player, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected only the owner to list games, got %v", err)
	}
	other := f.publishedQuiz(t, singleQuestion("x"))
	if _, err := f.quizzes.QuizGameDetails(ctx, owner, other.ID, gameID); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected game of another quiz to be not found, got %v", err)
	}
}

func correctAnswerID(quiz domain.Quiz, index int) string {
	for _, answer := range quiz.Questions[index].Answers {
		if answer.IsCorrect {
			return answer.ID
		}
	}
	return ""
}

func wrongAnswerID(quiz domain.Quiz, index int) string {
	for _, answer := range quiz.Questions[index].Answers {
		if !answer.IsCorrect {
			return answer.ID
		}
	}
	return ""
}
