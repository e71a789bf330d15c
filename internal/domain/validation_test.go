package domain

import (
	"errors"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{ErrGameQuestionNotFound, ErrNotFound},
		{ErrAlreadySkipped, ErrInvalidState},
		{ErrInvalidChoice, ErrValidation},
		{ErrUnknownQuestionType, ErrLogic},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.kind) {
			t.Fatalf("%v should be of kind %v", tc.err, tc.kind)
		}
	}
	if errors.Is(ErrAlreadyAnswered, ErrValidation) {
		t.Fatalf("kinds must not overlap")
	}
}

func TestCheckPending(t *testing.T) {
	if err := (GameQuestion{State: StatePending}).CheckPending(); err != nil {
		t.Fatalf("pending: %v", err)
	}
	if err := (GameQuestion{State: StateAnswered}).CheckPending(); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("answered: %v", err)
	}
	if err := (GameQuestion{State: StateSkipped}).CheckPending(); !errors.Is(err, ErrAlreadySkipped) {
		t.Fatalf("skipped: %v", err)
	}
}

func TestValidateQuestion(t *testing.T) {
	valid := Question{
		Title: "Capital of France",
		Type:  SingleAnswer,
		Answers: []Answer{
			{Value: "Paris", IsCorrect: true},
			{Value: "Lyon"},
		},
	}
	if err := ValidateQuestion(valid); err != nil {
		t.Fatalf("valid question rejected: %v", err)
	}

	tooMany := valid
	tooMany.Answers = make([]Answer, MaxAnswers+1)
	for i := range tooMany.Answers {
		tooMany.Answers[i] = Answer{Value: "x", IsCorrect: i == 0}
	}
	if err := ValidateQuestion(tooMany); !errors.Is(err, ErrAnswerCount) {
		t.Fatalf("expected answer count error, got %v", err)
	}

	blank := valid
	blank.Answers = []Answer{{Value: " ", IsCorrect: true}, {Value: "Lyon"}}
	if err := ValidateQuestion(blank); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("expected empty answer error, got %v", err)
	}

	multiple := valid
	multiple.Type = MultipleAnswers
	multiple.Answers = []Answer{{Value: "a", IsCorrect: true}, {Value: "b", IsCorrect: true}}
	if err := ValidateQuestion(multiple); err != nil {
		t.Fatalf("multiple answers may have several correct options: %v", err)
	}
}

func TestNormalizeTitle(t *testing.T) {
	title, err := NormalizeTitle("  Geography ")
	if err != nil || title != "Geography" {
		t.Fatalf("expected trimmed title, got %q %v", title, err)
	}
	if _, err := NormalizeTitle("\t"); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected empty title error, got %v", err)
	}
}
