package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bersena911/quizapi/internal/app"
	"github.com/bersena911/quizapi/internal/domain"
	"github.com/bersena911/quizapi/internal/infra/memory"
	"github.com/bersena911/quizapi/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func mintToken(t *testing.T, userID string, disabled bool) string {
	t.Helper()
	claims := Claims{
		Disabled: disabled,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestRouter(storage map[string]Pinger) *gin.Engine {
	catalog := memory.NewCatalog()
	games := memory.NewGameStore()
	return NewRouter(RouterConfig{
		Games:     app.NewGameService(games, catalog, memory.NewQuizCache(catalog, time.Minute)),
		Quizzes:   app.NewQuizService(catalog, games),
		Metrics:   metrics.New(),
		JWTSecret: testSecret,
		Storage:   storage,
	})
}

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// publishQuiz authors a published two question quiz through the API.
func publishQuiz(t *testing.T, author client) domain.Quiz {
	t.Helper()
	rec := author.do(http.MethodPost, "/api/v1/quizzes", map[string]string{"title": "Arithmetic"})
	expectStatus(t, rec, http.StatusCreated)
	quiz := decode[domain.Quiz](t, rec)

	rec = author.do(http.MethodPost, "/api/v1/questions", map[string]interface{}{
		"quiz_id": quiz.ID,
		"questions": []map[string]interface{}{
			{
				"title": "2 + 2",
				"type":  "SINGLE_ANSWER",
				"answers": []map[string]interface{}{
					{"value": "4", "is_correct": true},
					{"value": "5"},
				},
			},
			{
				"title": "even numbers",
				"type":  "MULTIPLE_ANSWERS",
				"answers": []map[string]interface{}{
					{"value": "2", "is_correct": true},
					{"value": "4", "is_correct": true},
					{"value": "5"},
				},
			},
		},
	})
	expectStatus(t, rec, http.StatusCreated)

	rec = author.do(http.MethodPatch, "/api/v1/quizzes/"+quiz.ID+"/publish", nil)
	expectStatus(t, rec, http.StatusNoContent)

	rec = author.do(http.MethodGet, "/api/v1/quizzes/"+quiz.ID, nil)
	expectStatus(t, rec, http.StatusOK)
	return decode[domain.Quiz](t, rec)
}

func TestAuthentication(t *testing.T) {
	router := newTestRouter(nil)

	rec := client{t: t, router: router}.do(http.MethodGet, "/api/v1/games", nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = client{t: t, router: router, token: "garbage"}.do(http.MethodGet, "/api/v1/games", nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = client{t: t, router: router, token: mintToken(t, "u1", true)}.do(http.MethodGet, "/api/v1/games", nil)
	expectStatus(t, rec, http.StatusForbidden)

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}).SignedString([]byte("other"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	rec = client{t: t, router: router, token: other}.do(http.MethodGet, "/api/v1/games", nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = client{t: t, router: router, token: mintToken(t, "u1", false)}.do(http.MethodGet, "/api/v1/games", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestGamePlayOverREST(t *testing.T) {
	router := newTestRouter(nil)
	author := client{t: t, router: router, token: mintToken(t, "author", false)}
	player := client{t: t, router: router, token: mintToken(t, "player", false)}
	quiz := publishQuiz(t, author)

	rec := player.do(http.MethodPost, "/api/v1/games/start", map[string]string{"quiz_id": quiz.ID})
	expectStatus(t, rec, http.StatusCreated)
	gameID := decode[map[string]string](t, rec)["id"]

	rec = player.do(http.MethodGet, "/api/v1/games/"+gameID+"/results", nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = player.do(http.MethodGet, "/api/v1/games/"+gameID+"/next", nil)
	expectStatus(t, rec, http.StatusOK)
	first := decode[domain.NextQuestion](t, rec)
	if first.Title != "2 + 2" || bytes.Contains(rec.Body.Bytes(), []byte("is_correct")) {
		t.Fatalf("unexpected served question %s", rec.Body.String())
	}

	path := "/api/v1/games/" + gameID + "/questions/" + first.ID
	rec = player.do(http.MethodPost, path+"/answer", map[string]interface{}{"choices": []string{quiz.Questions[0].Answers[0].ID}})
	expectStatus(t, rec, http.StatusNoContent)
	rec = player.do(http.MethodPost, path+"/answer", map[string]interface{}{"choices": []string{quiz.Questions[0].Answers[0].ID}})
	expectStatus(t, rec, http.StatusBadRequest)
	if decode[map[string]string](t, rec)["error"] != domain.ErrAlreadyAnswered.Error() {
		t.Fatalf("unexpected error body %s", rec.Body.String())
	}

	rec = player.do(http.MethodGet, "/api/v1/games/"+gameID+"/next", nil)
	expectStatus(t, rec, http.StatusOK)
	second := decode[domain.NextQuestion](t, rec)
	rec = player.do(http.MethodPost, "/api/v1/games/"+gameID+"/questions/"+second.ID+"/skip", nil)
	expectStatus(t, rec, http.StatusNoContent)

	rec = player.do(http.MethodGet, "/api/v1/games/"+gameID+"/next", nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = player.do(http.MethodGet, "/api/v1/games/"+gameID+"/results", nil)
	expectStatus(t, rec, http.StatusOK)
	results := decode[domain.Results](t, rec)
	if results.Score != 1 || results.ScorePercentage != 50 || len(results.QuestionStats) != 2 {
		t.Fatalf("unexpected results %+v", results)
	}

	rec = player.do(http.MethodPost, "/api/v1/games/start", map[string]string{"quiz_id": quiz.ID})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = author.do(http.MethodGet, "/api/v1/quizzes/"+quiz.ID+"/games/"+gameID, nil)
	expectStatus(t, rec, http.StatusOK)
	rec = author.do(http.MethodGet, "/api/v1/games/"+gameID+"/results", nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestErrorMapping(t *testing.T) {
	router := newTestRouter(nil)
	author := client{t: t, router: router, token: mintToken(t, "author", false)}

	rec := author.do(http.MethodPost, "/api/v1/quizzes", "{not json")
	expectStatus(t, rec, http.StatusBadRequest)

	rec = author.do(http.MethodGet, "/api/v1/quizzes/missing", nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = author.do(http.MethodPost, "/api/v1/quizzes", map[string]string{"title": "Draft"})
	expectStatus(t, rec, http.StatusCreated)
	quiz := decode[domain.Quiz](t, rec)

	rec = author.do(http.MethodPatch, "/api/v1/quizzes/"+quiz.ID+"/publish", nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = author.do(http.MethodPost, "/api/v1/questions", map[string]interface{}{
		"quiz_id":   quiz.ID,
		"questions": []map[string]interface{}{{"title": "q", "type": "ESSAY", "answers": []map[string]interface{}{{"value": "a", "is_correct": true}, {"value": "b"}}}},
	})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = author.do(http.MethodPost, "/api/v1/games/start", map[string]string{})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = author.do(http.MethodDelete, "/api/v1/quizzes/"+quiz.ID, nil)
	expectStatus(t, rec, http.StatusNoContent)
	rec = author.do(http.MethodGet, "/api/v1/quizzes", nil)
	expectStatus(t, rec, http.StatusOK)
	if quizzes := decode[[]domain.Quiz](t, rec); len(quizzes) != 0 {
		t.Fatalf("expected deleted quiz to disappear, got %+v", quizzes)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrGameNotFound, http.StatusNotFound},
		{domain.ErrGameFinished, http.StatusBadRequest},
		{domain.ErrInvalidChoice, http.StatusBadRequest},
		{domain.ErrUnknownQuestionType, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
	if publicMessage(errors.New("dial tcp: refused")) != "internal server error" {
		t.Fatalf("expected internal errors to be hidden")
	}
}

func TestHealth(t *testing.T) {
	rec := client{t: t, router: newTestRouter(map[string]Pinger{"postgres": okPinger{}})}.do(http.MethodGet, "/api/v1/health", nil)
	expectStatus(t, rec, http.StatusOK)
	if body := decode[healthResponse](t, rec); body.Storage["postgres"] != "ok" {
		t.Fatalf("unexpected health %+v", body)
	}

	rec = client{t: t, router: newTestRouter(map[string]Pinger{"redis": failingPinger{}})}.do(http.MethodGet, "/api/v1/health", nil)
	expectStatus(t, rec, http.StatusServiceUnavailable)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(nil)
	rec := client{t: t, router: router}.do(http.MethodGet, "/metrics", nil)
	expectStatus(t, rec, http.StatusOK)
	if !bytes.Contains(rec.Body.Bytes(), []byte("quiz_games_started_total")) {
		t.Fatalf("expected game metrics in exposition")
	}
}
