package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry with HTTP and game-play collectors. It
// satisfies app.Observer.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	gamesStarted  prometheus.Counter
	gamesFinished prometheus.Counter
	answers       *prometheus.CounterVec
	answerScore   prometheus.Histogram
	skips         prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_games_started_total",
			Help: "Games started",
		}),
		gamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_games_finished_total",
			Help: "Games finished by exhaustion or explicitly",
		}),
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_answers_total",
				Help: "Answered questions by outcome",
			},
			[]string{"outcome"},
		),
		answerScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quiz_answer_score",
			Help:    "Score awarded per answered question",
			Buckets: prometheus.LinearBuckets(-1, 0.25, 9),
		}),
		skips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_questions_skipped_total",
			Help: "Skipped questions",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.gamesStarted,
		m.gamesFinished,
		m.answers,
		m.answerScore,
		m.skips,
	)
	return m
}

// Middleware records count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) GameStarted() { m.gamesStarted.Inc() }

func (m *Metrics) GameFinished() { m.gamesFinished.Inc() }

func (m *Metrics) QuestionSkipped() { m.skips.Inc() }

func (m *Metrics) QuestionAnswered(score float64) {
	m.answers.WithLabelValues(outcome(score)).Inc()
	m.answerScore.Observe(score)
}

func outcome(score float64) string {
	switch {
	case score >= 1:
		return "correct"
	case score <= -1:
		return "incorrect"
	default:
		return "partial"
	}
}
