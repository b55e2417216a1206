package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var questionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "landy_questions_total",
	Help: "Questions handled, labelled by outcome (answered, cached, rejected, failed).",
}, []string{"outcome"})

var feedbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "landy_feedback_total",
	Help: "Feedback recorded, labelled by polarity.",
}, []string{"polarity"})

var answerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "landy_answer_duration_seconds",
	Help:    "Total time spent answering one question.",
	Buckets: []float64{.25, .5, 1, 2, 5, 10, 30, 60},
})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "landy_dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CountQuestion(outcome string) {
	questionsTotal.WithLabelValues(outcome).Inc()
}

func CountFeedback(positive bool) {
	polarity := "negative"
	if positive {
		polarity = "positive"
	}
	feedbackTotal.WithLabelValues(polarity).Inc()
}

func CaptureAnswerDuration(elapsed time.Duration) {
	answerDuration.Observe(elapsed.Seconds())
}

func CaptureDependencyLatency(service string, elapsed time.Duration) {
	dependencyLatency.WithLabelValues(service).Observe(elapsed.Seconds())
}
