// Package qa orchestrates the question-answering pipeline: cache check,
// retrieval, prompt assembly, completion, persistence. Steps run strictly in
// that order; each consumes the previous step's output.
package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jordieb/landy/internal/metrics"
	"github.com/jordieb/landy/internal/qa/prompt"
	"github.com/jordieb/landy/internal/transcript"
	"github.com/jordieb/landy/internal/vectordb"
	"github.com/jordieb/landy/pkg/logging"

	"github.com/google/uuid"
)

// ErrEmptyQuestion rejects blank questions before any remote call is issued.
var ErrEmptyQuestion = errors.New("question is empty")

// Index is the retrieval dependency; satisfied by vectordb implementations.
type Index interface {
	Query(ctx context.Context, question string, k int) ([]vectordb.Match, error)
}

// Completer is the generation dependency; satisfied by llm providers.
type Completer interface {
	Complete(ctx context.Context, messages []prompt.Message) (string, error)
}

// TranscriptStore is the persistence dependency.
type TranscriptStore interface {
	RecordTranscript(ctx context.Context, t transcript.Transcript) error
	RecordFeedback(ctx context.Context, f transcript.Feedback) error
	RecordLog(ctx context.Context, e transcript.LogEntry) error
}

// Cache is the optional answer cache; a nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, question string) (string, bool, error)
	Set(ctx context.Context, question, answer string) error
}

// Answer is the result handed back to the bot adapter.
type Answer struct {
	QuestionID string
	Text       string
	FromCache  bool
}

// Service answers questions and records feedback. One call per user
// question; no mutable state is shared across calls.
type Service interface {
	Answer(ctx context.Context, question string, askerID string) (Answer, error)
	Feedback(ctx context.Context, questionID string, positive bool, commentary *string) error
}

type service struct {
	index     Index
	completer Completer
	assembler *prompt.Assembler
	store     TranscriptStore
	cache     Cache

	retrievalK     int
	buildVersion   string
	buildTimestamp time.Time

	logger *logging.Logger
}

// Deps wires a Service. Index, Completer, Assembler and Store are required;
// Cache may be nil.
type Deps struct {
	Index          Index
	Completer      Completer
	Assembler      *prompt.Assembler
	Store          TranscriptStore
	Cache          Cache
	RetrievalK     int
	BuildVersion   string
	BuildTimestamp time.Time
}

func NewService(deps Deps) Service {
	k := deps.RetrievalK
	if k < 1 {
		k = 1
	}
	return &service{
		index:          deps.Index,
		completer:      deps.Completer,
		assembler:      deps.Assembler,
		store:          deps.Store,
		cache:          deps.Cache,
		retrievalK:     k,
		buildVersion:   deps.BuildVersion,
		buildTimestamp: deps.BuildTimestamp,
		logger:         logging.NewLogger("QA Service"),
	}
}

func (s *service) Answer(ctx context.Context, question string, askerID string) (Answer, error) {
	started := time.Now()
	defer func() { metrics.CaptureAnswerDuration(time.Since(started)) }()

	question = strings.TrimSpace(question)
	if question == "" {
		metrics.CountQuestion("rejected")
		return Answer{}, ErrEmptyQuestion
	}

	questionID := uuid.New().String()
	askedAt := time.Now().UTC()
	log := s.logger.With("questionId", questionID, "asker", askerID)
	log.Info("Answering question", "question", question)

	answerText, fromCache, err := s.generate(ctx, log, question, questionID)
	if err != nil {
		metrics.CountQuestion("failed")
		return Answer{}, err
	}

	if err := s.store.RecordTranscript(ctx, transcript.Transcript{
		QuestionID:     questionID,
		Question:       question,
		Answer:         answerText,
		AskedAt:        askedAt,
		BuildVersion:   s.buildVersion,
		BuildTimestamp: s.buildTimestamp,
	}); err != nil {
		metrics.CountQuestion("failed")
		return Answer{}, err
	}

	s.logOutcome(ctx, questionID, fromCache, time.Since(started))

	if fromCache {
		metrics.CountQuestion("cached")
	} else {
		metrics.CountQuestion("answered")
	}
	log.Info("Question answered", "fromCache", fromCache)

	return Answer{QuestionID: questionID, Text: answerText, FromCache: fromCache}, nil
}

// generate produces the answer text: cache first, then
// retrieve -> assemble -> complete.
func (s *service) generate(ctx context.Context, log *logging.Logger, question, questionID string) (text string, fromCache bool, err error) {
	if s.cache != nil {
		cached, hit, cacheErr := s.cache.Get(ctx, question)
		if cacheErr != nil {
			log.Warn("Cache lookup failed, continuing without it", "error", cacheErr)
		} else if hit {
			return cached, true, nil
		}
	}

	contextText, err := s.retrieve(ctx, question)
	if err != nil {
		return "", false, err
	}
	log.Debug("Found most relevant context from vector store")

	messages := s.assembler.Assemble(question, contextText)

	llmStart := time.Now()
	answerText, err := s.completer.Complete(ctx, messages)
	metrics.CaptureDependencyLatency("llm_generation", time.Since(llmStart))
	if err != nil {
		return "", false, fmt.Errorf("generating answer: %w", err)
	}

	if s.cache != nil {
		// Detached context: the interaction may finish before the write does.
		go func() {
			if err := s.cache.Set(context.WithoutCancel(ctx), question, answerText); err != nil {
				log.Warn("Failed to cache answer", "error", err)
			}
		}()
	}

	return answerText, false, nil
}

func (s *service) retrieve(ctx context.Context, question string) (string, error) {
	start := time.Now()
	matches, err := s.index.Query(ctx, question, s.retrievalK)
	metrics.CaptureDependencyLatency("vector_search", time.Since(start))
	if err != nil {
		return "", fmt.Errorf("retrieving context: %w", err)
	}

	// Top-1 is the default; with k > 1 the matches are joined nearest-first.
	// No smarter merge policy is defined.
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return strings.Join(texts, "\n"), nil
}

func (s *service) Feedback(ctx context.Context, questionID string, positive bool, commentary *string) error {
	err := s.store.RecordFeedback(ctx, transcript.Feedback{
		FeedbackID: uuid.New().String(),
		QuestionID: questionID,
		IsPositive: positive,
		Commentary: commentary,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	metrics.CountFeedback(positive)
	s.logger.Info("Feedback recorded", "questionId", questionID, "positive", positive)
	return nil
}

// logOutcome writes the per-question summary row. Best effort: a failed log
// write never fails the question.
func (s *service) logOutcome(ctx context.Context, questionID string, fromCache bool, elapsed time.Duration) {
	err := s.store.RecordLog(ctx, transcript.LogEntry{
		LogID:      uuid.New().String(),
		QuestionID: questionID,
		Level:      "INFO",
		Message:    "question answered",
		Module:     "qa",
		Extra: map[string]any{
			"from_cache": fromCache,
			"elapsed_ms": elapsed.Milliseconds(),
		},
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("Failed to record question log", "questionId", questionID, "error", err)
	}
}
