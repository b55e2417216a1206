package qa_test

import (
	"context"

	"github.com/jordieb/landy/internal/qa/prompt"
	"github.com/jordieb/landy/internal/transcript"
	"github.com/jordieb/landy/internal/vectordb"
)

// MockIndex implements qa.Index
type MockIndex struct {
	OnQuery func(ctx context.Context, question string, k int) ([]vectordb.Match, error)
}

func (m *MockIndex) Query(ctx context.Context, question string, k int) ([]vectordb.Match, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, question, k)
	}
	return []vectordb.Match{{Text: "default context", DocName: "guide.txt", Score: 0.9}}, nil
}

// MockCompleter implements qa.Completer
type MockCompleter struct {
	OnComplete func(ctx context.Context, messages []prompt.Message) (string, error)
}

func (m *MockCompleter) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	if m.OnComplete != nil {
		return m.OnComplete(ctx, messages)
	}
	return "mocked llm response", nil
}

// MockStore implements qa.TranscriptStore and records what was written.
type MockStore struct {
	OnRecordTranscript func(ctx context.Context, t transcript.Transcript) error
	OnRecordFeedback   func(ctx context.Context, f transcript.Feedback) error
	OnRecordLog        func(ctx context.Context, e transcript.LogEntry) error

	Transcripts []transcript.Transcript
	Feedbacks   []transcript.Feedback
	Logs        []transcript.LogEntry
}

func (m *MockStore) RecordTranscript(ctx context.Context, t transcript.Transcript) error {
	if m.OnRecordTranscript != nil {
		return m.OnRecordTranscript(ctx, t)
	}
	m.Transcripts = append(m.Transcripts, t)
	return nil
}

func (m *MockStore) RecordFeedback(ctx context.Context, f transcript.Feedback) error {
	if m.OnRecordFeedback != nil {
		return m.OnRecordFeedback(ctx, f)
	}
	m.Feedbacks = append(m.Feedbacks, f)
	return nil
}

func (m *MockStore) RecordLog(ctx context.Context, e transcript.LogEntry) error {
	if m.OnRecordLog != nil {
		return m.OnRecordLog(ctx, e)
	}
	m.Logs = append(m.Logs, e)
	return nil
}

// MockCache implements qa.Cache
type MockCache struct {
	OnGet func(ctx context.Context, question string) (string, bool, error)
	OnSet func(ctx context.Context, question, answer string) error
}

func (m *MockCache) Get(ctx context.Context, question string) (string, bool, error) {
	if m.OnGet != nil {
		return m.OnGet(ctx, question)
	}
	return "", false, nil
}

func (m *MockCache) Set(ctx context.Context, question, answer string) error {
	if m.OnSet != nil {
		return m.OnSet(ctx, question, answer)
	}
	return nil
}
