package qa_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jordieb/landy/internal/qa"
	"github.com/jordieb/landy/internal/qa/prompt"
	"github.com/jordieb/landy/internal/transcript"
	"github.com/jordieb/landy/internal/vectordb"
)

func newService(index *MockIndex, completer *MockCompleter, store *MockStore, cache qa.Cache) qa.Service {
	return qa.NewService(qa.Deps{
		Index:          index,
		Completer:      completer,
		Assembler:      prompt.NewAssembler(""),
		Store:          store,
		Cache:          cache,
		RetrievalK:     1,
		BuildVersion:   "test",
		BuildTimestamp: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
}

func TestAnswer_Scenarios(t *testing.T) {
	storeDown := errors.New("db down")
	providerDown := errors.New("provider down")

	tests := []struct {
		name           string
		question       string
		setupMocks     func(ix *MockIndex, c *MockCompleter, st *MockStore)
		expectedAnswer string
		expectedErr    error
		wantTranscript bool
	}{
		{
			name:     "Success_Full_Flow",
			question: "how do I awaken my slayer?",
			setupMocks: func(ix *MockIndex, c *MockCompleter, st *MockStore) {
				c.OnComplete = func(ctx context.Context, messages []prompt.Message) (string, error) {
					return "final answer", nil
				}
			},
			expectedAnswer: "final answer",
			wantTranscript: true,
		},
		{
			name:        "Failure_Empty_Question",
			question:    "   \t ",
			setupMocks:  func(ix *MockIndex, c *MockCompleter, st *MockStore) {},
			expectedErr: qa.ErrEmptyQuestion,
		},
		{
			name:     "Failure_No_Index",
			question: "anything",
			setupMocks: func(ix *MockIndex, c *MockCompleter, st *MockStore) {
				ix.OnQuery = func(ctx context.Context, q string, k int) ([]vectordb.Match, error) {
					return nil, vectordb.ErrNoIndex
				}
			},
			expectedErr: vectordb.ErrNoIndex,
		},
		{
			name:     "Failure_LLM_Generation",
			question: "anything",
			setupMocks: func(ix *MockIndex, c *MockCompleter, st *MockStore) {
				c.OnComplete = func(ctx context.Context, messages []prompt.Message) (string, error) {
					return "", providerDown
				}
			},
			expectedErr: providerDown,
		},
		{
			name:     "Failure_Transcript_Write",
			question: "anything",
			setupMocks: func(ix *MockIndex, c *MockCompleter, st *MockStore) {
				st.OnRecordTranscript = func(ctx context.Context, tr transcript.Transcript) error {
					return storeDown
				}
			},
			expectedErr: storeDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := &MockIndex{}
			c := &MockCompleter{}
			st := &MockStore{}
			tt.setupMocks(ix, c, st)

			s := newService(ix, c, st, nil)
			answer, err := s.Answer(context.Background(), tt.question, "user-1")

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("error got %v, want %v", err, tt.expectedErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if answer.Text != tt.expectedAnswer {
				t.Errorf("answer got %q, want %q", answer.Text, tt.expectedAnswer)
			}
			if answer.QuestionID == "" {
				t.Error("answer is missing a question id")
			}
			if tt.wantTranscript {
				if len(st.Transcripts) != 1 {
					t.Fatalf("transcripts recorded got %d, want 1", len(st.Transcripts))
				}
				tr := st.Transcripts[0]
				if tr.QuestionID != answer.QuestionID {
					t.Errorf("transcript question id got %q, want %q", tr.QuestionID, answer.QuestionID)
				}
				if tr.Question != strings.TrimSpace(tt.question) {
					t.Errorf("transcript question got %q, want %q", tr.Question, tt.question)
				}
				if tr.Answer != tt.expectedAnswer {
					t.Errorf("transcript answer got %q, want %q", tr.Answer, tt.expectedAnswer)
				}
				if tr.BuildVersion != "test" {
					t.Errorf("transcript build version got %q, want %q", tr.BuildVersion, "test")
				}
			}
		})
	}
}

func TestAnswer_CacheHitSkipsPipeline(t *testing.T) {
	ix := &MockIndex{
		OnQuery: func(ctx context.Context, q string, k int) ([]vectordb.Match, error) {
			t.Error("index queried on a cache hit")
			return nil, nil
		},
	}
	c := &MockCompleter{
		OnComplete: func(ctx context.Context, messages []prompt.Message) (string, error) {
			t.Error("completer called on a cache hit")
			return "", nil
		},
	}
	st := &MockStore{}
	cache := &MockCache{
		OnGet: func(ctx context.Context, question string) (string, bool, error) {
			return "cached answer", true, nil
		},
	}

	s := newService(ix, c, st, cache)
	answer, err := s.Answer(context.Background(), "how do refine weapons?", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !answer.FromCache {
		t.Error("answer should be marked as cached")
	}
	if answer.Text != "cached answer" {
		t.Errorf("answer got %q, want %q", answer.Text, "cached answer")
	}
	// Cache hits still leave a transcript.
	if len(st.Transcripts) != 1 {
		t.Errorf("transcripts recorded got %d, want 1", len(st.Transcripts))
	}
}

func TestAnswer_CacheErrorFallsThrough(t *testing.T) {
	cache := &MockCache{
		OnGet: func(ctx context.Context, question string) (string, bool, error) {
			return "", false, errors.New("redis gone")
		},
	}
	c := &MockCompleter{
		OnComplete: func(ctx context.Context, messages []prompt.Message) (string, error) {
			return "fresh answer", nil
		},
	}

	s := newService(&MockIndex{}, c, &MockStore{}, cache)
	answer, err := s.Answer(context.Background(), "what is fatigue?", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.FromCache {
		t.Error("answer should not be marked as cached")
	}
	if answer.Text != "fresh answer" {
		t.Errorf("answer got %q, want %q", answer.Text, "fresh answer")
	}
}

func TestAnswer_JoinsMultipleMatches(t *testing.T) {
	var gotContext string
	ix := &MockIndex{
		OnQuery: func(ctx context.Context, q string, k int) ([]vectordb.Match, error) {
			if k != 3 {
				t.Errorf("k got %d, want 3", k)
			}
			return []vectordb.Match{
				{Text: "first", Score: 0.9},
				{Text: "second", Score: 0.8},
				{Text: "third", Score: 0.7},
			}, nil
		},
	}
	c := &MockCompleter{
		OnComplete: func(ctx context.Context, messages []prompt.Message) (string, error) {
			gotContext = messages[0].Content
			return "ok", nil
		},
	}

	s := qa.NewService(qa.Deps{
		Index:      ix,
		Completer:  c,
		Assembler:  prompt.NewAssembler(""),
		Store:      &MockStore{},
		RetrievalK: 3,
	})
	if _, err := s.Answer(context.Background(), "question", "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "first\nsecond\nthird"
	if !strings.Contains(gotContext, want) {
		t.Errorf("system message is missing the joined context %q", want)
	}
}

func TestFeedback(t *testing.T) {
	st := &MockStore{}
	s := newService(&MockIndex{}, &MockCompleter{}, st, nil)

	commentary := "the answer was outdated"
	if err := s.Feedback(context.Background(), "q-123", false, &commentary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(st.Feedbacks) != 1 {
		t.Fatalf("feedback rows got %d, want 1", len(st.Feedbacks))
	}
	f := st.Feedbacks[0]
	if f.QuestionID != "q-123" {
		t.Errorf("question id got %q, want %q", f.QuestionID, "q-123")
	}
	if f.IsPositive {
		t.Error("feedback should be negative")
	}
	if f.Commentary == nil || *f.Commentary != commentary {
		t.Errorf("commentary got %v, want %q", f.Commentary, commentary)
	}
	if f.FeedbackID == "" {
		t.Error("feedback is missing an id")
	}
}
