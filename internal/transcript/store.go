// Package transcript persists question/answer exchanges, user feedback, and
// per-question pipeline logs to PostgreSQL.
package transcript

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jordieb/landy/pkg/logging"
)

// ErrDuplicateQuestion reports a transcript write reusing an existing
// question id. Question ids are minted once per query and never reused, so
// the caller surfaces this instead of retrying.
var ErrDuplicateQuestion = errors.New("transcript already recorded for question id")

// ErrUnknownQuestion reports feedback (or a log row) referencing a question
// id with no transcript.
var ErrUnknownQuestion = errors.New("no transcript exists for question id")

// Transcript is one persisted question/answer exchange.
type Transcript struct {
	QuestionID     string
	Question       string
	Answer         string
	AskedAt        time.Time
	BuildVersion   string
	BuildTimestamp time.Time
}

// Feedback is one user reaction to a transcript. Commentary is nil for
// thumbs-up; the product asks for it on thumbs-down but the store does not
// enforce that.
type Feedback struct {
	FeedbackID string
	QuestionID string
	IsPositive bool
	Commentary *string
	CreatedAt  time.Time
}

// LogEntry is a structured pipeline log row correlated to a question.
type LogEntry struct {
	LogID      string
	QuestionID string
	Level      string
	Message    string
	Module     string
	Extra      map[string]any
	CreatedAt  time.Time
}

// Store implements transcript persistence over a DB pool.
type Store struct {
	db     *DB
	logger *logging.Logger
}

func NewStore(db *DB) *Store {
	return &Store{
		db:     db,
		logger: logging.NewLogger("transcript"),
	}
}

// RecordTranscript inserts one transcript row. A second call with the same
// question id fails with ErrDuplicateQuestion and leaves the first row
// untouched.
func (s *Store) RecordTranscript(ctx context.Context, t Transcript) error {
	query := `
		INSERT INTO qna_results (question_uuid, question, answer, question_timestamp, build_version, build_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.QuestionID,
		t.Question,
		t.Answer,
		t.AskedAt,
		t.BuildVersion,
		t.BuildTimestamp,
	)
	if err != nil {
		return mapConstraintError(fmt.Errorf("recording transcript: %w", err))
	}
	s.logger.Debug("Transcript recorded", "questionId", t.QuestionID)
	return nil
}

// RecordFeedback inserts one feedback row. Referential integrity is enforced
// by the foreign key: feedback for an unknown question id fails with
// ErrUnknownQuestion and writes nothing.
func (s *Store) RecordFeedback(ctx context.Context, f Feedback) error {
	query := `
		INSERT INTO qna_feedback (feedback_uuid, question_uuid, feedback_timestamp, is_positive, feedback_commentary)
		VALUES ($1, $2, $3, $4, $5)
	`
	var commentary sql.NullString
	if f.Commentary != nil {
		commentary = sql.NullString{String: *f.Commentary, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		f.FeedbackID,
		f.QuestionID,
		f.CreatedAt,
		f.IsPositive,
		commentary,
	)
	if err != nil {
		return mapConstraintError(fmt.Errorf("recording feedback: %w", err))
	}
	s.logger.Debug("Feedback recorded", "questionId", f.QuestionID, "positive", f.IsPositive)
	return nil
}

// RecordLog inserts one structured log row for a question.
func (s *Store) RecordLog(ctx context.Context, e LogEntry) error {
	var extra []byte
	if e.Extra != nil {
		var err error
		extra, err = json.Marshal(e.Extra)
		if err != nil {
			return fmt.Errorf("marshalling log extra: %w", err)
		}
	}

	query := `
		INSERT INTO qna_logs (log_uuid, question_uuid, log_level, log_timestamp, log_message, log_module, log_additional_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.LogID,
		e.QuestionID,
		e.Level,
		e.CreatedAt,
		e.Message,
		e.Module,
		extra,
	)
	if err != nil {
		return mapConstraintError(fmt.Errorf("recording log: %w", err))
	}
	return nil
}

// tables deletable through Delete. Maintenance surface only; the request
// path never deletes.
var deletableTables = map[string]bool{
	"qna_results":  true,
	"qna_feedback": true,
	"qna_logs":     true,
}

// Delete removes rows matching condition from table. condition is a SQL
// predicate with $n placeholders bound to args.
func (s *Store) Delete(ctx context.Context, table, condition string, args ...any) error {
	if !deletableTables[table] {
		return fmt.Errorf("table %q is not deletable", table)
	}
	s.logger.Debug("Deleting rows", "table", table, "condition", condition)

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, condition)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	return nil
}

// Postgres error codes for constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %w", ErrDuplicateQuestion, err)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %w", ErrUnknownQuestion, err)
	}
	return err
}
