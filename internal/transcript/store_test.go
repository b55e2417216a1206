package transcript

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "unique violation maps to duplicate question",
			err:  fmt.Errorf("recording transcript: %w", &pq.Error{Code: "23505"}),
			want: ErrDuplicateQuestion,
		},
		{
			name: "foreign key violation maps to unknown question",
			err:  fmt.Errorf("recording feedback: %w", &pq.Error{Code: "23503"}),
			want: ErrUnknownQuestion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapConstraintError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			// The driver error stays in the chain for logs.
			var pqErr *pq.Error
			assert.True(t, errors.As(got, &pqErr))
		})
	}
}

func TestMapConstraintError_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("connection refused")
	assert.Equal(t, plain, mapConstraintError(plain))

	otherPg := fmt.Errorf("wrapped: %w", &pq.Error{Code: "42P01"})
	got := mapConstraintError(otherPg)
	assert.NotErrorIs(t, got, ErrDuplicateQuestion)
	assert.NotErrorIs(t, got, ErrUnknownQuestion)
}

func TestDelete_RejectsUnknownTable(t *testing.T) {
	s := NewStore(nil)
	err := s.Delete(context.Background(), "users; DROP TABLE qna_results", "1=1")
	assert.Error(t, err)
}
