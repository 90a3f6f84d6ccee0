package service

import (
	"context"
	"fmt"

	"github.com/sakif/teamline/internal/apperror"
	"github.com/sakif/teamline/internal/model"
)

// Search query length bounds.
const (
	MinQueryLength = 1
	MaxQueryLength = 1000
)

// SearchService is the on-demand search index: a case-insensitive substring
// scan over the message logs of every conversation the caller currently
// belongs to. There is no standing index to maintain — the store computes
// each result set from the live tables, in descending message id order (the
// stable tie-break that makes results comparable across calls).
type SearchService struct {
	core
}

// Query returns the caller's visible messages containing queryStr. A
// message in a channel or dm the caller never joined can never appear, no
// matter what its body says.
func (s *SearchService) Query(ctx context.Context, token, queryStr string) ([]model.Message, error) {
	user, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(queryStr) < MinQueryLength || len(queryStr) > MaxQueryLength {
		return nil, apperror.Input("queryStr",
			fmt.Sprintf("query must be between %d and %d characters", MinQueryLength, MaxQueryLength))
	}

	msgs, err := s.store.SearchMessages(ctx, user.ID, queryStr)
	if err != nil {
		return nil, err
	}
	markCallerReacts(msgs, user.ID)
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}
