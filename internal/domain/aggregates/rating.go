package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/domain/rating"
)

var RatingAggregateContract = Contract{
	Name:             "Sessions.RatingAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Inserts a rating and folds it into the rated user's running average in one transaction.",
}

// RatingAggregate owns post-session ratings.
type RatingAggregate interface {
	Aggregate

	Rate(ctx context.Context, in RateSessionInput) (RateSessionResult, error)
}

type RateSessionInput struct {
	SessionID uuid.UUID
	RaterID   uuid.UUID
	Score     int
	Comment   string
	Tags      []string
	At        time.Time
}

type RateSessionResult struct {
	Rating *rating.Rating
	// RatedAsTeacher is true when the rated user taught the session.
	RatedAsTeacher bool
}
