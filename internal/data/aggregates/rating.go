package aggregates

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/skillswap-backend/internal/data/repos"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
	"github.com/yungbote/skillswap-backend/internal/domain/rating"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
)

type RatingDeps struct {
	Base     BaseDeps
	Users    repos.UserRepo
	Sessions repos.SessionRepo
	Ratings  repos.RatingRepo
}

type ratingAggregate struct {
	deps RatingDeps
}

var _ domainagg.RatingAggregate = (*ratingAggregate)(nil)

func NewRatingAggregate(deps RatingDeps) domainagg.RatingAggregate {
	deps.Base = deps.Base.withDefaults()
	return &ratingAggregate{deps: deps}
}

func (a *ratingAggregate) Contract() domainagg.Contract {
	return domainagg.RatingAggregateContract
}

func (a *ratingAggregate) Rate(ctx context.Context, in domainagg.RateSessionInput) (domainagg.RateSessionResult, error) {
	const op = "Sessions.RatingAggregate.Rate"
	out := domainagg.RateSessionResult{}
	if a == nil || a.deps.Users == nil || a.deps.Sessions == nil || a.deps.Ratings == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "rating aggregate not initialized", nil)
	}
	if in.SessionID == uuid.Nil || in.RaterID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "session id and rater id are required", nil)
	}
	if !rating.ValidScore(in.Score) {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "Rating must be between 1 and 5", nil)
	}
	at := orNow(in.At)

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.deps.Sessions.GetForParticipant(dbc, in.SessionID, in.RaterID)
		if err != nil {
			return err
		}
		if s == nil {
			return NotFoundError("Session not found")
		}
		if s.Status != types.SessionStatusCompleted {
			return PreconditionError(domainagg.ErrSessionNotRatable)
		}
		done, err := a.deps.Ratings.Exists(dbc, s.ID, in.RaterID)
		if err != nil {
			return err
		}
		if done {
			return PreconditionError(domainagg.ErrAlreadyRated)
		}

		rated := s.CounterpartOf(in.RaterID)
		asTeacher := rated == s.TeacherID
		row := &types.Rating{
			SessionID:   s.ID,
			RaterID:     in.RaterID,
			RatedUserID: rated,
			Score:       in.Score,
			Comment:     strings.TrimSpace(in.Comment),
			Tags:        datatypes.JSONSlice[string](tags),
			CreatedAt:   at,
		}
		if _, err := a.deps.Ratings.Create(dbc, []*types.Rating{row}); err != nil {
			if isUniqueViolation(err) {
				return PreconditionError(domainagg.ErrAlreadyRated)
			}
			return err
		}
		if err := a.deps.Users.AddRating(dbc, rated, asTeacher, in.Score); err != nil {
			return err
		}
		out.Rating = row
		out.RatedAsTeacher = asTeacher
		return nil
	})
	if err != nil {
		return domainagg.RateSessionResult{}, err
	}
	return out, nil
}
