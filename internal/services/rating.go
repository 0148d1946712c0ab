package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/data/repos"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
	"github.com/yungbote/skillswap-backend/internal/domain/rating"
	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

type RateSessionInput struct {
	Rating  int      `json:"rating"`
	Comment string   `json:"comment"`
	Tags    []string `json:"tags"`
}

type RatingPage struct {
	Ratings    []*types.Rating `json:"ratings"`
	Pagination Pagination      `json:"pagination"`
}

type RatingService interface {
	Rate(ctx context.Context, sessionID uuid.UUID, in RateSessionInput) (*types.Rating, error)
	ListReceived(ctx context.Context, userID uuid.UUID, page, limit int) (*RatingPage, error)
}

type ratingService struct {
	log        *logger.Logger
	ratingRepo repos.RatingRepo
	ratings    domainagg.RatingAggregate
	notifier   SessionNotifier
	now        func() time.Time
}

func NewRatingService(log *logger.Logger, ratingRepo repos.RatingRepo, ratings domainagg.RatingAggregate, notifier SessionNotifier) RatingService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &ratingService{
		log:        log.With("service", "RatingService"),
		ratingRepo: ratingRepo,
		ratings:    ratings,
		notifier:   notifier,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (rs *ratingService) Rate(ctx context.Context, sessionID uuid.UUID, in RateSessionInput) (*types.Rating, error) {
	raterID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if !rating.ValidScore(in.Rating) {
		return nil, apierr.Validation(apierr.FieldError{Field: "rating", Message: "Rating must be between 1 and 5"})
	}
	res, err := rs.ratings.Rate(ctx, domainagg.RateSessionInput{
		SessionID: sessionID,
		RaterID:   raterID,
		Score:     in.Rating,
		Comment:   in.Comment,
		Tags:      in.Tags,
		At:        rs.now(),
	})
	if err != nil {
		return nil, err
	}
	rs.notifier.SessionRated(ctx, res.Rating)
	return res.Rating, nil
}

func (rs *ratingService) ListReceived(ctx context.Context, userID uuid.UUID, page, limit int) (*RatingPage, error) {
	page, limit, offset := pageWindow(page, limit)
	rows, total, err := rs.ratingRepo.ListReceived(dbctx.Background(ctx), userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	if rows == nil {
		rows = []*types.Rating{}
	}
	return &RatingPage{Ratings: rows, Pagination: newPagination(total, page, limit)}, nil
}
