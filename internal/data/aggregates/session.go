package aggregates

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/data/repos"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
	"github.com/yungbote/skillswap-backend/internal/domain/ledger"
	domainsession "github.com/yungbote/skillswap-backend/internal/domain/session"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
)

// ScheduleGrace is how far in the past a session may still be scheduled to start.
const ScheduleGrace = 5 * time.Minute

type SessionDeps struct {
	Base     BaseDeps
	Users    repos.UserRepo
	Skills   repos.SkillRepo
	Sessions repos.SessionRepo
	Txs      repos.TokenTransactionRepo
	Economy  ledger.Economy
}

type sessionAggregate struct {
	deps SessionDeps
	w    ledgerWriter
}

var _ domainagg.SessionAggregate = (*sessionAggregate)(nil)

func NewSessionAggregate(deps SessionDeps) domainagg.SessionAggregate {
	deps.Base = deps.Base.withDefaults()
	return &sessionAggregate{deps: deps, w: ledgerWriter{users: deps.Users, txs: deps.Txs}}
}

func (a *sessionAggregate) Contract() domainagg.Contract {
	return domainagg.SessionAggregateContract
}

func (a *sessionAggregate) ready() bool {
	return a != nil && a.deps.Users != nil && a.deps.Skills != nil && a.deps.Sessions != nil && a.deps.Txs != nil
}

func (a *sessionAggregate) Schedule(ctx context.Context, in domainagg.ScheduleSessionInput) (domainagg.ScheduleSessionResult, error) {
	const op = "Sessions.SessionAggregate.Schedule"
	out := domainagg.ScheduleSessionResult{}
	if !a.ready() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "session aggregate not initialized", nil)
	}
	at := orNow(in.At)
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return out, domainagg.NewError(domainagg.CodeValidation, op, "title is required", nil)
	case !domainsession.IsKnownType(in.SessionType):
		return out, domainagg.NewError(domainagg.CodeValidation, op, "Invalid session type", nil)
	case in.TeacherID == uuid.Nil || in.LearnerID == uuid.Nil || in.SkillID == uuid.Nil:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "Invalid teacher, learner, or skill", nil)
	case in.TeacherID == in.LearnerID:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "You cannot book a session with yourself", nil)
	case !in.ScheduledEndTime.After(in.ScheduledStartTime):
		return out, domainagg.NewError(domainagg.CodeValidation, op, "End time must be after start time", nil)
	case in.ScheduledStartTime.Before(at.Add(-ScheduleGrace)):
		return out, domainagg.NewError(domainagg.CodeValidation, op, "Start time cannot be in the past", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		people, err := a.deps.Users.GetActiveByIDs(dbc, []uuid.UUID{in.TeacherID, in.LearnerID})
		if err != nil {
			return err
		}
		sk, err := a.deps.Skills.GetByID(dbc, in.SkillID)
		if err != nil {
			return err
		}
		if len(people) != 2 || sk == nil || !sk.IsActive {
			return ValidationError("Invalid teacher, learner, or skill")
		}

		start, end := in.ScheduledStartTime.UTC(), in.ScheduledEndTime.UTC()
		s := &types.Session{
			ID:                 uuid.New(),
			TeacherID:          in.TeacherID,
			LearnerID:          in.LearnerID,
			SkillID:            in.SkillID,
			SessionType:        in.SessionType,
			Status:             types.SessionStatusScheduled,
			Title:              title,
			Description:        strings.TrimSpace(in.Description),
			Notes:              strings.TrimSpace(in.Notes),
			ScheduledStartTime: start,
			ScheduledEndTime:   end,
			DurationMinutes:    int(math.Round(end.Sub(start).Minutes())),
			RoomID:             fmt.Sprintf("room_%d", at.UnixMilli()),
		}

		if in.SessionType == types.SessionTypePaidLesson {
			cost := a.deps.Economy.TokensPerLesson
			debit, _, err := a.w.apply(dbc, ledgerApply{
				UserID:         in.LearnerID,
				Amount:         -cost,
				Entry:          ledger.LearningSpent{SessionID: s.ID, Title: title},
				IdempotencyKey: "session:" + s.ID.String() + ":debit",
				At:             at,
			})
			if err != nil {
				return err
			}
			s.TokenCost = cost
			out.Debit = debit
		}

		if _, err := a.deps.Sessions.Create(dbc, []*types.Session{s}); err != nil {
			return err
		}
		out.Session = s
		return nil
	})
	if err != nil {
		return domainagg.ScheduleSessionResult{}, err
	}
	return out, nil
}

func (a *sessionAggregate) Start(ctx context.Context, in domainagg.StartSessionInput) (domainagg.SessionTransitionResult, error) {
	const op = "Sessions.SessionAggregate.Start"
	out := domainagg.SessionTransitionResult{}
	if !a.ready() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "session aggregate not initialized", nil)
	}
	if in.SessionID == uuid.Nil || in.ActorID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "session id and actor id are required", nil)
	}
	at := orNow(in.At)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.deps.Sessions.LockScoped(dbc, in.SessionID, repos.SessionScope{
			ActorID:  in.ActorID,
			Statuses: []types.SessionStatus{types.SessionStatusScheduled},
		})
		if err != nil {
			return err
		}
		if s == nil {
			return NotFoundError("Session not found or already started")
		}
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "session", s.ID,
			[]string{string(types.SessionStatusScheduled)},
			map[string]any{
				"status":            string(types.SessionStatusInProgress),
				"actual_start_time": at,
				"video_token":       in.VideoToken,
				"updated_at":        at,
			})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "Session not found or already started"); err != nil {
			return err
		}
		s.Status = types.SessionStatusInProgress
		s.ActualStartTime = &at
		s.VideoToken = in.VideoToken
		s.UpdatedAt = at
		out.Session = s
		return nil
	})
	if err != nil {
		return domainagg.SessionTransitionResult{}, err
	}
	return out, nil
}

func (a *sessionAggregate) End(ctx context.Context, in domainagg.EndSessionInput) (domainagg.EndSessionResult, error) {
	const op = "Sessions.SessionAggregate.End"
	out := domainagg.EndSessionResult{}
	if !a.ready() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "session aggregate not initialized", nil)
	}
	if in.SessionID == uuid.Nil || in.ActorID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "session id and actor id are required", nil)
	}
	at := orNow(in.At)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.deps.Sessions.LockScoped(dbc, in.SessionID, repos.SessionScope{
			ActorID:     in.ActorID,
			TeacherOnly: true,
			Statuses:    []types.SessionStatus{types.SessionStatusInProgress},
		})
		if err != nil {
			return err
		}
		if s == nil {
			return NotFoundError("Session not found or not in progress")
		}

		minutes := s.DurationMinutes
		if s.ActualStartTime != nil {
			minutes = max(int(math.Round(at.Sub(*s.ActualStartTime).Minutes())), 0)
		}
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "session", s.ID,
			[]string{string(types.SessionStatusInProgress)},
			map[string]any{
				"status":          string(types.SessionStatusCompleted),
				"actual_end_time": at,
				"actual_minutes":  minutes,
				"updated_at":      at,
			})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "Session not found or not in progress"); err != nil {
			return err
		}

		payout, _, err := a.w.apply(dbc, ledgerApply{
			UserID:         s.TeacherID,
			Amount:         a.deps.Economy.TokensPerLesson,
			Entry:          ledger.TeachingEarned{SessionID: s.ID, Title: s.Title},
			IdempotencyKey: "session:" + s.ID.String() + ":payout",
			At:             at,
		})
		if err != nil {
			return err
		}

		hours := float64(minutes) / 60
		if err := a.deps.Users.AddTeachingStats(dbc, s.TeacherID, hours); err != nil {
			return err
		}
		if err := a.deps.Users.AddLearningStats(dbc, s.LearnerID, hours); err != nil {
			return err
		}

		s.Status = types.SessionStatusCompleted
		s.ActualEndTime = &at
		s.ActualMinutes = minutes
		s.UpdatedAt = at
		out.Session = s
		out.ActualMinutes = minutes
		out.TeacherEarnings = payout
		return nil
	})
	if err != nil {
		return domainagg.EndSessionResult{}, err
	}
	return out, nil
}

func (a *sessionAggregate) Cancel(ctx context.Context, in domainagg.CancelSessionInput) (domainagg.CancelSessionResult, error) {
	const op = "Sessions.SessionAggregate.Cancel"
	out := domainagg.CancelSessionResult{}
	if !a.ready() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "session aggregate not initialized", nil)
	}
	if in.SessionID == uuid.Nil || in.ActorID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "session id and actor id are required", nil)
	}
	at := orNow(in.At)
	reason := strings.TrimSpace(in.Reason)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.deps.Sessions.LockScoped(dbc, in.SessionID, repos.SessionScope{
			ActorID:  in.ActorID,
			Statuses: []types.SessionStatus{types.SessionStatusScheduled},
		})
		if err != nil {
			return err
		}
		if s == nil {
			return NotFoundError("Session not found or cannot be cancelled")
		}
		actor := in.ActorID
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "session", s.ID,
			[]string{string(types.SessionStatusScheduled)},
			map[string]any{
				"status":              string(types.SessionStatusCancelled),
				"cancellation_reason": reason,
				"cancelled_by":        actor,
				"updated_at":          at,
			})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "Session not found or cannot be cancelled"); err != nil {
			return err
		}

		if s.TokenCost > 0 {
			refund, _, err := a.w.apply(dbc, ledgerApply{
				UserID:         s.LearnerID,
				Amount:         s.TokenCost,
				Entry:          ledger.SessionRefund{SessionID: s.ID, Title: s.Title},
				IdempotencyKey: "session:" + s.ID.String() + ":refund",
				At:             at,
			})
			if err != nil {
				return err
			}
			out.Refund = refund
		}

		s.Status = types.SessionStatusCancelled
		s.CancellationReason = reason
		s.CancelledBy = &actor
		s.UpdatedAt = at
		out.Session = s
		return nil
	})
	if err != nil {
		return domainagg.CancelSessionResult{}, err
	}
	return out, nil
}
