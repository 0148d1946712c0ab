package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/skillswap-backend/internal/data/repos"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
	domainsession "github.com/yungbote/skillswap-backend/internal/domain/session"
	"github.com/yungbote/skillswap-backend/internal/observability"
	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
	"github.com/yungbote/skillswap-backend/internal/platform/rtc"
)

type ScheduleSessionInput struct {
	TeacherID          uuid.UUID          `json:"teacherId"`
	SkillID            uuid.UUID          `json:"skillId"`
	SessionType        domainsession.Type `json:"sessionType"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Notes              string             `json:"notes"`
	ScheduledStartTime time.Time          `json:"scheduledStartTime"`
	ScheduledEndTime   time.Time          `json:"scheduledEndTime"`
}

type SessionListInput struct {
	Status   domainsession.Status
	Type     domainsession.Type
	Upcoming bool
}

type StartSessionResult struct {
	Session    *types.Session `json:"session"`
	VideoToken string         `json:"videoToken"`
	AppID      string         `json:"appId"`
}

type SessionService interface {
	Schedule(ctx context.Context, in ScheduleSessionInput) (*types.Session, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*types.Session, error)
	List(ctx context.Context, in SessionListInput) ([]*types.Session, error)
	Start(ctx context.Context, sessionID uuid.UUID) (*StartSessionResult, error)
	End(ctx context.Context, sessionID uuid.UUID) (*types.Session, error)
	Cancel(ctx context.Context, sessionID uuid.UUID, reason string) (*types.Session, error)
}

type sessionService struct {
	log         *logger.Logger
	sessionRepo repos.SessionRepo
	sessions    domainagg.SessionAggregate
	video       rtc.TokenIssuer
	notifier    SessionNotifier
	balances    TokenNotifier
	metrics     *observability.Metrics
	now         func() time.Time
}

func NewSessionService(
	log *logger.Logger,
	sessionRepo repos.SessionRepo,
	sessions domainagg.SessionAggregate,
	video rtc.TokenIssuer,
	notifier SessionNotifier,
	balances TokenNotifier,
	metrics *observability.Metrics,
) SessionService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if balances == nil {
		balances = nopNotifier{}
	}
	return &sessionService{
		log:         log.With("service", "SessionService"),
		sessionRepo: sessionRepo,
		sessions:    sessions,
		video:       video,
		notifier:    notifier,
		balances:    balances,
		metrics:     metrics,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var errSessionNotFound = apierr.Newf(http.StatusNotFound, "not_found", "Session not found")

func (ss *sessionService) Schedule(ctx context.Context, in ScheduleSessionInput) (*types.Session, error) {
	learnerID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	var fields []apierr.FieldError
	if in.TeacherID == uuid.Nil {
		fields = append(fields, apierr.FieldError{Field: "teacherId", Message: "teacherId is required"})
	}
	if in.SkillID == uuid.Nil {
		fields = append(fields, apierr.FieldError{Field: "skillId", Message: "skillId is required"})
	}
	if !domainsession.IsKnownType(in.SessionType) {
		fields = append(fields, apierr.FieldError{Field: "sessionType", Message: "Invalid session type"})
	}
	if in.ScheduledStartTime.IsZero() {
		fields = append(fields, apierr.FieldError{Field: "scheduledStartTime", Message: "scheduledStartTime is required"})
	}
	if in.ScheduledEndTime.IsZero() {
		fields = append(fields, apierr.FieldError{Field: "scheduledEndTime", Message: "scheduledEndTime is required"})
	}
	if len(fields) > 0 {
		return nil, apierr.Validation(fields...)
	}

	res, err := ss.sessions.Schedule(ctx, domainagg.ScheduleSessionInput{
		LearnerID:          learnerID,
		TeacherID:          in.TeacherID,
		SkillID:            in.SkillID,
		SessionType:        in.SessionType,
		Title:              in.Title,
		Description:        in.Description,
		Notes:              in.Notes,
		ScheduledStartTime: in.ScheduledStartTime,
		ScheduledEndTime:   in.ScheduledEndTime,
		At:                 ss.now(),
	})
	if err != nil {
		return nil, err
	}
	ss.metrics.IncSessionTransition(string(types.SessionStatusScheduled))
	if res.Debit != nil {
		ss.metrics.AddLedgerTokens(string(res.Debit.Type), res.Debit.Amount)
		ss.balances.BalanceChanged(ctx, learnerID, res.Debit)
	}
	s := ss.reload(ctx, res.Session, learnerID)
	ss.notifier.SessionScheduled(ctx, s)
	return s, nil
}

func (ss *sessionService) Get(ctx context.Context, sessionID uuid.UUID) (*types.Session, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	s, err := ss.sessionRepo.GetForParticipant(dbctx.Background(ctx), sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return nil, errSessionNotFound
	}
	return s, nil
}

func (ss *sessionService) List(ctx context.Context, in SessionListInput) ([]*types.Session, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if in.Status != "" && !domainsession.IsKnownStatus(in.Status) {
		return nil, apierr.Validation(apierr.FieldError{Field: "status", Message: "Invalid status"})
	}
	if in.Type != "" && !domainsession.IsKnownType(in.Type) {
		return nil, apierr.Validation(apierr.FieldError{Field: "type", Message: "Invalid session type"})
	}
	out, err := ss.sessionRepo.ListForParticipant(dbctx.Background(ctx), userID, repos.SessionListFilter{
		Status:   in.Status,
		Type:     in.Type,
		Upcoming: in.Upcoming,
		Now:      ss.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if out == nil {
		out = []*types.Session{}
	}
	return out, nil
}

// Start issues the room token before the transition. A video provider failure
// leaves the token empty and the session still starts.
func (ss *sessionService) Start(ctx context.Context, sessionID uuid.UUID) (*StartSessionResult, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	ctx, span := observability.StartSpan(ctx, "SessionService.Start", attribute.String("session.id", sessionID.String()))
	defer span.End()

	current, err := ss.sessionRepo.GetForParticipant(dbctx.Background(ctx), sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if current == nil || current.Status != types.SessionStatusScheduled {
		return nil, apierr.Newf(http.StatusNotFound, "not_found", "Session not found or already started")
	}

	token := ""
	if ss.video != nil {
		token, err = ss.video.Issue(current.RoomID, userID)
		if err != nil {
			ss.log.Warn("video token unavailable, starting without it", "session_id", sessionID, "error", err)
			token = ""
		}
	}

	res, err := ss.sessions.Start(ctx, domainagg.StartSessionInput{
		SessionID:  sessionID,
		ActorID:    userID,
		VideoToken: token,
		At:         ss.now(),
	})
	if err != nil {
		return nil, err
	}
	ss.metrics.IncSessionTransition(string(types.SessionStatusInProgress))
	s := ss.reload(ctx, res.Session, userID)
	ss.notifier.SessionStarted(ctx, s)

	appID := ""
	if ss.video != nil {
		appID = ss.video.AppID()
	}
	return &StartSessionResult{Session: s, VideoToken: token, AppID: appID}, nil
}

func (ss *sessionService) End(ctx context.Context, sessionID uuid.UUID) (*types.Session, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	res, err := ss.sessions.End(ctx, domainagg.EndSessionInput{SessionID: sessionID, ActorID: userID, At: ss.now()})
	if err != nil {
		return nil, err
	}
	ss.metrics.IncSessionTransition(string(types.SessionStatusCompleted))
	if tx := res.TeacherEarnings; tx != nil {
		ss.metrics.AddLedgerTokens(string(tx.Type), tx.Amount)
		ss.balances.BalanceChanged(ctx, res.Session.TeacherID, tx)
	}
	s := ss.reload(ctx, res.Session, userID)
	ss.notifier.SessionCompleted(ctx, s, res.ActualMinutes)
	return s, nil
}

func (ss *sessionService) Cancel(ctx context.Context, sessionID uuid.UUID, reason string) (*types.Session, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	res, err := ss.sessions.Cancel(ctx, domainagg.CancelSessionInput{
		SessionID: sessionID,
		ActorID:   userID,
		Reason:    reason,
		At:        ss.now(),
	})
	if err != nil {
		return nil, err
	}
	ss.metrics.IncSessionTransition(string(types.SessionStatusCancelled))
	if tx := res.Refund; tx != nil {
		ss.metrics.AddLedgerTokens(string(tx.Type), tx.Amount)
		ss.balances.BalanceChanged(ctx, res.Session.LearnerID, tx)
	}
	s := ss.reload(ctx, res.Session, userID)
	ss.notifier.SessionCancelled(ctx, s)
	return s, nil
}

// reload fetches the committed row with participants; on failure the aggregate's
// copy is returned as is.
func (ss *sessionService) reload(ctx context.Context, s *types.Session, actorID uuid.UUID) *types.Session {
	if s == nil {
		return nil
	}
	full, err := ss.sessionRepo.GetForParticipant(dbctx.Background(ctx), s.ID, actorID)
	if err != nil || full == nil {
		ss.log.Warn("reload session failed", "session_id", s.ID, "error", err)
		return s
	}
	return full
}
