package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/observability"
	"github.com/yungbote/skillswap-backend/internal/realtime"
)

// SessionNotifier fans lifecycle events out to both participants' streams.
type SessionNotifier interface {
	SessionScheduled(ctx context.Context, s *types.Session)
	SessionStarted(ctx context.Context, s *types.Session)
	SessionCompleted(ctx context.Context, s *types.Session, actualMinutes int)
	SessionCancelled(ctx context.Context, s *types.Session)
	SessionRated(ctx context.Context, r *types.Rating)
}

// TokenNotifier tells a user their balance moved.
type TokenNotifier interface {
	BalanceChanged(ctx context.Context, userID uuid.UUID, tx *types.TokenTransaction)
}

type realtimeNotifier struct {
	emit    SSEEmitter
	metrics *observability.Metrics
}

// NewRealtimeNotifier returns a notifier that implements both SessionNotifier and TokenNotifier.
func NewRealtimeNotifier(emit SSEEmitter, metrics *observability.Metrics) *realtimeNotifier {
	return &realtimeNotifier{emit: emit, metrics: metrics}
}

func (n *realtimeNotifier) send(ctx context.Context, event realtime.SSEEvent, data map[string]any, users ...uuid.UUID) {
	if n == nil || n.emit == nil {
		return
	}
	for _, id := range users {
		if id == uuid.Nil {
			continue
		}
		n.emit.Emit(ctx, realtime.SSEMessage{Channel: realtime.UserChannel(id), Event: event, Data: data})
		n.metrics.IncRealtimeEvent(string(event))
	}
}

func (n *realtimeNotifier) session(ctx context.Context, event realtime.SSEEvent, s *types.Session, extra map[string]any) {
	if s == nil {
		return
	}
	data := map[string]any{
		"sessionId": s.ID,
		"status":    s.Status,
		"title":     s.Title,
		"startTime": s.ScheduledStartTime,
	}
	for k, v := range extra {
		data[k] = v
	}
	n.send(ctx, event, data, s.TeacherID, s.LearnerID)
}

func (n *realtimeNotifier) SessionScheduled(ctx context.Context, s *types.Session) {
	n.session(ctx, realtime.SSEEventSessionScheduled, s, nil)
}

func (n *realtimeNotifier) SessionStarted(ctx context.Context, s *types.Session) {
	n.session(ctx, realtime.SSEEventSessionStarted, s, map[string]any{"roomId": s.RoomID})
}

func (n *realtimeNotifier) SessionCompleted(ctx context.Context, s *types.Session, actualMinutes int) {
	n.session(ctx, realtime.SSEEventSessionCompleted, s, map[string]any{"actualMinutes": actualMinutes})
}

func (n *realtimeNotifier) SessionCancelled(ctx context.Context, s *types.Session) {
	n.session(ctx, realtime.SSEEventSessionCancelled, s, map[string]any{
		"reason":      s.CancellationReason,
		"cancelledBy": s.CancelledBy,
	})
}

func (n *realtimeNotifier) SessionRated(ctx context.Context, r *types.Rating) {
	if r == nil {
		return
	}
	n.send(ctx, realtime.SSEEventSessionRated, map[string]any{
		"sessionId": r.SessionID,
		"rating":    r.Score,
	}, r.RatedUserID)
}

func (n *realtimeNotifier) BalanceChanged(ctx context.Context, userID uuid.UUID, tx *types.TokenTransaction) {
	if tx == nil {
		return
	}
	n.send(ctx, realtime.SSEEventTokenBalanceChanged, map[string]any{
		"balance": tx.BalanceAfter,
		"amount":  tx.Amount,
		"type":    tx.Type,
	}, userID)
}

type nopNotifier struct{}

func (nopNotifier) SessionScheduled(context.Context, *types.Session)      {}
func (nopNotifier) SessionStarted(context.Context, *types.Session)        {}
func (nopNotifier) SessionCompleted(context.Context, *types.Session, int) {}
func (nopNotifier) SessionCancelled(context.Context, *types.Session)      {}
func (nopNotifier) SessionRated(context.Context, *types.Rating)           {}
func (nopNotifier) BalanceChanged(context.Context, uuid.UUID, *types.TokenTransaction) {
}
