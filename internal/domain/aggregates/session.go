package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/domain/ledger"
	"github.com/yungbote/skillswap-backend/internal/domain/session"
)

var SessionAggregateContract = Contract{
	Name:             "Sessions.SessionAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes: "Owns the session state machine. Status changes and their ledger and " +
		"participant-stat effects commit together or not at all.",
}

// SessionAggregate owns session lifecycle writes.
//
// Lookups are scoped to the acting participant; a session that is absent, not owned
// by the actor or in the wrong status is reported as CodeNotFound.
type SessionAggregate interface {
	Aggregate

	// Schedule creates a session for the learner, debiting the lesson cost for paid lessons.
	Schedule(ctx context.Context, in ScheduleSessionInput) (ScheduleSessionResult, error)

	// Start moves a scheduled session to in_progress.
	Start(ctx context.Context, in StartSessionInput) (SessionTransitionResult, error)

	// End completes an in-progress session, pays the teacher and updates both participants' stats.
	End(ctx context.Context, in EndSessionInput) (EndSessionResult, error)

	// Cancel cancels a scheduled session and refunds any token cost to the learner.
	Cancel(ctx context.Context, in CancelSessionInput) (CancelSessionResult, error)
}

type ScheduleSessionInput struct {
	LearnerID          uuid.UUID
	TeacherID          uuid.UUID
	SkillID            uuid.UUID
	SessionType        session.Type
	Title              string
	Description        string
	Notes              string
	ScheduledStartTime time.Time
	ScheduledEndTime   time.Time
	At                 time.Time
}

type ScheduleSessionResult struct {
	Session *session.Session
	// Debit is the SPENT_LEARNING row for paid lessons, nil otherwise.
	Debit *ledger.TokenTransaction
}

type StartSessionInput struct {
	SessionID  uuid.UUID
	ActorID    uuid.UUID
	VideoToken string
	At         time.Time
}

type SessionTransitionResult struct {
	Session *session.Session
}

type EndSessionInput struct {
	SessionID uuid.UUID
	ActorID   uuid.UUID
	At        time.Time
}

type EndSessionResult struct {
	Session         *session.Session
	ActualMinutes   int
	TeacherEarnings *ledger.TokenTransaction
}

type CancelSessionInput struct {
	SessionID uuid.UUID
	ActorID   uuid.UUID
	Reason    string
	At        time.Time
}

type CancelSessionResult struct {
	Session *session.Session
	// Refund is the REFUND row when the session carried a token cost.
	Refund *ledger.TokenTransaction
}
