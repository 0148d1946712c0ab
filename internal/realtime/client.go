package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

const clientBuffer = 16

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	Logger   *logger.Logger
}

// UserChannel is the channel every authenticated stream subscribes to for its own user.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}
