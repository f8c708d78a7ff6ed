package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mypts/profile-api/internal/model"
	"github.com/mypts/profile-api/pkg/messaging"
)

// BrokerRealtimeSink publishes notifications on per-user broker channels.
// Socket gateways subscribe to "user:{id}:notifications" and forward the
// payload to live connections.
type BrokerRealtimeSink struct {
	broker messaging.Broker
}

func NewBrokerRealtimeSink(broker messaging.Broker) *BrokerRealtimeSink {
	return &BrokerRealtimeSink{broker: broker}
}

func (s *BrokerRealtimeSink) PublishToUser(ctx context.Context, userID uuid.UUID, n *model.Notification) error {
	return s.broker.Publish(ctx, UserChannel(userID), n)
}

// UserChannel names the realtime channel for one user.
func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:notifications", userID)
}
