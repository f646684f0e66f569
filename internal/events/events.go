package events

import (
	"time"

	evbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/servicehub/servicehub/internal/domain"
	"github.com/servicehub/servicehub/pkg/common"
)

// Topics for marketplace lifecycle events.
const (
	TopicUserRegistered = "user.registered"
	TopicOrderCreated   = "order.created"
	TopicOrderUpdated   = "order.updated"
	TopicReviewCreated  = "review.created"
	TopicReviewDeleted  = "review.deleted"
)

// Action records what happened and who did it; consumed by the audit writer.
type Action struct {
	Username string
	Detail   string
	RemoteIP string
}

var bus = evbus.New()

// Bus exposes the process-wide event bus
func Bus() evbus.Bus {
	return bus
}

// Publish emits an action on the given topic. Publishing never blocks the
// caller beyond synchronous subscriber execution.
func Publish(topic string, act Action) {
	bus.Publish(topic, act)
}

// SubscribeAuditWriter attaches an AuditLog writer to every lifecycle topic.
func SubscribeAuditWriter(db *gorm.DB) {
	writer := func(topic string) func(Action) {
		return func(act Action) {
			log := domain.AuditLog{
				ID:       common.UUIDint64(),
				Username: act.Username,
				Action:   topic,
				Detail:   act.Detail,
				OptIp:    act.RemoteIP,
				OptTime:  time.Now(),
			}
			if err := db.Create(&log).Error; err != nil {
				zap.L().Error("failed to write audit log",
					zap.String("action", topic), zap.Error(err))
			}
		}
	}
	for _, topic := range []string{
		TopicUserRegistered,
		TopicOrderCreated,
		TopicOrderUpdated,
		TopicReviewCreated,
		TopicReviewDeleted,
	} {
		if err := bus.SubscribeAsync(topic, writer(topic), false); err != nil {
			zap.L().Error("failed to subscribe audit writer", zap.String("topic", topic), zap.Error(err))
		}
	}
}
