package settlement

import (
	"context"
	"strings"

	"github.com/ahmetkoprulu/rtrp/arcade/common/mq"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

const SettlementExchange = "arcade.settlements"

// MqPublisher routes each message by event type, e.g. settlement.event_gain.
type MqPublisher struct {
	provider mq.IMqProvider
	exchange string
}

var _ Publisher = (*MqPublisher)(nil)

func NewMqPublisher(provider mq.IMqProvider) (*MqPublisher, error) {
	if err := provider.DeclareExchange(SettlementExchange, "topic", true); err != nil {
		return nil, err
	}

	return &MqPublisher{provider: provider, exchange: SettlementExchange}, nil
}

func (p *MqPublisher) Publish(ctx context.Context, message *models.SettlementMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.provider.Publish(p.exchange, RoutingKey(message.EventType), message)
}

func RoutingKey(eventType models.EventType) string {
	return "settlement." + strings.ToLower(string(eventType))
}
