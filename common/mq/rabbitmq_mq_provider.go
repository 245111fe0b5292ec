package mq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

type RabbitmqMqProvider struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	config     RabbitMqConfig
	confirms   chan amqp.Confirmation
	mu         sync.Mutex
}

type RabbitMqConfig struct {
	URL string
	// Reliable puts the channel in confirm mode and waits for the broker ack on every publish.
	Reliable bool
}

func NewRabbitmqMqProvider(config RabbitMqConfig) (*RabbitmqMqProvider, error) {
	provider := &RabbitmqMqProvider{config: config}

	if err := provider.Connect(config.URL); err != nil {
		return nil, err
	}

	if config.Reliable {
		if err := provider.channel.Confirm(false); err != nil {
			provider.Disconnect()
			return nil, fmt.Errorf("channel could not be put into confirm mode: %w", err)
		}
		provider.confirms = provider.channel.NotifyPublish(make(chan amqp.Confirmation, 1))
	}

	return provider, nil
}

func (r *RabbitmqMqProvider) Connect(connectionString string) error {
	connection, err := amqp.Dial(connectionString)
	if err != nil {
		return err
	}

	r.connection = connection
	r.channel, err = r.connection.Channel()
	if err != nil {
		connection.Close()
		return err
	}

	return nil
}

func (r *RabbitmqMqProvider) Disconnect() {
	if r.connection == nil {
		return
	}

	r.connection.Close()
}

func (r *RabbitmqMqProvider) DeclareExchange(exchangeName string, exchangeType string, durable bool) error {
	err := r.channel.ExchangeDeclare(exchangeName, exchangeType, durable, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

func (r *RabbitmqMqProvider) Publish(exchangeName string, routingKey string, data interface{}) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.channel.Publish(
		exchangeName, // exchange
		routingKey,   // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:     "application/json",
			ContentEncoding: "utf-8",
			Body:            body,
			DeliveryMode:    amqp.Persistent,
			Timestamp:       time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	if r.confirms != nil {
		if confirmed := <-r.confirms; !confirmed.Ack {
			return fmt.Errorf("failed to receive publish confirmation")
		}
	}

	return nil
}
