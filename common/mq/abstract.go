package mq

type IMqProvider interface {
	Connect(connectionString string) error
	Disconnect()
	Publish(exchangeName string, routingKey string, data interface{}) error
	DeclareExchange(exchangeName string, exchangeType string, durable bool) error
}
