package kafka

import (
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/snapfield/sf-order/config"
)

func NewProducer() *kafka.Producer {
	c := config.Get()

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": c.Kafka.BootstrapServers,
		"security.protocol": c.Kafka.SecurityProtocol,
		"sasl.mechanisms":   c.Kafka.SASLMechanisms,
		"sasl.username":     c.Kafka.SASLUsername,
		"sasl.password":     c.Kafka.SASLPassword,
	})
	if err != nil {
		panic(err)
	}

	return producer
}
