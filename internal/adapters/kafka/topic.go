package kafka

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	kgo "github.com/segmentio/kafka-go"
)

// EnsureTopic создаёт топик, если его ещё нет. Уже существующий топик —
// не ошибка.
func EnsureTopic(brokers []string, topic string, partitions, replication int) error {
	if len(brokers) == 0 {
		return errors.New("no brokers configured")
	}

	conn, err := kgo.Dial("tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("resolve controller: %w", err)
	}

	ctrl, err := kgo.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer ctrl.Close()

	err = ctrl.CreateTopics(kgo.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: replication,
	})
	if err != nil && !errors.Is(err, kgo.TopicAlreadyExists) {
		return fmt.Errorf("create topic %q: %w", topic, err)
	}
	return nil
}
