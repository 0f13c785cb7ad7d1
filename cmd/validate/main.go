package main

import (
	"context"
	"math/rand"
	"os"
	"time"

	kgo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	kaf "github.com/u66u/analytics-microservice/internal/adapters/kafka"
	"github.com/u66u/analytics-microservice/internal/app/events"
	"github.com/u66u/analytics-microservice/internal/config"
	"github.com/u66u/analytics-microservice/internal/domain/event"
	"github.com/u66u/analytics-microservice/internal/logging"
)

// Смоук-проверка кластера: создать топик, опубликовать пробное событие
// через боевой продюсер и вычитать его обратно.

const (
	topicPartitions   = 6
	topicReplication  = 3
	ensureAttempts    = 5
	ensureRetryDelay  = 5 * time.Second
	consumeTimeout    = 30 * time.Second
	validationGroup   = "validation-script-group"
	validationAction  = "validation"
	validationEvtType = "test_event"
)

func main() {
	cfg := config.Load()
	logging.InitLogger()
	logging.LogInfo("starting kafka cluster validation", logrus.Fields{
		"brokers": cfg.Kafka.Brokers,
		"topic":   cfg.Kafka.Topic,
	})

	replication := topicReplication
	if len(cfg.Kafka.Brokers) < replication {
		replication = len(cfg.Kafka.Brokers)
	}
	if !ensureTopicWithRetry(cfg, replication) {
		os.Exit(1)
	}

	probe, ok := produceProbe(cfg)
	if !ok {
		os.Exit(1)
	}

	if !consumeProbe(cfg, probe) {
		logging.LogError("validation failed: probe event not consumed", nil, logrus.Fields{
			"topic": cfg.Kafka.Topic, "group": validationGroup,
		})
		os.Exit(1)
	}

	logging.LogInfo("validation complete: cluster produces and consumes correctly", logrus.Fields{})
}

func ensureTopicWithRetry(cfg config.Config, replication int) bool {
	for attempt := 1; attempt <= ensureAttempts; attempt++ {
		err := kaf.EnsureTopic(cfg.Kafka.Brokers, cfg.Kafka.Topic, topicPartitions, replication)
		if err == nil {
			logging.LogInfo("topic ensured", logrus.Fields{
				"topic": cfg.Kafka.Topic, "partitions": topicPartitions, "replication": replication,
			})
			return true
		}
		logging.LogError("ensure topic failed", err, logrus.Fields{
			"attempt": attempt, "max_attempts": ensureAttempts,
		})
		if attempt < ensureAttempts {
			time.Sleep(ensureRetryDelay)
		}
	}
	return false
}

func produceProbe(cfg config.Config) (uint64, bool) {
	producer, err := kaf.NewProducer(kaf.ProducerConfig{
		Brokers:        cfg.Kafka.Brokers,
		ClientID:       "validation-script",
		Topic:          cfg.Kafka.Topic,
		Acks:           cfg.Kafka.Acks,
		Compression:    cfg.Kafka.Compression,
		BatchBytes:     cfg.Kafka.BatchBytes,
		Linger:         cfg.Kafka.Linger,
		Retries:        cfg.Kafka.Retries,
		Idempotent:     cfg.Kafka.Idempotent,
		PublishTimeout: 10 * time.Second,
	})
	if err != nil {
		logging.LogError("producer creation failed", err, logrus.Fields{"brokers": cfg.Kafka.Brokers})
		return 0, false
	}
	defer producer.Close()

	userID := uint64(1000 + rand.Intn(9000))
	eventType := validationEvtType
	action := validationAction
	info := []byte(`{"source":"validation_script"}`)

	svc := events.NewService(producer)
	enriched, err := svc.Ingest(context.Background(), event.Payload{
		UserID:    &userID,
		EventType: &eventType,
		Action:    &action,
		Info:      info,
	})
	if err != nil {
		logging.LogError("probe event publish failed", err, logrus.Fields{"user_id": userID})
		return 0, false
	}

	logging.LogInfo("probe event published", logrus.Fields{
		"user_id": enriched.UserID, "key": enriched.Key(),
	})
	return userID, true
}

func consumeProbe(cfg config.Config, probeUserID uint64) bool {
	reader := kaf.NewReader(kaf.ReaderConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		GroupID:     validationGroup,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		MaxWait:     100 * time.Millisecond,
		StartOffset: kgo.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), consumeTimeout)
	defer cancel()

	found := false
	_ = reader.Consume(ctx, func(_ context.Context, rec kaf.Record) error {
		if rec.Event.Action != validationAction {
			return nil
		}
		if rec.Event.UserID != probeUserID {
			// чужой пробный прогон — читаем дальше
			logging.LogDebug("skipping foreign validation event", logrus.Fields{
				"user_id": rec.Event.UserID,
			})
			return nil
		}
		logging.LogInfo("probe event consumed", logrus.Fields{
			"partition": rec.Partition, "offset": rec.Offset,
		})
		found = true
		cancel()
		return nil
	})
	return found
}
