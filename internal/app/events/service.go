package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/u66u/analytics-microservice/internal/domain/event"
	"github.com/u66u/analytics-microservice/internal/logging"
)

type Service struct {
	publisher Publisher
}

func NewService(publisher Publisher) *Service {
	return &Service{publisher: publisher}
}

// Ingest обогащает событие серверным временем, сериализует и публикует
// его под ключом пользователя. Возвращается только после подтверждения
// брокера либо терминальной ошибки.
func (s *Service) Ingest(ctx context.Context, p event.Payload) (event.Enriched, error) {
	enriched := event.Enrich(p, time.Now().UTC())

	value, err := json.Marshal(enriched)
	if err != nil {
		logging.LogError("failed to serialize event", err, logrus.Fields{
			"user_id": enriched.UserID,
		})
		return event.Enriched{}, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	key := enriched.Key()
	if err := s.publisher.Publish(ctx, []byte(key), value); err != nil {
		logging.LogError("failed to publish event", err, logrus.Fields{
			"user_id":    enriched.UserID,
			"event_type": enriched.EventType,
			"key":        key,
		})
		return event.Enriched{}, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	logging.LogDebug("event published", logrus.Fields{
		"user_id":    enriched.UserID,
		"event_type": enriched.EventType,
		"action":     enriched.Action,
		"key":        key,
	})
	return enriched, nil
}
