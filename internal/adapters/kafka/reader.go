package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kgo "github.com/segmentio/kafka-go"

	"github.com/u66u/analytics-microservice/internal/domain/event"
)

// Record — сообщение топика с уже декодированным событием.
type Record struct {
	Key       string
	Partition int
	Offset    int64
	Raw       kgo.Message
	Event     event.Enriched
}

type Handler func(ctx context.Context, rec Record) error

type Reader interface {
	// Consume читает топик и зовёт handler на каждое сообщение до
	// отмены контекста.
	Consume(ctx context.Context, handler Handler) error
	Close() error
}

type ReaderConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	MinBytes    int           // 1<<10
	MaxBytes    int           // 10<<20
	MaxWait     time.Duration // 100 * time.Millisecond
	StartOffset int64         // kgo.FirstOffset / kgo.LastOffset
}

type kafkaReader struct {
	reader *kgo.Reader
}

func NewReader(cfg ReaderConfig) Reader {
	return &kafkaReader{
		reader: kgo.NewReader(kgo.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       cfg.Topic,
			GroupID:     cfg.GroupID,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: cfg.StartOffset,
		}),
	}
}

func (r *kafkaReader) Consume(ctx context.Context, handler Handler) error {
	for {
		m, err := r.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			// временная ошибка брокера — подождём и продолжим
			time.Sleep(200 * time.Millisecond)
			continue
		}

		rec := Record{
			Key:       string(m.Key),
			Partition: m.Partition,
			Offset:    m.Offset,
			Raw:       m,
		}
		// ошибку декодирования игнорим намеренно: handler видит Raw
		_ = json.Unmarshal(m.Value, &rec.Event)

		if err := handler(ctx, rec); err != nil {
			return err
		}

		if err := r.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			time.Sleep(100 * time.Millisecond)
		}
	}
}

func (r *kafkaReader) Close() error {
	return r.reader.Close()
}
