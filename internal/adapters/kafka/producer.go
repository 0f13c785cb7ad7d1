package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

type Producer interface {
	// Publish блокируется до подтверждения брокера или терминальной
	// ошибки, но не дольше сконфигурированного таймаута.
	Publish(ctx context.Context, key, value []byte) error

	Close() error
}

type ProducerConfig struct {
	Brokers        []string
	ClientID       string
	Topic          string
	Acks           string        // "all" | "one" | "none"
	Compression    string        // "snappy" | "gzip" | "lz4" | "zstd" | "none"
	BatchBytes     int           // 65536
	Linger         time.Duration // 10 * time.Millisecond
	Retries        int           // 5
	Idempotent     bool          // дедупликация ретраев на стороне брокера
	PublishTimeout time.Duration // 2 * time.Second
}

type syncProducer struct {
	sp      sarama.SyncProducer
	topic   string
	timeout time.Duration
}

func NewProducer(cfg ProducerConfig) (Producer, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Version = sarama.V2_6_0_0
	sc.Producer.RequiredAcks = parseAcks(cfg.Acks)
	sc.Producer.Compression = parseCompression(cfg.Compression)
	sc.Producer.Flush.Bytes = cfg.BatchBytes
	sc.Producer.Flush.Frequency = cfg.Linger
	sc.Producer.Retry.Max = cfg.Retries
	sc.Producer.Return.Successes = true
	// ключ -> партиция, ретраи не меняют порядок в пределах ключа
	sc.Producer.Partitioner = sarama.NewHashPartitioner
	if cfg.Idempotent {
		// идемпотентность требует acks=all и один in-flight запрос
		sc.Producer.Idempotent = true
		sc.Producer.RequiredAcks = sarama.WaitForAll
		sc.Net.MaxOpenRequests = 1
	}

	sp, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &syncProducer{sp: sp, topic: cfg.Topic, timeout: cfg.PublishTimeout}, nil
}

func (p *syncProducer) Publish(ctx context.Context, key, value []byte) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	}

	// sarama не умеет контексты: шлём в горутине и ждём либо ответа,
	// либо дедлайна. SyncProducer потокобезопасен.
	done := make(chan error, 1)
	go func() {
		_, _, err := p.sp.SendMessage(msg)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send message: %w", err)
		}
		return nil
	}
}

func (p *syncProducer) Close() error {
	return p.sp.Close()
}

func parseAcks(s string) sarama.RequiredAcks {
	switch s {
	case "none", "0":
		return sarama.NoResponse
	case "one", "1", "leader":
		return sarama.WaitForLocal
	default:
		return sarama.WaitForAll
	}
}

func parseCompression(s string) sarama.CompressionCodec {
	switch s {
	case "gzip":
		return sarama.CompressionGZIP
	case "lz4":
		return sarama.CompressionLZ4
	case "zstd":
		return sarama.CompressionZSTD
	case "none":
		return sarama.CompressionNone
	default:
		return sarama.CompressionSnappy
	}
}
