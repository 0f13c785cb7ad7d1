package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type App struct {
	Env string
}

type HTTP struct {
	Port string
}

type Kafka struct {
	Brokers        []string
	Topic          string
	ClientID       string
	Acks           string
	Compression    string
	BatchBytes     int
	Linger         time.Duration
	Retries        int
	Idempotent     bool
	PublishTimeout time.Duration
}

type CORS struct {
	AllowedOrigin string
	MaxAge        int
}

type Config struct {
	App   App
	HTTP  HTTP
	Kafka Kafka
	CORS  CORS
}

func Load() Config {
	return Config{
		App: App{
			Env: getenv("APP_ENV", "dev"),
		},
		HTTP: HTTP{
			Port: getenv("PORT", "8081"),
		},
		Kafka: Kafka{
			Brokers:        splitCSV(getenv("KAFKA_BROKERS", "localhost:29092,localhost:39092,localhost:49092")),
			Topic:          getenv("EVENTS_TOPIC", "user-events"),
			ClientID:       getenv("KAFKA_CLIENT_ID", "event-gateway"),
			Acks:           getenv("KAFKA_ACKS", "all"),
			Compression:    getenv("KAFKA_COMPRESSION", "snappy"),
			BatchBytes:     atoi(getenv("KAFKA_BATCH_BYTES", "65536")),
			Linger:         parseDuration(getenv("KAFKA_LINGER", "10ms")),
			Retries:        atoi(getenv("KAFKA_RETRIES", "5")),
			Idempotent:     parseBool(getenv("KAFKA_IDEMPOTENT", "true")),
			PublishTimeout: parseDuration(getenv("KAFKA_PUBLISH_TIMEOUT", "2s")),
		},
		CORS: CORS{
			AllowedOrigin: getenv("CORS_ORIGIN", "http://localhost:5173"),
			MaxAge:        atoi(getenv("CORS_MAX_AGE", "3600")),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
