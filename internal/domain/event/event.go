package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Payload — событие в том виде, в каком его прислал клиент.
// Указатели нужны, чтобы отличать отсутствующее поле от пустого.
type Payload struct {
	UserID    *uint64         `json:"user_id"`
	EventType *string         `json:"event_type"`
	Action    *string         `json:"action"`
	Info      json.RawMessage `json:"info"`
}

// Enriched — то же событие плюс серверное время получения.
// event_ts сериализуется миллисекундами от эпохи.
type Enriched struct {
	UserID    uint64          `json:"user_id"`
	EventTS   Millis          `json:"event_ts"`
	EventType string          `json:"event_type"`
	Action    string          `json:"action"`
	Info      json.RawMessage `json:"info"`
}

var (
	ErrMissingUserID    = errors.New("user_id is required")
	ErrMissingEventType = errors.New("event_type is required")
	ErrMissingAction    = errors.New("action is required")
	ErrMissingInfo      = errors.New("info is required")
)

// DecodePayload читает тело запроса и проверяет обязательные поля.
// info не интерпретируем — прокидываем дальше как есть.
func DecodePayload(r io.Reader) (Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

func (p Payload) Validate() error {
	if p.UserID == nil {
		return ErrMissingUserID
	}
	if p.EventType == nil {
		return ErrMissingEventType
	}
	if p.Action == nil {
		return ErrMissingAction
	}
	// len==0 значит поле отсутствовало; явный null — валидное значение
	if len(p.Info) == 0 {
		return ErrMissingInfo
	}
	return nil
}

// Enrich — тотальная функция: валидный Payload всегда даёт Enriched.
func Enrich(p Payload, now time.Time) Enriched {
	return Enriched{
		UserID:    *p.UserID,
		EventTS:   Millis(now),
		EventType: *p.EventType,
		Action:    *p.Action,
		Info:      p.Info,
	}
}

// Key — ключ партиционирования: все события одного пользователя
// попадают в одну партицию и читаются в порядке записи.
func (e Enriched) Key() string {
	return strconv.FormatUint(e.UserID, 10)
}
