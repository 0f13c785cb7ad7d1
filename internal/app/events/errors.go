package events

import "errors"

var (
	// ErrSerialization — внутренний дефект кодирования валидного события.
	// Для клиента это 500, для алертинга — фатальный класс.
	ErrSerialization = errors.New("event serialization failed")

	// ErrDeliveryFailed — брокер не подтвердил запись в пределах
	// ретраев и таймаута. Событие НЕ записано.
	ErrDeliveryFailed = errors.New("event delivery failed")
)
