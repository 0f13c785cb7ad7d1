package events

import "context"

// Publisher — порт к брокеру. Реализация обязана быть потокобезопасной:
// один экземпляр делят все конкурентные обработчики.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}
