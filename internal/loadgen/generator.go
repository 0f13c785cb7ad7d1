package loadgen

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Закрытый набор пар event_type/action, как их шлёт реальный трекер.
var eventTypes = []string{"click", "page_view", "add_to_cart", "purchase", "scroll"}

var actionsPerType = [][]string{
	{"submit", "link", "image", "button"},
	{"load", "unload"},
	{"product_card", "quick_add"},
	{"checkout_complete", "paypal"},
	{"page_bottom", "element_visible"},
}

// SyntheticEvent — тело запроса, которое генерирует драйвер нагрузки.
// Намеренно своя структура, а не доменная: драйвер — внешний клиент.
type SyntheticEvent struct {
	UserID    uint64         `json:"user_id"`
	EventType string         `json:"event_type"`
	Action    string         `json:"action"`
	Info      map[string]any `json:"info"`
}

// Generator не потокобезопасен: у каждого воркера свой экземпляр.
type Generator struct {
	rnd *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

func (g *Generator) Event() SyntheticEvent {
	typeIndex := g.rnd.Intn(len(eventTypes))
	eventType := eventTypes[typeIndex]
	actions := actionsPerType[typeIndex]
	action := actions[g.rnd.Intn(len(actions))]

	var info map[string]any
	switch eventType {
	case "click":
		info = map[string]any{
			"element_id": fmt.Sprintf("btn-%d", 1+g.rnd.Intn(99)),
			"target_url": fmt.Sprintf("/path/%s", uuid.New()),
		}
	case "page_view":
		info = map[string]any{
			"url":      fmt.Sprintf("/page/%s", uuid.New()),
			"referrer": fmt.Sprintf("https://referrer%d.com", 1+g.rnd.Intn(4)),
		}
	case "add_to_cart":
		info = map[string]any{
			"product_id": fmt.Sprintf("prod-%d", 1000+g.rnd.Intn(1000)),
			"quantity":   1 + g.rnd.Intn(4),
			"price":      1.0 + g.rnd.Float64()*99.0,
		}
	case "purchase":
		info = map[string]any{
			"order_id":    uuid.New().String(),
			"total_value": 10.0 + g.rnd.Float64()*490.0,
			"currency":    "USD",
		}
	case "scroll":
		info = map[string]any{
			"scroll_depth_percent": 1 + g.rnd.Intn(99),
		}
	}

	return SyntheticEvent{
		UserID:    1 + uint64(g.rnd.Int63n(1_000_000_000-1)),
		EventType: eventType,
		Action:    action,
		Info:      info,
	}
}
