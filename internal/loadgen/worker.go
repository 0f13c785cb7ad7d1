package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/u66u/analytics-microservice/internal/logging"
)

// Worker шлёт по одному событию на тик фиксированного расписания.
// Пропущенные тики не навёрстываются: time.Ticker их просто роняет,
// поэтому всплеск после медленного запроса ограничен одним тиком.
type Worker struct {
	ID      int
	Client  *http.Client
	URL     string
	Delay   time.Duration
	Counter *atomic.Uint64
	Gen     *Generator
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.Delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.fire(ctx)
		}
	}
}

func (w *Worker) fire(ctx context.Context) {
	body, err := json.Marshal(w.Gen.Event())
	if err != nil {
		w.Counter.Add(1)
		logging.LogError("worker failed to marshal event", err, logrus.Fields{"worker": w.ID})
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		w.Counter.Add(1)
		logging.LogError("worker failed to build request", err, logrus.Fields{"worker": w.ID})
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)

	// ровно один инкремент на попытку, каким бы ни был исход
	w.Counter.Add(1)

	if err != nil {
		if ctx.Err() != nil {
			// тест закончился, запрос оборван — не ошибка воркера
			return
		}
		logging.LogWarn("worker request failed", logrus.Fields{
			"worker": w.ID, "error": err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.LogWarn("worker received non-success status", logrus.Fields{
			"worker": w.ID, "status": resp.StatusCode,
		})
	}
}
