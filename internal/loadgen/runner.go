package loadgen

import (
	"context"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/u66u/analytics-microservice/internal/logging"
)

type Config struct {
	URL         string
	Rate        uint64 // суммарный целевой RPS по всем воркерам
	Duration    time.Duration
	Concurrency int
}

type Report struct {
	Elapsed  time.Duration
	Attempts uint64
	Rate     float64 // измеренные попытки в секунду
}

// DelayPerWorker делит целевой rate поровну между воркерами.
// rate=0 насыщает задержку: воркеры фактически никогда не стреляют.
func DelayPerWorker(rate uint64, concurrency int) time.Duration {
	perWorker := float64(rate) / float64(concurrency)
	if perWorker <= 0 {
		return time.Duration(math.MaxInt64)
	}
	ns := float64(time.Second) / perWorker
	if ns < 1 {
		ns = 1
	}
	if ns > float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// Run гоняет воркеров до истечения Duration. Остановка кооперативная:
// дедлайн-контекст обрывает запросы в полёте и воркеры выходят на
// ближайшем тике, после чего errgroup дожидается всех.
func Run(ctx context.Context, cfg Config) Report {
	delay := DelayPerWorker(cfg.Rate, cfg.Concurrency)
	logging.LogInfo("load test starting", logrus.Fields{
		"url":          cfg.URL,
		"target_rps":   cfg.Rate,
		"duration_sec": cfg.Duration.Seconds(),
		"concurrency":  cfg.Concurrency,
		"worker_delay": delay.String(),
	})
	if cfg.Rate == 0 {
		logging.LogWarn("target rate is 0, workers will not send requests", logrus.Fields{})
	}

	// один клиент на всех, коннекты переиспользуются между воркерами
	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency,
			MaxIdleConnsPerHost: cfg.Concurrency,
		},
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var counter atomic.Uint64
	start := time.Now()

	g, runCtx := errgroup.WithContext(runCtx)
	for i := 0; i < cfg.Concurrency; i++ {
		w := &Worker{
			ID:      i,
			Client:  client,
			URL:     cfg.URL,
			Delay:   delay,
			Counter: &counter,
			Gen:     NewGenerator(time.Now().UnixNano() + int64(i)),
		}
		g.Go(func() error { return w.Run(runCtx) })
	}
	_ = g.Wait()

	elapsed := time.Since(start)
	attempts := counter.Load()
	report := Report{
		Elapsed:  elapsed,
		Attempts: attempts,
		Rate:     float64(attempts) / elapsed.Seconds(),
	}
	logging.LogInfo("load test finished", logrus.Fields{
		"elapsed":      report.Elapsed.String(),
		"attempts":     report.Attempts,
		"measured_rps": report.Rate,
	})
	return report
}
