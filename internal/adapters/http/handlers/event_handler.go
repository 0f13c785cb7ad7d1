package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/u66u/analytics-microservice/internal/app/events"
	"github.com/u66u/analytics-microservice/internal/domain/event"
	"github.com/u66u/analytics-microservice/internal/logging"
)

// IngestHandler принимает POST /event. Кривое тело — 400 без похода в
// брокер; неподтверждённая публикация — 500 с пустым телом; успех — 200
// с пустым телом.
func (h *EventHandlers) IngestHandler(w http.ResponseWriter, r *http.Request) {
	p, err := event.DecodePayload(r.Body)
	if err != nil {
		logging.LogDebug("rejected malformed event", logrus.Fields{
			"method": "IngestHandler", "reason": err.Error(),
		})
		writeError(w, http.StatusBadRequest, "malformed event payload")
		return
	}

	logging.LogDebug("event received", logrus.Fields{
		"method":     "IngestHandler",
		"user_id":    *p.UserID,
		"event_type": *p.EventType,
		"action":     *p.Action,
	})

	if _, err := h.svc.Ingest(r.Context(), p); err != nil {
		// событие не записано; ретраить или нет — решает клиент
		if !errors.Is(err, events.ErrSerialization) && !errors.Is(err, events.ErrDeliveryFailed) {
			logging.LogError("unexpected ingest error", err, logrus.Fields{
				"method": "IngestHandler", "user_id": *p.UserID,
			})
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
