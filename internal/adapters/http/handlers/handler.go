package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/u66u/analytics-microservice/internal/domain/event"
)

type EventHandlers struct {
	svc serviceInterface
}

type serviceInterface interface {
	Ingest(ctx context.Context, p event.Payload) (event.Enriched, error)
}

func NewEventHandlers(svc serviceInterface) *EventHandlers {
	return &EventHandlers{svc: svc}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
