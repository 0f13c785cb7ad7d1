package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/u66u/analytics-microservice/internal/app/events"
	"github.com/u66u/analytics-microservice/internal/domain/event"
	"github.com/u66u/analytics-microservice/internal/logging"
)

func TestMain(m *testing.M) {
	logging.InitLogger()
	m.Run()
}

type publishCall struct {
	key   string
	value []byte
}

type spyPublisher struct {
	mu    sync.Mutex
	calls []publishCall
	err   error
}

func (s *spyPublisher) Publish(_ context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, publishCall{key: string(key), value: value})
	return s.err
}

func (s *spyPublisher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newHandler(spy *spyPublisher) *EventHandlers {
	return NewEventHandlers(events.NewService(spy))
}

func post(h *EventHandlers, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/event", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.IngestHandler(rec, req)
	return rec
}

func TestIngestHandlerSuccess(t *testing.T) {
	spy := &spyPublisher{}
	h := newHandler(spy)

	before := time.Now().UTC()
	rec := post(h, `{"user_id":42,"event_type":"click","action":"button","info":{"element_id":"btn-7"}}`)
	after := time.Now().UTC()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	require.Equal(t, 1, spy.callCount())
	call := spy.calls[0]
	assert.Equal(t, "42", call.key)

	var got event.Enriched
	require.NoError(t, json.Unmarshal(call.value, &got))
	assert.Equal(t, "click", got.EventType)
	assert.Equal(t, "button", got.Action)
	assert.JSONEq(t, `{"element_id":"btn-7"}`, string(got.Info))

	ts := got.EventTS.Time()
	assert.False(t, ts.Before(before.Truncate(time.Millisecond)))
	assert.False(t, ts.After(after))
}

func TestIngestHandlerMalformedBody(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `{"user_id":`},
		{"missing user_id", `{"event_type":"click","action":"button","info":{}}`},
		{"missing event_type", `{"user_id":1,"action":"button","info":{}}`},
		{"missing action", `{"user_id":1,"event_type":"click","info":{}}`},
		{"missing info", `{"user_id":1,"event_type":"click","action":"button"}`},
		{"negative user_id", `{"user_id":-1,"event_type":"click","action":"button","info":{}}`},
		{"string user_id", `{"user_id":"1","event_type":"click","action":"button","info":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spy := &spyPublisher{}
			rec := post(newHandler(spy), tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			// до брокера такие запросы доходить не должны
			assert.Equal(t, 0, spy.callCount())
		})
	}
}

func TestIngestHandlerDeliveryFailed(t *testing.T) {
	spy := &spyPublisher{err: errors.New("broker unreachable")}
	rec := post(newHandler(spy), `{"user_id":1,"event_type":"click","action":"button","info":{}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestIngestHandlerRecoversAfterDeliveryFailure(t *testing.T) {
	spy := &spyPublisher{err: errors.New("broker unreachable")}
	h := newHandler(spy)

	rec := post(h, `{"user_id":1,"event_type":"click","action":"button","info":{}}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	spy.err = nil
	rec = post(h, `{"user_id":2,"event_type":"scroll","action":"page_bottom","info":{"scroll_depth_percent":80}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIngestHandlerSameUserPublishOrder(t *testing.T) {
	spy := &spyPublisher{}
	h := newHandler(spy)

	for _, action := range []string{"first", "second", "third"} {
		rec := post(h, `{"user_id":42,"event_type":"click","action":"`+action+`","info":{}}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.Equal(t, 3, spy.callCount())
	for i, want := range []string{"first", "second", "third"} {
		var got event.Enriched
		require.NoError(t, json.Unmarshal(spy.calls[i].value, &got))
		assert.Equal(t, "42", spy.calls[i].key)
		assert.Equal(t, want, got.Action)
	}
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	HealthHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "event-gateway", body["service"])
}
