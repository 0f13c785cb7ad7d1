package event

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayloadValid(t *testing.T) {
	body := `{"user_id":42,"event_type":"click","action":"button","info":{"element_id":"btn-7"}}`

	p, err := DecodePayload(strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, uint64(42), *p.UserID)
	assert.Equal(t, "click", *p.EventType)
	assert.Equal(t, "button", *p.Action)
	assert.JSONEq(t, `{"element_id":"btn-7"}`, string(p.Info))
}

func TestDecodePayloadMissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no user_id", `{"event_type":"click","action":"button","info":{}}`},
		{"no event_type", `{"user_id":1,"action":"button","info":{}}`},
		{"no action", `{"user_id":1,"event_type":"click","info":{}}`},
		{"no info", `{"user_id":1,"event_type":"click","action":"button"}`},
		{"empty object", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodePayload(strings.NewReader(tc.body))
			assert.Error(t, err)
		})
	}
}

func TestDecodePayloadWrongTypes(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"negative user_id", `{"user_id":-5,"event_type":"click","action":"button","info":{}}`},
		{"fractional user_id", `{"user_id":4.2,"event_type":"click","action":"button","info":{}}`},
		{"string user_id", `{"user_id":"42","event_type":"click","action":"button","info":{}}`},
		{"numeric event_type", `{"user_id":1,"event_type":7,"action":"button","info":{}}`},
		{"object action", `{"user_id":1,"event_type":"click","action":{},"info":{}}`},
		{"not json", `{"user_id":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodePayload(strings.NewReader(tc.body))
			assert.Error(t, err)
		})
	}
}

func TestDecodePayloadNullInfoAllowed(t *testing.T) {
	// явный null — валидное значение, отсутствующее поле — нет
	body := `{"user_id":1,"event_type":"click","action":"button","info":null}`

	p, err := DecodePayload(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "null", string(p.Info))
}

func TestEnrichTimestampWindow(t *testing.T) {
	body := `{"user_id":42,"event_type":"click","action":"button","info":{"element_id":"btn-7"}}`
	p, err := DecodePayload(strings.NewReader(body))
	require.NoError(t, err)

	before := time.Now().UTC()
	e := Enrich(p, time.Now().UTC())
	after := time.Now().UTC()

	ts := e.EventTS.Time()
	assert.False(t, ts.Before(before.Truncate(time.Millisecond)))
	assert.False(t, ts.After(after))
}

func TestEnrichedRoundTrip(t *testing.T) {
	body := `{"user_id":42,"event_type":"click","action":"button","info":{"element_id":"btn-7"}}`
	p, err := DecodePayload(strings.NewReader(body))
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 12, 0, 0, 123_000_000, time.UTC)
	e := Enrich(p, now)

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var back Enriched
	require.NoError(t, json.Unmarshal(raw, &back))

	assert.Equal(t, e.UserID, back.UserID)
	assert.Equal(t, e.EventType, back.EventType)
	assert.Equal(t, e.Action, back.Action)
	assert.JSONEq(t, string(e.Info), string(back.Info))
	assert.Equal(t, now.UnixMilli(), back.EventTS.Time().UnixMilli())
}

func TestMillisWireFormat(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(Millis(now))
	require.NoError(t, err)

	// на проводе — голое число, не строка и не RFC3339
	assert.Equal(t, "1714564800000", string(raw))
}

func TestKeyIsStringifiedUserID(t *testing.T) {
	uid := uint64(42)
	et, act := "click", "button"
	e := Enrich(Payload{UserID: &uid, EventType: &et, Action: &act, Info: json.RawMessage(`{}`)}, time.Now())
	assert.Equal(t, "42", e.Key())
}
