package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestPublisher_Publish(t *testing.T) {
	w := &memWriter{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Publisher{writer: w, tracer: otel.Tracer("test"), now: func() time.Time { return now }}

	require.NoError(t, p.Publish(context.Background(), "institution_3", map[string]any{"id": 15, "status": "accepted"}))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "institution_3", string(msg.Key))

	var ev Event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, "institution_3", ev.Channel)
	assert.Equal(t, now, ev.PublishedAt)
	assert.JSONEq(t, `{"id":15,"status":"accepted"}`, string(ev.Payload))
	_, err := ulid.Parse(ev.ID)
	assert.NoError(t, err)
	assert.Equal(t, ev.ID, header(msg, "X-Event-ID"))
}

func TestPublisher_WriteError(t *testing.T) {
	w := &memWriter{err: errors.New("broker unavailable")}
	p := &Publisher{writer: w, tracer: otel.Tracer("test"), now: time.Now}

	err := p.Publish(context.Background(), "operator", struct{}{})
	assert.ErrorContains(t, err, "broker unavailable")
}

func TestCommandWriter_AssignsID(t *testing.T) {
	w := &memWriter{}
	cw := &CommandWriter{writer: w}

	require.NoError(t, cw.Write(context.Background(), Command{Type: CommandCancel, OrderID: 42}))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	var cmd Command
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &cmd))
	assert.NotEmpty(t, cmd.ID)
	assert.Equal(t, CommandCancel, cmd.Type)
}
