package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"ppe-gate/internal/domain/entity"
)

type sentMsg struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	sent []sentMsg
	err  error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMsg{subject: subject, data: data})
	return nil
}

func TestPublisher_Subjects(t *testing.T) {
	fake := &fakePublisher{}
	p := newPublisher(fake, "site1.gate01", zerolog.Nop())
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, p.NotifyGateEvent(ctx, entity.GateEvent{Kind: entity.EventHoldLevelChanged, Level: 2, At: at}))
	require.NoError(t, p.NotifyOutcome(ctx, entity.PassOutcome{ID: "p1", Decision: entity.DecisionGranted, At: at}))

	require.Len(t, fake.sent, 2)
	require.Equal(t, "site1.gate01.gate", fake.sent[0].subject)
	require.Equal(t, "site1.gate01.pass", fake.sent[1].subject)

	var event entity.GateEvent
	require.NoError(t, json.Unmarshal(fake.sent[0].data, &event))
	require.Equal(t, entity.EventHoldLevelChanged, event.Kind)
	require.Equal(t, 2, event.Level)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(fake.sent[1].data, &payload))
	require.Equal(t, "p1", payload["id"])
	require.Equal(t, "granted", payload["decision"])
}

func TestPublisher_PublishError(t *testing.T) {
	p := newPublisher(&fakePublisher{err: errors.New("nats: connection closed")}, "ppe", zerolog.Nop())
	err := p.NotifyOutcome(context.Background(), entity.PassOutcome{})
	require.ErrorContains(t, err, "publish ppe.pass")
	require.False(t, p.IsConnected())
	require.NoError(t, p.Shutdown(context.Background()))
}
