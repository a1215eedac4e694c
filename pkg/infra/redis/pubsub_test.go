package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"weightguard/internal/model"
	"weightguard/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestConsume(t *testing.T) {
	event := model.AlertEvent{
		ID:        "evt-1",
		ProductID: 42,
		Group:     model.GroupWeight,
		Kind:      model.AlertKindOutOfRange,
		Values:    map[model.Attribute]float64{model.AttrWeight: 25},
	}
	payload, err := json.Marshal(&event)
	require.NoError(t, err)

	msgs := make(chan *redis.Message, 3)
	msgs <- &redis.Message{Channel: "alerts", Payload: "not json"}
	msgs <- &redis.Message{Channel: "alerts", Payload: string(payload)}
	msgs <- &redis.Message{Channel: "alerts", Payload: string(payload)}
	close(msgs)

	var got []*model.AlertEvent
	handle := func(ctx context.Context, e *model.AlertEvent) error {
		assert.Equal(t, "evt-1", logger.TraceID(ctx))
		got = append(got, e)
		if len(got) == 1 {
			return errors.New("smtp down")
		}
		return nil
	}

	consume(context.Background(), msgs, handle, logger.NewNop())

	require.Len(t, got, 2)
	assert.Equal(t, int64(42), got[0].ProductID)
	assert.Equal(t, 25.0, got[1].Values[model.AttrWeight])
}

func TestConsumeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	msgs := make(chan *redis.Message)

	done := make(chan struct{})
	go func() {
		consume(ctx, msgs, func(context.Context, *model.AlertEvent) error { return nil }, logger.NewNop())
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consume did not stop")
	}
}
