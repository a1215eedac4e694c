package framework

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bitleak/lmstfy/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"weightguard/pkg/lmstfyx"
	"weightguard/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSource 内存消息源
type fakeSource struct {
	mu       sync.Mutex
	pending  []*Message
	failures int
	acked    []string
}

func (f *fakeSource) Consume(queue string, timeout, ttr time.Duration) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection reset")
	}
	if len(f.pending) == 0 {
		time.Sleep(time.Millisecond)
		return nil, nil
	}
	msg := f.pending[0]
	f.pending = f.pending[1:]
	return msg, nil
}

func (f *fakeSource) Ack(queue, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, jobID)
	return nil
}

func (f *fakeSource) ackedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.acked...)
}

func TestPipelineAcksByAction(t *testing.T) {
	source := &fakeSource{
		failures: 1,
		pending: []*Message{
			{ID: "ok", Queue: "q", Data: []byte("success")},
			{ID: "retry", Queue: "q", Data: []byte("release")},
			{ID: "bad", Queue: "q", Data: []byte("bury")},
		},
	}

	var mu sync.Mutex
	seen := map[string]bool{}
	proc := func(ctx context.Context, job *client.Job) *lmstfyx.JobResp {
		mu.Lock()
		seen[job.ID] = true
		mu.Unlock()
		switch string(job.Data) {
		case "release":
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusRelease}
		case "bury":
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
		}
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusSuccess}
	}

	log := logger.NewNop()
	inputChan := make(chan *Message, 4)
	sub := NewSubscriber(&SubscriberConfig{QueueName: "q", ErrorBackoff: time.Millisecond}, source, log)
	p := NewProcessor(&ProcessorConfig{}, proc, source, log)

	ctx := context.Background()
	p.Start(ctx, inputChan)
	sub.Start(ctx, inputChan)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, 2*time.Second, 5*time.Millisecond)

	sub.Stop()
	sub.Wait()
	p.SignalShutdown()
	p.Wait()

	assert.ElementsMatch(t, []string{"ok", "bad"}, source.ackedIDs())
}

func TestProcessorDrainsBufferedMessages(t *testing.T) {
	source := &fakeSource{}
	var mu sync.Mutex
	count := 0
	proc := func(ctx context.Context, job *client.Job) *lmstfyx.JobResp {
		mu.Lock()
		count++
		mu.Unlock()
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusSuccess}
	}

	inputChan := make(chan *Message, 5)
	for i := 0; i < 5; i++ {
		inputChan <- &Message{ID: string(rune('a' + i)), Queue: "q"}
	}

	p := NewProcessor(&ProcessorConfig{Concurrency: 2}, proc, source, logger.NewNop())
	p.SignalShutdown()
	p.Start(context.Background(), inputChan)
	p.Wait()

	assert.Equal(t, 5, count)
	assert.Len(t, source.ackedIDs(), 5)
}

func TestProcessorNilResponseIsBuried(t *testing.T) {
	source := &fakeSource{}
	p := NewProcessor(&ProcessorConfig{}, func(context.Context, *client.Job) *lmstfyx.JobResp { return nil },
		source, logger.NewNop())

	p.process(context.Background(), &Message{ID: "x", Queue: "q"}, 0)
	assert.Equal(t, []string{"x"}, source.ackedIDs())
}
