package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChangeFeed fans record-store mutations out to in-process subscribers and,
// when Redis is available, to every other running instance. In-process
// delivery is synchronous; cross-instance delivery is eventual and
// best-effort, mirroring the cross-tab signal it replaces.
type ChangeFeed struct {
	client     *redis.Client
	channel    string
	instanceID string
	logger     *zap.Logger

	mu   sync.RWMutex
	subs []func(context.Context)

	cancel context.CancelFunc
	done   chan struct{}
}

// NewChangeFeed constructs a feed. A nil client degrades to local-only
// delivery, which tests rely on.
func NewChangeFeed(client *redis.Client, channel string, logger *zap.Logger) *ChangeFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channel == "" {
		channel = "plenary:records"
	}
	return &ChangeFeed{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		logger:     logger,
	}
}

// Subscribe registers a callback invoked after every mutation.
func (f *ChangeFeed) Subscribe(fn func(context.Context)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
}

// RecordsChanged implements repository.Notifier. Local subscribers run
// before the publish so the writing process observes its own writes
// immediately.
func (f *ChangeFeed) RecordsChanged(ctx context.Context) {
	f.fanout(ctx)
	if f.client == nil {
		return
	}
	if err := f.client.Publish(ctx, f.channel, f.instanceID).Err(); err != nil {
		f.logger.Warn("change feed publish failed", zap.Error(err))
	}
}

// Listen consumes cross-instance notifications until Close is called.
func (f *ChangeFeed) Listen(ctx context.Context) {
	if f.client == nil {
		return
	}
	ctx, f.cancel = context.WithCancel(ctx)
	f.done = make(chan struct{})
	sub := f.client.Subscribe(ctx, f.channel)

	go func() {
		defer close(f.done)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg.Payload == f.instanceID {
					continue
				}
				f.fanout(ctx)
			}
		}
	}()
}

// Close stops the listener.
func (f *ChangeFeed) Close() {
	if f.cancel != nil {
		f.cancel()
		<-f.done
	}
}

func (f *ChangeFeed) fanout(ctx context.Context) {
	f.mu.RLock()
	subs := make([]func(context.Context), len(f.subs))
	copy(subs, f.subs)
	f.mu.RUnlock()
	for _, fn := range subs {
		fn(ctx)
	}
}
