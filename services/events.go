package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"sql-career-engine/logger"

	goredis "github.com/redis/go-redis/v9"
)

// AttemptEvaluated is published after an evaluation commits. It carries what the
// leaderboard feed needs to refresh the player's row.
type AttemptEvaluated struct {
	PlayerID     string    `json:"player_id"`
	Username     string    `json:"username"`
	Region       string    `json:"region"`
	ChallengeID  string    `json:"challenge_id"`
	Level        int       `json:"level"`
	TotalXP      int       `json:"total_xp"`
	XPEarned     int       `json:"xp_earned"`
	OverallScore int       `json:"overall_score"`
	LeveledUp    bool      `json:"leveled_up"`
	BadgeCount   int       `json:"badge_count"`
	NewBadges    []string  `json:"new_badges,omitempty"`
	At           time.Time `json:"at"`
}

type EventBus interface {
	Publish(ctx context.Context, ev AttemptEvaluated) error
	// Subscribe delivers events to fn until ctx is done.
	Subscribe(ctx context.Context, fn func(AttemptEvaluated)) error
	Close() error
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisBus connects to addr and pings it before returning.
func NewRedisBus(addr, channel string, log *logger.Logger) (EventBus, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if channel == "" {
		channel = "attempts"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisBusWithClient(rdb, channel, log), nil
}

func newRedisBusWithClient(rdb *goredis.Client, channel string, log *logger.Logger) *redisBus {
	return &redisBus{
		log:     log.With("service", "RedisEventBus", "channel", channel),
		rdb:     rdb,
		channel: channel,
	}
}

func (b *redisBus) Publish(ctx context.Context, ev AttemptEvaluated) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) Subscribe(ctx context.Context, fn func(AttemptEvaluated)) error {
	if fn == nil {
		return fmt.Errorf("subscriber callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev AttemptEvaluated
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad attempt event payload", "error", err)
					continue
				}
				fn(ev)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	return b.rdb.Close()
}

// memoryBus is the single-process bus used when no redis is configured.
type memoryBus struct {
	log    *logger.Logger
	mu     sync.RWMutex
	subs   map[int]chan AttemptEvaluated
	nextID int
	closed bool
}

const memoryBusBuffer = 256

func NewMemoryBus(log *logger.Logger) EventBus {
	return &memoryBus{
		log:  log.With("service", "MemoryEventBus"),
		subs: make(map[int]chan AttemptEvaluated),
	}
}

// Publish never blocks; a subscriber whose buffer is full misses the event and
// the next scheduled leaderboard rebuild repairs its row.
func (b *memoryBus) Publish(ctx context.Context, ev AttemptEvaluated) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("event bus closed")
	}
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.log.Warn("dropping attempt event, subscriber is behind", "subscriber", id, "player_id", ev.PlayerID)
		}
	}
	return nil
}

func (b *memoryBus) Subscribe(ctx context.Context, fn func(AttemptEvaluated)) error {
	if fn == nil {
		return fmt.Errorf("subscriber callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("event bus closed")
	}
	id := b.nextID
	b.nextID++
	ch := make(chan AttemptEvaluated, memoryBusBuffer)
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.unsubscribe(id)
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				fn(ev)
			}
		}
	}()
	return nil
}

func (b *memoryBus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	return nil
}
