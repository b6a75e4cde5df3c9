package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// TimerListener listens for Redis keyspace notifications on expired timer keys
// and triggers phase resolution when a session's deadline passes. Also runs a
// polling fallback to catch expirations if keyspace notifications are unavailable.
type TimerListener struct {
	rdb     *redis.Client
	session *GameSession
}

// NewTimerListener creates a TimerListener for one session.
func NewTimerListener(rdb *redis.Client, session *GameSession) *TimerListener {
	return &TimerListener{rdb: rdb, session: session}
}

// Start begins listening for expired key events and runs a polling fallback.
// Blocks until the context is cancelled.
func (t *TimerListener) Start(ctx context.Context) {
	go t.listenKeyspace(ctx)
	t.pollDeadline(ctx)
}

// listenKeyspace subscribes to Redis keyspace notifications for expired keys.
func (t *TimerListener) listenKeyspace(ctx context.Context) {
	pubsub := t.rdb.PSubscribe(ctx, "__keyevent@0__:expired")
	defer pubsub.Close()

	log.Info().Msg("Timer listener started, listening for expired keys")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			t.handleExpiry(ctx, msg.Payload)
		}
	}
}

// pollDeadline periodically checks the session deadline and resolves on expiry.
func (t *TimerListener) pollDeadline(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	log.Info().Msg("Phase deadline poller started (10s interval)")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Phase deadline poller stopped")
			return
		case <-ticker.C:
			if t.session.Game().Finished() {
				return
			}
			if t.session.DeadlineExpired() {
				log.Info().Str("gameId", t.session.ID()).Msg("Poller found expired deadline, resolving phase")
				t.resolve(ctx)
			}
		}
	}
}

// handleExpiry processes an expired key. Only acts on this session's timer key.
func (t *TimerListener) handleExpiry(ctx context.Context, key string) {
	if !strings.HasPrefix(key, "game:") || !strings.HasSuffix(key, ":timer") {
		return
	}

	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 || parts[1] != t.session.ID() {
		return
	}

	log.Info().Str("gameId", parts[1]).Msg("Timer expired, triggering phase resolution")
	t.resolve(ctx)
}

func (t *TimerListener) resolve(ctx context.Context) {
	if _, err := t.session.ResolvePhase(ctx); err != nil {
		log.Error().Err(err).Str("gameId", t.session.ID()).Msg("Phase resolution failed after timer expiry")
	}
}
