package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for live session state.
func snapshotKey(gameID string) string       { return "game:" + gameID + ":state" }
func ordersKey(gameID, player string) string { return "game:" + gameID + ":orders:" + player }
func readyKey(gameID string) string          { return "game:" + gameID + ":ready" }
func timerKey(gameID string) string          { return "game:" + gameID + ":timer" }
func drawVoteKey(gameID string) string       { return "game:" + gameID + ":draw_votes" }

// SetSnapshot stores the authoritative game state JSON.
func (c *Client) SetSnapshot(ctx context.Context, gameID string, snap json.RawMessage) error {
	return c.rdb.Set(ctx, snapshotKey(gameID), []byte(snap), 0).Err()
}

// GetSnapshot retrieves the stored game state JSON, or nil when the
// session has no live snapshot.
func (c *Client) GetSnapshot(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, snapshotKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return json.RawMessage(data), nil
}

// SetOrders stores a player's submitted orders for the current phase,
// replacing any earlier submission.
func (c *Client) SetOrders(ctx context.Context, gameID, player string, orders json.RawMessage) error {
	return c.rdb.Set(ctx, ordersKey(gameID, player), []byte(orders), 0).Err()
}

// GetAllOrders retrieves the submissions of every listed player that
// has one.
func (c *Client) GetAllOrders(ctx context.Context, gameID string, players []string) (map[string]json.RawMessage, error) {
	result := make(map[string]json.RawMessage)
	for _, player := range players {
		data, err := c.rdb.Get(ctx, ordersKey(gameID, player)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get orders: %w", err)
		}
		result[player] = data
	}
	return result, nil
}

// MarkReady adds a player to the ready set.
func (c *Client) MarkReady(ctx context.Context, gameID, player string) error {
	return c.rdb.SAdd(ctx, readyKey(gameID), player).Err()
}

// UnmarkReady removes a player from the ready set.
func (c *Client) UnmarkReady(ctx context.Context, gameID, player string) error {
	return c.rdb.SRem(ctx, readyKey(gameID), player).Err()
}

// ReadyPlayers returns the set of players that have marked ready.
func (c *Client) ReadyPlayers(ctx context.Context, gameID string) ([]string, error) {
	return c.rdb.SMembers(ctx, readyKey(gameID)).Result()
}

// AddDrawVote adds a player to the draw vote set.
func (c *Client) AddDrawVote(ctx context.Context, gameID, player string) error {
	return c.rdb.SAdd(ctx, drawVoteKey(gameID), player).Err()
}

// RemoveDrawVote removes a player from the draw vote set.
func (c *Client) RemoveDrawVote(ctx context.Context, gameID, player string) error {
	return c.rdb.SRem(ctx, drawVoteKey(gameID), player).Err()
}

// DrawVotePlayers returns the set of players currently voting draw.
func (c *Client) DrawVotePlayers(ctx context.Context, gameID string) ([]string, error) {
	return c.rdb.SMembers(ctx, drawVoteKey(gameID)).Result()
}

// phaseGracePeriod is the extra time after the displayed deadline
// before resolution triggers, giving players a few seconds of leeway.
const phaseGracePeriod = 5 * time.Second

// SetTimer creates a timer key with a TTL. When the key expires, Redis
// keyspace notifications trigger phase resolution.
func (c *Client) SetTimer(ctx context.Context, gameID string, deadline time.Time) error {
	ttl := time.Until(deadline) + phaseGracePeriod
	if ttl <= 0 {
		ttl = time.Second
	}
	return c.rdb.Set(ctx, timerKey(gameID), deadline.Unix(), ttl).Err()
}

// ClearTimer removes the timer for a game.
func (c *Client) ClearTimer(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, timerKey(gameID)).Err()
}

// ClearPhaseData removes orders, ready status and the timer. Called
// after each resolution to prepare the next phase. Draw votes are
// sticky across phases and stay put.
func (c *Client) ClearPhaseData(ctx context.Context, gameID string, players []string) error {
	keys := []string{readyKey(gameID), timerKey(gameID)}
	for _, player := range players {
		keys = append(keys, ordersKey(gameID, player))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// DeleteSession removes all live data for a finished game.
func (c *Client) DeleteSession(ctx context.Context, gameID string, players []string) error {
	keys := []string{snapshotKey(gameID), readyKey(gameID), timerKey(gameID), drawVoteKey(gameID)}
	for _, player := range players {
		keys = append(keys, ordersKey(gameID, player))
	}
	return c.rdb.Del(ctx, keys...).Err()
}
