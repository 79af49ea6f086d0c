package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

// Number of messages kept per user list.
const DefaultHistory = 100

// Message is the JSON payload pushed for every alert change.
type Message struct {
	Action       ports.AlertAction `json:"action"`
	AlertID      string            `json:"alert_id"`
	UserID       int64             `json:"user_id"`
	LocationID   int64             `json:"location_id"`
	Type         string            `json:"type"`
	Severity     string            `json:"severity"`
	Message      string            `json:"message"`
	SpikeEventID *int64            `json:"spike_event_id,omitempty"`
	At           time.Time         `json:"at"`
}

// Redis-backed implementation of the AlertNotifier port. Each change is
// pushed onto a capped per-user list and published on a per-user channel.
type RedisNotifier struct {
	Client  *redis.Client
	History int64
	now     func() time.Time
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{Client: client, History: DefaultHistory, now: time.Now}
}

// Dial parses a redis:// URL and verifies the server answers.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("dial redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("dial redis: ping: %w", err)
	}
	return client, nil
}

func ListKey(userID int64) string {
	return fmt.Sprintf("alerts:user:%d", userID)
}

func ChannelKey(userID int64) string {
	return fmt.Sprintf("alerts:events:%d", userID)
}

func (n *RedisNotifier) Notify(ctx context.Context, action ports.AlertAction, a domain.Alert) error {
	if n.Client == nil {
		return errors.New("redis notifier: client is nil")
	}

	payload, err := json.Marshal(Message{
		Action:       action,
		AlertID:      a.ID,
		UserID:       a.UserID,
		LocationID:   a.LocationID,
		Type:         string(a.Type),
		Severity:     string(a.Severity),
		Message:      a.Message,
		SpikeEventID: a.SpikeEventID,
		At:           n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("notify alert %s: encode: %w", a.ID, err)
	}

	key := ListKey(a.UserID)
	pipe := n.Client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, n.History-1)
	pipe.Publish(ctx, ChannelKey(a.UserID), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("notify alert %s: %w", a.ID, err)
	}
	return nil
}

// Recent returns up to limit messages for the user, newest first.
func (n *RedisNotifier) Recent(ctx context.Context, userID int64, limit int) ([]Message, error) {
	if n.Client == nil {
		return nil, errors.New("redis notifier: client is nil")
	}
	if limit <= 0 {
		return nil, nil
	}

	raw, err := n.Client.LRange(ctx, ListKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("recent alerts: user=%d: %w", userID, err)
	}

	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var m Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("recent alerts: user=%d: decode: %w", userID, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, ports.AlertAction, domain.Alert) error { return nil }
