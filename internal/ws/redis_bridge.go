package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ignatzorin/freelance-jobs/internal/logger"
)

const channelPrefix = "notifications:"

// RedisBridge рассылает события через Redis pub/sub, чтобы они дошли до клиентов,
// подключённых к любому инстансу. Локальная доставка идёт только из подписки.
type RedisBridge struct {
	rdb *redis.Client
	hub *Hub
}

func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

func NewRedisBridge(rdb *redis.Client, hub *Hub) *RedisBridge {
	return &RedisBridge{rdb: rdb, hub: hub}
}

// BroadcastToUser публикует событие в канал пользователя.
func (b *RedisBridge) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	raw, err := json.Marshal(Envelope{Type: event, Data: data})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}
	return b.rdb.Publish(context.Background(), UserChannel(userID), raw).Err()
}

// Run слушает каналы всех пользователей и передаёт сообщения локальному хабу.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("ws: не удалось подписаться на redis: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			userID, err := userFromChannel(msg.Channel)
			if err != nil {
				logger.Log.WithField("channel", msg.Channel).Warn("ws: неизвестный канал redis")
				continue
			}
			if err := b.hub.DeliverLocal(userID, []byte(msg.Payload)); err != nil {
				return nil
			}
		}
	}
}

func UserChannel(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

func userFromChannel(channel string) (uuid.UUID, error) {
	if !strings.HasPrefix(channel, channelPrefix) {
		return uuid.Nil, fmt.Errorf("ws: канал %q вне пространства уведомлений", channel)
	}
	return uuid.Parse(strings.TrimPrefix(channel, channelPrefix))
}
