package handler

import (
	"context"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LiveFeed đọc kênh sự kiện trên Redis một lần và phát lại cho mọi client websocket.
type LiveFeed struct {
	client  *redis.Client
	channel string
	log     *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewLiveFeed(client *redis.Client, channel string, log *zap.Logger) *LiveFeed {
	return &LiveFeed{client: client, channel: channel, log: log, clients: make(map[*websocket.Conn]bool)}
}

// Run sub kênh Redis cho tới khi ctx bị huỷ
func (f *LiveFeed) Run(ctx context.Context) {
	pubsub := f.client.Subscribe(ctx, f.channel)
	defer pubsub.Close()

	channel := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-channel:
			if !ok {
				return
			}
			f.broadcast([]byte(msg.Payload))
		}
	}
}

func (f *LiveFeed) broadcast(payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.clients {
		// client lỗi thì xoá
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(f.clients, conn)
		}
	}
}

// Handle giữ kết nối tới khi client ngắt
func (f *LiveFeed) Handle(c *websocket.Conn) {
	f.mu.Lock()
	f.clients[c] = true
	f.mu.Unlock()
	f.log.Debug("live feed client connected", zap.String("remote", c.RemoteAddr().String()))

	defer func() {
		f.mu.Lock()
		delete(f.clients, c)
		f.mu.Unlock()
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
