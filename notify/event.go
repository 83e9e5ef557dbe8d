// Package notify phát sự kiện nghiệp vụ ra ngoài (redis, rabbitmq, email).
// Mọi lời gọi đều là fire-and-forget: lỗi chỉ được ghi log.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Event struct {
	Name    string         `json:"event"`
	Payload map[string]any `json:"data"`
	At      time.Time      `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Noop bỏ qua mọi sự kiện
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Multi gửi song song tới mọi publisher. Một publisher lỗi không huỷ các publisher còn lại,
// lỗi được gộp lại bằng errors.Join.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var g errgroup.Group
	errs := make([]error, len(m))
	for i, p := range m {
		g.Go(func() error {
			errs[i] = p.Publish(ctx, ev)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// DispatchTimeout giới hạn thời gian một lần gửi
var DispatchTimeout = 5 * time.Second

// Dispatch gửi ev trên goroutine riêng, không bao giờ chặn người gọi.
func Dispatch(log *zap.Logger, pub Publisher, ev Event) {
	if pub == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("notify: publisher panicked", zap.String("event", ev.Name), zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), DispatchTimeout)
		defer cancel()
		if err := pub.Publish(ctx, ev); err != nil {
			log.Warn("notify: publish failed", zap.String("event", ev.Name), zap.Error(err))
		}
	}()
}

func uintFrom(payload map[string]any, key string) (uint, error) {
	switch v := payload[key].(type) {
	case uint:
		return v, nil
	case int:
		return uint(v), nil
	case int64:
		return uint(v), nil
	case float64:
		return uint(v), nil
	default:
		return 0, fmt.Errorf("payload %q: unexpected type %T", key, v)
	}
}
