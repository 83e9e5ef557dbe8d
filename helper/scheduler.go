package helper

import (
	"context"
	"fmt"
	"time"

	"restaurant_manager/service"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type ScheduleConfig struct {
	SweepAt       string // "HH:MM" theo giờ địa phương
	ReconcileCron string
	Location      *time.Location
}

// Schedulers giữ hai bộ lập lịch chạy nền: quét điểm hết hạn mỗi ngày (gocron)
// và đối soát trạng thái bàn định kỳ (robfig/cron).
type Schedulers struct {
	daily     gocron.Scheduler
	reconcile *cron.Cron
	log       *zap.Logger
}

// ParseClock đọc "HH:MM"
func ParseClock(value string) (hour, minute uint, err error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: %w", value, err)
	}
	return uint(t.Hour()), uint(t.Minute()), nil
}

func StartSchedulers(cfg ScheduleConfig, sweeper *service.PointExpirySweeper, tables *service.TableReconciler, clock clockwork.Clock, log *zap.Logger) (*Schedulers, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	hour, minute, err := ParseClock(cfg.SweepAt)
	if err != nil {
		return nil, err
	}

	daily, err := gocron.NewScheduler(gocron.WithLocation(cfg.Location))
	if err != nil {
		return nil, err
	}
	_, err = daily.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0))),
		gocron.NewTask(func() { RunExpirySweep(sweeper, clock, log) }),
		gocron.WithName("expire-points"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = daily.Shutdown()
		return nil, err
	}

	reconcile := cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := reconcile.AddFunc(cfg.ReconcileCron, func() { RunReconcile(tables, log) }); err != nil {
		_ = daily.Shutdown()
		return nil, fmt.Errorf("reconcile schedule %q: %w", cfg.ReconcileCron, err)
	}

	daily.Start()
	reconcile.Start()
	log.Info("schedulers started",
		zap.String("expiry_sweep_at", cfg.SweepAt),
		zap.String("reconcile_cron", cfg.ReconcileCron),
		zap.String("timezone", cfg.Location.String()),
	)
	return &Schedulers{daily: daily, reconcile: reconcile, log: log}, nil
}

func RunExpirySweep(sweeper *service.PointExpirySweeper, clock clockwork.Clock, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	total, err := sweeper.Sweep(ctx, clock.Now())
	if err != nil {
		log.Error("[CRON] expiry sweep failed", zap.Error(err))
		return
	}
	log.Info("[CRON] expiry sweep done", zap.Int64("points_expired", total))
}

func RunReconcile(tables *service.TableReconciler, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	report, err := tables.ReconcileAll(ctx, false)
	if err != nil {
		log.Error("[CRON] table reconcile failed", zap.Error(err))
		return
	}
	if len(report.Changes) > 0 {
		log.Info("[CRON] tables reconciled", zap.Int("fixed", len(report.Changes)), zap.Int64("occupied", report.Occupied))
	}
}

// Stop dừng cả hai bộ lập lịch, chờ job cron đang chạy kết thúc
func (s *Schedulers) Stop() {
	if s == nil {
		return
	}
	if err := s.daily.Shutdown(); err != nil {
		s.log.Warn("stop expiry scheduler", zap.Error(err))
	}
	<-s.reconcile.Stop().Done()
	s.log.Info("schedulers stopped")
}
