package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"restaurant_manager/config"
	"restaurant_manager/database"
	"restaurant_manager/handler"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/notify"
	"restaurant_manager/obs"
	"restaurant_manager/repository"
	"restaurant_manager/repository/memstore"
	"restaurant_manager/router"
	"restaurant_manager/service"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("load config: %v", err)
	}
	log, err := utils.NewLogger(cfg.IsProduction())
	if err != nil {
		stdlog.Fatalf("init logger: %v", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer("restaurant-manager", cfg.Env, cfg.OTelEndpoint)
	if err != nil {
		log.Fatal("init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	clock := clockwork.NewRealClock()

	store, db, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	if cfg.Seed {
		if err := database.SeedData(ctx, store, clock.Now(), log); err != nil {
			log.Fatal("seed data", zap.Error(err))
		}
	}

	redisClient, pub, closePublishers := buildPublishers(cfg, db, log)
	defer closePublishers()

	campaigns := service.NewCampaignSelector(store, clock, log)
	loyalty := service.NewLoyaltyService(store, campaigns, clock, log, pub)
	tables := service.NewTableReconciler(store, log, pub)
	sweeper := service.NewPointExpirySweeper(store, log)
	orders := service.NewOrderLifecycle(store, loyalty, tables, clock, log, pub)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal("load timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}
	schedulers, err := helper.StartSchedulers(helper.ScheduleConfig{
		SweepAt:       cfg.ExpirySweepAt,
		ReconcileCron: cfg.ReconcileCron,
		Location:      loc,
	}, sweeper, tables, clock, log)
	if err != nil {
		log.Fatal("start schedulers", zap.Error(err))
	}
	defer schedulers.Stop()

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Authorization, Accept",
		MaxAge:       600,
	}))

	var feed *handler.LiveFeed
	if redisClient != nil {
		feed = handler.NewLiveFeed(redisClient, cfg.RedisChannel, log)
		go feed.Run(ctx)
	}
	router.SetupRoutes(app, &handler.Handler{
		Orders:    orders,
		Loyalty:   loyalty,
		Campaigns: campaigns,
		Tables:    tables,
		Sweeper:   sweeper,
		Clock:     clock,
		Log:       log,
	}, feed, cfg.JWTSecret)

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Warn("shutdown http server", zap.Error(err))
		}
	}()

	log.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Error("http server stopped", zap.Error(err))
	}
}

func openStore(cfg config.App, log *zap.Logger) (repository.Store, *gorm.DB, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store, data is lost on restart")
		return memstore.New(), nil, nil
	}
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewGormStore(db), db, nil
}

// buildPublishers bật các kênh thông báo đã được cấu hình; thiếu cấu hình thì bỏ qua kênh đó.
func buildPublishers(cfg config.App, db *gorm.DB, log *zap.Logger) (*redis.Client, notify.Publisher, func()) {
	var publishers notify.Multi
	var closers []func()
	var redisClient *redis.Client

	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		publishers = append(publishers, notify.NewRedisPublisher(redisClient, cfg.RedisChannel))
		closers = append(closers, func() { _ = redisClient.Close() })
	}
	if cfg.AMQPURL != "" {
		amqpPub, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn("rabbitmq publisher disabled", zap.Error(err))
		} else {
			publishers = append(publishers, amqpPub)
			closers = append(closers, func() { _ = amqpPub.Close() })
		}
	}
	if cfg.SMTPHost != "" && db != nil {
		publishers = append(publishers, notify.NewTierMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, func(ctx context.Context, customerID uint) (string, error) {
			var customer model.Customer
			if err := db.WithContext(ctx).Select("email").First(&customer, customerID).Error; err != nil {
				return "", err
			}
			return customer.Email, nil
		}))
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if len(publishers) == 0 {
		return redisClient, notify.Noop{}, closeAll
	}
	return redisClient, publishers, closeAll
}
