package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	Env string `envconfig:"ENV" default:"development"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      uint   `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"restaurant"`
	Seed        bool   `envconfig:"SEED" default:"true"`

	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8002"`
	JWTSecret string `envconfig:"JWT_SECRET"`

	RedisAddr    string `envconfig:"REDIS_ADDR"`
	RedisChannel string `envconfig:"REDIS_CHANNEL" default:"restaurant:events"`
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"restaurant_topic"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"Restaurant Rewards <rewards@restaurant.local>"`

	OTelEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	ExpirySweepAt string `envconfig:"EXPIRY_SWEEP_AT" default:"00:10"`
	ReconcileCron string `envconfig:"RECONCILE_CRON" default:"*/5 * * * *"`
	Timezone      string `envconfig:"TIMEZONE" default:"Africa/Cairo"`
}

func (a App) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		a.DBHost, a.DBPort, a.DBUser, a.DBPassword, a.DBName)
}

// IsProduction quyết định định dạng log
func (a App) IsProduction() bool {
	return a.Env == "production"
}

func Load() (App, error) {
	_ = godotenv.Load()
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
