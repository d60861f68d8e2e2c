// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Stripe                  `yaml:"stripe"`
	Entitlements            `yaml:"entitlements"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Stripe содержит ключи платёжного провайдера и идентификаторы цен.
//
// Четыре цены соответствуют двум платным тарифам (standard/premium)
// с месячной и годовой оплатой.
type Stripe struct {
	SecretKey            string        `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	WebhookSecret        string        `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	PriceStandardMonthly string        `yaml:"price_standard_monthly"`
	PriceStandardAnnual  string        `yaml:"price_standard_annual"`
	PricePremiumMonthly  string        `yaml:"price_premium_monthly"`
	PricePremiumAnnual   string        `yaml:"price_premium_annual"`
	APITimeout           time.Duration `yaml:"api_timeout" env-default:"10s"`
}

// Entitlements описывает лимиты выбора специализаций по тарифам.
type Entitlements struct {
	DefaultTier string `yaml:"default_tier" env-default:"free"`
	FreeMax     int    `yaml:"free_max" env-default:"1"`
	StandardMax int    `yaml:"standard_max" env-default:"10"`
	LockMonths  int    `yaml:"lock_months" env-default:"2"`
}

// RabbitMQ структура для настройки подключения к брокеру сообщений
type RabbitMQ struct {
	AddressRabbitMQ string `yaml:"address_rabbitmq" env:"RABBITMQ_URL"`
}

// SMTP структура для настройки почтового транспорта
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASSWORD"`
}

// MustLoad функция для загрузки конфига, путь берётся из переменной окружения CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
