// Package config предоставляет структуры и функции для загрузки конфигурации
// сервиса из YAML-файла и переменных окружения.
package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env             string          `yaml:"env" env:"ENV" env-default:"local"`
	MigrationsPath  string          `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	Storage         Storage         `yaml:"storage"`
	HTTPServer      HTTPServer      `yaml:"http_server"`
	JWTToken        JWTToken        `yaml:"jwttoken"`
	Auth            Auth            `yaml:"auth"`
	RedisConnection RedisConnection `yaml:"redis_connection"`
	RabbitMQ        RabbitMQ        `yaml:"rabbitmq"`
	Admin           Admin           `yaml:"admin"`
}

// Storage параметры подключения к PostgreSQL.
// ConnectionString, если задана, имеет приоритет над отдельными полями.
type Storage struct {
	ConnectionString string `yaml:"connection_string" env:"STORAGE_CONNECTION_STRING"`
	Host             string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port             int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User             string `yaml:"user" env:"DB_USER" env-default:"user"`
	Password         string `yaml:"password" env:"DB_PASSWORD" env-default:"password"`
	Name             string `yaml:"name" env:"DB_NAME" env-default:"users"`
	SSLMode          string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// JWTToken структура для работы с jwt-токеном.
// Пустой секрет не мешает старту, но делает невозможной любую аутентификацию.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"1h"`
}

// Auth настройки аутентификации.
type Auth struct {
	BcryptCost     int     `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"10"`
	CheckActive    bool    `yaml:"check_active" env:"AUTH_CHECK_ACTIVE" env-default:"false"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"AUTH_RATE_LIMIT_RPS" env-default:"5"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"AUTH_RATE_LIMIT_BURST" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кэш.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT" env-default:"3s"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env:"REDIS_CACHE_TTL" env-default:"5m"`
}

// RabbitMQ настройки публикации событий. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"AMQP_URL"`
	Exchange   string        `yaml:"exchange" env:"AMQP_EXCHANGE" env-default:"users"`
	Retries    int           `yaml:"retries" env:"AMQP_RETRIES" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env:"AMQP_RETRY_DELAY" env-default:"2s"`
}

// Admin учётная запись администратора, создаваемая при старте, если её ещё нет.
// Пустой email отключает создание.
type Admin struct {
	FullName    string `yaml:"full_name" env:"ADMIN_FULL_NAME" env-default:"Administrator"`
	DateOfBirth string `yaml:"date_of_birth" env:"ADMIN_DATE_OF_BIRTH" env-default:"1970-01-01"`
	Email       string `yaml:"email" env:"ADMIN_EMAIL"`
	Password    string `yaml:"password" env:"ADMIN_PASSWORD"`
}

// DSN возвращает строку подключения к PostgreSQL.
func (s Storage) DSN() string {
	if s.ConnectionString != "" {
		return s.ConnectionString
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(s.User, s.Password),
		Host:     net.JoinHostPort(s.Host, strconv.Itoa(s.Port)),
		Path:     "/" + s.Name,
		RawQuery: url.Values{"sslmode": []string{s.SSLMode}}.Encode(),
	}
	return u.String()
}

// Load читает конфиг из файла CONFIG_PATH, если он задан, иначе только из окружения.
// Переменные окружения в любом случае переопределяют значения из файла.
func Load() (*Config, error) {
	const op = "config.Load"
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг и завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Storage: %s:%d/%s (user %s)\n"+
			"HTTPServer: %s timeout=%s idle=%s\n"+
			"JWTToken: secret=%s ttl=%s\n"+
			"Auth: bcrypt_cost=%d check_active=%t rate=%.2f/%d\n"+
			"Redis: %s db=%d\n"+
			"RabbitMQ: enabled=%t exchange=%s\n",
		c.Env,
		c.Storage.Host, c.Storage.Port, c.Storage.Name, c.Storage.User,
		c.HTTPServer.AddressHTTP, c.HTTPServer.TimeoutHTTP, c.HTTPServer.IdleTimeout,
		mask(c.JWTToken.JWTSecretKey), c.JWTToken.TokenTTL,
		c.Auth.BcryptCost, c.Auth.CheckActive, c.Auth.RateLimitRPS, c.Auth.RateLimitBurst,
		c.RedisConnection.AddressRedis, c.RedisConnection.DB,
		c.RabbitMQ.URL != "", c.RabbitMQ.Exchange,
	)
}

func mask(secret string) string {
	if secret == "" {
		return "<empty>"
	}
	return "***"
}
