// Package postgres реализует persistence layer каталога на PostgreSQL.
//
// Patterns:
// - Generic Repository: одна реализация ports.Repository на все таблицы (Schema)
// - Unit of Work: транзакционный scope + after-commit hooks
// - Connection Pool: pgxpool, общий для всех scope
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config - параметры пула. URL перекрывает discrete поля подключения;
// нулевые лимиты оставляют значения pgxpool.
type Config struct {
	URL string

	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	ApplicationName string
	ConnectTimeout  time.Duration

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// ConnectAttempts - сколько раз пинговать БД при старте (compose поднимает
	// postgres параллельно с api). <= 1 - одна попытка.
	ConnectAttempts int
	RetryBackoff    time.Duration

	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            5432,
		Database:        "storehub",
		User:            "postgres",
		Password:        "postgres",
		SSLMode:         "disable",
		ApplicationName: "storehub",
		ConnectTimeout:  5 * time.Second,
		MaxConns:        25,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectAttempts: 1,
		RetryBackoff:    time.Second,
	}
}

// ConnectionString - URL форма DSN; user/password экранируются.
func (c Config) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}

	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	if c.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	}
	if c.ApplicationName != "" {
		q.Set("application_name", c.ApplicationName)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func (c Config) poolConfig() (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if c.MaxConns > 0 {
		pc.MaxConns = c.MaxConns
	}
	if c.MinConns > 0 {
		pc.MinConns = c.MinConns
	}
	if c.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = c.MaxConnLifetime
	}
	if c.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = c.MaxConnIdleTime
	}
	return pc, nil
}

// NewConnectionPool открывает пул и ждёт первого успешного ping,
// повторяя до ConnectAttempts раз с линейно растущей паузой.
func NewConnectionPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := cfg.poolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := waitReady(ctx, cfg, pool.Ping); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func waitReady(ctx context.Context, cfg Config, ping func(context.Context) error) error {
	attempts := max(cfg.ConnectAttempts, 1)
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		wait := cfg.RetryBackoff * time.Duration(attempt)
		log.Warn("postgres not ready", "attempt", attempt, "of", attempts, "retry_in", wait, "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping postgres: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("ping postgres after %d attempt(s): %w", attempts, err)
}

// HealthCheck - ping с собственным таймаутом для readiness probe.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return pool.Ping(ctx)
}

// PoolStats - снимок pgxpool.Stat для /health/detailed и метрик.
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
	AcquireCount  int64 `json:"acquire_count"`
}

func GetPoolStats(pool *pgxpool.Pool) PoolStats {
	stat := pool.Stat()
	return PoolStats{
		TotalConns:    stat.TotalConns(),
		IdleConns:     stat.IdleConns(),
		AcquiredConns: stat.AcquiredConns(),
		MaxConns:      stat.MaxConns(),
		AcquireCount:  stat.AcquireCount(),
	}
}
