package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	goredis "github.com/redis/go-redis/v9"

	alarms "temperature-monitor/internal/alarms/domain"
	alarmmemory "temperature-monitor/internal/alarms/infrastructure/memory"
	alarmrepo "temperature-monitor/internal/alarms/infrastructure/postgres"
	"temperature-monitor/internal/config"
	"temperature-monitor/internal/storage/postgres"
	subscribers "temperature-monitor/internal/subscribers/domain"
	submemory "temperature-monitor/internal/subscribers/infrastructure/memory"
	subrepo "temperature-monitor/internal/subscribers/infrastructure/postgres"
	telemetry "temperature-monitor/internal/telemetry/domain"
	telemetrymemory "temperature-monitor/internal/telemetry/infrastructure/memory"
	telemetryrepo "temperature-monitor/internal/telemetry/infrastructure/postgres"
	telemetryredis "temperature-monitor/internal/telemetry/infrastructure/redis"
)

type stores struct {
	db          *sql.DB
	redis       *goredis.Client
	readings    telemetry.ReadingRepository
	latest      telemetry.LatestStore
	alarms      alarms.Repository
	subscribers subscribers.Repository
}

// openStores picks Postgres when a DSN is configured and in-memory stores otherwise.
// The latest-reading cache uses Redis when REDIS_ADDR is set.
func openStores(ctx context.Context, cfg config.Config, logger *log.Logger) (*stores, error) {
	st := &stores{}
	if cfg.UsePostgres() {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		st.db = db
		st.readings = telemetryrepo.NewReadingRepository(db)
		st.alarms = alarmrepo.NewAlarmRepository(db)
		st.subscribers = subrepo.NewSubscriberRepository(db)
	} else {
		logger.Printf("DATABASE_URL not set; using in-memory stores")
		st.readings = telemetrymemory.NewReadingRepository()
		st.alarms = alarmmemory.NewAlarmRepository()
		st.subscribers = submemory.NewSubscriberRepository()
	}

	st.latest = telemetrymemory.NewLatestStore()
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Printf("redis ping error: %v; using in-memory latest cache", err)
			_ = client.Close()
		} else {
			latest, err := telemetryredis.NewLatestStore(client, cfg.Redis.LatestTTL)
			if err != nil {
				_ = client.Close()
				st.Close()
				return nil, err
			}
			st.redis = client
			st.latest = latest
		}
	}
	return st, nil
}

func (s *stores) Close() {
	if s == nil {
		return
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
