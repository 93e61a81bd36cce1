package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/profai/profai-backend/internal/core"
	"github.com/profai/profai-backend/internal/logger"
)

const profileCacheTTL = 5 * time.Minute

// Repository stores learner profiles as JSON documents keyed by user id,
// with an optional redis read-through cache, plus an append-only interaction
// log. Read-modify-write with last-writer-wins; no locking.
type Repository struct {
	db    *sql.DB
	cache *redis.Client
	log   *logger.Logger
}

// NewRepository opens the database, verifies connectivity, and ensures the
// schema. A non-empty redisAddr enables the profile cache.
func NewRepository(dsn, redisAddr string, log *logger.Logger) (*Repository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	var cache *redis.Client
	if redisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := cache.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis unreachable, profile cache disabled", "addr", redisAddr, "error", err)
			cache = nil
		}
	}

	repo := &Repository{db: db, cache: cache, log: log}
	if err := repo.initSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *Repository) initSchema() error {
	r.log.Info("initializing schema")

	queryUsers := `
	CREATE TABLE IF NOT EXISTS users (
		user_id VARCHAR(64) PRIMARY KEY,
		learning_profile JSON NOT NULL,
		updated_at BIGINT NOT NULL
	);
	`
	if _, err := r.db.Exec(queryUsers); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	queryInteractions := `
	CREATE TABLE IF NOT EXISTS interactions (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(64),
		role VARCHAR(16),
		content TEXT,
		timestamp BIGINT
	);
	`
	if _, err := r.db.Exec(queryInteractions); err != nil {
		return fmt.Errorf("failed to create interactions table: %w", err)
	}

	return nil
}

func cacheKey(userID string) string {
	return "profile:" + userID
}

// GetProfile loads the stored profile for userID. A missing profile is
// core.ErrProfileNotFound, never a silently defaulted fresh one.
func (r *Repository) GetProfile(ctx context.Context, userID string) (core.LearnerProfile, error) {
	var profile core.LearnerProfile

	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, cacheKey(userID)).Result(); err == nil {
			if err := json.Unmarshal([]byte(raw), &profile); err == nil {
				return profile, nil
			}
		}
	}

	var raw []byte
	query := `SELECT learning_profile FROM users WHERE user_id = ?`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile, core.ErrProfileNotFound
		}
		return profile, fmt.Errorf("failed to query profile: %w", err)
	}
	if err := json.Unmarshal(raw, &profile); err != nil {
		return profile, fmt.Errorf("failed to decode profile for %s: %w", userID, err)
	}

	r.fillCache(ctx, userID, raw)
	return profile, nil
}

// SaveProfile upserts the profile document and refreshes the cache.
func (r *Repository) SaveProfile(ctx context.Context, userID string, profile core.LearnerProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	query := `INSERT INTO users (user_id, learning_profile, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE learning_profile = VALUES(learning_profile), updated_at = VALUES(updated_at)`
	if _, err := r.db.ExecContext(ctx, query, userID, raw, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	r.fillCache(ctx, userID, raw)
	return nil
}

func (r *Repository) fillCache(ctx context.Context, userID string, raw []byte) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKey(userID), raw, profileCacheTTL).Err(); err != nil {
		r.log.Warn("failed to cache profile", "userId", userID, "error", err)
	}
}

// LogInteraction appends one turn to the interaction log.
func (r *Repository) LogInteraction(ctx context.Context, userID, role, content string, timestamp int64) error {
	id := uuid.New().String()
	query := `INSERT INTO interactions (id, user_id, role, content, timestamp) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, id, userID, role, content, timestamp); err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	if r.cache != nil {
		_ = r.cache.Close()
	}
	return r.db.Close()
}
