// Package store is the reference persistence collaborator: each game-state
// collection is saved independently keyed as a JSON document in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/lifequest/engine/internal/domain"
)

const currentVersion = 1

// Collection keys
const (
	keyPlayer      = "player"
	keyQuests      = "quests"
	keyBosses      = "bosses"
	keyLoot        = "pending_loot"
	keyPenalties   = "pending_penalties"
	keyActivityLog = "activity_log"
)

// Store persists game state to SQLite
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}

	const ddl = `
	CREATE TABLE IF NOT EXISTS collections (
		key        TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

// save marshals v and upserts it under the key
func (s *Store) save(ctx context.Context, key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collections (key, payload, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ','now'))
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		key, string(payload))
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// load unmarshals the payload under the key into v.
// found is false when the key has never been saved.
func (s *Store) load(ctx context.Context, key string, v interface{}) (found bool, err error) {
	var payload string
	err = s.db.QueryRowContext(ctx, "SELECT payload FROM collections WHERE key = ?", key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// LoadPlayer returns the saved player, or nil for a fresh game
func (s *Store) LoadPlayer(ctx context.Context) (*domain.Player, error) {
	var p domain.Player
	found, err := s.load(ctx, keyPlayer, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SavePlayer(ctx context.Context, p *domain.Player) error {
	return s.save(ctx, keyPlayer, p)
}

func (s *Store) LoadQuests(ctx context.Context) ([]*domain.DailyQuest, error) {
	var quests []*domain.DailyQuest
	if _, err := s.load(ctx, keyQuests, &quests); err != nil {
		return nil, err
	}
	return quests, nil
}

func (s *Store) SaveQuests(ctx context.Context, quests []*domain.DailyQuest) error {
	return s.save(ctx, keyQuests, quests)
}

func (s *Store) LoadBosses(ctx context.Context) ([]*domain.BossFight, error) {
	var bosses []*domain.BossFight
	if _, err := s.load(ctx, keyBosses, &bosses); err != nil {
		return nil, err
	}
	return bosses, nil
}

func (s *Store) SaveBosses(ctx context.Context, bosses []*domain.BossFight) error {
	return s.save(ctx, keyBosses, bosses)
}

func (s *Store) LoadLoot(ctx context.Context) ([]*domain.LootBox, error) {
	var loot []*domain.LootBox
	if _, err := s.load(ctx, keyLoot, &loot); err != nil {
		return nil, err
	}
	return loot, nil
}

func (s *Store) SaveLoot(ctx context.Context, loot []*domain.LootBox) error {
	return s.save(ctx, keyLoot, loot)
}

func (s *Store) LoadPenalties(ctx context.Context) ([]*domain.PenaltyQuest, error) {
	var penalties []*domain.PenaltyQuest
	if _, err := s.load(ctx, keyPenalties, &penalties); err != nil {
		return nil, err
	}
	return penalties, nil
}

func (s *Store) SavePenalties(ctx context.Context, penalties []*domain.PenaltyQuest) error {
	return s.save(ctx, keyPenalties, penalties)
}

func (s *Store) LoadActivityLog(ctx context.Context) ([]domain.ActivityLogEntry, error) {
	var log []domain.ActivityLogEntry
	if _, err := s.load(ctx, keyActivityLog, &log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *Store) SaveActivityLog(ctx context.Context, log []domain.ActivityLogEntry) error {
	return s.save(ctx, keyActivityLog, log)
}
