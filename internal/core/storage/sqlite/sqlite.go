// Package sqlite stores race results in SQLite through gorm.
package sqlite

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zeusync/circuit/internal/core/storage"
)

// Store is a storage.ResultStore backed by a SQLite file, or by a private
// in-memory database when the path is empty.
type Store struct {
	db *gorm.DB
}

var _ storage.ResultStore = (*Store)(nil)

func Open(path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql interface: %w", err)
	}
	// SQLite takes one writer at a time; concurrent sessions queue here.
	sqlDB.SetMaxOpenConns(1)

	if err = db.AutoMigrate(&storage.RaceResult{}, &storage.LapRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate results db: %w", err)
	}
	return &Store{db: db}, nil
}

// Save inserts the result with its laps in one transaction.
func (s *Store) Save(ctx context.Context, r *storage.RaceResult) error {
	if err := r.Validate(); err != nil {
		return err
	}
	for i := range r.Laps {
		if r.Laps[i].Race == "" {
			r.Laps[i].Race = r.Race
		}
		if r.Laps[i].Session == "" {
			r.Laps[i].Session = r.Session
		}
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("save result %s: %w", r.Session, err)
	}
	return nil
}

func (s *Store) BestLaps(ctx context.Context, race string, limit int) ([]storage.LapRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var laps []storage.LapRecord
	err := s.db.WithContext(ctx).
		Where("race = ?", race).
		Order("duration ASC").
		Order("id ASC").
		Limit(limit).
		Find(&laps).Error
	if err != nil {
		return nil, fmt.Errorf("best laps: %w", err)
	}
	return laps, nil
}

func (s *Store) Wins(ctx context.Context, race string) ([]storage.WinCount, error) {
	var wins []storage.WinCount
	err := s.db.WithContext(ctx).
		Model(&storage.RaceResult{}).
		Select("winner, COUNT(*) AS wins").
		Where("race = ?", race).
		Group("winner").
		Order("wins DESC").
		Order("winner ASC").
		Scan(&wins).Error
	if err != nil {
		return nil, fmt.Errorf("wins: %w", err)
	}
	return wins, nil
}

// Results loads the stored results of race with their laps, oldest first.
func (s *Store) Results(ctx context.Context, race string) ([]storage.RaceResult, error) {
	var out []storage.RaceResult
	err := s.db.WithContext(ctx).
		Preload("Laps", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("race = ?", race).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}
	return out, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
