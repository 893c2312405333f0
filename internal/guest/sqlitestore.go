package guest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agrilink-hq/agrilink-client/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// guestRecord is one persisted aggregate snapshot.
type guestRecord struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     []byte `gorm:"column:value"`
	UpdatedAt time.Time
}

func (guestRecord) TableName() string { return "guest_records" }

// SQLiteStore keeps guest state in a single-file SQLite database, for
// installations that want durable local state with transactional writes.
type SQLiteStore struct {
	broadcaster
	db  *gorm.DB
	log *logger.Logger
}

func NewSQLiteStore(path string, log *logger.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if err := db.AutoMigrate(&guestRecord{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite store: %w", err)
	}
	return &SQLiteStore{db: db, log: log}, nil
}

// Get degrades every read failure to absence.
func (s *SQLiteStore) Get(key string) ([]byte, bool) {
	var record guestRecord
	err := s.db.First(&record, "key = ?", key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && s.log != nil {
			s.log.Warn(context.Background(), fmt.Sprintf("sqlite read for %s failed, treating as absent", key))
		}
		return nil, false
	}
	return record.Value, true
}

func (s *SQLiteStore) Set(key string, value []byte) error {
	record := guestRecord{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("sqlite write %s: %w", key, err)
	}
	s.publish(Event{Key: key, Value: value})
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if err := s.db.Delete(&guestRecord{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("sqlite delete %s: %w", key, err)
	}
	s.publish(Event{Key: key, Value: nil})
	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
