package calendar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when deleting an unknown reminder.
var ErrNotFound = errors.New("reminder not found")

// Store persists reminders.
type Store interface {
	Add(ctx context.Context, r Reminder) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Reminder, error)
}

// MemoryStore keeps reminders for the process lifetime only.
type MemoryStore struct {
	mu    sync.Mutex
	items []Reminder
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Add(_ context.Context, r Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, r)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.items, func(r Reminder) bool { return r.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.items = slices.Delete(m.items, i, i+1)
	return nil
}

func (m *MemoryStore) List(context.Context) ([]Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.items)
	sortReminders(out)
	return out, nil
}

// SQLStore keeps reminders in SQLite through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLStore opens (and migrates) the SQLite database at dsn. A plain file
// path has its directory created first.
func OpenSQLStore(dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("reminders: missing data source name")
	}
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("reminders: create db dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("reminders: open sqlite database: %w", err)
	}
	return NewSQLStore(db)
}

// NewSQLStore wraps an open database and migrates the reminder table.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&Reminder{}); err != nil {
		return nil, fmt.Errorf("reminders: migrate: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Add(ctx context.Context, r Reminder) error {
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return fmt.Errorf("reminders: insert: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&Reminder{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("reminders: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]Reminder, error) {
	var out []Reminder
	if err := s.db.WithContext(ctx).Order("at asc").Order("id asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("reminders: list: %w", err)
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
