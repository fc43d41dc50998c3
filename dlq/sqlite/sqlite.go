// Package sqlite provides a durable core.DLQ backed by GORM over SQLite,
// grounded on original_source/missive/dlq/sqlite.py's schema and queries
// (messages table, Oldest() ordered by insertion time) and adapted to the
// gorm.io/gorm usage shown in madcok-co-unicorn's contrib/database/gorm
// driver.
package sqlite

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/forgemsg/dispatch/core"
)

// row is the GORM model for the messages table.
type row struct {
	MessageID    string `gorm:"primaryKey;column:message_id"`
	MessageBytes []byte `gorm:"column:message_bytes"`
	Reason       string `gorm:"column:reason"`
	Inserted     time.Time
}

func (row) TableName() string { return "messages" }

// DLQ persists entries to a SQLite database. Messages are stored as raw
// bytes and rehydrated as *core.RawMessage on read, since the original
// message's concrete type (RawMessage vs JSONMessage) isn't itself part of
// the schema.
type DLQ struct {
	db *gorm.DB
}

// Open connects to the SQLite database at dsn (a file path, or ":memory:")
// and ensures the messages table exists.
func Open(dsn string) (*DLQ, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("dlq/sqlite: open %q: %w", dsn, err)
	}
	if err := db.AutoMigrate(&row{}); err != nil {
		return nil, fmt.Errorf("dlq/sqlite: migrate: %w", err)
	}
	return &DLQ{db: db}, nil
}

func (d *DLQ) Put(id uuid.UUID, msg core.Message, reason string) error {
	r := row{
		MessageID:    id.String(),
		MessageBytes: msg.RawData(),
		Reason:       reason,
		Inserted:     time.Now().UTC(),
	}
	if err := d.db.Save(&r).Error; err != nil {
		return fmt.Errorf("dlq/sqlite: put %s: %w", id, err)
	}
	return nil
}

func (d *DLQ) Delete(id uuid.UUID) error {
	if err := d.db.Delete(&row{}, "message_id = ?", id.String()).Error; err != nil {
		return fmt.Errorf("dlq/sqlite: delete %s: %w", id, err)
	}
	return nil
}

func (d *DLQ) Len() int {
	var count int64
	d.db.Model(&row{}).Count(&count)
	return int(count)
}

func (d *DLQ) Keys() []uuid.UUID {
	var rows []row
	d.db.Select("message_id").Find(&rows)
	keys := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		if id, err := uuid.Parse(r.MessageID); err == nil {
			keys = append(keys, id)
		}
	}
	return keys
}

func (d *DLQ) Get(id uuid.UUID) (core.Message, string, bool) {
	var r row
	if err := d.db.First(&r, "message_id = ?", id.String()).Error; err != nil {
		return nil, "", false
	}
	return core.NewRawMessage(r.MessageBytes), r.Reason, true
}

// Oldest returns the most-recently-inserted entry, mirroring
// original_source/missive/dlq/sqlite.py's oldest() query verbatim
// (ORDER BY inserted DESC LIMIT 1).
func (d *DLQ) Oldest() (core.Message, string, time.Time, error) {
	var r row
	if err := d.db.Order("inserted DESC").First(&r).Error; err != nil {
		return nil, "", time.Time{}, fmt.Errorf("dlq/sqlite: oldest: %w", err)
	}
	return core.NewRawMessage(r.MessageBytes), r.Reason, r.Inserted, nil
}

// Close releases the underlying database connection.
func (d *DLQ) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ core.DLQ = (*DLQ)(nil)
