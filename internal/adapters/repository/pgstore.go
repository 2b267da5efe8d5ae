package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/uranai/internal/domain/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// rankingRow is the Postgres table layout.
type rankingRow struct {
	Date      string `gorm:"primaryKey;size:8"`
	Code      string `gorm:"size:12;not null"`
	CreatedAt time.Time
}

func (rankingRow) TableName() string { return "rankings" }

// PostgresStore persists records in Postgres through gorm.
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects with dsn and migrates the rankings table.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&rankingRow{}); err != nil {
		closeGorm(db)
		return nil, fmt.Errorf("migrate rankings: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// GetOrInsert inserts with ON CONFLICT DO NOTHING and reads the stored row.
func (s *PostgresStore) GetOrInsert(ctx context.Context, date, code string) (model.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, false, err
	}
	if err := validate(date, code); err != nil {
		return model.Record{}, false, err
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rankingRow{Date: date, Code: code})
	if res.Error != nil {
		return model.Record{}, false, fmt.Errorf("insert ranking %s: %w", date, res.Error)
	}

	var row rankingRow
	if err := s.db.WithContext(ctx).First(&row, "date = ?", date).Error; err != nil {
		return model.Record{}, false, fmt.Errorf("read ranking %s: %w", date, err)
	}
	return model.Record{Date: row.Date, Code: row.Code}, res.RowsAffected == 1, nil
}

// All returns every record ordered by date.
func (s *PostgresStore) All(ctx context.Context) ([]model.Record, error) {
	var rows []rankingRow
	if err := s.db.WithContext(ctx).Order("date asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list rankings: %w", err)
	}
	out := make([]model.Record, len(rows))
	for i, row := range rows {
		out[i] = model.Record{Date: row.Date, Code: row.Code}
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&rankingRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count rankings: %w", err)
	}
	return int(n), nil
}

// Ping checks the underlying pool.
func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func closeGorm(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
