package postgres

import (
	"log"
	"time"

	"ridetrace/internal/model"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to PostgreSQL and migrates the ride table
func Open(url string, zl zerolog.Logger) (*gorm.DB, error) {
	// GORM logs through the process logger; slow queries only
	gormLogger := logger.New(
		log.New(zl, "", 0),
		logger.Config{
			SlowThreshold:             time.Millisecond * 500,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.RidePG{}); err != nil {
		return nil, err
	}

	zl.Info().Msg("connected to PostgreSQL")
	return db, nil
}
