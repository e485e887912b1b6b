package db

import (
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balanshq/balans/pkg/db/models"
)

type DB struct {
	DB *gorm.DB
}

func New(dsn string, logLevel logger.LogLevel) (*DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	return &DB{DB: db}, nil
}

// UpdateSchema migrates the database to the current schema.
func (d *DB) UpdateSchema() error {
	// gen_random_uuid() ships with pgcrypto on older postgres releases.
	if err := d.DB.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return errors.Wrap(err, "could not ensure pgcrypto extension")
	}

	for _, model := range []interface{}{
		&models.Conversation{},
		&models.Commitment{},
		&models.QuotaCounter{},
		&models.UserProfile{},
		&models.WellbeingSnapshot{},
	} {
		if err := d.DB.AutoMigrate(model); err != nil {
			return errors.Wrapf(err, "could not migrate %T", model)
		}
	}

	return nil
}
