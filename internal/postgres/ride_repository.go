package postgres

import (
	"context"
	"errors"
	"fmt"

	"ridetrace/internal/model"

	"gorm.io/gorm"
)

// ErrRideNotFound is returned when no row matches the ride ID
var ErrRideNotFound = errors.New("ride not found")

const defaultBatchSize = 500

// RideRepository persists rides
type RideRepository struct {
	db        *gorm.DB
	batchSize int
}

// NewRideRepository creates a repository on an open connection
func NewRideRepository(db *gorm.DB) *RideRepository {
	return &RideRepository{db: db, batchSize: defaultBatchSize}
}

// SaveRides upserts rides in batches, one transaction per batch
func (r *RideRepository) SaveRides(ctx context.Context, rides []*model.Ride) error {
	for i := 0; i < len(rides); i += r.batchSize {
		end := min(i+r.batchSize, len(rides))
		batch := rides[i:end]

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, ride := range batch {
				if err := tx.Save(ride.ToPG()).Error; err != nil {
					return fmt.Errorf("failed to save ride %s: %w", ride.ID, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// FindRide loads one ride by ID
func (r *RideRepository) FindRide(ctx context.Context, id string) (*model.Ride, error) {
	var row model.RidePG
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRideNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.RideFromPG(&row), nil
}

// ListRides returns the most recently updated rides
func (r *RideRepository) ListRides(ctx context.Context, limit int) ([]*model.Ride, error) {
	var rows []*model.RidePG
	if err := r.db.WithContext(ctx).Order("updated_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	rides := make([]*model.Ride, len(rows))
	for i, row := range rows {
		rides[i] = model.RideFromPG(row)
	}
	return rides, nil
}
