// File: database/repository/job/interface.go
package jobRepo

import (
	"context"
	"errors"

	"fieldbot/database"
	"fieldbot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrCapacityConflict is returned when a booking commit fails its write-time
// capacity re-validation. Callers should treat it as retryable: run a fresh
// scheduling query and offer the customer new slots.
var ErrCapacityConflict = errors.New("technician capacity exhausted for the requested slot")

// JobRepository reads and writes service jobs.
type JobRepository interface {
	// GetActiveForDate returns the organization's jobs for a date that still
	// occupy technician capacity (status not COMPLETED/CANCELLED).
	GetActiveForDate(ctx context.Context, orgID, date string) ([]models.Job, error)
	// CreateBooking inserts a job after re-validating capacity at write time.
	CreateBooking(ctx context.Context, job *models.Job, maxDailyJobs int) error
	CancelBooking(ctx context.Context, orgID, jobID string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoJobRepo struct {
	coll         *mongo.Collection
	reservations *mongo.Collection
}

// NewMongoJobRepo constructs a new MongoDB JobRepository.
func NewMongoJobRepo() JobRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	return &mongoJobRepo{
		coll:         db.Collection("jobs"),
		reservations: db.Collection("slot_reservations"),
	}
}
