// File: database/repository/schedule/interface.go
package scheduleRepo

import (
	"context"
	"time"

	"fieldbot/database"
	"fieldbot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ScheduleRepository reads recurring schedules, date exceptions and
// organization business hours.
type ScheduleRepository interface {
	GetWeeklyByDay(ctx context.Context, orgID string, day time.Weekday) ([]models.WeeklySchedule, error)
	GetExceptions(ctx context.Context, orgID, date string) ([]models.ScheduleException, error)
	// GetBusinessHours returns (nil, nil) for weekdays with no configured hours.
	GetBusinessHours(ctx context.Context, orgID string, day time.Weekday) (*models.BusinessHours, error)
}

type mongoScheduleRepo struct {
	weeklyColl     *mongo.Collection
	exceptionsColl *mongo.Collection
	hoursColl      *mongo.Collection
}

// NewMongoScheduleRepo constructs a new MongoDB ScheduleRepository.
func NewMongoScheduleRepo() ScheduleRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	return &mongoScheduleRepo{
		weeklyColl:     db.Collection("weekly_schedules"),
		exceptionsColl: db.Collection("schedule_exceptions"),
		hoursColl:      db.Collection("business_hours"),
	}
}
