// File: database/repository/schedule/mongo.go
package scheduleRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldbot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoScheduleRepo) GetWeeklyByDay(ctx context.Context, orgID string, day time.Weekday) ([]models.WeeklySchedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"organizationId": orgID, "weekday": int(day)}
	cursor, err := r.weeklyColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weekly schedules: %w", err)
	}
	defer cursor.Close(ctx)

	var schedules []models.WeeklySchedule
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode weekly schedules: %w", err)
	}
	return schedules, nil
}

func (r *mongoScheduleRepo) GetExceptions(ctx context.Context, orgID, date string) ([]models.ScheduleException, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"organizationId": orgID, "date": date}
	cursor, err := r.exceptionsColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule exceptions: %w", err)
	}
	defer cursor.Close(ctx)

	var exceptions []models.ScheduleException
	if err := cursor.All(ctx, &exceptions); err != nil {
		return nil, fmt.Errorf("failed to decode schedule exceptions: %w", err)
	}
	return exceptions, nil
}

func (r *mongoScheduleRepo) GetBusinessHours(ctx context.Context, orgID string, day time.Weekday) (*models.BusinessHours, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"organizationId": orgID, "weekday": int(day)}
	var hours models.BusinessHours
	err := r.hoursColl.FindOne(ctx, filter).Decode(&hours)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch business hours: %w", err)
	}
	return &hours, nil
}
