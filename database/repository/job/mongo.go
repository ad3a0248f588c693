// File: database/repository/job/mongo.go
package jobRepo

import (
	"context"
	"fmt"
	"time"

	"fieldbot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoJobRepo) GetActiveForDate(ctx context.Context, orgID, date string) ([]models.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"organizationId": orgID,
		"date":           date,
		"status":         bson.M{"$nin": []models.JobStatus{models.JobStatusCompleted, models.JobStatusCancelled}},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jobs for %s: %w", date, err)
	}
	defer cursor.Close(ctx)

	var jobs []models.Job
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode jobs: %w", err)
	}
	return jobs, nil
}

// CreateBooking re-validates capacity at commit time: the per-day job count
// is re-read, and a reservation document with a unique index on
// technician/date/start guards against two customers accepting the same slot.
// Offered slots can go stale between the scheduling query and the commit, so
// a violation here is expected occasionally and surfaced as ErrCapacityConflict.
func (r *mongoJobRepo) CreateBooking(ctx context.Context, job *models.Job, maxDailyJobs int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{
		"technicianId": job.TechnicianID,
		"date":         job.Date,
		"status":       bson.M{"$nin": []models.JobStatus{models.JobStatusCompleted, models.JobStatusCancelled}},
	})
	if err != nil {
		return fmt.Errorf("failed to count jobs for capacity check: %w", err)
	}
	if int(count) >= maxDailyJobs {
		return ErrCapacityConflict
	}

	reservation := bson.M{
		"technicianId": job.TechnicianID,
		"date":         job.Date,
		"startTime":    job.StartTime,
		"jobId":        job.ID,
		"createdAt":    time.Now(),
	}
	if _, err := r.reservations.InsertOne(ctx, reservation); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCapacityConflict
		}
		return fmt.Errorf("failed to reserve slot: %w", err)
	}

	if _, err := r.coll.InsertOne(ctx, job); err != nil {
		// Release the reservation so the slot is not leaked.
		_, _ = r.reservations.DeleteOne(ctx, bson.M{"jobId": job.ID})
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

func (r *mongoJobRepo) CancelBooking(ctx context.Context, orgID, jobID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"organizationId": orgID, "id": jobID}
	update := bson.M{"$set": bson.M{"status": models.JobStatusCancelled}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to cancel job %s: %w", jobID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	_, _ = r.reservations.DeleteOne(ctx, bson.M{"jobId": jobID})
	return nil
}

func (r *mongoJobRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "date", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create job indexes: %w", err)
	}

	// The uniqueness constraint behind CreateBooking's conflict detection.
	_, err = r.reservations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "technicianId", Value: 1}, {Key: "date", Value: 1}, {Key: "startTime", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create reservation index: %w", err)
	}
	return nil
}
