// File: database/repository/technician/mongo.go
package technicianRepo

import (
	"context"
	"fmt"
	"time"

	"fieldbot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoTechnicianRepo) GetActive(ctx context.Context, orgID string) ([]models.Technician, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"organizationId": orgID, "active": true}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active technicians: %w", err)
	}
	defer cursor.Close(ctx)

	var techs []models.Technician
	if err := cursor.All(ctx, &techs); err != nil {
		return nil, fmt.Errorf("failed to decode technicians: %w", err)
	}
	return techs, nil
}

func (r *mongoTechnicianRepo) GetLastLocations(ctx context.Context, orgID string) (map[string]models.TechnicianLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Latest position per technician.
	opts := options.Find().SetSort(bson.D{{Key: "recordedAt", Value: -1}})
	cursor, err := r.locsColl.Find(ctx, bson.M{"organizationId": orgID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch technician locations: %w", err)
	}
	defer cursor.Close(ctx)

	locations := make(map[string]models.TechnicianLocation)
	for cursor.Next(ctx) {
		var loc models.TechnicianLocation
		if err := cursor.Decode(&loc); err != nil {
			return nil, fmt.Errorf("failed to decode technician location: %w", err)
		}
		if _, seen := locations[loc.TechnicianID]; !seen {
			locations[loc.TechnicianID] = loc
		}
	}
	return locations, cursor.Err()
}
