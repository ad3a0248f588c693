// File: database/repository/technician/interface.go
package technicianRepo

import (
	"context"

	"fieldbot/database"
	"fieldbot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// TechnicianRepository reads technician records and their last known positions.
type TechnicianRepository interface {
	GetActive(ctx context.Context, orgID string) ([]models.Technician, error)
	GetLastLocations(ctx context.Context, orgID string) (map[string]models.TechnicianLocation, error)
}

type mongoTechnicianRepo struct {
	coll     *mongo.Collection
	locsColl *mongo.Collection
}

// NewMongoTechnicianRepo constructs a new MongoDB TechnicianRepository.
func NewMongoTechnicianRepo() TechnicianRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	return &mongoTechnicianRepo{
		coll:     db.Collection("technicians"),
		locsColl: db.Collection("technician_locations"),
	}
}
