// File: database/repository/customer/interface.go
package customerRepo

import (
	"context"

	"fieldbot/database"
	"fieldbot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CustomerRepository resolves chat customers by phone number.
type CustomerRepository interface {
	// FindOrCreateByPhone returns the existing customer for a phone number or
	// creates one; the bool reports whether a record was created.
	FindOrCreateByPhone(ctx context.Context, orgID, phone, name string) (*models.Customer, bool, error)
	DeleteByID(ctx context.Context, orgID, customerID string) error
}

type mongoCustomerRepo struct {
	coll *mongo.Collection
}

// NewMongoCustomerRepo constructs a new MongoDB CustomerRepository.
func NewMongoCustomerRepo() CustomerRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	return &mongoCustomerRepo{
		coll: db.Collection("customers"),
	}
}
