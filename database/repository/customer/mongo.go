// File: database/repository/customer/mongo.go
package customerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldbot/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoCustomerRepo) FindOrCreateByPhone(ctx context.Context, orgID, phone, name string) (*models.Customer, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"organizationId": orgID, "phone": phone}
	var existing models.Customer
	err := r.coll.FindOne(ctx, filter).Decode(&existing)
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, fmt.Errorf("failed to look up customer: %w", err)
	}

	customer := models.Customer{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Phone:          phone,
		Name:           name,
		CreatedAt:      time.Now(),
	}
	if _, err := r.coll.InsertOne(ctx, customer); err != nil {
		return nil, false, fmt.Errorf("failed to create customer: %w", err)
	}
	return &customer, true, nil
}

func (r *mongoCustomerRepo) DeleteByID(ctx context.Context, orgID, customerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"organizationId": orgID, "id": customerID})
	if err != nil {
		return fmt.Errorf("failed to delete customer %s: %w", customerID, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
