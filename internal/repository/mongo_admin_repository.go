package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/admin-auth/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// AdminCollection is the Mongo collection holding administrator documents.
const AdminCollection = "admin"

// adminDocument mirrors the stored shape. IsActive is a pointer because
// documents written before the flag existed count as active.
type adminDocument struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	Email          string        `bson:"email"`
	HashedPassword string        `bson:"hashed_password"`
	Role           string        `bson:"role"`
	IsActive       *bool         `bson:"is_active,omitempty"`
	CreatedAt      time.Time     `bson:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at,omitempty"`
}

func (d *adminDocument) toModel() *model.Admin {
	active := true
	if d.IsActive != nil {
		active = *d.IsActive
	}
	return &model.Admin{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.HashedPassword,
		Role:         d.Role,
		IsActive:     active,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoAdminRepository handles admin data access in MongoDB.
type MongoAdminRepository struct {
	coll *mongo.Collection
}

// NewMongoAdminRepository creates a new MongoAdminRepository.
func NewMongoAdminRepository(db *mongo.Database) *MongoAdminRepository {
	return &MongoAdminRepository{coll: db.Collection(AdminCollection)}
}

// EnsureIndexes creates the unique email index.
func (r *MongoAdminRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create admin email index: %w", err)
	}
	return nil
}

// GetByEmail retrieves an admin by their unique email.
func (r *MongoAdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// FindActiveAdmin retrieves an active admin-role account by email.
func (r *MongoAdminRepository) FindActiveAdmin(ctx context.Context, email string) (*model.Admin, error) {
	return r.findOne(ctx, bson.D{
		{Key: "email", Value: email},
		{Key: "role", Value: model.RoleAdmin},
		{Key: "is_active", Value: bson.D{{Key: "$ne", Value: false}}},
	})
}

// UpdatePassword replaces the password hash of the admin with the given email.
func (r *MongoAdminRepository) UpdatePassword(ctx context.Context, email, passwordHash string, updatedAt time.Time) error {
	return r.updateOne(ctx, email, bson.D{
		{Key: "hashed_password", Value: passwordHash},
		{Key: "updated_at", Value: updatedAt},
	})
}

// SetActive toggles whether the admin may log in.
func (r *MongoAdminRepository) SetActive(ctx context.Context, email string, active bool, updatedAt time.Time) error {
	return r.updateOne(ctx, email, bson.D{
		{Key: "is_active", Value: active},
		{Key: "updated_at", Value: updatedAt},
	})
}

// Create inserts a new admin.
func (r *MongoAdminRepository) Create(ctx context.Context, a *model.Admin) error {
	now := time.Now().UTC()
	active := a.IsActive
	doc := adminDocument{
		Email:          a.Email,
		HashedPassword: a.PasswordHash,
		Role:           a.Role,
		IsActive:       &active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		a.ID = id.Hex()
	}
	a.CreatedAt, a.UpdatedAt = now, now
	return nil
}

func (r *MongoAdminRepository) findOne(ctx context.Context, filter bson.D) (*model.Admin, error) {
	var doc adminDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoAdminRepository) updateOne(ctx context.Context, email string, set bson.D) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
