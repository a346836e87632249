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

// ResetCodeCollection is the Mongo collection holding reset code documents.
const ResetCodeCollection = "password_resets"

type resetCodeDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Email     string        `bson:"email"`
	Code      string        `bson:"code"`
	ExpiresAt time.Time     `bson:"expires_at"`
	Used      bool          `bson:"used"`
	CreatedAt time.Time     `bson:"created_at"`
	UsedAt    *time.Time    `bson:"used_at,omitempty"`
}

func (d *resetCodeDocument) toModel() *model.ResetCode {
	return &model.ResetCode{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Code:      d.Code,
		ExpiresAt: d.ExpiresAt,
		Used:      d.Used,
		CreatedAt: d.CreatedAt,
		UsedAt:    d.UsedAt,
	}
}

// redeemableFilter matches unused codes for email that are still valid at now.
func redeemableFilter(email, code string, now time.Time) bson.D {
	return bson.D{
		{Key: "email", Value: email},
		{Key: "code", Value: code},
		{Key: "used", Value: false},
		{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: now}}},
	}
}

// MongoResetCodeRepository handles reset code data access in MongoDB.
type MongoResetCodeRepository struct {
	coll *mongo.Collection
}

// NewMongoResetCodeRepository creates a new MongoResetCodeRepository.
func NewMongoResetCodeRepository(db *mongo.Database) *MongoResetCodeRepository {
	return &MongoResetCodeRepository{coll: db.Collection(ResetCodeCollection)}
}

// EnsureIndexes creates the lookup index used by verify and consume.
func (r *MongoResetCodeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "code", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create reset code indexes: %w", err)
	}
	return nil
}

// Create inserts a new unused reset code.
func (r *MongoResetCodeRepository) Create(ctx context.Context, rc *model.ResetCode) error {
	res, err := r.coll.InsertOne(ctx, resetCodeDocument{
		Email:     rc.Email,
		Code:      rc.Code,
		ExpiresAt: rc.ExpiresAt,
		Used:      false,
		CreatedAt: rc.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert reset code: %w", err)
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		rc.ID = id.Hex()
	}
	return nil
}

// FindRedeemable looks up an unused, unexpired code.
func (r *MongoResetCodeRepository) FindRedeemable(ctx context.Context, email, code string, now time.Time) (*model.ResetCode, error) {
	var doc resetCodeDocument
	err := r.coll.FindOne(ctx, redeemableFilter(email, code, now),
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find reset code: %w", err)
	}
	return doc.toModel(), nil
}

// Consume flips used on a redeemable code with a single findOneAndUpdate,
// so only one caller can match the used=false filter.
func (r *MongoResetCodeRepository) Consume(ctx context.Context, email, code string, now time.Time) (*model.ResetCode, error) {
	var doc resetCodeDocument
	err := r.coll.FindOneAndUpdate(ctx,
		redeemableFilter(email, code, now),
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "used", Value: true},
			{Key: "used_at", Value: now},
		}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("consume reset code: %w", err)
	}
	return doc.toModel(), nil
}

// DeleteExpiredBefore purges codes that expired before cutoff.
func (r *MongoResetCodeRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{
		{Key: "expires_at", Value: bson.D{{Key: "$lt", Value: cutoff}}},
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired reset codes: %w", err)
	}
	return res.DeletedCount, nil
}
