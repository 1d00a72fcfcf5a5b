package repository

import (
	"context"
	"errors"
	"time"

	"streamgate/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AccessCodeRepo handles MongoDB operations for access codes
type AccessCodeRepo interface {
	Create(ctx context.Context, code *model.AccessCode) (string, error)
	GetByCode(ctx context.Context, code string) (*model.AccessCode, error)
	GetByID(ctx context.Context, id string) (*model.AccessCode, error)
	List(ctx context.Context) ([]*model.AccessCode, error)
	// RotateMarker sets a new session marker on an active, unexpired code in
	// one atomic update that also bumps SessionVersion, and returns the
	// document as it was before the update. It returns nil when no usable
	// code matched.
	RotateMarker(ctx context.Context, code, marker string, now time.Time) (*model.AccessCode, error)
	Deactivate(ctx context.Context, id string) (*model.AccessCode, error)
	Delete(ctx context.Context, id string) (*model.AccessCode, error)
	Count(ctx context.Context) (total, active int64, err error)
}

type accessCodeRepo struct {
	collection *mongo.Collection
}

// NewAccessCodeRepo creates a new access code repository
func NewAccessCodeRepo(db *mongo.Database) AccessCodeRepo {
	return &accessCodeRepo{
		collection: db.Collection("access_codes"),
	}
}

// EnsureAccessCodeIndexes creates the unique index on the code field
func EnsureAccessCodeIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("access_codes").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *accessCodeRepo) Create(ctx context.Context, code *model.AccessCode) (string, error) {
	code.ID = ""
	result, err := r.collection.InsertOne(ctx, code)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicate
		}
		return "", err
	}
	code.ID = insertedHex(result.InsertedID)
	return code.ID, nil
}

func (r *accessCodeRepo) GetByCode(ctx context.Context, code string) (*model.AccessCode, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

func (r *accessCodeRepo) GetByID(ctx context.Context, id string) (*model.AccessCode, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *accessCodeRepo) findOne(ctx context.Context, filter bson.M) (*model.AccessCode, error) {
	var c model.AccessCode
	err := r.collection.FindOne(ctx, filter).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *accessCodeRepo) List(ctx context.Context) ([]*model.AccessCode, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	codes := make([]*model.AccessCode, 0)
	if err := cursor.All(ctx, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *accessCodeRepo) RotateMarker(ctx context.Context, code, marker string, now time.Time) (*model.AccessCode, error) {
	filter := bson.M{
		"code":       code,
		"isActive":   true,
		"expiryDate": bson.M{"$gte": now},
	}
	update := bson.M{
		"$set": bson.M{
			"sessionMarker":   marker,
			"sessionIssuedAt": now,
		},
		"$inc": bson.M{"sessionVersion": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var prev model.AccessCode
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&prev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prev, nil
}

func (r *accessCodeRepo) Deactivate(ctx context.Context, id string) (*model.AccessCode, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c model.AccessCode
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"isActive": false},
		"$inc": bson.M{"sessionVersion": 1},
	}, opts).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *accessCodeRepo) Delete(ctx context.Context, id string) (*model.AccessCode, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	var c model.AccessCode
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *accessCodeRepo) Count(ctx context.Context) (int64, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, err
	}
	active, err := r.collection.CountDocuments(ctx, bson.M{"isActive": true})
	if err != nil {
		return 0, 0, err
	}
	return total, active, nil
}
