package repository

import (
	"context"
	"errors"

	"streamgate/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const welcomeMessageKey = "welcomeMessage"

// SettingsRepo stores singleton admin settings
type SettingsRepo interface {
	GetWelcome(ctx context.Context) (*model.WelcomeMessage, error)
	SetWelcome(ctx context.Context, msg *model.WelcomeMessage) error
}

type settingsRepo struct {
	collection *mongo.Collection
}

// NewSettingsRepo creates a new settings repository
func NewSettingsRepo(db *mongo.Database) SettingsRepo {
	return &settingsRepo{collection: db.Collection("settings")}
}

func (r *settingsRepo) GetWelcome(ctx context.Context) (*model.WelcomeMessage, error) {
	var msg model.WelcomeMessage
	err := r.collection.FindOne(ctx, bson.M{"_id": welcomeMessageKey}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *settingsRepo) SetWelcome(ctx context.Context, msg *model.WelcomeMessage) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": welcomeMessageKey},
		bson.M{"$set": bson.M{"message": msg.Message, "updatedAt": msg.UpdatedAt}},
		options.Update().SetUpsert(true),
	)
	return err
}
