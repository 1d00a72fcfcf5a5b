package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicate is returned when a unique index rejects an insert
var ErrDuplicate = errors.New("duplicate key")

// objectID parses a hex id; ok is false for malformed ids, which callers
// treat the same as a missing document
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func insertedHex(v interface{}) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}
