package models

import (
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewID returns a new document id. Ids are stored as strings so that
// composite keys such as "{workspaceId}_notion" share the same _id type.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// NewToken returns a random url-safe token.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
