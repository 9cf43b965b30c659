package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewID returns a fresh 24-hex-character identifier. Every store backend uses
// ObjectID-shaped ids so clients never see a difference between them.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsID reports whether s has the shape of an entity identifier.
func IsID(s string) bool {
	return primitive.IsValidObjectID(s)
}

// CanonicalID returns the stored spelling of an identifier. Hex ids compare
// case-insensitively, and every backend stores them in lowercase.
func CanonicalID(s string) string {
	return strings.ToLower(s)
}
