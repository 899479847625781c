package mongo

import "go.mongodb.org/mongo-driver/bson/primitive"

// parseID converts a hex id from a URL or token. Malformed ids can never
// match a stored document, so callers treat !ok as not found.
func parseID(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
