package pushid

import "github.com/google/uuid"

// New returns a record ID. IDs are UUIDv7, so lexical order follows creation
// order.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
