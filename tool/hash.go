package tool

import (
	"github.com/google/uuid"
)

// GenerateRandomUUID is used for request and notification ids.
func GenerateRandomUUID() string {
	return uuid.New().String()
}
