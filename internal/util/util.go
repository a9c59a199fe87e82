package util

import (
	"strings"

	"github.com/google/uuid"
)

// ShortID returns the first eight characters of a random UUID
func ShortID() string {
	return strings.SplitN(uuid.New().String(), "-", 2)[0]
}
