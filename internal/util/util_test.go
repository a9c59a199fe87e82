package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortID(t *testing.T) {
	id := ShortID()
	assert.Equal(t, 8, len(id))
	assert.NotEqual(t, id, ShortID())
}
