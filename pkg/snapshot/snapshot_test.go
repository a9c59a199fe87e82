package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSnapshot(t *testing.T) {
	obj := map[string]interface{}{"phase": "initial_peek", "turnNumber": 3}
	ValidateSnapshot(t, obj, 0)

	_, err := os.Stat(filepath.Join("testdata", "snapshot.TestValidateSnapshot-0.json"))
	assert.NoError(t, err)

	helper(t, []string{"a", "b"})
	_, err = os.Stat(filepath.Join("testdata", "snapshot.TestValidateSnapshot-1.json"))
	assert.NoError(t, err)
}

func helper(t *testing.T, obj interface{}) {
	ValidateSnapshot(t, obj, 1)
}
