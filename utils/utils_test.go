package utils

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestHashes(t *testing.T) {
	assert.Equal(t, HashString("model"), HashBytes([]byte("mo"), []byte("del")))
	assert.NotEqual(t, HashString("model-a"), HashString("model-b"))

	assert.Equal(t, HashFloats([]float64{1, 2.5}), HashFloats([]float64{1, 2.5}))
	assert.NotEqual(t, HashFloats([]float64{1, 2.5}), HashFloats([]float64{2.5, 1}))

	assert.Len(t, FormatHash(1), 16)
	assert.Equal(t, "00000000000000ff", FormatHash(255))
}
