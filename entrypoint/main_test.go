package main

import (
	"text2phenotype.com/svmpredict/types"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestNeedsModelSource(t *testing.T) {
	local := types.Configuration{Name: "local", ModelFile: "iris.json"}
	remote := types.Configuration{Name: "remote", ModelKey: "models/iris.json"}

	assert.False(t, needsModelSource(nil))
	assert.False(t, needsModelSource([]types.Configuration{local}))
	assert.True(t, needsModelSource([]types.Configuration{local, remote}))
}
