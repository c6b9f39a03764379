package types

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadConfigurations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "smoking.yaml", "model_file: smoking.json\nmode: probability\nbatch_size: 10\n")
	writeFile(t, dir, "iris.yaml", "model_key: models/iris.json\nmodel_patch: '{\"param\": {\"gamma\": 0.1}}'\n")
	writeFile(t, dir, "broken.yaml", "mode: [\n")
	writeFile(t, dir, "wrong_mode.yaml", "model_file: a.json\nmode: regression\n")
	writeFile(t, dir, "notes.txt", "model_file: a.json\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o700))

	configs, err := LoadConfigurations(dir)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	iris := configs[0]
	assert.Equal(t, "iris", iris.Name)
	assert.Equal(t, "models/iris.json", iris.ModelKey)
	assert.Equal(t, ModeValue, iris.Mode)
	assert.False(t, iris.Probability())
	assert.Equal(t, DefaultBatchSize, iris.BatchSize)
	assert.JSONEq(t, `{"param": {"gamma": 0.1}}`, iris.ModelPatch)

	smoking := configs[1]
	assert.Equal(t, "smoking", smoking.Name)
	assert.Equal(t, filepath.Join(dir, "smoking.yaml"), smoking.FilePath)
	assert.True(t, smoking.Probability())
	assert.Equal(t, 10, smoking.BatchSize)
}

func TestLoadConfigurationsMissingDir(t *testing.T) {
	_, err := LoadConfigurations(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestConfigurationValidate(t *testing.T) {
	cfg := Configuration{}
	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfiguration))

	cfg = Configuration{ModelFile: "a.json", ModelKey: "b.json"}
	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfiguration))

	cfg = Configuration{ModelFile: "a.json"}
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ModeValue, cfg.Mode)
}
