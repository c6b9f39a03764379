package tasks

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestTaskStatus(t *testing.T) {
	complete := []TaskStatus{TaskStatusCompletedSuccess, TaskStatusCompletedFailure, TaskStatusCanceled}
	for _, s := range complete {
		assert.True(t, s.Complete(), s)
		assert.False(t, s.Submitted(), s)
	}
	for _, s := range []TaskStatus{TaskStatusSubmitted, TaskStatusStarted} {
		assert.False(t, s.Complete(), s)
		assert.True(t, s.Submitted(), s)
	}
	assert.False(t, TaskStatusFailed.Complete())
}

func TestPredictionTaskDocument(t *testing.T) {
	doc := []byte(`{
		"config": "smoking",
		"probability": true,
		"features_file_key": "incoming/t1.json",
		"status": "submitted",
		"attempts": 1
	}`)

	var task PredictionTask
	require.NoError(t, json.Unmarshal(doc, &task))

	assert.Equal(t, "smoking", task.Config)
	require.NotNil(t, task.Probability)
	assert.True(t, *task.Probability)
	assert.Equal(t, "incoming/t1.json", task.FeaturesFileKey)
	assert.Equal(t, TaskStatusSubmitted, task.Status)
	assert.Equal(t, 1, task.Attempts)
}
