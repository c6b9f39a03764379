package svm

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestPredictValues(t *testing.T) {
	svm := mustNew(t, separableModel())
	single := problemWith(t, svm, 3.5, 0.5)
	require.NoError(t, svm.PredictValue(single))

	problems := make([]*Problem, 100)
	for i := range problems {
		problems[i] = problemWith(t, svm, 3.5, 0.5)
	}

	require.NoError(t, svm.PredictValues(problems))

	for i, problem := range problems {
		assert.Equal(t, single.Label, problem.Label, "problem %d", i)
		assert.Equal(t, single.DecisionValues, problem.DecisionValues, "problem %d", i)
	}
}

func TestPredictProbabilities(t *testing.T) {
	svm := mustNew(t, separableModel())
	inputs := [][]float64{{0, 0}, {4, 0}, {0, 4}, {1, 1}, {4.2, 0.3}}
	expected := []int{10, 20, 30, 10, 20}

	problems := make([]*Problem, len(inputs))
	for i, x := range inputs {
		problems[i] = problemWith(t, svm, x...)
	}

	require.NoError(t, svm.PredictProbabilities(problems))

	for i, problem := range problems {
		assert.Equal(t, expected[i], problem.Label, "input %v", inputs[i])
	}
}

func TestPredictValuesErrors(t *testing.T) {
	svm := mustNew(t, separableModel())
	problems := []*Problem{
		problemWith(t, svm, 0, 0),
		NewProblem(1, 1, 1),
		problemWith(t, svm, 4, 0),
	}

	err := svm.PredictValues(problems)

	require.True(t, errors.Is(err, ErrDimensionMismatch))
	assert.Contains(t, err.Error(), "problem 1")
	assert.Equal(t, 10, problems[0].Label, "valid problems are still predicted")
	assert.Equal(t, 20, problems[2].Label)
}

func TestPredictValuesEmpty(t *testing.T) {
	svm := mustNew(t, twoClassModel())
	assert.NoError(t, svm.PredictValues(nil))
}
