package svm

import (
	"text2phenotype.com/svmpredict/ml/kernel"
	"github.com/stretchr/testify/require"
	"testing"
)

func nodes(values ...float64) []Node {
	out := make([]Node, len(values))
	for i, v := range values {
		out[i] = Node{Index: i, Value: v}
	}
	return out
}

func rbfParam(gamma float64) Parameter {
	return Parameter{SvmType: CSvc, KernelType: kernel.TypeRbf, Gamma: gamma}
}

// twoClassModel has one support vector per class and a zero threshold.
func twoClassModel() Model {
	return Model{
		Param:   rbfParam(0.5),
		NrClass: 2,
		L:       2,
		SV:      [][]Node{nodes(1, 0), nodes(0, 1)},
		SvCoef:  [][]float64{{1, -1}},
		Rho:     []float64{0},
		Label:   []int{1, -1},
		NSV:     []int{1, 1},
	}
}

// tiedModel has all-zero rho and coefficients arranged so class 0 beats 1,
// class 2 beats 0 and class 1 beats 2: every class gets exactly one vote.
func tiedModel() Model {
	return Model{
		Param:   rbfParam(0.5),
		NrClass: 3,
		L:       3,
		SV:      [][]Node{nodes(1, 0), nodes(0, 1), nodes(1, 1)},
		SvCoef: [][]float64{
			{1, 0, 0},
			{-1, 1, 0},
		},
		Rho:   []float64{0, 0, 0},
		Label: []int{7, 3, 5},
		NSV:   []int{1, 1, 1},
	}
}

// separableModel has three classes around (0,0), (4,0) and (0,4), two
// support vectors each, and sigmoid calibration constants.
func separableModel() Model {
	return Model{
		Param:   rbfParam(0.5),
		NrClass: 3,
		L:       6,
		SV: [][]Node{
			nodes(0, 0), nodes(0.5, 0.5),
			nodes(4, 0), nodes(4.5, 0.5),
			nodes(0, 4), nodes(0.5, 4.5),
		},
		SvCoef: [][]float64{
			{1, 1, -1, -1, -1, -1},
			{1, 1, 1, 1, -1, -1},
		},
		Rho:   []float64{0.1, -0.1, 0.05},
		ProbA: []float64{-3, -3, -3},
		ProbB: []float64{0.1, 0, -0.1},
		Label: []int{10, 20, 30},
		NSV:   []int{2, 2, 2},
	}
}

func mustNew(t *testing.T, model Model) *SVM {
	t.Helper()
	svm, err := New(model)
	require.NoError(t, err)
	return svm
}

func problemWith(t *testing.T, svm *SVM, features ...float64) *Problem {
	t.Helper()
	problem := NewProblemFor(svm)
	require.NoError(t, problem.SetFeatures(features))
	return problem
}
