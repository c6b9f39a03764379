package svm

import (
	"text2phenotype.com/svmpredict/ml/vectors"
	"fmt"
)

// Problem is a reusable workspace for one prediction at a time. Every
// prediction overwrites all result fields; a Problem must not be used by two
// goroutines at once.
type Problem struct {
	// Features holds num_attributes values followed by zero padding.
	Features []float64

	// KernelValues has one row per class and one column per support vector.
	KernelValues *vectors.SimdOptimized[float64]

	Vote []int

	// DecisionValues are stored in the same pair order as SVM.Rho.
	DecisionValues []float64

	// Probabilities is only filled by PredictProbability.
	Probabilities []float64

	Label int

	numAttributes int

	// pairwise coupling workspace, numClasses x numClasses each
	pairwise []float64
	q        []float64
	qp       []float64
}

func NewProblem(totalSV, numClasses, numAttributes int) *Problem {
	numDecisionValues := 0
	if numClasses > 1 {
		numDecisionValues = numClasses * (numClasses - 1) / 2
	}

	return &Problem{
		Features:       make([]float64, vectors.PreferredSIMDSize(numAttributes)),
		KernelValues:   vectors.WithDimension[float64](numClasses, totalSV, 0),
		Vote:           make([]int, numClasses),
		DecisionValues: make([]float64, numDecisionValues),
		Probabilities:  make([]float64, numClasses),
		numAttributes:  numAttributes,
		pairwise:       make([]float64, numClasses*numClasses),
		q:              make([]float64, numClasses*numClasses),
		qp:             make([]float64, numClasses),
	}
}

// NewProblemFor creates a problem sized for the given SVM.
func NewProblemFor(svm *SVM) *Problem {
	return NewProblem(svm.NumTotalSV, len(svm.Classes), svm.NumAttributes)
}

// SetFeatures copies x into the padded feature buffer.
func (problem *Problem) SetFeatures(x []float64) error {
	if len(x) != problem.numAttributes {
		return fmt.Errorf("%w: got %d features, expected %d", ErrDimensionMismatch, len(x), problem.numAttributes)
	}
	copy(problem.Features, x)
	problem.clearPadding()
	return nil
}

func (problem *Problem) clearPadding() {
	padding := problem.Features[problem.numAttributes:]
	for i := range padding {
		padding[i] = 0
	}
}

func (svm *SVM) checkProblem(problem *Problem) error {
	numClasses := len(svm.Classes)
	switch {
	case problem.numAttributes != svm.NumAttributes:
		return fmt.Errorf("%w: problem has %d attributes, model has %d", ErrDimensionMismatch, problem.numAttributes, svm.NumAttributes)
	case len(problem.Features) != vectors.PreferredSIMDSize(svm.NumAttributes):
		return fmt.Errorf("%w: %d padded features for %d attributes", ErrDimensionMismatch, len(problem.Features), svm.NumAttributes)
	case problem.KernelValues == nil ||
		problem.KernelValues.Rows() != numClasses ||
		problem.KernelValues.Cols() < svm.NumTotalSV:
		return fmt.Errorf("%w: kernel values do not fit %d classes and %d support vectors", ErrDimensionMismatch, numClasses, svm.NumTotalSV)
	case len(problem.Vote) != numClasses || len(problem.Probabilities) != numClasses:
		return fmt.Errorf("%w: %d votes for %d classes", ErrDimensionMismatch, len(problem.Vote), numClasses)
	case len(problem.DecisionValues) != svm.Rho.Len():
		return fmt.Errorf("%w: %d decision values for %d class pairs", ErrDimensionMismatch, len(problem.DecisionValues), svm.Rho.Len())
	case len(problem.pairwise) != numClasses*numClasses || len(problem.q) != numClasses*numClasses || len(problem.qp) != numClasses:
		return fmt.Errorf("%w: problem was not created by NewProblem", ErrDimensionMismatch)
	}
	return nil
}
