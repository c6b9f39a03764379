package svm

import (
	"text2phenotype.com/svmpredict/ml/kernel"
	"text2phenotype.com/svmpredict/ml/vectors"
	"fmt"
)

// Class holds the support vectors of one label and their coefficients. Row
// j-1 of Coefficients is used against a class j with a higher index, row j
// against a class with a lower one.
type Class struct {
	Label          int
	SupportVectors *vectors.SimdOptimized[float64]
	Coefficients   *vectors.SimdOptimized[float64]
}

func (c Class) NumSupportVectors() int {
	return c.SupportVectors.Rows()
}

// Probabilities are the sigmoid calibration constants of every class pair.
type Probabilities struct {
	A *vectors.Triangular[float64]
	B *vectors.Triangular[float64]
}

// SVM is an immutable one-vs-one classifier. It is safe to share between
// goroutines; all per-prediction state lives in Problem.
type SVM struct {
	NumTotalSV    int
	NumAttributes int
	Rho           *vectors.Triangular[float64]
	Probabilities *Probabilities
	Kernel        kernel.Kernel
	Classes       []Class
}

func New(model Model) (*SVM, error) {
	if !model.Param.OneOfTypes(CSvc, NuSvc) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSVMType, model.Param.SvmType)
	}
	if err := validateShape(model); err != nil {
		return nil, err
	}

	k, err := kernel.New(model.Param.KernelParams())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInstantiation, err)
	}

	numClasses := model.NrClass
	numAttributes := 0
	if len(model.SV) > 0 {
		numAttributes = len(model.SV[0])
	}

	rho, err := vectors.TriangularFromSlice(numClasses, model.Rho)
	if err != nil {
		return nil, fmt.Errorf("%w: rho: %v", ErrMalformedModel, err)
	}

	probabilities, err := probabilitiesFromModel(model)
	if err != nil {
		return nil, err
	}

	classes := make([]Class, numClasses)
	start := 0
	for i := 0; i < numClasses; i++ {
		count := model.NSV[i]
		supportVectors := vectors.WithDimension[float64](count, numAttributes, 0)
		coefficients := vectors.WithDimension[float64](numClasses-1, count, 0)

		for s := 0; s < count; s++ {
			sv := model.SV[start+s]
			if len(sv) != numAttributes {
				return nil, fmt.Errorf("%w: support vector %d has %d attributes, expected %d",
					ErrAttributesUnordered, start+s, len(sv), numAttributes)
			}
			for a, node := range sv {
				if node.Index != a {
					return nil, fmt.Errorf("%w: support vector %d has attribute %d at position %d",
						ErrAttributesUnordered, start+s, node.Index, a)
				}
				supportVectors.Set(s, a, node.Value)
			}
			for c := 0; c < numClasses-1; c++ {
				coefficients.Set(c, s, model.SvCoef[c][start+s])
			}
		}

		classes[i] = Class{
			Label:          model.Label[i],
			SupportVectors: supportVectors,
			Coefficients:   coefficients,
		}
		start += count
	}

	return &SVM{
		NumTotalSV:    model.L,
		NumAttributes: numAttributes,
		Rho:           rho,
		Probabilities: probabilities,
		Kernel:        k,
		Classes:       classes,
	}, nil
}

// ClassIndexForLabel finds the class index for a given label.
func (svm *SVM) ClassIndexForLabel(label int) (int, bool) {
	for i, class := range svm.Classes {
		if class.Label != label {
			continue
		}

		return i, true
	}

	return 0, false
}

func (svm *SVM) NumClasses() int {
	return len(svm.Classes)
}

func validateShape(model Model) error {
	numClasses := model.NrClass
	if numClasses < 1 {
		return fmt.Errorf("%w: model has no classes", ErrMalformedModel)
	}
	if len(model.Label) != numClasses || len(model.NSV) != numClasses {
		return fmt.Errorf("%w: %d classes but %d labels and %d sv counts",
			ErrMalformedModel, numClasses, len(model.Label), len(model.NSV))
	}
	total := 0
	for _, n := range model.NSV {
		if n < 0 {
			return fmt.Errorf("%w: negative sv count", ErrMalformedModel)
		}
		total += n
	}
	if total != model.L || len(model.SV) != model.L {
		return fmt.Errorf("%w: %d support vectors, l = %d, sum of nsv = %d",
			ErrMalformedModel, len(model.SV), model.L, total)
	}
	if len(model.SvCoef) != numClasses-1 {
		return fmt.Errorf("%w: %d coefficient rows for %d classes", ErrMalformedModel, len(model.SvCoef), numClasses)
	}
	for i, coef := range model.SvCoef {
		if len(coef) != model.L {
			return fmt.Errorf("%w: coefficient row %d has %d entries, expected %d", ErrMalformedModel, i, len(coef), model.L)
		}
	}
	return nil
}

func probabilitiesFromModel(model Model) (*Probabilities, error) {
	if len(model.ProbA) == 0 && len(model.ProbB) == 0 {
		return nil, nil
	}
	a, err := vectors.TriangularFromSlice(model.NrClass, model.ProbA)
	if err != nil {
		return nil, fmt.Errorf("%w: prob_a: %v", ErrMalformedModel, err)
	}
	b, err := vectors.TriangularFromSlice(model.NrClass, model.ProbB)
	if err != nil {
		return nil, fmt.Errorf("%w: prob_b: %v", ErrMalformedModel, err)
	}
	return &Probabilities{A: a, B: b}, nil
}
