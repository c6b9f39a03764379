package kernel

import (
	"text2phenotype.com/svmpredict/ml/vectors"
	"errors"
	"fmt"
)

// Kernel types as numbered by libsvm.
const (
	TypeLinear      = 0
	TypePoly        = 1
	TypeRbf         = 2
	TypeSigmoid     = 3
	TypePrecomputed = 4
)

var ErrUnsupportedKernel = errors.New("unsupported kernel")

// Kernel computes the similarity of a feature vector against every row of a
// support vector matrix. features must be padded to supportVectors.Stride()
// with zeros, output must have at least supportVectors.Rows() entries.
type Kernel interface {
	Compute(supportVectors *vectors.SimdOptimized[float64], features []float64, output []float64)
}

type Params struct {
	Type   int
	Degree int
	Gamma  float64
	Coef0  float64
}

func New(params Params) (Kernel, error) {
	switch params.Type {
	case TypeLinear:
		return Linear{}, nil
	case TypePoly:
		return Poly{Gamma: params.Gamma, Coef0: params.Coef0, Degree: params.Degree}, nil
	case TypeRbf:
		return RBF{Gamma: params.Gamma}, nil
	case TypeSigmoid:
		return Sigmoid{Gamma: params.Gamma, Coef0: params.Coef0}, nil
	default:
		return nil, fmt.Errorf("%w: kernel type %d", ErrUnsupportedKernel, params.Type)
	}
}
