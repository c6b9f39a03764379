package kernel

import (
	"text2phenotype.com/svmpredict/ml/vectors"
	"gonum.org/v1/gonum/floats"
	"math"
)

type Linear struct{}

func (Linear) Compute(supportVectors *vectors.SimdOptimized[float64], features []float64, output []float64) {
	for i := 0; i < supportVectors.Rows(); i++ {
		output[i] = floats.Dot(features, supportVectors.PaddedRow(i))
	}
}

// Poly is (gamma * x.v + coef0)^degree.
type Poly struct {
	Gamma  float64
	Coef0  float64
	Degree int
}

func (k Poly) Compute(supportVectors *vectors.SimdOptimized[float64], features []float64, output []float64) {
	for i := 0; i < supportVectors.Rows(); i++ {
		output[i] = powi(k.Gamma*floats.Dot(features, supportVectors.PaddedRow(i))+k.Coef0, k.Degree)
	}
}

// Sigmoid is tanh(gamma * x.v + coef0).
type Sigmoid struct {
	Gamma float64
	Coef0 float64
}

func (k Sigmoid) Compute(supportVectors *vectors.SimdOptimized[float64], features []float64, output []float64) {
	for i := 0; i < supportVectors.Rows(); i++ {
		output[i] = math.Tanh(k.Gamma*floats.Dot(features, supportVectors.PaddedRow(i)) + k.Coef0)
	}
}

func powi(base float64, times int) float64 {
	tmp := base
	ret := 1.0

	for t := times; t > 0; t /= 2 {
		if t%2 == 1 {
			ret *= tmp
		}

		tmp *= tmp
	}

	return ret
}
