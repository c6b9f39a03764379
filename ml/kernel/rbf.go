package kernel

import (
	"text2phenotype.com/svmpredict/ml/vectors"
	"math"
)

// RBF is exp(-gamma * |x - v|^2).
type RBF struct {
	Gamma float64
}

func (k RBF) Compute(supportVectors *vectors.SimdOptimized[float64], features []float64, output []float64) {
	for i := 0; i < supportVectors.Rows(); i++ {
		sum := squaredDistance(features, supportVectors.PaddedRow(i))
		output[i] = math.Exp(-k.Gamma * sum)
	}
}

// squaredDistance walks both vectors one SIMDWidth block at a time. Both are
// padded to a multiple of the block with zeros, so there is no tail.
func squaredDistance(x, v []float64) float64 {
	var acc [vectors.SIMDWidth]float64
	v = v[:len(x)]
	for i := 0; i < len(x); i += vectors.SIMDWidth {
		xb := x[i : i+vectors.SIMDWidth : i+vectors.SIMDWidth]
		vb := v[i : i+vectors.SIMDWidth : i+vectors.SIMDWidth]
		for lane := range acc {
			d := xb[lane] - vb[lane]
			acc[lane] += d * d
		}
	}
	sum := 0.0
	for _, a := range acc {
		sum += a
	}
	return sum
}
