package svm

import "text2phenotype.com/svmpredict/ml/kernel"

const (
	CSvc       = 0
	NuSvc      = 1
	OneClass   = 2
	EpsilonSvr = 3
	NuSvr      = 4
)

type Parameter struct {
	SvmType     int     `json:"svm_type"`
	KernelType  int     `json:"kernel_type"`
	Degree      int     `json:"degree"`
	Gamma       float64 `json:"gamma"`
	Coef0       float64 `json:"coef_0"`
	Probability int     `json:"probability"`
}

func (p Parameter) OneOfTypes(types ...int) bool {
	for _, tp := range types {
		if p.SvmType == tp {
			return true
		}
	}
	return false
}

func (p Parameter) KernelParams() kernel.Params {
	return kernel.Params{
		Type:   p.KernelType,
		Degree: p.Degree,
		Gamma:  p.Gamma,
		Coef0:  p.Coef0,
	}
}

type Node struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Model is a trained model in libsvm layout. Support vectors are grouped by
// class: the first NSV[0] belong to Label[0] and so on. SvCoef[k] holds, for
// every support vector, its coefficient in the decision function against
// the k-th other class.
type Model struct {
	Param   Parameter   `json:"param"`
	NrClass int         `json:"nr_class"`
	L       int         `json:"l"`
	SV      [][]Node    `json:"sv"`
	SvCoef  [][]float64 `json:"sv_coef"`
	Rho     []float64   `json:"rho"`
	ProbA   []float64   `json:"prob_a"`
	ProbB   []float64   `json:"prob_b"`
	Label   []int       `json:"label"`
	NSV     []int       `json:"nsv"`
}
