package svm

import (
	"text2phenotype.com/svmpredict/logger"
	"fmt"
	"gonum.org/v1/gonum/floats"
	"math"
)

const minPairwiseProbability = 1e-7

var svmLogger = logger.NewLogger("SVM")

// PredictValue classifies problem.Features by one-vs-one voting and writes
// DecisionValues, Vote and Label.
func (svm *SVM) PredictValue(problem *Problem) error {
	if err := svm.checkProblem(problem); err != nil {
		return err
	}

	svm.computeDecisionValues(problem)
	svm.countVotes(problem)
	for i := range problem.Probabilities {
		problem.Probabilities[i] = 0
	}

	problem.Label = svm.Classes[firstMaxIndex(problem.Vote)].Label
	return nil
}

// PredictProbability estimates class probabilities from the calibrated
// pairwise decision values and picks the most probable class.
func (svm *SVM) PredictProbability(problem *Problem) error {
	if svm.Probabilities == nil {
		return fmt.Errorf("%w: model has no probability estimates", ErrUnsupportedOperation)
	}
	if err := svm.checkProblem(problem); err != nil {
		return err
	}

	svm.computeDecisionValues(problem)
	svm.countVotes(problem)

	numClasses := len(svm.Classes)
	pairwise := problem.pairwise
	p := 0
	for i := 0; i < numClasses; i++ {
		for j := i + 1; j < numClasses; j++ {
			prob := sigmoidPredict(problem.DecisionValues[p], svm.Probabilities.A.Get(i, j), svm.Probabilities.B.Get(i, j))
			prob = math.Min(math.Max(prob, minPairwiseProbability), 1-minPairwiseProbability)
			pairwise[i*numClasses+j] = prob
			pairwise[j*numClasses+i] = 1 - prob
			p++
		}
	}

	multiclassProbability(numClasses, pairwise, problem.q, problem.qp, problem.Probabilities)

	problem.Label = svm.Classes[floats.MaxIdx(problem.Probabilities)].Label
	return nil
}

func (svm *SVM) computeDecisionValues(problem *Problem) {
	problem.clearPadding()
	for c, class := range svm.Classes {
		svm.Kernel.Compute(class.SupportVectors, problem.Features, problem.KernelValues.Row(c))
	}

	numClasses := len(svm.Classes)
	p := 0
	for i := 0; i < numClasses; i++ {
		for j := i + 1; j < numClasses; j++ {
			sum := 0.0
			coef1 := svm.Classes[i].Coefficients.Row(j - 1)
			coef2 := svm.Classes[j].Coefficients.Row(i)
			kvalue1 := problem.KernelValues.Row(i)
			kvalue2 := problem.KernelValues.Row(j)

			for k := range coef1 {
				sum += coef1[k] * kvalue1[k]
			}

			for k := range coef2 {
				sum += coef2[k] * kvalue2[k]
			}

			problem.DecisionValues[p] = sum - svm.Rho.Get(i, j)
			p++
		}
	}
}

func (svm *SVM) countVotes(problem *Problem) {
	for i := range problem.Vote {
		problem.Vote[i] = 0
	}

	numClasses := len(svm.Classes)
	p := 0
	for i := 0; i < numClasses; i++ {
		for j := i + 1; j < numClasses; j++ {
			if problem.DecisionValues[p] >= 0 {
				problem.Vote[i]++
			} else {
				problem.Vote[j]++
			}
			p++
		}
	}
}

// firstMaxIndex returns the lowest index holding the maximum.
func firstMaxIndex(values []int) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

func sigmoidPredict(decisionValue, a, b float64) float64 {
	fApB := decisionValue*a + b
	if fApB >= 0 {
		return math.Exp(-fApB) / (1.0 + math.Exp(-fApB))
	}
	return 1.0 / (1 + math.Exp(fApB))
}

// multiclassProbability couples the pairwise estimates r (k x k, r[i][j] the
// probability of i beating j) into class probabilities p, following method 2
// of Wu, Lin and Weng, "Probability Estimates for Multi-class Classification
// by Pairwise Coupling". q and qp are scratch space of k*k and k entries.
func multiclassProbability(k int, r, q, qp, p []float64) {
	maxIter := k
	if maxIter < 100 {
		maxIter = 100
	}
	eps := 0.005 / float64(k)

	for t := 0; t < k; t++ {
		p[t] = 1.0 / float64(k)
		q[t*k+t] = 0
		for j := 0; j < t; j++ {
			q[t*k+t] += r[j*k+t] * r[j*k+t]
			q[t*k+j] = q[j*k+t]
		}
		for j := t + 1; j < k; j++ {
			q[t*k+t] += r[j*k+t] * r[j*k+t]
			q[t*k+j] = -r[j*k+t] * r[t*k+j]
		}
	}

	iter := 0
	for ; iter < maxIter; iter++ {
		// recompute Qp and pQp every sweep for numerical accuracy
		pQp := 0.0
		for t := 0; t < k; t++ {
			qp[t] = floats.Dot(q[t*k:(t+1)*k], p)
			pQp += p[t] * qp[t]
		}
		maxError := 0.0
		for t := 0; t < k; t++ {
			maxError = math.Max(maxError, math.Abs(qp[t]-pQp))
		}
		if maxError < eps {
			break
		}

		for t := 0; t < k; t++ {
			diff := (-qp[t] + pQp) / q[t*k+t]
			p[t] += diff
			pQp = (pQp + diff*(diff*q[t*k+t]+2*qp[t])) / (1 + diff) / (1 + diff)
			for j := 0; j < k; j++ {
				qp[j] = (qp[j] + diff*q[t*k+j]) / (1 + diff)
				p[j] /= 1 + diff
			}
		}
	}
	if iter >= maxIter {
		svmLogger.Warn().Int("classes", k).Int("iterations", maxIter).Msg("Pairwise coupling did not converge")
	}

	if sum := floats.Sum(p); sum > 0 {
		floats.Scale(1/sum, p)
	}
}
