package svm

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// PredictValues runs PredictValue on every problem in parallel. Each problem
// must appear only once in the slice.
func (svm *SVM) PredictValues(problems []*Problem) error {
	return forEachProblem(problems, svm.PredictValue)
}

// PredictProbabilities runs PredictProbability on every problem in parallel.
func (svm *SVM) PredictProbabilities(problems []*Problem) error {
	if svm.Probabilities == nil {
		return fmt.Errorf("%w: model has no probability estimates", ErrUnsupportedOperation)
	}
	return forEachProblem(problems, svm.PredictProbability)
}

// forEachProblem splits problems into one contiguous chunk per CPU. The SVM
// is only read, and every problem is touched by exactly one goroutine.
func forEachProblem(problems []*Problem, predict func(*Problem) error) error {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(problems) {
		workers = len(problems)
	}
	if workers == 0 {
		return nil
	}

	errs := make([]error, len(problems))
	chunk := (len(problems) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(problems); start += chunk {
		end := start + chunk
		if end > len(problems) {
			end = len(problems)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if err := predict(problems[i]); err != nil {
					errs[i] = fmt.Errorf("problem %d: %w", i, err)
				}
			}
		}(start, end)
	}
	wg.Wait()

	return errors.Join(errs...)
}
