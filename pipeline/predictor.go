package pipeline

import (
	"text2phenotype.com/svmpredict/ml/svm"
	"text2phenotype.com/svmpredict/types"
	"text2phenotype.com/svmpredict/utils"
	"fmt"
	"sync"
)

// Predictor serves one configuration. Problems are pooled so concurrent
// requests never share a workspace and steady traffic does not allocate new
// ones.
type Predictor struct {
	cfg       types.Configuration
	model     *svm.SVM
	modelHash string
	problems  sync.Pool
}

func NewPredictor(cfg types.Configuration, modelData []byte) (*Predictor, error) {
	var patch []byte
	if cfg.ModelPatch != "" {
		patch = []byte(cfg.ModelPatch)
	}
	model, err := svm.LoadModel(modelData, patch)
	if err != nil {
		return nil, fmt.Errorf("configuration %q: %w", cfg.Name, err)
	}
	if cfg.Probability() && model.Probabilities == nil {
		return nil, fmt.Errorf("configuration %q: %w: model has no probability estimates", cfg.Name, svm.ErrUnsupportedOperation)
	}

	predictor := &Predictor{
		cfg:       cfg,
		model:     model,
		modelHash: utils.FormatHash(utils.HashBytes(modelData, patch)),
	}
	predictor.problems.New = func() interface{} {
		return svm.NewProblemFor(model)
	}
	return predictor, nil
}

func (p *Predictor) Config() types.Configuration {
	return p.cfg
}

func (p *Predictor) ModelHash() string {
	return p.modelHash
}

func (p *Predictor) Model() *svm.SVM {
	return p.model
}

// Predict classifies every feature vector, at most BatchSize of them in
// parallel at a time.
func (p *Predictor) Predict(features [][]float64, probability bool) ([]Prediction, error) {
	if probability && p.model.Probabilities == nil {
		return nil, fmt.Errorf("%w: model has no probability estimates", svm.ErrUnsupportedOperation)
	}

	results := make([]Prediction, len(features))
	batchSize := p.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = types.DefaultBatchSize
	}
	problems := make([]*svm.Problem, 0, batchSize)

	for start := 0; start < len(features); start += batchSize {
		end := start + batchSize
		if end > len(features) {
			end = len(features)
		}

		problems = problems[:0]
		var err error
		for i := start; i < end && err == nil; i++ {
			problem := p.problems.Get().(*svm.Problem)
			problems = append(problems, problem)
			if setErr := problem.SetFeatures(features[i]); setErr != nil {
				err = fmt.Errorf("feature vector %d: %w", i, setErr)
			}
		}

		if err == nil {
			if probability {
				err = p.model.PredictProbabilities(problems)
			} else {
				err = p.model.PredictValues(problems)
			}
		}

		for k, problem := range problems {
			if err == nil {
				results[start+k] = newPrediction(problem, probability)
			}
			p.problems.Put(problem)
		}
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

func newPrediction(problem *svm.Problem, probability bool) Prediction {
	prediction := Prediction{
		Label:          problem.Label,
		DecisionValues: append([]float64(nil), problem.DecisionValues...),
		Votes:          append([]int(nil), problem.Vote...),
	}
	if probability {
		prediction.Probabilities = append([]float64(nil), problem.Probabilities...)
	}
	return prediction
}
