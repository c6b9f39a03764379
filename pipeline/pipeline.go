package pipeline

import (
	"text2phenotype.com/svmpredict/logger"
	"text2phenotype.com/svmpredict/types"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Pipeline answers a prediction request asynchronously. The channel yields
// exactly one Response and is closed afterwards.
type Pipeline func(request Request) <-chan Response

// ModelSource fetches model files referenced by model_key.
type ModelSource interface {
	Download(key string) ([]byte, error)
}

type Params struct {
	ModelDir       string                `json:"model_dir"`
	Configurations []types.Configuration `json:"configurations"`
	ModelSource    ModelSource           `json:"-"`
}

var ErrUnknownConfiguration = errors.New("unknown configuration")

// ModelInfo describes a model served by a pipeline.
type ModelInfo struct {
	Config         string `json:"config"`
	Mode           string `json:"mode"`
	ModelHash      string `json:"model_hash"`
	Classes        int    `json:"classes"`
	SupportVectors int    `json:"support_vectors"`
	Attributes     int    `json:"attributes"`
	Calibrated     bool   `json:"calibrated"`
}

func New(params Params) (Pipeline, error) {
	ppln, _, err := Load(params)
	return ppln, err
}

// Load builds the pipeline and reports the models it serves, sorted by
// configuration name.
func Load(params Params) (Pipeline, []ModelInfo, error) {
	pplnLogger := logger.NewLogger("Prediction pipeline")
	errLogger := pplnLogger.With().Caller().Logger()
	pplnLogger.Info().
		Interface("params", params).
		Msg("Starting prediction pipeline (see parameters in 'params' field)")

	if len(params.Configurations) == 0 {
		return nil, nil, errors.New("no configurations to serve")
	}

	predictors := make(map[string]*Predictor, len(params.Configurations))
	models := make([]ModelInfo, 0, len(params.Configurations))
	for _, cfg := range params.Configurations {
		data, err := loadModelData(params, cfg)
		if err != nil {
			errLogger.Err(err).
				Interface("configuration", cfg).
				Msg("Failed to load model")
			return nil, nil, err
		}
		predictor, err := NewPredictor(cfg, data)
		if err != nil {
			errLogger.Err(err).
				Interface("configuration", cfg).
				Msg("Failed to create predictor")
			return nil, nil, err
		}
		pplnLogger.Info().
			Str("config_name", cfg.Name).
			Str("model_hash", predictor.ModelHash()).
			Int("classes", predictor.Model().NumClasses()).
			Int("support_vectors", predictor.Model().NumTotalSV).
			Int("attributes", predictor.Model().NumAttributes).
			Msg("Loaded model")
		predictors[cfg.Name] = predictor
		models = append(models, modelInfo(predictor))
	}
	sort.Slice(models, func(i, j int) bool {
		return models[i].Config < models[j].Config
	})

	var defaultPredictor *Predictor
	if len(predictors) == 1 {
		for _, predictor := range predictors {
			defaultPredictor = predictor
		}
	}

	return func(request Request) <-chan Response {
		responseChan := make(chan Response, 1)
		reqLogger := pplnLogger.With().Str("tid", request.Tid).Str("config_name", request.Config).Logger()

		go func() {
			defer close(responseChan)
			response := Response{Tid: request.Tid, Config: request.Config}

			predictor, ok := predictors[request.Config]
			if !ok && request.Config == "" && defaultPredictor != nil {
				predictor, ok = defaultPredictor, true
				response.Config = predictor.Config().Name
			}
			if !ok {
				response.Error = fmt.Errorf("%w: %q", ErrUnknownConfiguration, request.Config).Error()
				reqLogger.Error().Msg(response.Error)
				responseChan <- response
				return
			}

			probability := predictor.Config().Probability()
			if request.Probability != nil {
				probability = *request.Probability
			}

			reqLogger.Info().
				Int("vectors", len(request.Features)).
				Bool("probability", probability).
				Msg("Started prediction")
			results, err := predictor.Predict(request.Features, probability)
			if err != nil {
				reqLogger.Err(err).Msg("Prediction failed")
				response.Error = err.Error()
				responseChan <- response
				return
			}

			response.ModelHash = predictor.ModelHash()
			response.Results = results
			reqLogger.Info().Msg("Finished prediction")
			responseChan <- response
		}()

		return responseChan
	}, models, nil
}

func modelInfo(predictor *Predictor) ModelInfo {
	cfg := predictor.Config()
	model := predictor.Model()
	return ModelInfo{
		Config:         cfg.Name,
		Mode:           cfg.Mode,
		ModelHash:      predictor.ModelHash(),
		Classes:        model.NumClasses(),
		SupportVectors: model.NumTotalSV,
		Attributes:     model.NumAttributes,
		Calibrated:     model.Probabilities != nil,
	}
}

func loadModelData(params Params, cfg types.Configuration) ([]byte, error) {
	if cfg.ModelKey != "" {
		if params.ModelSource == nil {
			return nil, fmt.Errorf("configuration %q needs model source for key %q", cfg.Name, cfg.ModelKey)
		}
		return params.ModelSource.Download(cfg.ModelKey)
	}
	modelPath := cfg.ModelFile
	if !filepath.IsAbs(modelPath) {
		modelPath = filepath.Join(params.ModelDir, modelPath)
	}
	return os.ReadFile(modelPath)
}
