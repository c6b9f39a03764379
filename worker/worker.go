package worker

import (
	"text2phenotype.com/svmpredict/logger"
	"text2phenotype.com/svmpredict/pipeline"
	"text2phenotype.com/svmpredict/rmq"
	"text2phenotype.com/svmpredict/s3client"
	"text2phenotype.com/svmpredict/tasks"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

type Config struct {
	TaskMaxRetries int `envconfig:"SVM_TASK_RETRY_COUNT_MAX" default:"3"`
}

type Params struct {
	Pipeline pipeline.Pipeline
	Models   []pipeline.ModelInfo
}

// Worker consumes prediction tasks from RMQ, reads the task document from
// Redis and the feature vectors from S3, and stores the predictions back in S3.
type Worker struct {
	config    Config
	models    map[string]pipeline.ModelInfo
	redis     redisTransactions
	s3        s3Transactions
	rmq       rmqTransactions
	svmLogger *zerolog.Logger
	ppln      pipeline.Pipeline
}

func New(params Params) (*Worker, error) {
	svmLogger := logger.NewLogger("Worker")

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		svmLogger.Error().Err(err).Msg("Could not read config")
		return nil, err
	}

	worker := newWorker(config, params, &svmLogger)
	worker.logModels()
	if err := worker.connect(); err != nil {
		return nil, err
	}
	return worker, nil
}

func newWorker(config Config, params Params, svmLogger *zerolog.Logger) *Worker {
	models := make(map[string]pipeline.ModelInfo, len(params.Models))
	for _, model := range params.Models {
		models[model.Config] = model
	}
	return &Worker{
		config:    config,
		models:    models,
		svmLogger: svmLogger,
		ppln:      params.Pipeline,
	}
}

func (worker *Worker) logModels() {
	for _, model := range worker.models {
		worker.svmLogger.Info().
			Str("config_name", model.Config).
			Str("mode", model.Mode).
			Str("model_hash", model.ModelHash).
			Bool("calibrated", model.Calibrated).
			Int("max_attempts", worker.config.TaskMaxRetries).
			Msg("Serving prediction tasks")
	}
}

// resolveModel finds the model a task asks for. An empty name selects the
// only served model, the same way the pipeline does.
func (worker *Worker) resolveModel(configName string) (pipeline.ModelInfo, bool) {
	if configName == "" && len(worker.models) == 1 {
		for _, model := range worker.models {
			return model, true
		}
	}
	model, ok := worker.models[configName]
	return model, ok
}

func (worker *Worker) connect() error {
	clients := []struct {
		name    string
		refresh func() error
	}{
		{"RMQ", worker.refreshRMQClient},
		{"S3", worker.refreshS3Client},
		{"Redis", worker.refreshRedisClients},
	}
	for _, client := range clients {
		if err := client.refresh(); err != nil {
			worker.svmLogger.Error().Err(err).Msgf("Could not create %s client", client.name)
			worker.Close()
			return err
		}
	}
	return nil
}

func (worker *Worker) StartWorker() error {
	defer worker.Close()
	for {
		var err error
		select {
		case delivery, ok := <-worker.rmq.getDeliveriesCh():
			if ok {
				go worker.processMessage(&delivery)
				continue
			}
			err = worker.reconnect("rmq deliveries channel has been closed", nil)
		case rmqErr := <-worker.rmq.getRespChanErrorsCh():
			if rmqErr == nil {
				continue
			}
			err = worker.reconnect("response connection received error", rmqErr)
		case rmqErr := <-worker.rmq.getReqChanErrorsCh():
			if rmqErr == nil {
				continue
			}
			err = worker.reconnect("request connection received error", rmqErr)
		}
		if err != nil {
			return err
		}
	}
}

func (worker *Worker) reconnect(reason string, cause error) error {
	worker.svmLogger.Err(cause).Msgf("%s, trying to refresh RMQ client", reason)
	if err := worker.refreshRMQClient(); err != nil {
		return fmt.Errorf("%s and refresh failed with: %w", reason, err)
	}
	return nil
}

func (worker *Worker) Close() {
	if worker.redis != nil {
		worker.redis.close()
	}
	if worker.s3 != nil {
		worker.s3.close()
	}
	if worker.rmq != nil {
		worker.rmq.close()
	}
}

func (worker *Worker) refresh(name string, create func() (closer func(), err error)) error {
	worker.svmLogger.Info().Msgf("Refreshing %s client", name)
	closeOld, err := create()
	if err != nil {
		worker.svmLogger.Err(err).Msgf("Failed to refresh %s client", name)
		return err
	}
	if closeOld != nil {
		closeOld()
	}
	worker.svmLogger.Info().Msgf("Refreshed %s client", name)
	return nil
}

func (worker *Worker) refreshRedisClients() error {
	return worker.refresh("Redis", func() (func(), error) {
		tasksClient, err := tasks.NewClient()
		if err != nil {
			return nil, err
		}
		old := worker.redis
		worker.redis = &redisClientWrapper{&tasksClient}
		if old == nil {
			return nil, nil
		}
		return old.close, nil
	})
}

func (worker *Worker) refreshRMQClient() error {
	return worker.refresh("RMQ", func() (func(), error) {
		rmqClient, err := rmq.NewClient()
		if err != nil {
			return nil, err
		}
		old := worker.rmq
		worker.rmq = &rmqClientWrapper{rmqClient}
		if old == nil {
			return nil, nil
		}
		return old.close, nil
	})
}

func (worker *Worker) refreshS3Client() error {
	return worker.refresh("S3", func() (func(), error) {
		s3Client, err := s3client.New()
		if err != nil {
			return nil, err
		}
		old := worker.s3
		worker.s3 = &s3ClientWrapper{s3Client}
		if old == nil {
			return nil, nil
		}
		return old.close, nil
	})
}
