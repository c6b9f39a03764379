package main

import (
	"text2phenotype.com/svmpredict/api"
	"text2phenotype.com/svmpredict/logger"
	"text2phenotype.com/svmpredict/pipeline"
	"text2phenotype.com/svmpredict/s3client"
	"text2phenotype.com/svmpredict/types"
	"text2phenotype.com/svmpredict/worker"
	"flag"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"net/http"
	"os"
	"time"
)

type Config struct {
	ConfigPath    string `envconfig:"SVM_CONFIG_PATH" required:"true"`
	ModelDir      string `envconfig:"SVM_MODEL_DIR" default:""`
	RestAPIActive bool   `envconfig:"SVM_REST_API_ACTIVE" default:"false"`
	RestAPIPort   string `envconfig:"SVM_REST_API_PORT" default:"10000"`
	WorkerActive  bool   `envconfig:"SVM_WORKER_ACTIVE" default:"true"`
}

const pipelineStartMaxRetries = 5

func main() {
	logger.SetupLogging()
	svmLogger := logger.NewLogger("Main")
	fatalErrLogger := svmLogger.Fatal().Caller()
	wrap := flag.Bool("wrap", false, "run the service as a child process and turn its panics into log entries")
	flag.Parse()

	if *wrap {
		executable, err := os.Executable()
		if err != nil {
			fatalErrLogger.Err(err).Msg("Could not resolve executable path")
			os.Exit(1)
		}
		logger.WrapProcess(executable, flag.Args()...)
		return
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}
	if !config.RestAPIActive && !config.WorkerActive {
		fatalErrLogger.Msg("Neither REST API nor worker is enabled")
		os.Exit(1)
	}

	//Load Pipeline
	type loadedPipeline struct {
		ppln   pipeline.Pipeline
		models []pipeline.ModelInfo
	}
	pipelineChannel := make(chan loadedPipeline)
	go func() {
		for retry := 0; retry < pipelineStartMaxRetries; retry++ {
			cfgs, err := types.LoadConfigurations(config.ConfigPath)
			if err != nil {
				svmLogger.Err(err).Msg("Failed to load configurations. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			svmLogger.Info().Msgf("Loaded %d configurations", len(cfgs))

			params := pipeline.Params{
				ModelDir:       config.ModelDir,
				Configurations: cfgs,
			}
			if needsModelSource(cfgs) {
				s3Client, err := s3client.New()
				if err != nil {
					svmLogger.Err(err).Msg("Failed to create S3 client for models. Retrying in 5 sec")
					time.Sleep(5 * time.Second)
					continue
				}
				params.ModelSource = s3Client
			}

			svmLogger.Info().Msg("Starting pipelines loading")
			ppln, models, err := pipeline.Load(params)
			if err != nil {
				svmLogger.Err(err).Msg("Failed to start prediction pipeline. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			svmLogger.Info().Msg("Pipelines loaded")
			pipelineChannel <- loadedPipeline{ppln, models}
			return
		}
		fatalErrLogger.Msgf("Could not start pipelines after %d retries, exiting", pipelineStartMaxRetries)
		os.Exit(1)
	}()

	// block until pipeline loads
	loaded := <-pipelineChannel
	ppln := loaded.ppln

	if config.RestAPIActive {
		serve := func() {
			svmLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Pipeline: ppln,
			}
			http.HandleFunc("/", apiRequest.ProcessData)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			svmLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
			os.Exit(1)
		}
		if !config.WorkerActive {
			serve()
			return
		}
		go serve()
	}

	svmLogger.Info().Msg("Start SVM Worker")
	for {
		rmqWorker, err := worker.New(worker.Params{Pipeline: ppln, Models: loaded.models})
		if err != nil {
			svmLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			svmLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}

func needsModelSource(cfgs []types.Configuration) bool {
	for _, cfg := range cfgs {
		if cfg.ModelKey != "" {
			return true
		}
	}
	return false
}
