package types

import (
	"text2phenotype.com/svmpredict/logger"
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

const (
	// prediction modes
	ModeValue       = "value"
	ModeProbability = "probability"

	DefaultBatchSize = 256
)

var ErrInvalidConfiguration = errors.New("invalid configuration")

// Configuration describes one model served by the pipeline. The model comes
// either from ModelFile (relative to the model directory) or from ModelKey in
// the S3 bucket.
type Configuration struct {
	Name       string `json:"name"`
	FilePath   string `json:"file_path"`
	ModelFile  string `yaml:"model_file" json:"model_file"`
	ModelKey   string `yaml:"model_key" json:"model_key"`
	Mode       string `yaml:"mode" json:"mode"`
	ModelPatch string `yaml:"model_patch" json:"model_patch"`
	BatchSize  int    `yaml:"batch_size" json:"batch_size"`
}

func (cfg Configuration) Probability() bool {
	return cfg.Mode == ModeProbability
}

func (cfg *Configuration) Validate() error {
	if cfg.Mode == "" {
		cfg.Mode = ModeValue
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	switch {
	case cfg.Mode != ModeValue && cfg.Mode != ModeProbability:
		return fmt.Errorf("%w: wrong mode %q", ErrInvalidConfiguration, cfg.Mode)
	case cfg.ModelFile == "" && cfg.ModelKey == "":
		return fmt.Errorf("%w: neither model_file nor model_key is set", ErrInvalidConfiguration)
	case cfg.ModelFile != "" && cfg.ModelKey != "":
		return fmt.Errorf("%w: only one of model_file and model_key may be set", ErrInvalidConfiguration)
	}
	return nil
}

// LoadConfigurations reads every *.yaml file of dirPath. Files that cannot be
// read or are invalid are logged and skipped.
func LoadConfigurations(dirPath string) ([]Configuration, error) {
	cfgLogger := logger.NewLogger("LoadConfigurations")

	files, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	configChan := make(chan Configuration, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(file os.DirEntry) {
			defer wg.Done()
			cfg := Configuration{
				Name:     strings.TrimSuffix(file.Name(), ".yaml"),
				FilePath: path.Join(dirPath, file.Name()),
			}
			fileLogger := cfgLogger.With().Str("file_path", cfg.FilePath).Logger()
			buf, err := os.ReadFile(cfg.FilePath)
			if err != nil {
				fileLogger.Err(err).Msg("Failed to read configuration")
				return
			}
			if err := yaml.Unmarshal(buf, &cfg); err != nil {
				fileLogger.Err(err).Msg("Failed to parse configuration")
				return
			}
			if err := cfg.Validate(); err != nil {
				fileLogger.Err(err).Msg("Skipping configuration")
				return
			}

			configChan <- cfg
		}(f)
	}

	go func() {
		wg.Wait()
		close(configChan)
	}()

	configs := make([]Configuration, 0, len(files))
	for cfg := range configChan {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Name < configs[j].Name
	})
	return configs, nil
}
