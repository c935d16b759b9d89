package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"ipl-win-predictor/internal/common"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	ModelSource       string
	ModelPath         string
	DataPath          string
	ClassifierURL     string
	ClassifierTimeout time.Duration
	ClassifierRetries int
	ProbTolerance     float64
	ListenPort        int
	LogLevel          string
}

type ConfigFile struct {
	Model struct {
		Source string `yaml:"source"`
		Path   string `yaml:"path"`
	} `yaml:"model"`

	Classifier struct {
		URL       string  `yaml:"url"`
		Timeout   string  `yaml:"timeout"`
		Retries   int     `yaml:"retries"`
		Tolerance float64 `yaml:"tolerance"`
	} `yaml:"classifier"`

	System struct {
		DataPath   string `yaml:"dataPath"`
		ListenPort int    `yaml:"listenPort"`
		LogLevel   string `yaml:"logLevel"`
	} `yaml:"system"`
}

// Load reads settings from CONFIG_FILE when set, otherwise from the
// environment. A .env file in the working directory is loaded first.
func Load() (Settings, error) {
	_ = godotenv.Load()

	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	timeout, err := time.ParseDuration(config.Classifier.Timeout)
	if err != nil {
		timeout, _ = time.ParseDuration(common.DefaultClassifierTimeout)
	}

	settings := Settings{
		ModelSource:       orDefault(getEnvOrDefault(common.EnvModelSource, config.Model.Source), common.DefaultModelSource),
		ModelPath:         orDefault(getEnvOrDefault(common.EnvModelPath, config.Model.Path), common.DefaultModelPath),
		DataPath:          orDefault(getEnvOrDefault(common.EnvDataPath, config.System.DataPath), common.DefaultDataPath),
		ClassifierURL:     getEnvOrDefault(common.EnvClassifierURL, config.Classifier.URL),
		ClassifierTimeout: getDurationOrDefault(common.EnvClassifierTimeout, timeout),
		ClassifierRetries: getIntFromEnvOrConfig(common.EnvClassifierRetries, config.Classifier.Retries, common.DefaultClassifierRetries),
		ProbTolerance:     getFloatFromEnvOrConfig(common.EnvProbTolerance, config.Classifier.Tolerance, common.DefaultProbTolerance),
		ListenPort:        getIntFromEnvOrConfig(common.EnvListenPort, config.System.ListenPort, common.DefaultListenPort),
		LogLevel:          orDefault(getEnvOrDefault(common.EnvLogLevel, config.System.LogLevel), common.DefaultLogLevel),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	defaultTimeout, _ := time.ParseDuration(common.DefaultClassifierTimeout)

	settings := Settings{
		ModelSource:       getEnvOrDefault(common.EnvModelSource, common.DefaultModelSource),
		ModelPath:         getEnvOrDefault(common.EnvModelPath, common.DefaultModelPath),
		DataPath:          getEnvOrDefault(common.EnvDataPath, common.DefaultDataPath),
		ClassifierURL:     os.Getenv(common.EnvClassifierURL),
		ClassifierTimeout: getDurationOrDefault(common.EnvClassifierTimeout, defaultTimeout),
		ClassifierRetries: getIntOrDefault(common.EnvClassifierRetries, common.DefaultClassifierRetries),
		ProbTolerance:     getFloatOrDefault(common.EnvProbTolerance, common.DefaultProbTolerance),
		ListenPort:        getIntOrDefault(common.EnvListenPort, common.DefaultListenPort),
		LogLevel:          getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func orDefault(v, defaultValue string) string {
	if v == "" {
		return defaultValue
	}
	return v
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if configValue != 0 {
		defaultValue = configValue
	}
	return getIntOrDefault(key, defaultValue)
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if configValue != 0 {
		defaultValue = configValue
	}
	return getFloatOrDefault(key, defaultValue)
}

// validateSettings performs validation of configuration values
func validateSettings(settings *Settings) error {
	switch settings.ModelSource {
	case "file":
		if settings.ModelPath == "" {
			return fmt.Errorf("model path is required for model source %q", settings.ModelSource)
		}
	case "store":
		if settings.DataPath == "" {
			return fmt.Errorf("data path is required for model source %q", settings.ModelSource)
		}
	case "remote":
		if settings.ClassifierURL == "" {
			return fmt.Errorf("classifier URL is required for model source %q", settings.ModelSource)
		}
	default:
		return fmt.Errorf("model source must be one of file, store, remote, got %q", settings.ModelSource)
	}

	if settings.ClassifierTimeout < 10*time.Millisecond || settings.ClassifierTimeout > time.Minute {
		return fmt.Errorf("classifier timeout must be between 10ms and 1m, got %v", settings.ClassifierTimeout)
	}
	if settings.ClassifierRetries < 0 || settings.ClassifierRetries > common.MaxClassifierRetries {
		return fmt.Errorf("classifier retries must be between 0 and %d, got %d", common.MaxClassifierRetries, settings.ClassifierRetries)
	}
	if settings.ProbTolerance <= 0 || settings.ProbTolerance > common.MaxProbTolerance {
		return fmt.Errorf("probability tolerance must be in (0, %g], got %g", common.MaxProbTolerance, settings.ProbTolerance)
	}
	if settings.ListenPort < common.MinListenPort || settings.ListenPort > common.MaxListenPort {
		return fmt.Errorf("listen port must be between %d and %d, got %d", common.MinListenPort, common.MaxListenPort, settings.ListenPort)
	}

	switch settings.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of trace, debug, info, warn, error, got %q", settings.LogLevel)
	}
	return nil
}
