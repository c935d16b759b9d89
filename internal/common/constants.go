package common

// Environment variable keys
const (
	EnvConfigFile        = "CONFIG_FILE"
	EnvModelSource       = "MODEL_SOURCE"
	EnvModelPath         = "MODEL_PATH"
	EnvDataPath          = "DATA_PATH"
	EnvClassifierURL     = "CLASSIFIER_URL"
	EnvClassifierTimeout = "CLASSIFIER_TIMEOUT"
	EnvClassifierRetries = "CLASSIFIER_RETRIES"
	EnvProbTolerance     = "PROB_TOLERANCE"
	EnvListenPort        = "LISTEN_PORT"
	EnvLogLevel          = "LOG_LEVEL"
)

// Configuration defaults
const (
	DefaultModelSource       = "file"
	DefaultModelPath         = "models/model.yaml"
	DefaultDataPath          = "data"
	DefaultClassifierTimeout = "2s"
	DefaultClassifierRetries = 2
	DefaultProbTolerance     = 1e-6
	DefaultListenPort        = 8080
	DefaultLogLevel          = "info"
)

// Validation constants
const (
	MinListenPort        = 1024
	MaxListenPort        = 65535
	MaxClassifierRetries = 5
	MaxProbTolerance     = 0.01
)
