// Package app holds the process startup shared by the command binaries.
package app

import (
	"io"
	"os"

	"ipl-win-predictor/internal/cfg"
	"ipl-win-predictor/internal/ml"
	"ipl-win-predictor/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global zerolog logger. Console output is used
// when pretty is set, JSON lines otherwise.
func SetupLogging(level string, pretty bool, out io.Writer) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if out == nil {
		out = os.Stderr
	}
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out})
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}
}

// OpenClassifier loads the process-wide classifier described by c. The
// returned close function releases the model registry when one was opened
// and is always safe to call.
func OpenClassifier(c cfg.Settings, metrics ml.MetricsInterface) (ml.Classifier, func(), error) {
	src := ml.Source{
		Kind:      c.ModelSource,
		ModelPath: c.ModelPath,
		URL:       c.ClassifierURL,
		Timeout:   c.ClassifierTimeout,
		Retries:   c.ClassifierRetries,
	}

	closeFn := func() {}
	if c.ModelSource == ml.SourceStore {
		store, err := storage.New(c.DataPath)
		if err != nil {
			return nil, closeFn, err
		}
		src.Store = store
		closeFn = func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close model registry")
			}
		}
	}

	classifier, err := ml.Open(src, metrics)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return classifier, closeFn, nil
}
