package ml

import (
	"fmt"
	"os"
	"time"

	"ipl-win-predictor/internal/storage"

	"github.com/rs/zerolog/log"
)

// Source kinds accepted by Open.
const (
	SourceFile   = "file"
	SourceStore  = "store"
	SourceRemote = "remote"
)

// Source describes where the process-wide classifier comes from.
type Source struct {
	Kind      string
	ModelPath string         // SourceFile
	Store     *storage.Store // SourceStore
	URL       string         // SourceRemote
	Timeout   time.Duration  // SourceRemote
	Retries   int            // SourceRemote
}

// Open loads the classifier described by src. It is called once at startup;
// the returned value is shared read-only for the life of the process.
func Open(src Source, metrics MetricsInterface) (Classifier, error) {
	var (
		c       Classifier
		created time.Time
	)

	switch src.Kind {
	case SourceFile, "":
		lc, err := LoadLogisticFile(src.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
		}
		if info, err := os.Stat(src.ModelPath); err == nil {
			created = info.ModTime()
		}
		log.Info().Str("model_path", src.ModelPath).Str("version", lc.Version()).Msg("model loaded from file")
		c = lc

	case SourceStore:
		if src.Store == nil {
			return nil, fmt.Errorf("%w: model registry is not open", ErrClassifierUnavailable)
		}
		rec, err := src.Store.ActiveModel()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
		}
		lc, err := ParseLogistic(rec.Artifact)
		if err != nil {
			return nil, fmt.Errorf("%w: model %s: %v", ErrClassifierUnavailable, rec.Version, err)
		}
		created = rec.CreatedAt
		log.Info().
			Str("version", rec.Version).
			Float64("accuracy", rec.Metrics.Accuracy).
			Msg("model loaded from registry")
		c = lc

	case SourceRemote:
		if src.URL == "" {
			return nil, fmt.Errorf("%w: classifier URL is empty", ErrClassifierUnavailable)
		}
		log.Info().Str("url", src.URL).Dur("timeout", src.Timeout).Int("retries", src.Retries).Msg("using remote classifier")
		c = NewRemote(src.URL, src.Timeout, src.Retries)

	default:
		return nil, fmt.Errorf("unknown model source %q", src.Kind)
	}

	if metrics != nil && !created.IsZero() {
		metrics.ModelAgeSet(time.Since(created).Seconds())
	}
	return Instrumented(c, metrics), nil
}
