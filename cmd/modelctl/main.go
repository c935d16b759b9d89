package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"ipl-win-predictor/internal/common"
	"ipl-win-predictor/internal/ml"
	"ipl-win-predictor/internal/storage"
)

const usage = `usage: modelctl [-data dir] <command> [args]

commands:
  import [-accuracy f] [-logloss f] [-auc f] [-samples n] [-activate] <model.yaml>
  activate <version>
  rollback
  active
  list
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	dataDefault := os.Getenv(common.EnvDataPath)
	if dataDefault == "" {
		dataDefault = common.DefaultDataPath
	}

	fs := flag.NewFlagSet("modelctl", flag.ContinueOnError)
	dataPath := fs.String("data", dataDefault, "Directory holding the model registry")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	if err := os.MkdirAll(*dataPath, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := storage.New(*dataPath)
	if err != nil {
		return err
	}
	defer store.Close()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "import":
		return importModel(store, rest, out)
	case "activate":
		if len(rest) != 1 {
			return errors.New("activate takes exactly one version")
		}
		if err := store.Activate(rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "activated %s\n", rest[0])
		return nil
	case "rollback":
		rec, err := store.Rollback()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "rolled back to %s\n", rec.Version)
		return nil
	case "active":
		rec, err := store.ActiveModel()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, rec.Version)
		return nil
	case "list":
		return listModels(store, out)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func importModel(store *storage.Store, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	var (
		accuracy = fs.Float64("accuracy", 0, "Holdout accuracy")
		logLoss  = fs.Float64("logloss", 0, "Holdout log loss")
		auc      = fs.Float64("auc", 0, "Holdout ROC AUC")
		samples  = fs.Int("samples", 0, "Number of training samples")
		activate = fs.Bool("activate", false, "Activate the model after import")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("import takes exactly one model file")
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model file: %w", err)
	}
	// Refuse artifacts the predictor could not load.
	lc, err := ml.ParseLogistic(data)
	if err != nil {
		return fmt.Errorf("invalid model %s: %w", path, err)
	}

	rec := storage.ModelRecord{
		Version:   lc.Version(),
		CreatedAt: time.Now().UTC(),
		Metrics: storage.ModelMetrics{
			Accuracy:        *accuracy,
			LogLoss:         *logLoss,
			AUCScore:        *auc,
			TrainingSamples: *samples,
		},
		Artifact: data,
	}
	if err := store.PutModel(rec); err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %s\n", rec.Version)

	if *activate {
		if err := store.Activate(rec.Version); err != nil {
			return err
		}
		fmt.Fprintf(out, "activated %s\n", rec.Version)
	}
	return nil
}

func listModels(store *storage.Store, out io.Writer) error {
	records, err := store.ListModels()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tCREATED\tACCURACY\tLOGLOSS\tAUC\tSAMPLES\tACTIVE")
	for _, r := range records {
		active := ""
		if r.IsActive {
			active = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%.3f\t%d\t%s\n",
			r.Version, r.CreatedAt.Format(time.RFC3339), r.Metrics.Accuracy,
			r.Metrics.LogLoss, r.Metrics.AUCScore, r.Metrics.TrainingSamples, active)
	}
	return tw.Flush()
}
