package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/samonide/epl-prediction/internal/logger"
	"github.com/samonide/epl-prediction/pkg/epl"
	"github.com/samonide/epl-prediction/pkg/server"
)

func main() {
	logger.SetShowDateTime(true)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := epl.ValidateConfig(epl.Config); err != nil {
		logger.Fatal("Invalid configuration:", err)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "train":
		err = runTrain()
	case "predict":
		err = runPredict(args)
	case "predict-match":
		err = runPredictMatch(args)
	case "evaluate":
		err = runEvaluate()
	case "serve":
		err = runServe(args)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("Command failed:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: epl <command> [args]

commands:
  train                      build the dataset and train a fresh model
  predict [top]              predict the next fixtures (default top 10)
  predict-match <home> <away>  predict one pairing, synthesizing a fixture if needed
  evaluate                   replay the stored model over all played matches
  serve [addr]               run the HTTP API (default :8080)`)
}

func loadDataset() (*epl.Dataset, error) {
	ds := epl.GetDatasourceInstance()
	if len(ds.Matches) == 0 {
		logger.Warn("No season files found, falling back to the database", epl.Config.AssetsPath)
		return epl.LoadPersistedDataset()
	}
	dataset, err := epl.BuildDataset(ds.Matches)
	if err != nil {
		return nil, err
	}
	if err := dataset.Persist(); err != nil {
		logger.Warn("Failed to persist dataset:", err)
	}
	return dataset, nil
}

func runTrain() error {
	dataset, err := loadDataset()
	if err != nil {
		return err
	}
	bundle, err := epl.TrainAndSave(dataset)
	if err != nil {
		return err
	}
	logger.Highlight("Trained", bundle.ModelType, "accuracy", bundle.Accuracy, "logLoss", bundle.LogLoss)
	return nil
}

func runPredict(args []string) error {
	top := 0
	if len(args) > 0 {
		if _, err := fmt.Sscanf(args[0], "%d", &top); err != nil || top < 1 {
			return fmt.Errorf("top must be a positive integer, got %q", args[0])
		}
	}

	dataset, err := loadDataset()
	if err != nil {
		return err
	}
	bundle, err := epl.LoadOrTrainBundle(dataset)
	if err != nil {
		return err
	}

	predictions, err := epl.PredictFixtures(dataset, bundle, top, time.Now())
	if err != nil {
		return err
	}
	if len(predictions) == 0 {
		fmt.Println("No upcoming fixtures found.")
		return nil
	}

	for _, p := range predictions {
		printPrediction(p)
	}
	return nil
}

func runPredictMatch(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("predict-match needs a home and an away team name")
	}

	dataset, err := loadDataset()
	if err != nil {
		return err
	}
	bundle, err := epl.LoadOrTrainBundle(dataset)
	if err != nil {
		return err
	}

	p, err := epl.PredictSingleMatch(dataset, bundle, args[0], args[1], time.Now())
	if err != nil {
		if msg, ok := noPredictionMessage(err); ok {
			fmt.Println(msg)
			return nil
		}
		return err
	}
	printPrediction(p)
	return nil
}

// noPredictionMessage maps a failed team lookup onto a user-facing
// answer. An unknown team is a normal outcome for predict-match, not a
// command failure, mirroring how the HTTP API serves it as a 404.
func noPredictionMessage(err error) (string, bool) {
	var unresolvable *epl.UnresolvableEntityError
	if errors.As(err, &unresolvable) {
		return fmt.Sprintf("No prediction possible: unknown team %q.", unresolvable.Name), true
	}
	return "", false
}

func runEvaluate() error {
	dataset, err := loadDataset()
	if err != nil {
		return err
	}
	bundle, err := epl.LoadOrTrainBundle(dataset)
	if err != nil {
		return err
	}

	accuracy, perOutcome, err := epl.EvaluateBundle(dataset, bundle)
	if err != nil {
		return err
	}
	fmt.Printf("Accuracy: %.1f%% (H: %d, D: %d, A: %d correct)\n",
		accuracy*100, perOutcome["H"], perOutcome["D"], perOutcome["A"])
	return nil
}

func runServe(args []string) error {
	addr := ":8080"
	if len(args) > 0 {
		addr = args[0]
	}

	dataset, err := loadDataset()
	if err != nil {
		return err
	}
	bundle, err := epl.LoadOrTrainBundle(dataset)
	if err != nil {
		return err
	}

	return server.New(dataset, bundle, addr).ListenAndServe()
}

func printPrediction(p *epl.Prediction) {
	label := map[string]string{"H": "home win", "D": "draw", "A": "away win"}[p.Outcome]
	when := "date TBC"
	if !p.UTCTime.IsZero() {
		when = p.UTCTime.Format("Mon 02 Jan 2006")
	}
	tag := ""
	if p.Synthetic {
		tag = " (synthetic fixture)"
	}
	fmt.Printf("%s vs %s [%s]%s: %s  H %.1f%%  D %.1f%%  A %.1f%%",
		p.HomeTeam, p.AwayTeam, when, tag, label,
		p.Probabilities["H"]*100, p.Probabilities["D"]*100, p.Probabilities["A"]*100)
	if p.Scoreline != nil {
		fmt.Printf("  likely %d-%d", p.Scoreline.HomeGoals, p.Scoreline.AwayGoals)
	}
	fmt.Println()
}
