package model

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/samonide/epl-prediction/internal/logger"
)

// Classifier is a trained (or trainable) multi-class probability model
// operating on preprocessed feature rows.
type Classifier interface {
	Fit(X [][]float64, y []int, nClasses int) error
	PredictProba(x []float64) []float64
	Name() string
}

// Bundle is the persisted training artifact: the preprocessing pipeline,
// the winning classifier, and the schema needed to reproduce the exact
// feature vector at inference time. Inference must use FeatureColumns in
// the recorded order and emit probabilities in Classes order.
type Bundle struct {
	ID             string          `json:"id"`
	ModelType      string          `json:"modelType"`
	FeatureColumns []string        `json:"featureColumns"`
	Classes        []string        `json:"classes"`
	Pipeline       *Pipeline       `json:"pipeline"`
	Model          json.RawMessage `json:"model"`
	Accuracy       float64         `json:"accuracy"`
	LogLoss        float64         `json:"logLoss"`
	ValSamples     int             `json:"valSamples"`
	TrainedAt      time.Time       `json:"trainedAt"`

	classifier Classifier
}

func newBundle(clf Classifier, pipe *Pipeline, columns, classes []string, accuracy, logLoss float64, valSamples int) (*Bundle, error) {
	raw, err := json.Marshal(clf)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s classifier: %w", clf.Name(), err)
	}
	return &Bundle{
		ID:             uuid.NewString(),
		ModelType:      clf.Name(),
		FeatureColumns: columns,
		Classes:        classes,
		Pipeline:       pipe,
		Model:          raw,
		Accuracy:       accuracy,
		LogLoss:        logLoss,
		ValSamples:     valSamples,
		TrainedAt:      time.Now().UTC(),
		classifier:     clf,
	}, nil
}

// Classifier returns the deserialized classifier held by the bundle
func (b *Bundle) Classifier() Classifier {
	return b.classifier
}

// PredictProba preprocesses one raw feature row (NaN allowed) and returns
// the class distribution in Classes order.
func (b *Bundle) PredictProba(features []float64) ([]float64, error) {
	if len(features) != len(b.FeatureColumns) {
		return nil, fmt.Errorf("bundle expects %d features, got %d", len(b.FeatureColumns), len(features))
	}
	row, err := b.Pipeline.TransformRow(features)
	if err != nil {
		return nil, err
	}
	return b.classifier.PredictProba(row), nil
}

// Save writes the bundle as JSON
func (b *Bundle) Save(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize model bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model bundle %s: %w", path, err)
	}
	logger.Info("Saved model bundle", path, b.ModelType)
	return nil
}

// LoadBundle reads a bundle from disk and reconstructs its classifier.
// Any parse or schema problem surfaces as ModelIncompatibilityError so
// callers can fall back to retraining.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ModelIncompatibilityError{Path: path, Reason: "cannot read bundle", Err: err}
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &ModelIncompatibilityError{Path: path, Reason: "cannot parse bundle", Err: err}
	}

	if err := b.validate(); err != nil {
		return nil, &ModelIncompatibilityError{Path: path, Reason: err.Error()}
	}

	var clf Classifier
	switch b.ModelType {
	case "RandomForest":
		clf = &RandomForest{}
	case "LogisticRegression":
		clf = &LogisticRegression{}
	default:
		return nil, &ModelIncompatibilityError{Path: path, Reason: fmt.Sprintf("unknown model type %q", b.ModelType)}
	}
	if err := json.Unmarshal(b.Model, clf); err != nil {
		return nil, &ModelIncompatibilityError{Path: path, Reason: "cannot parse classifier parameters", Err: err}
	}
	b.classifier = clf

	logger.Debug("Loaded model bundle", path, b.ModelType)
	return &b, nil
}

func (b *Bundle) validate() error {
	if len(b.FeatureColumns) == 0 {
		return fmt.Errorf("bundle records no feature columns")
	}
	if len(b.Classes) < 2 {
		return fmt.Errorf("bundle records %d classes, need at least 2", len(b.Classes))
	}
	if b.Pipeline == nil {
		return fmt.Errorf("bundle has no preprocessing pipeline")
	}
	if len(b.Pipeline.Medians) != len(b.FeatureColumns) {
		return fmt.Errorf("pipeline fitted for %d columns but bundle records %d feature columns",
			len(b.Pipeline.Medians), len(b.FeatureColumns))
	}
	if len(b.Model) == 0 {
		return fmt.Errorf("bundle has no classifier parameters")
	}
	return nil
}
