package model

import "fmt"

// DataInsufficiencyError reports that there is not enough labeled history
// to proceed: too few samples, fewer than 2 outcome classes, or a season
// with no resolvable teams. It is always fatal to the operation that
// raised it; the remedy is syncing more history, not retrying.
type DataInsufficiencyError struct {
	Reason string
}

func (e *DataInsufficiencyError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Reason)
}

// ModelIncompatibilityError reports that a persisted bundle cannot be
// loaded or that its recorded feature schema no longer matches the
// current pipeline. Recoverable by retraining.
type ModelIncompatibilityError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ModelIncompatibilityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("incompatible model bundle %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("incompatible model bundle %s: %s", e.Path, e.Reason)
}

func (e *ModelIncompatibilityError) Unwrap() error {
	return e.Err
}

// FitError reports a numerical failure while fitting a candidate model.
// Distinct from DataInsufficiencyError so callers can tell "sync more
// history" apart from "the optimizer blew up".
type FitError struct {
	ModelType string
	Err       error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("model fit error (%s): %v", e.ModelType, e.Err)
}

func (e *FitError) Unwrap() error {
	return e.Err
}
