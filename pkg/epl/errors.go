package epl

import (
	"fmt"

	"github.com/samonide/epl-prediction/pkg/model"
)

// The training side owns the error types shared across both packages
type DataInsufficiencyError = model.DataInsufficiencyError
type ModelIncompatibilityError = model.ModelIncompatibilityError

// UnresolvableEntityError reports a team name that matched nothing in the
// dataset, neither exactly nor fuzzily
type UnresolvableEntityError struct {
	Name string
}

func (e *UnresolvableEntityError) Error() string {
	return fmt.Sprintf("no team in the dataset matches %q", e.Name)
}
