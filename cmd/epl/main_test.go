package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samonide/epl-prediction/pkg/epl"
)

func TestNoPredictionMessageForUnknownTeam(t *testing.T) {
	err := &epl.UnresolvableEntityError{Name: "Real Madrid"}

	msg, ok := noPredictionMessage(err)
	assert.True(t, ok)
	assert.Contains(t, msg, "No prediction possible")
	assert.Contains(t, msg, "Real Madrid")

	// Wrapped errors resolve the same way
	msg, ok = noPredictionMessage(fmt.Errorf("resolving home side: %w", err))
	assert.True(t, ok)
	assert.Contains(t, msg, "Real Madrid")
}

func TestNoPredictionMessageLeavesOtherErrorsAlone(t *testing.T) {
	_, ok := noPredictionMessage(errors.New("disk full"))
	assert.False(t, ok)

	_, ok = noPredictionMessage(&epl.DataInsufficiencyError{Reason: "empty dataset"})
	assert.False(t, ok)
}
