package workflow

import (
	"testing"

	"formsly/internal/model"

	"github.com/stretchr/testify/assert"
)

func rows(statuses ...string) []model.RequestSigner {
	out := make([]model.RequestSigner, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, model.RequestSigner{Status: s})
	}
	return out
}

func TestAggregateStatusEmptyIsPending(t *testing.T) {
	assert.Equal(t, model.StatusPending, AggregateStatus(nil))
}

func TestAggregateStatusAllApproved(t *testing.T) {
	assert.Equal(t, model.StatusApproved, AggregateStatus(rows(model.StatusApproved, model.StatusApproved)))
}

func TestAggregateStatusPendingBeatsApproved(t *testing.T) {
	assert.Equal(t, model.StatusPending, AggregateStatus(rows(model.StatusApproved, model.StatusPending)))
}

func TestAggregateStatusRejectedBeatsPending(t *testing.T) {
	assert.Equal(t, model.StatusRejected, AggregateStatus(rows(model.StatusPending, model.StatusRejected, model.StatusApproved)))
}

func TestAggregateStatusCanceledBeatsEverything(t *testing.T) {
	// Order of rows must not matter
	assert.Equal(t, model.StatusCanceled, AggregateStatus(rows(model.StatusRejected, model.StatusCanceled)))
	assert.Equal(t, model.StatusCanceled, AggregateStatus(rows(model.StatusCanceled, model.StatusRejected)))
	assert.Equal(t, model.StatusCanceled, AggregateStatus(rows(model.StatusApproved, model.StatusCanceled, model.StatusPending)))
}

func TestIsFinal(t *testing.T) {
	assert.False(t, IsFinal(model.StatusPending))
	assert.True(t, IsFinal(model.StatusApproved))
	assert.True(t, IsFinal(model.StatusRejected))
	assert.True(t, IsFinal(model.StatusCanceled))
}

func TestValidDecision(t *testing.T) {
	assert.True(t, ValidDecision(model.StatusApproved))
	assert.True(t, ValidDecision(model.StatusRejected))
	assert.False(t, ValidDecision(model.StatusPending))
	assert.False(t, ValidDecision(model.StatusCanceled))
	assert.False(t, ValidDecision("OK"))
}
