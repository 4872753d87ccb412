// Package workflow holds the shared pure logic of the signer approval chain.
// Every page and service derives a request's overall state through
// AggregateStatus instead of reimplementing the precedence rules.
package workflow

import "formsly/internal/model"

// AggregateStatus folds the decision rows of one request into the overall
// request status. Precedence, highest first:
//
//  1. CANCELED: a withdrawal cancels every open decision, so one canceled
//     row marks the whole request canceled.
//  2. REJECTED: a single rejection is final regardless of later approvals.
//  3. PENDING: any undecided row, or an empty decision set, keeps the
//     request pending.
//  4. APPROVED: only when every decision row is approved.
//
// Disabled signers are excluded by the caller; rows passed in all count.
func AggregateStatus(decisions []model.RequestSigner) string {
	if len(decisions) == 0 {
		return model.StatusPending
	}

	var hasCanceled, hasRejected, hasPending bool
	for _, d := range decisions {
		switch d.Status {
		case model.StatusCanceled:
			hasCanceled = true
		case model.StatusRejected:
			hasRejected = true
		case model.StatusPending:
			hasPending = true
		}
	}

	switch {
	case hasCanceled:
		return model.StatusCanceled
	case hasRejected:
		return model.StatusRejected
	case hasPending:
		return model.StatusPending
	}
	return model.StatusApproved
}

// IsFinal reports whether a status permits no further signer action.
func IsFinal(status string) bool {
	return status == model.StatusApproved ||
		status == model.StatusRejected ||
		status == model.StatusCanceled
}

// ValidDecision reports whether a signer may record the given status on a
// decision row. Signers approve or reject; cancellation belongs to the
// requester.
func ValidDecision(status string) bool {
	return status == model.StatusApproved || status == model.StatusRejected
}
