// Package workflow declares the borrow-request and loan state machines as
// explicit transition tables. Services ask the table for the target state and
// never hand-roll status checks, so every reachable state has a declared
// source.
package workflow

import (
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/pkg/apperror"
)

type Event string

const (
	EventApprove Event = "approve"
	EventReject  Event = "reject"
	EventCancel  Event = "cancel"

	EventRequestReturn Event = "request_return"
	EventApproveReturn Event = "approve_return"
	EventRejectReturn  Event = "reject_return"
	EventCancelReturn  Event = "cancel_return"
)

var requestTransitions = map[string]map[Event]string{
	model.RequestStatusPending: {
		EventApprove: model.RequestStatusApproved,
		EventReject:  model.RequestStatusRejected,
		EventCancel:  model.RequestStatusCancelled,
	},
	// approved/rejected/cancelled are terminal.
}

var loanTransitions = map[string]map[Event]string{
	model.LoanStatusActive: {
		EventRequestReturn: model.LoanStatusReturnRequested,
		// Manager may force-return without a pending return request.
		EventApproveReturn: model.LoanStatusReturned,
	},
	model.LoanStatusReturnRequested: {
		EventApproveReturn: model.LoanStatusReturned,
		EventRejectReturn:  model.LoanStatusReturnRejected,
		EventCancelReturn:  model.LoanStatusActive,
	},
	// A rejected return leaves the loan open: the borrower may retry and the
	// manager may still force-return.
	model.LoanStatusReturnRejected: {
		EventRequestReturn: model.LoanStatusReturnRequested,
		EventApproveReturn: model.LoanStatusReturned,
	},
	// returned is terminal.
}

// NextRequestStatus resolves a borrow-request transition.
func NextRequestStatus(current string, event Event) (string, error) {
	next, ok := requestTransitions[current][event]
	if !ok {
		return "", apperror.ErrInvalidTransition
	}
	return next, nil
}

// NextLoanStatus resolves a loan transition.
func NextLoanStatus(current string, event Event) (string, error) {
	next, ok := loanTransitions[current][event]
	if !ok {
		return "", apperror.ErrInvalidTransition
	}
	return next, nil
}

// RequestStates lists every declared borrow-request source state.
func RequestStates() []string {
	states := make([]string, 0, len(requestTransitions))
	for state := range requestTransitions {
		states = append(states, state)
	}
	return states
}

// LoanStates lists every declared loan source state.
func LoanStates() []string {
	states := make([]string, 0, len(loanTransitions))
	for state := range loanTransitions {
		states = append(states, state)
	}
	return states
}
