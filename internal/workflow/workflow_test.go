package workflow_test

import (
	"testing"

	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/workflow"
	"anoa.com/perpustakaan/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current string
		event   workflow.Event
		want    string
		wantErr bool
	}{
		{"approve pending", model.RequestStatusPending, workflow.EventApprove, model.RequestStatusApproved, false},
		{"reject pending", model.RequestStatusPending, workflow.EventReject, model.RequestStatusRejected, false},
		{"cancel pending", model.RequestStatusPending, workflow.EventCancel, model.RequestStatusCancelled, false},
		{"approved is terminal", model.RequestStatusApproved, workflow.EventReject, "", true},
		{"rejected is terminal", model.RequestStatusRejected, workflow.EventApprove, "", true},
		{"cancelled is terminal", model.RequestStatusCancelled, workflow.EventApprove, "", true},
		{"unknown state", "limbo", workflow.EventApprove, "", true},
		{"loan event on request", model.RequestStatusPending, workflow.EventApproveReturn, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := workflow.NextRequestStatus(tt.current, tt.event)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoanTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current string
		event   workflow.Event
		want    string
		wantErr bool
	}{
		{"request return", model.LoanStatusActive, workflow.EventRequestReturn, model.LoanStatusReturnRequested, false},
		{"force return from active", model.LoanStatusActive, workflow.EventApproveReturn, model.LoanStatusReturned, false},
		{"approve requested return", model.LoanStatusReturnRequested, workflow.EventApproveReturn, model.LoanStatusReturned, false},
		{"reject requested return", model.LoanStatusReturnRequested, workflow.EventRejectReturn, model.LoanStatusReturnRejected, false},
		{"withdraw return request", model.LoanStatusReturnRequested, workflow.EventCancelReturn, model.LoanStatusActive, false},
		{"retry after rejection", model.LoanStatusReturnRejected, workflow.EventRequestReturn, model.LoanStatusReturnRequested, false},
		{"force return after rejection", model.LoanStatusReturnRejected, workflow.EventApproveReturn, model.LoanStatusReturned, false},
		{"returned is terminal", model.LoanStatusReturned, workflow.EventRequestReturn, "", true},
		{"cannot reject active", model.LoanStatusActive, workflow.EventRejectReturn, "", true},
		{"cannot withdraw after rejection", model.LoanStatusReturnRejected, workflow.EventCancelReturn, "", true},
		{"request event on loan", model.LoanStatusActive, workflow.EventApprove, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := workflow.NextLoanStatus(tt.current, tt.event)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Every status constant must appear as a source state or be terminal on
// purpose; this guards against adding a status without declaring its moves.
func TestDeclaredStates(t *testing.T) {
	assert.ElementsMatch(t, []string{model.RequestStatusPending}, workflow.RequestStates())
	assert.ElementsMatch(t, []string{
		model.LoanStatusActive,
		model.LoanStatusReturnRequested,
		model.LoanStatusReturnRejected,
	}, workflow.LoanStates())
}
