package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	err := NewNotFoundError("quote not found")

	assert.NotNil(t, err)
	assert.Equal(t, "quote not found", err.Message)
	assert.Equal(t, "quote not found", err.Error())
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestValidationError_Creation(t *testing.T) {
	details := []ValidationDetail{
		{Field: "reason", Message: "reason is required"},
		{Field: "months", Message: "months must be one of 3, 6, 9, 12"},
	}

	err := NewValidationError("validation failed", details...)

	assert.Equal(t, "validation failed", err.Error())
	assert.Len(t, err.Details, 2)
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := NewInternalError("saving quote", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "saving quote")
	assert.Contains(t, err.Error(), "bad connection")
}

func TestInvalidStateTransitionError_MessageNamesBothStates(t *testing.T) {
	err := NewInvalidStateTransitionError("quote", 42, "submitted", "ACCEPTED", "APPROVED")

	assert.Contains(t, err.Error(), "quote #42")
	assert.Contains(t, err.Error(), "status=ACCEPTED")
	assert.Contains(t, err.Error(), "approvalStatus=APPROVED")

	got, ok := IsInvalidStateTransitionError(err)
	assert.True(t, ok)
	assert.Equal(t, uint(42), got.ID)
}

func TestAlreadySubmittedError(t *testing.T) {
	err := NewAlreadySubmittedError(7)

	assert.Contains(t, err.Error(), "quote #7")

	_, ok := IsAlreadySubmittedError(err)
	assert.True(t, ok)

	_, ok = IsAlreadySubmittedError(errors.New("other"))
	assert.False(t, ok)
}

func TestRoleNotPermittedError(t *testing.T) {
	err := NewRoleNotPermittedError("order", 9, "create", "EVM_MANAGER")

	assert.Contains(t, err.Error(), "EVM_MANAGER")
	assert.Contains(t, err.Error(), "order #9")

	_, ok := IsRoleNotPermittedError(err)
	assert.True(t, ok)
}

func TestInsufficientInventoryError_MessageNamesLocation(t *testing.T) {
	err := NewInsufficientInventoryError("quote", 42, "DEALER", "vehicle 3: need 5, have 2")

	assert.Contains(t, err.Error(), "quote #42")
	assert.Contains(t, err.Error(), "DEALER")
	assert.Contains(t, err.Error(), "vehicle 3")

	_, ok := IsInsufficientInventoryError(err)
	assert.True(t, ok)
}

func TestInventoryNotCheckedError(t *testing.T) {
	err := NewInventoryNotCheckedError("quote", 11)

	assert.Contains(t, err.Error(), "no inventory check")

	_, ok := IsInventoryNotCheckedError(err)
	assert.True(t, ok)
}

func TestCustomerRequiredError(t *testing.T) {
	err := NewCustomerRequiredError(5)

	assert.Contains(t, err.Error(), "quote #5")

	_, ok := IsCustomerRequiredError(err)
	assert.True(t, ok)
}

func TestQuoteNotReadyError(t *testing.T) {
	err := NewQuoteNotReadyError(5, "DRAFT", "PENDING_EVM_APPROVAL")

	assert.Contains(t, err.Error(), "status=DRAFT")
	assert.Contains(t, err.Error(), "approvalStatus=PENDING_EVM_APPROVAL")

	_, ok := IsQuoteNotReadyError(err)
	assert.True(t, ok)
}

func TestConcurrentModificationError(t *testing.T) {
	err := NewConcurrentModificationError("quote", 3, "PENDING_EVM_APPROVAL")

	assert.Contains(t, err.Error(), "quote #3")
	assert.Contains(t, err.Error(), "PENDING_EVM_APPROVAL")

	_, ok := IsConcurrentModificationError(err)
	assert.True(t, ok)
}

func TestInvalidInstallmentInputError(t *testing.T) {
	err := NewInvalidInstallmentInputError("principal", "must be greater than zero")

	assert.Contains(t, err.Error(), "principal")

	got, ok := IsInvalidInstallmentInputError(err)
	assert.True(t, ok)
	assert.Equal(t, "principal", got.Field)
}

func TestInventoryCheckTimeoutError(t *testing.T) {
	err := NewInventoryCheckTimeoutError("quote", 8, "FACTORY")

	assert.Contains(t, err.Error(), "timed out")
	assert.Contains(t, err.Error(), "FACTORY")

	_, ok := IsInventoryCheckTimeoutError(err)
	assert.True(t, ok)
}
