package errors

import "fmt"

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

func IsValidationError(err error) (*ValidationError, bool) {
	if ve, ok := err.(*ValidationError); ok {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	if nf, ok := err.(*NotFoundError); ok {
		return nf, true
	}
	return nil, false
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	if ce, ok := err.(*ConflictError); ok {
		return ce, true
	}
	return nil, false
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func IsForbiddenError(err error) (*ForbiddenError, bool) {
	if fe, ok := err.(*ForbiddenError); ok {
		return fe, true
	}
	return nil, false
}

type DeadlockError struct {
	Message string
}

func (e *DeadlockError) Error() string {
	return e.Message
}

func NewDeadlockError(message string) *DeadlockError {
	return &DeadlockError{Message: message}
}

func IsDeadlockError(err error) (*DeadlockError, bool) {
	if de, ok := err.(*DeadlockError); ok {
		return de, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// InvalidStateTransitionError means the entity is not in a state that
// permits the requested transition. Current state values are carried so
// callers can surface both.
type InvalidStateTransitionError struct {
	Entity         string
	ID             uint
	Transition     string
	Status         string
	ApprovalStatus string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s #%d cannot be %s: status=%s, approvalStatus=%s",
		e.Entity, e.ID, e.Transition, e.Status, e.ApprovalStatus)
}

func NewInvalidStateTransitionError(entity string, id uint, transition, status, approvalStatus string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{
		Entity:         entity,
		ID:             id,
		Transition:     transition,
		Status:         status,
		ApprovalStatus: approvalStatus,
	}
}

func IsInvalidStateTransitionError(err error) (*InvalidStateTransitionError, bool) {
	if e, ok := err.(*InvalidStateTransitionError); ok {
		return e, true
	}
	return nil, false
}

// AlreadySubmittedError means a quote was submitted a second time while
// already awaiting EVM approval.
type AlreadySubmittedError struct {
	QuoteID uint
}

func (e *AlreadySubmittedError) Error() string {
	return fmt.Sprintf("quote #%d has already been submitted for EVM approval", e.QuoteID)
}

func NewAlreadySubmittedError(quoteID uint) *AlreadySubmittedError {
	return &AlreadySubmittedError{QuoteID: quoteID}
}

func IsAlreadySubmittedError(err error) (*AlreadySubmittedError, bool) {
	if e, ok := err.(*AlreadySubmittedError); ok {
		return e, true
	}
	return nil, false
}

// RoleNotPermittedError means the acting role cannot perform this
// transition on this entity.
type RoleNotPermittedError struct {
	Entity     string
	ID         uint
	Transition string
	Role       string
}

func (e *RoleNotPermittedError) Error() string {
	return fmt.Sprintf("role %s is not permitted to %s %s #%d", e.Role, e.Transition, e.Entity, e.ID)
}

func NewRoleNotPermittedError(entity string, id uint, transition, role string) *RoleNotPermittedError {
	return &RoleNotPermittedError{Entity: entity, ID: id, Transition: transition, Role: role}
}

func IsRoleNotPermittedError(err error) (*RoleNotPermittedError, bool) {
	if e, ok := err.(*RoleNotPermittedError); ok {
		return e, true
	}
	return nil, false
}

// InsufficientInventoryError gates an approval whose latest stock check
// came back short.
type InsufficientInventoryError struct {
	Entity   string
	ID       uint
	Location string
	Message  string
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("%s #%d cannot be approved: insufficient stock at %s location: %s",
		e.Entity, e.ID, e.Location, e.Message)
}

func NewInsufficientInventoryError(entity string, id uint, location, message string) *InsufficientInventoryError {
	return &InsufficientInventoryError{Entity: entity, ID: id, Location: location, Message: message}
}

func IsInsufficientInventoryError(err error) (*InsufficientInventoryError, bool) {
	if e, ok := err.(*InsufficientInventoryError); ok {
		return e, true
	}
	return nil, false
}

// InventoryNotCheckedError gates an approval attempted before any stock
// check was recorded for the entity.
type InventoryNotCheckedError struct {
	Entity string
	ID     uint
}

func (e *InventoryNotCheckedError) Error() string {
	return fmt.Sprintf("%s #%d cannot be approved: no inventory check has been recorded", e.Entity, e.ID)
}

func NewInventoryNotCheckedError(entity string, id uint) *InventoryNotCheckedError {
	return &InventoryNotCheckedError{Entity: entity, ID: id}
}

func IsInventoryNotCheckedError(err error) (*InventoryNotCheckedError, bool) {
	if e, ok := err.(*InventoryNotCheckedError); ok {
		return e, true
	}
	return nil, false
}

// CustomerRequiredError means a dealer-track order was created without a
// resolved customer.
type CustomerRequiredError struct {
	QuoteID uint
}

func (e *CustomerRequiredError) Error() string {
	return fmt.Sprintf("order from quote #%d requires a customer: dealer-track orders must name an end customer", e.QuoteID)
}

func NewCustomerRequiredError(quoteID uint) *CustomerRequiredError {
	return &CustomerRequiredError{QuoteID: quoteID}
}

func IsCustomerRequiredError(err error) (*CustomerRequiredError, bool) {
	if e, ok := err.(*CustomerRequiredError); ok {
		return e, true
	}
	return nil, false
}

// QuoteNotReadyError means order creation was attempted from a quote that
// is not approved and accepted.
type QuoteNotReadyError struct {
	QuoteID        uint
	Status         string
	ApprovalStatus string
}

func (e *QuoteNotReadyError) Error() string {
	return fmt.Sprintf("quote #%d is not ready for order creation: status=%s, approvalStatus=%s",
		e.QuoteID, e.Status, e.ApprovalStatus)
}

func NewQuoteNotReadyError(quoteID uint, status, approvalStatus string) *QuoteNotReadyError {
	return &QuoteNotReadyError{QuoteID: quoteID, Status: status, ApprovalStatus: approvalStatus}
}

func IsQuoteNotReadyError(err error) (*QuoteNotReadyError, bool) {
	if e, ok := err.(*QuoteNotReadyError); ok {
		return e, true
	}
	return nil, false
}

// ConcurrentModificationError means a guarded approval-status update lost
// a race: the row no longer held the expected state at commit time.
type ConcurrentModificationError struct {
	Entity   string
	ID       uint
	Expected string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s #%d was modified concurrently: approvalStatus no longer %s", e.Entity, e.ID, e.Expected)
}

func NewConcurrentModificationError(entity string, id uint, expected string) *ConcurrentModificationError {
	return &ConcurrentModificationError{Entity: entity, ID: id, Expected: expected}
}

func IsConcurrentModificationError(err error) (*ConcurrentModificationError, bool) {
	if e, ok := err.(*ConcurrentModificationError); ok {
		return e, true
	}
	return nil, false
}

// InvalidInstallmentInputError names the offending calculator input.
type InvalidInstallmentInputError struct {
	Field   string
	Message string
}

func (e *InvalidInstallmentInputError) Error() string {
	return fmt.Sprintf("invalid installment input %s: %s", e.Field, e.Message)
}

func NewInvalidInstallmentInputError(field, message string) *InvalidInstallmentInputError {
	return &InvalidInstallmentInputError{Field: field, Message: message}
}

func IsInvalidInstallmentInputError(err error) (*InvalidInstallmentInputError, bool) {
	if e, ok := err.(*InvalidInstallmentInputError); ok {
		return e, true
	}
	return nil, false
}

// InventoryCheckTimeoutError means the inventory collaborator did not
// answer inside the bounded wait.
type InventoryCheckTimeoutError struct {
	Entity   string
	ID       uint
	Location string
}

func (e *InventoryCheckTimeoutError) Error() string {
	return fmt.Sprintf("inventory check for %s #%d timed out at %s location", e.Entity, e.ID, e.Location)
}

func NewInventoryCheckTimeoutError(entity string, id uint, location string) *InventoryCheckTimeoutError {
	return &InventoryCheckTimeoutError{Entity: entity, ID: id, Location: location}
}

func IsInventoryCheckTimeoutError(err error) (*InventoryCheckTimeoutError, bool) {
	if e, ok := err.(*InventoryCheckTimeoutError); ok {
		return e, true
	}
	return nil, false
}
