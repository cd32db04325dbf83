package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind classifies an Error so handlers can map it to a status code
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindPrecondition:
		return "precondition_failed"
	default:
		return "internal"
	}
}

// Error is the error type returned by every service operation
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two service errors by code, so wrapped sentinels compare equal
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrInvalidCredentials = newError(KindUnauthenticated, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrForbidden          = newError(KindForbidden, "FORBIDDEN", "You do not have permission to perform this action")

	ErrUserNotFound          = newError(KindNotFound, "USER_NOT_FOUND", "User not found")
	ErrOrderNotFound         = newError(KindNotFound, "ORDER_NOT_FOUND", "Order not found")
	ErrResponseNotFound      = newError(KindNotFound, "RESPONSE_NOT_FOUND", "Order response not found")
	ErrMessageNotFound       = newError(KindNotFound, "MESSAGE_NOT_FOUND", "Message not found")
	ErrCategoryNotFound      = newError(KindNotFound, "CATEGORY_NOT_FOUND", "Category not found")
	ErrArchivedOrderNotFound = newError(KindNotFound, "ARCHIVED_ORDER_NOT_FOUND", "Archived order not found")

	ErrUserExists         = newError(KindPrecondition, "USER_EXISTS", "Username or email already in use")
	ErrOrderNotOpen       = newError(KindPrecondition, "ORDER_NOT_OPEN", "Order is not open")
	ErrOrderNotCompleted  = newError(KindPrecondition, "ORDER_NOT_COMPLETED", "Only completed orders can be archived")
	ErrAlreadyArchived    = newError(KindPrecondition, "ORDER_ALREADY_ARCHIVED", "Order has already been archived")
	ErrInvalidTransition  = newError(KindPrecondition, "INVALID_TRANSITION", "Order status transition is not allowed")
	ErrFreelancerRequired = newError(KindPrecondition, "FREELANCER_REQUIRED", "Status requires an assigned freelancer")
	ErrDuplicateResponse  = newError(KindPrecondition, "DUPLICATE_RESPONSE", "You have already responded to this order")
	ErrResponseNotPending = newError(KindPrecondition, "RESPONSE_NOT_PENDING", "Order response is no longer pending")
	ErrInvalidReceiver    = newError(KindPrecondition, "INVALID_RECEIVER", "Receiver is not a party of this order")
	ErrCategoryInUse      = newError(KindPrecondition, "CATEGORY_IN_USE", "Category has subcategories or orders")
	ErrInvalidParent      = newError(KindPrecondition, "INVALID_PARENT", "Parent category is invalid")
	ErrInvalidCategory    = newError(KindPrecondition, "INVALID_CATEGORY", "Category does not exist")
	ErrInvalidFreelancer  = newError(KindPrecondition, "INVALID_FREELANCER", "Freelancer does not exist")
	ErrInvalidRole        = newError(KindPrecondition, "INVALID_ROLE", "Invalid role")
	ErrNothingToUpdate    = newError(KindPrecondition, "NOTHING_TO_UPDATE", "No fields to update")
	ErrInternal           = newError(KindInternal, "INTERNAL_ERROR", "Internal server error")
)

// Invalid builds a precondition error for a request that failed validation
func Invalid(message string) *Error {
	return newError(KindPrecondition, "VALIDATION_ERROR", message)
}

// storeError wraps an unexpected database error, translating the gorm
// sentinels that carry a meaning of their own
func storeError(op string, err error, notFound *Error) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &Error{Kind: KindPrecondition, Code: "REFERENCE_VIOLATION", Message: "Referenced record does not exist or is still in use", Err: err}
	}
	return &Error{Kind: KindInternal, Code: ErrInternal.Code, Message: op, Err: err}
}

// KindOf returns the kind of err, KindInternal for errors of any other type
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}
