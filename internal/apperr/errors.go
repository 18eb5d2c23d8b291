// Package apperr defines the error kinds surfaced by the menu service and
// how each kind maps to an HTTP status.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

// Kind markers. Errors are tagged with errors.Mark so that wrapping keeps the kind.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence error")
	ErrUpload      = errors.New("upload error")
)

// ProductNotFoundError reports a product reference that does not resolve.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

func ProductNotFound(id int64) error {
	return errors.Mark(&ProductNotFoundError{ProductID: id}, ErrNotFound)
}

func Validation(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

func NotFound(what string) error {
	return errors.Mark(errors.Newf("%s not found", what), ErrNotFound)
}

// Persistence wraps a store failure. Postgres foreign-key violations are
// reported as validation errors since they stem from a bad reference in the
// request.
func Persistence(err error, op string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return errors.Mark(errors.Wrapf(err, "%s: invalid reference", op), ErrValidation)
	}
	return errors.Mark(errors.Wrap(err, op), ErrPersistence)
}

func Upload(err error) error {
	return errors.Mark(errors.Wrap(err, "upload image"), ErrUpload)
}

func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsPersistence(err error) bool { return errors.Is(err, ErrPersistence) }
func IsUpload(err error) bool      { return errors.Is(err, ErrUpload) }

// AsProductNotFound extracts the unresolved product reference, if any.
func AsProductNotFound(err error) (*ProductNotFoundError, bool) {
	var pnf *ProductNotFoundError
	if errors.As(err, &pnf) {
		return pnf, true
	}
	return nil, false
}

// HTTPStatus maps an error kind to a response status. A missing product
// inside an order body is a bad request, not a missing resource.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		if _, ok := AsProductNotFound(err); ok {
			return http.StatusBadRequest
		}
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text returned to clients. Internal failures are not
// echoed back.
func PublicMessage(err error) string {
	switch {
	case IsValidation(err), IsNotFound(err):
		return err.Error()
	case IsUpload(err):
		return "Image upload failed"
	default:
		return "Internal server error"
	}
}
