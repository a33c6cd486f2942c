package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"commerce/internal/order"
	"commerce/internal/status"
	"commerce/internal/validator"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 注文側のエラーをHTTPのステータスに寄せる
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	var fe *validator.FieldError
	switch {
	case errors.As(err, &fe):
		return NewHTTPError(http.StatusBadRequest, fe.Message)
	case errors.Is(err, status.ErrUnknownStatus):
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	case errors.Is(err, order.ErrValidation):
		return NewHTTPError(http.StatusBadRequest, "invalid input")
	case errors.Is(err, order.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	return NewHTTPError(http.StatusInternalServerError, "db error")
}
