// Package apierror define la taxonomía de errores del dominio y el envelope
// JSON que reciben los clientes. Todos los errores 4xx/5xx pasan por acá para
// no filtrar detalles internos (stack traces, errores de DB, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// Kind clasifica un error de dominio.
type Kind int

const (
	KindInternal      Kind = iota // fallo de store/transporte
	KindNotFound                  // entidad referenciada inexistente
	KindValidation                // input requerido ausente o malformado
	KindConflict                  // sesión ya abierta, stock insuficiente, re-cancelación
	KindNotAuthorized             // rol u ownership insuficiente
)

// Error es un error de dominio etiquetado. Los servicios lo devuelven y los
// handlers lo mapean a HTTP vía Status.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NotFound(msg string) *Error      { return &Error{Kind: KindNotFound, Message: msg} }
func Validation(msg string) *Error    { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) *Error      { return &Error{Kind: KindConflict, Message: msg} }
func NotAuthorized(msg string) *Error { return &Error{Kind: KindNotAuthorized, Message: msg} }
func Internal(msg string) *Error      { return &Error{Kind: KindInternal, Message: msg} }

// Status devuelve el código HTTP para err. Errores no etiquetados son 500.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotAuthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reporta si err es un *Error del kind dado.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// APIError es el envelope canónico de toda respuesta de error.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError agrupa errores por campo.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validación", Fields: fields}
}
