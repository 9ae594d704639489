package respond

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	serviceerrors "foodgram/internal/service"
	"foodgram/pkg/lib/logger/sl"
	"foodgram/pkg/lib/urlparser"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const StatusClientClosedRequest = 499

// maxBodyBytes leaves room for base64 images.
const maxBodyBytes = 10 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error("Failed to encode response", sl.Err(err))
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error("Failed to respond", sl.Err(err))
	}
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Status maps a service error to its HTTP status and client-facing message.
func Status(err error) (int, string) {
	var verr *serviceerrors.ValidationError
	switch {
	case errors.Is(err, serviceerrors.ErrContextCanceled):
		return StatusClientClosedRequest, "Context canceled"
	case errors.Is(err, serviceerrors.ErrDeadlineExceeded):
		return http.StatusGatewayTimeout, "Deadline exceeded"
	case errors.Is(err, serviceerrors.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, urlparser.ErrInvalidParam):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), urlparser.ErrInvalidParam.Error()+": ")
	case errors.Is(err, serviceerrors.ErrAlreadyExists),
		errors.Is(err, serviceerrors.ErrSelfSubscription),
		errors.Is(err, serviceerrors.ErrEmptyCart),
		errors.Is(err, serviceerrors.ErrInvalidInput):
		return http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, serviceerrors.ErrUnauthorized),
		errors.Is(err, serviceerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, rootMessage(err)
	case errors.Is(err, serviceerrors.ErrForbidden):
		return http.StatusForbidden, rootMessage(err)
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// Error writes {"error": ...} for err. Server faults are logged as errors,
// client faults at warn.
func Error(w http.ResponseWriter, log *slog.Logger, err error) {
	status, msg := Status(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", sl.Err(err))
	} else {
		log.Warn("Request rejected", slog.Int("status", status), sl.Err(err))
	}
	JSON(w, log, status, errorBody{Error: msg})
}

// Decode reads a JSON body into dst and validates it.
func Decode(r *http.Request, dst any) error {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return serviceerrors.NewValidationError("", "cannot read request body")
	}
	if len(body) == 0 {
		return serviceerrors.NewValidationError("", "request body is empty")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return serviceerrors.NewValidationError("", "malformed JSON")
	}

	return Validate(dst)
}

// Validate runs struct tags and reports the first failing field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return serviceerrors.NewValidationError(fieldPath(fe), describe(fe))
	}
	return serviceerrors.NewValidationError("", err.Error())
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
