package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

var (
	errInvalidJSON = model.NewDomainError(model.ErrCodeInvalidJSON, "Request body is not valid JSON")
	errInvalidID   = model.ErrValidationFailed.WithMessage("Invalid id")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// statusFor maps a domain error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case model.ErrCodeNotFound, model.ErrCodeOrderNotFound, model.ErrCodeItemNotFound,
		model.ErrCodeWholesaleNotFound, model.ErrCodeCategoryNotFound:
		return http.StatusNotFound
	case model.ErrCodeForbidden, model.ErrCodeNotApproved:
		return http.StatusForbidden
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidJSON, model.ErrCodePriceMismatch,
		model.ErrCodeProductNotFound, model.ErrCodeVariantNotFound,
		model.ErrCodeInvalidStatusTransition, model.ErrCodeOutOfStock:
		return http.StatusBadRequest
	case model.ErrCodeAlreadyExists, model.ErrCodeAlreadyReviewed, model.ErrCodeAlreadyRegistered:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError maps err to its HTTP status and writes the error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if errors.As(err, &de) {
		writeDomainError(w, r, statusFor(de.Code), de, logger)
		return
	}
	writeDomainError(w, r, http.StatusInternalServerError, nil, logger.With().Err(err).Logger())
}

// writeDomainError writes de with an explicit status. A nil de, or any 5xx,
// is reported as an internal error without leaking its message.
func writeDomainError(w http.ResponseWriter, r *http.Request, status int, de *model.DomainError, logger zerolog.Logger) {
	resp := model.ErrorResponse{
		Status:    "error",
		RequestID: chimw.GetReqID(r.Context()),
	}

	if de == nil || status >= http.StatusInternalServerError {
		status = http.StatusInternalServerError
		resp.Code = model.ErrCodeInternalError
		resp.Message = "internal server error"
		evt := logger.Error().Str("method", r.Method).Str("path", r.URL.Path).Str("request_id", resp.RequestID)
		if de != nil {
			evt = evt.Str("code", de.Code).Str("detail", de.Message)
		}
		evt.Msg("request failed")
	} else {
		resp.Code = de.Code
		resp.Message = de.Message
		resp.Errors = de.Details
		logger.Debug().Str("code", de.Code).Int("status", status).Str("path", r.URL.Path).Msg("request rejected")
	}

	writeJSON(w, status, resp)
}

// decodeJSON reads the request body into dst and validates it. Failures are
// returned as domain errors ready for writeError.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidJSON
	}

	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fieldMessage(fe))
	}
	return model.ErrValidationFailed.WithDetails(details...)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// pathUUID parses the named chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.ErrValidationFailed.WithDetails(fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, model.ErrValidationFailed.WithDetails(fmt.Sprintf("%s must be true or false", name))
	}
	return &v, nil
}

// pageParams reads page and limit; the service applies defaults and caps.
func pageParams(r *http.Request) (page, limit int, err error) {
	if page, err = queryInt(r, "page", 0); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(r, "limit", 0); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// principal returns the authenticated caller. Routes using it are mounted
// behind middleware.Authenticate.
func principal(r *http.Request) (model.Principal, error) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return model.Principal{}, model.ErrUnauthenticated
	}
	return p, nil
}
