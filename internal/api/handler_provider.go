package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/fastprodman/artmarket/internal/apperr"
	"github.com/fastprodman/artmarket/internal/infra/metrics"
	"github.com/go-playground/validator/v10"
)

const maxJSONBody = 1 << 20

// statusClientClosedRequest is reported when the caller went away mid-request.
const statusClientClosedRequest = 499

// HandlerProvider wires the services to HTTP handlers.
type HandlerProvider struct {
	accounts AccountService
	wallet   WalletService
	catalog  CatalogService
	uploads  UploadService
	ping     PingFunc
	metrics  *metrics.Metrics
	validate *validator.Validate
}

// Deps groups everything the router needs.
type Deps struct {
	Accounts AccountService
	Wallet   WalletService
	Catalog  CatalogService
	Uploads  UploadService
	Ping     PingFunc
	Metrics  *metrics.Metrics
}

func NewHandler(d Deps) *HandlerProvider {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return &HandlerProvider{
		accounts: d.Accounts,
		wallet:   d.Wallet,
		catalog:  d.Catalog,
		uploads:  d.Uploads,
		ping:     d.Ping,
		metrics:  d.Metrics,
		validate: v,
	}
}

// --- Helpers ---

type errorResponse struct {
	Error string      `json:"error"`
	Kind  apperr.Kind `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		// headers are already out; nothing left but to log
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeError maps err to a status by kind. Internal details never reach the
// client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorStatus(w, r, statusFor(err), err)
}

func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	kind := apperr.KindOf(err)
	msg := err.Error()

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "kind", kind, "error", err)

		msg = http.StatusText(status)
		if kind == apperr.KindStoreUnavailable {
			msg = "store temporarily unavailable, retry"
		}
	}

	if apperr.Retryable(err) {
		w.Header().Set("Retry-After", "1")
	}

	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput, apperr.KindInvalidAmount,
		apperr.KindItemUnavailable, apperr.KindInsufficientFunds:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	case apperr.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case apperr.KindCanceled:
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a single JSON object into dst and validates it. Failures
// come back as apperr.ErrInvalidInput.
func (h *HandlerProvider) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", apperr.ErrInvalidInput)
		}

		return fmt.Errorf("%w: invalid JSON: %v", apperr.ErrInvalidInput, err)
	}

	err = h.validate.Struct(dst)
	if err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrInvalidInput, describeValidation(err))
	}

	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s is too long", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
