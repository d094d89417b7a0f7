// Package handlers exposes the billing services over HTTP. Every handler
// answers JSON by default and HTML fragments or toasts to HTMX requests.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"github.com/th3mailmann/bildpro/services"
)

// errBadBody marks request bodies that could not be decoded.
var errBadBody = errors.New("malformed request body")

func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}

// SetToast sets the HX-Trigger response header to show a toast notification
// on the client via HTMX. An existing HX-Trigger JSON object is merged
// rather than replaced. A short-lived flash cookie carries the same toast
// across non-HTMX redirects.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	payload := map[string]string{"message": message, "type": toastType}

	trigger := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &trigger); err != nil {
			slog.Warn("toast: existing HX-Trigger is not valid JSON, overwriting", "error", err)
			trigger = map[string]any{}
		}
	}
	trigger["showToast"] = payload

	data, err := json.Marshal(trigger)
	if err != nil {
		slog.Error("toast: failed to marshal HX-Trigger JSON", "error", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))

	cookieVal, err := json.Marshal(payload)
	if err == nil {
		http.SetCookie(e.Response, &http.Cookie{
			Name:     "flash_toast",
			Value:    url.QueryEscape(string(cookieVal)),
			Path:     "/",
			MaxAge:   10,
			HttpOnly: false, // read by the toast script
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ErrorToast sets an error toast and stops HTMX from swapping the error
// text into the page.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string            `json:"error"`
	Fields validation.Errors `json:"fields,omitempty"`
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	var fieldErrs validation.Errors
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDraftPending),
		errors.Is(err, services.ErrNotDraft),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrChangeOrderDecided),
		errors.Is(err, services.ErrNothingToBill),
		errors.Is(err, services.ErrScheduleLocked):
		return http.StatusConflict
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrEmptySchedule):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadBody),
		errors.Is(err, services.ErrUnknownField),
		errors.Is(err, services.ErrUnknownLineItem),
		errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err with the status errorStatus picks. Unexpected
// errors are logged and hidden from the client.
func respondError(e *core.RequestEvent, err error) error {
	status := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", e.Request.Method, "path", e.Request.URL.Path, "error", err)
		message = "Something went wrong. Please try again."
	}

	if isHTMX(e) {
		return ErrorToast(e, status, message)
	}

	body := errorBody{Error: message}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		body.Fields = fieldErrs
	}
	return e.JSON(status, body)
}
