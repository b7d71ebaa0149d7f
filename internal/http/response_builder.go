// Builder for HTMX responses: HX-Trigger headers, redirects, and the toast
// notifications drained from the session's flash queue.

package http

import (
	"encoding/json"
	"html/template"
	"net/http"

	"badyet/internal/notify"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerBudgetCreated adds the budget:created trigger.
func (b *HTMXResponseBuilder) TriggerBudgetCreated(id string) *HTMXResponseBuilder {
	return b.Trigger("budget:created", map[string]string{"id": id})
}

// TriggerBudgetDeleted adds the budget:deleted trigger.
func (b *HTMXResponseBuilder) TriggerBudgetDeleted(id string) *HTMXResponseBuilder {
	return b.Trigger("budget:deleted", map[string]string{"id": id})
}

// TriggerSessionChanged adds the session:changed trigger, prompting the
// account switcher and header to refresh.
func (b *HTMXResponseBuilder) TriggerSessionChanged() *HTMXResponseBuilder {
	return b.Trigger("session:changed", struct{}{})
}

// TriggerFormReset adds the form:reset trigger.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger("form:reset", struct{}{})
}

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

type toast struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
}

// Toasts drains the flash queue into the show-notification trigger so the
// client surfaces every pending notification on this response.
func (b *HTMXResponseBuilder) Toasts(flash *notify.Flash) *HTMXResponseBuilder {
	if flash == nil {
		return b
	}
	return b.ToastList(flash.Drain())
}

// ToastList attaches an already-drained set of notifications, for handlers
// that need to inspect the queue before choosing a status code.
func (b *HTMXResponseBuilder) ToastList(pending []notify.Notification) *HTMXResponseBuilder {
	if len(pending) == 0 {
		return b
	}

	toasts := make([]toast, 0, len(pending))
	for _, n := range pending {
		t := toast{Title: n.Title, Description: n.Description, Duration: 3000}
		if n.Kind == notify.KindFailure {
			t.Type = string(NotificationError)
			t.Duration = 5000
		} else {
			t.Type = string(NotificationSuccess)
		}
		toasts = append(toasts, t)
	}
	return b.Trigger("show-notification", toasts)
}

// Notification adds a single show-notification trigger without going
// through the flash queue.
func (b *HTMXResponseBuilder) Notification(notifType NotificationType, title, description string) *HTMXResponseBuilder {
	duration := 3000
	if notifType == NotificationError {
		duration = 5000
	}
	return b.Trigger("show-notification", []toast{{
		Type:        string(notifType),
		Title:       title,
		Description: description,
		Duration:    duration,
	}})
}

// Redirect sets the HX-Redirect header so the client navigates after the
// swap.
func (b *HTMXResponseBuilder) Redirect(url string) *HTMXResponseBuilder {
	b.headers["HX-Redirect"] = url
	return b
}

// Refresh asks the client to reload the current page.
func (b *HTMXResponseBuilder) Refresh() *HTMXResponseBuilder {
	b.headers["HX-Refresh"] = "true"
	return b
}

// Header adds a custom header to the response.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyString sets the response body as a string.
func (b *HTMXResponseBuilder) BodyString(content string) *HTMXResponseBuilder {
	b.body = []byte(content)
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a standard error response with HTML formatting.
// The message is HTML-escaped for safety.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	escapedMsg := template.HTMLEscapeString(message)
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error">` + escapedMsg + `</div>`)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}
