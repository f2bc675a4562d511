// Package http provides the web server and handler implementations.
//
// This file implements a fluent builder for htmx responses: HX-Trigger
// headers carry the modal-close, partial-refresh, and notification events
// the front end listens for.
package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
)

// HTMXResponseBuilder builds an htmx response with triggers and body.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
	headers    map[string]string
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerModalClose tells the front end to close the active modal.
func (b *HTMXResponseBuilder) TriggerModalClose() *HTMXResponseBuilder {
	return b.Trigger("modal:close", struct{}{})
}

// TriggerClientsRefresh refreshes the clients partial.
func (b *HTMXResponseBuilder) TriggerClientsRefresh() *HTMXResponseBuilder {
	return b.Trigger("clients:refresh", struct{}{})
}

// TriggerServicesRefresh refreshes the history partial for a month.
func (b *HTMXResponseBuilder) TriggerServicesRefresh(year, month int) *HTMXResponseBuilder {
	return b.Trigger("services:refresh", map[string]int{"year": year, "month": month})
}

// TriggerDashboardRefresh refreshes the dashboard partial for a month.
func (b *HTMXResponseBuilder) TriggerDashboardRefresh(year, month int) *HTMXResponseBuilder {
	return b.Trigger("dashboard:refresh", map[string]int{"year": year, "month": month})
}

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]interface{}{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
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
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
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

// ValidationErrorResponse renders collected validation messages as a 422
// that swaps only the form's error area, leaving entered values intact.
func ValidationErrorResponse(messages []string) *HTMXResponseBuilder {
	var sb strings.Builder
	sb.WriteString(`<ul class="error-list">`)
	for _, m := range messages {
		sb.WriteString("<li>")
		sb.WriteString(template.HTMLEscapeString(m))
		sb.WriteString("</li>")
	}
	sb.WriteString("</ul>")
	return NewHTMXResponse().
		Status(http.StatusUnprocessableEntity).
		Header("HX-Reswap", "innerHTML").
		Header("HX-Retarget", "find .form-errors").
		BodyHTML(sb.String())
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}
