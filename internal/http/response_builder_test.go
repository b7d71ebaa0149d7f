package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"badyet/internal/notify"
)

func TestBuilderWritesTriggersAndBody(t *testing.T) {
	rec := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerBudgetCreated("b7").
		TriggerFormReset().
		BodyHTML("<p>done</p>").
		Write(rec)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}

	var triggers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("invalid HX-Trigger: %v", err)
	}
	if _, ok := triggers["budget:created"]; !ok {
		t.Error("missing budget:created trigger")
	}
	if _, ok := triggers["form:reset"]; !ok {
		t.Error("missing form:reset trigger")
	}
	if rec.Body.String() != "<p>done</p>" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestBuilderOmitsTriggerHeaderWhenEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().Write(rec)

	if rec.Header().Get("HX-Trigger") != "" {
		t.Errorf("HX-Trigger = %q, want empty", rec.Header().Get("HX-Trigger"))
	}
}

func TestToastsDrainFlashQueue(t *testing.T) {
	flash := notify.NewFlash(16)
	flash.Notify(context.Background(), notify.Success("Login Successful", "Welcome back, Demo!"))
	flash.Notify(context.Background(), notify.Failure("Login Failed", "Invalid email or password. Please try again."))

	rec := httptest.NewRecorder()
	NewHTMXResponse().Toasts(flash).Write(rec)

	var triggers map[string][]toast
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("invalid HX-Trigger: %v", err)
	}
	toasts := triggers["show-notification"]
	if len(toasts) != 2 {
		t.Fatalf("got %d toasts, want 2", len(toasts))
	}
	if toasts[0].Type != "success" || toasts[0].Duration != 3000 {
		t.Errorf("first toast = %+v, want success/3000ms", toasts[0])
	}
	if toasts[1].Type != "error" || toasts[1].Duration != 5000 {
		t.Errorf("second toast = %+v, want error/5000ms", toasts[1])
	}

	if flash.Len() != 0 {
		t.Errorf("flash queue length = %d, want drained", flash.Len())
	}
}

func TestToastsWithEmptyQueueAddsNothing(t *testing.T) {
	flash := notify.NewFlash(16)
	rec := httptest.NewRecorder()
	NewHTMXResponse().Toasts(flash).Write(rec)

	if rec.Header().Get("HX-Trigger") != "" {
		t.Error("empty queue must not produce a trigger header")
	}
}

func TestRedirectAndRefreshHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().Redirect("/signin").Write(rec)
	if got := rec.Header().Get("HX-Redirect"); got != "/signin" {
		t.Errorf("HX-Redirect = %q, want /signin", got)
	}

	rec = httptest.NewRecorder()
	NewHTMXResponse().Refresh().Write(rec)
	if got := rec.Header().Get("HX-Refresh"); got != "true" {
		t.Errorf("HX-Refresh = %q, want true", got)
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequestError(`<script>alert("x")</script>`).Write(rec)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("error message must be HTML-escaped")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("body = %q, want the escaped message", body)
	}
}

func TestMethodNotAllowedCarriesAllowHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowedError("GET, POST").Write(rec)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if got := rec.Header().Get("Allow"); got != "GET, POST" {
		t.Errorf("Allow = %q, want GET, POST", got)
	}
}
