package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/wolfman30/retell-calcom-bridge/internal/api/router"
)

type captured struct {
	host   string
	header http.Header
	body   string
}

func newTestHandler(t *testing.T, seen *captured) http.Handler {
	t.Helper()
	return router.New(&router.Config{
		WebhookPath: "/retell",
		WebhookHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			seen.host = r.Host
			seen.header = r.Header.Clone()
			seen.body = string(body)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
		}),
		Now: func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) },
	})
}

func TestHandleForwardsWebhook(t *testing.T) {
	var seen captured
	handler := newTestHandler(t, &seen)

	evt := events.APIGatewayV2HTTPRequest{
		RawPath:         "/retell",
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"event":"call_ended"}`)),
		IsBase64Encoded: true,
		Headers:         map[string]string{"Content-Type": "application/json", "X-Request-ID": "req-1"},
	}
	evt.RequestContext.HTTP.Method = "post"
	evt.RequestContext.HTTP.SourceIP = "203.0.113.7"
	evt.RequestContext.DomainName = "hooks.example.com"

	resp, err := handle(context.Background(), handler, evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Body != "{\"success\":true}\n" {
		t.Fatalf("unexpected body %q", resp.Body)
	}
	if resp.Headers["content-type"] != "application/json" {
		t.Fatalf("expected content-type header, got %v", resp.Headers)
	}
	if seen.body != `{"event":"call_ended"}` {
		t.Fatalf("expected decoded body, got %q", seen.body)
	}
	if seen.host != "hooks.example.com" {
		t.Fatalf("expected host from request context, got %q", seen.host)
	}
	if seen.header.Get("X-Request-ID") != "req-1" {
		t.Fatalf("expected headers to be copied")
	}
}

func TestHandleHealthAndBanner(t *testing.T) {
	var seen captured
	handler := newTestHandler(t, &seen)

	evt := events.APIGatewayV2HTTPRequest{RawPath: "/health"}
	evt.RequestContext.HTTP.Method = http.MethodGet
	resp, _ := handle(context.Background(), handler, evt)
	if resp.StatusCode != http.StatusOK || resp.Body != "{\"status\":\"ok\",\"time\":\"2025-03-10T12:00:00Z\"}\n" {
		t.Fatalf("unexpected health response %d %q", resp.StatusCode, resp.Body)
	}

	evt = events.APIGatewayV2HTTPRequest{}
	evt.RequestContext.HTTP.Path = ""
	resp, _ = handle(context.Background(), handler, evt)
	if resp.Body != "Retell Cal.com webhook is running!" {
		t.Fatalf("expected banner for empty path, got %q", resp.Body)
	}
}

func TestHandleInvalidBase64(t *testing.T) {
	evt := events.APIGatewayV2HTTPRequest{RawPath: "/retell", Body: "%%%", IsBase64Encoded: true}
	evt.RequestContext.HTTP.Method = http.MethodPost
	resp, _ := handle(context.Background(), http.NotFoundHandler(), evt)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleUnknownRoute(t *testing.T) {
	var seen captured
	handler := newTestHandler(t, &seen)

	evt := events.APIGatewayV2HTTPRequest{RawPath: "/webhooks/other"}
	evt.RequestContext.HTTP.Method = http.MethodPost
	resp, _ := handle(context.Background(), handler, evt)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHeaderValueCaseInsensitive(t *testing.T) {
	if got := headerValue(map[string]string{"Host": "a.example"}, "host"); got != "a.example" {
		t.Fatalf("expected case-insensitive lookup, got %q", got)
	}
}
