package main

import (
	"net/http"
	"testing"
	"time"

	appconfig "github.com/wolfman30/retell-calcom-bridge/internal/config"
)

func TestNewServerUsesPort(t *testing.T) {
	srv := newServer(&appconfig.Config{Port: "3000", CalRequestTimeout: 8 * time.Second}, http.NotFoundHandler())
	if srv.Addr != ":3000" {
		t.Fatalf("expected :3000, got %s", srv.Addr)
	}
	if srv.WriteTimeout != 15*time.Second {
		t.Fatalf("expected default write timeout, got %s", srv.WriteTimeout)
	}
}

func TestNewServerOutlastsCalendarTimeout(t *testing.T) {
	srv := newServer(&appconfig.Config{Port: "8080", CalRequestTimeout: 20 * time.Second}, http.NotFoundHandler())
	if srv.WriteTimeout != 25*time.Second {
		t.Fatalf("expected write timeout to exceed calendar timeout, got %s", srv.WriteTimeout)
	}
}
