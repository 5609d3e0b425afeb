package piko

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/argus-security/argus-core/internal/connector"
)

func cloudConfig() *connector.PikoConfig {
	return &connector.PikoConfig{
		Type:           connector.PikoConnectionCloud,
		Username:       "operator",
		Password:       "secret",
		SelectedSystem: "abc-123",
	}
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(cloudConfig(), 5*time.Second)
	client.http.SetBaseURL(srv.URL)

	return client
}

func TestNewClientModes(t *testing.T) {
	cloud := NewClient(cloudConfig(), time.Second)
	if cloud.IsLocal() {
		t.Error("cloud config should not be local")
	}
	if got := cloud.http.BaseURL; !strings.Contains(got, "abc-123."+CloudRelayDomain) {
		t.Errorf("cloud base URL = %q, want relay host for abc-123", got)
	}

	local := NewClient(&connector.PikoConfig{
		Type:     connector.PikoConnectionLocal,
		Username: "operator",
		Password: "secret",
		Host:     "10.0.0.5",
		Port:     7001,
	}, time.Second)
	if !local.IsLocal() {
		t.Error("local config should be local")
	}
	if got := local.http.BaseURL; got != "https://10.0.0.5:7001" {
		t.Errorf("local base URL = %q, want https://10.0.0.5:7001", got)
	}
}

func TestAuthenticate(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v2/login/sessions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var payload loginPayload
		json.NewDecoder(r.Body).Decode(&payload)
		if payload.Username != "operator" || payload.Password != "secret" {
			t.Errorf("unexpected credentials: %+v", payload)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": "sess-1"})
	})

	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
}

func TestAuthenticateRejected(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	if err := client.Authenticate(context.Background()); err == nil {
		t.Fatal("expected error for rejected credentials")
	}
}

func TestListServers(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v2/servers" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":         "srv-1",
				"name":       "Main VMS",
				"status":     "Online",
				"url":        "https://10.0.0.5:7001",
				"osInfo":     map[string]string{"platform": "linux_x64"},
				"parameters": map[string]string{"version": "5.1.0"},
			},
		})
	})

	servers, err := client.ListServers(context.Background())
	if err != nil {
		t.Fatalf("ListServers failed: %v", err)
	}
	if len(servers) != 1 {
		t.Fatalf("expected 1 server, got %d", len(servers))
	}
	if servers[0].OSInfo.Platform != "linux_x64" {
		t.Errorf("platform = %q, want linux_x64", servers[0].OSInfo.Platform)
	}
	if servers[0].Info.Version != "5.1.0" {
		t.Errorf("version = %q, want 5.1.0", servers[0].Info.Version)
	}
}

func TestListDevices(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v2/devices" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":       "cam-1",
				"name":     "Lobby",
				"status":   "Online",
				"model":    "AXIS P3265",
				"vendor":   "Axis",
				"serverId": "srv-1",
			},
		})
	})

	devices, err := client.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices failed: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(devices))
	}
	if devices[0].ServerID != "srv-1" {
		t.Errorf("serverId = %q, want srv-1", devices[0].ServerID)
	}
}
