package contract

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

const (
	defaultBaseURL        = "http://localhost:8080"
	defaultRequestTimeout = 5 * time.Second
)

type liveClient struct {
	baseURL string
	client  *http.Client
}

func newLiveClient(t *testing.T) *liveClient {
	t.Helper()
	baseURL := os.Getenv("PLANTMON_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := &http.Client{
		Timeout:   defaultRequestTimeout,
		Transport: &http.Transport{DisableKeepAlives: true},
	}

	if !isReachable(client, baseURL+"/") {
		t.Skipf("plant monitor not reachable at %s (set PLANTMON_BASE_URL to run)", baseURL)
	}

	return &liveClient{
		baseURL: baseURL,
		client:  client,
	}
}

func isReachable(client *http.Client, url string) bool {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 500
}

func (c *liveClient) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp := c.getResponse(t, path)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	_ = resp.Body.Close()
	return resp, body
}

func (c *liveClient) getResponse(t *testing.T, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeJSONMap(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode json: %v\nbody=%s", err, string(body))
	}
	return payload
}

func requireBool(t *testing.T, value any, field string) bool {
	t.Helper()
	b, ok := value.(bool)
	if !ok {
		t.Fatalf("expected %s to be bool, got %T", field, value)
	}
	return b
}

func requireNumber(t *testing.T, value any, field string) float64 {
	t.Helper()
	num, ok := value.(float64)
	if !ok {
		t.Fatalf("expected %s to be number, got %T", field, value)
	}
	return num
}

func assertTelemetryPayload(t *testing.T, payload map[string]any) {
	t.Helper()
	plant := requireBool(t, payload["plant_detected"], "plant_detected")
	requireBool(t, payload["fruit_detected"], "fruit_detected")
	health := requireNumber(t, payload["health_ratio"], "health_ratio")
	green := requireNumber(t, payload["green_area"], "green_area")
	yellow := requireNumber(t, payload["yellow_area"], "yellow_area")
	fps := requireNumber(t, payload["fps"], "fps")

	if health < 0 || health > 100 {
		t.Fatalf("health_ratio %v outside [0,100]", health)
	}
	if green < 0 || yellow < 0 || fps < 0 {
		t.Fatalf("negative telemetry: green=%v yellow=%v fps=%v", green, yellow, fps)
	}
	if plant != (green > 0) {
		t.Fatalf("plant_detected=%v but green_area=%v", plant, green)
	}
	if green+yellow == 0 && health != 0 {
		t.Fatalf("health_ratio=%v with no plant area", health)
	}
	if len(payload) != 6 {
		t.Fatalf("telemetry has %d fields, want 6: %v", len(payload), payload)
	}
}
