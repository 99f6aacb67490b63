package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewRegistersBuildInfo(t *testing.T) {
	m := New("test-version", "go1.23")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "ospf6d_info") {
		t.Fatalf("expected ospf6d_info metric in output, got: %s", body)
	}
	if !strings.Contains(body, `version="test-version"`) {
		t.Fatalf("expected version label, got: %s", body)
	}
}

func TestIndependentRegistries(t *testing.T) {
	m1 := New("v1", "go1.23")
	m2 := New("v2", "go1.23")

	m1.MDRRunsTotal.WithLabelValues("eth0").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m2.Handler().ServeHTTP(rec, req)

	if strings.Contains(rec.Body.String(), "ospf6d_mdr_engine_runs_total") {
		t.Fatalf("m2's registry should not see m1's counter increments")
	}
}
