package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ospf6d.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTemp(t, `
router_id: "1.1.1.1"
areas:
  - area_id: "0.0.0.0"
    interfaces:
      - name: eth0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	iface := cfg.Areas[0].Interfaces[0]
	if iface.HelloInterval != defaultHelloInterval {
		t.Errorf("HelloInterval = %d, want %d", iface.HelloInterval, defaultHelloInterval)
	}
	if iface.MDR.MDRConstraint != defaultMDRConstraint {
		t.Errorf("MDRConstraint = %d, want %d", iface.MDR.MDRConstraint, defaultMDRConstraint)
	}
	if cfg.Zebra.SocketPath != defaultZebraSocketPath {
		t.Errorf("SocketPath = %q, want %q", cfg.Zebra.SocketPath, defaultZebraSocketPath)
	}
	if iface.MDRTLVInterop != "rfc" {
		t.Errorf("MDRTLVInterop = %q, want rfc", iface.MDRTLVInterop)
	}
}

func TestLoadRejectsNoAreas(t *testing.T) {
	path := writeTemp(t, `router_id: "1.1.1.1"`)
	if _, err := Load(path); err != ErrNoAreas {
		t.Fatalf("expected ErrNoAreas, got %v", err)
	}
}

func TestLoadRejectsBadWeight(t *testing.T) {
	path := writeTemp(t, `
router_id: "1.1.1.1"
areas:
  - area_id: "0.0.0.0"
    interfaces:
      - name: eth0
        linkmetric_weight_latency: 150
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for out-of-range weight")
	}
}

func TestLoadRejectsFutureVersion(t *testing.T) {
	path := writeTemp(t, `
version: 99
router_id: "1.1.1.1"
areas:
  - area_id: "0.0.0.0"
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected version error")
	}
}

func TestLoadRejectsBadMDRConstraint(t *testing.T) {
	path := writeTemp(t, `
router_id: "1.1.1.1"
areas:
  - area_id: "0.0.0.0"
    interfaces:
      - name: eth0
        mdr:
          mdr_constraint: 5
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected ErrInvalidMDRConstraint")
	}
}
