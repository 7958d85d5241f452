package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const validYAML = `
monitor:
  gpus:
    - RTX 5090
    - RTX 5080
  check_interval: 30s
email:
  username: monitor@example.com
  password: secret
  recipient: ops@example.com
`

func TestLoadValidFile(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Monitor.CheckInterval != 30*time.Second {
		t.Fatalf("check_interval = %s, want 30s", cfg.Monitor.CheckInterval)
	}
	if len(cfg.Monitor.GPUs) != 2 || cfg.Monitor.GPUs[0] != "RTX 5090" {
		t.Fatalf("unexpected gpus: %v", cfg.Monitor.GPUs)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Monitor.MaxFailures != 3 {
		t.Fatalf("max_failures default = %d, want 3", cfg.Monitor.MaxFailures)
	}
	if cfg.Monitor.Manufacturer != "NVIDIA" {
		t.Fatalf("manufacturer default = %q, want NVIDIA", cfg.Monitor.Manufacturer)
	}
	if cfg.API.RequestTimeout != 10*time.Second {
		t.Fatalf("request_timeout default = %s, want 10s", cfg.API.RequestTimeout)
	}
	if cfg.Email.SMTPHost != "smtp.gmail.com" || cfg.Email.SMTPPort != 587 {
		t.Fatalf("smtp defaults = %s:%d", cfg.Email.SMTPHost, cfg.Email.SMTPPort)
	}
	if !cfg.Alerting.Enabled || cfg.Alerting.Channel != "email" {
		t.Fatalf("alerting defaults = %+v", cfg.Alerting)
	}
}

func TestAPIURLSubstitutesLocale(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML+`
api:
  locale: de-de
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	url := cfg.API.URL()
	if !strings.Contains(url, "locale=de-de") {
		t.Fatalf("locale not substituted: %s", url)
	}
	if strings.Contains(url, "{locale}") {
		t.Fatalf("placeholder left in URL: %s", url)
	}
}

func TestLoadRejectsMissingGPUs(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
email:
  username: monitor@example.com
  password: secret
  recipient: ops@example.com
`))
	if err == nil || !strings.Contains(err.Error(), "monitor.gpus") {
		t.Fatalf("expected monitor.gpus error, got %v", err)
	}
}

func TestLoadRejectsMissingEmailCredentials(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
monitor:
  gpus: [RTX 5090]
`))
	if err == nil || !strings.Contains(err.Error(), "email.username") {
		t.Fatalf("expected email credential error, got %v", err)
	}
}

func TestLoadRejectsUnknownChannel(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
monitor:
  gpus: [RTX 5090]
alerting:
  channel: pager
`))
	if err == nil || !strings.Contains(err.Error(), "alerting.channel") {
		t.Fatalf("expected channel error, got %v", err)
	}
}

func TestLoadTelegramChannelRequiresToken(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
monitor:
  gpus: [RTX 5090]
alerting:
  channel: telegram
`))
	if err == nil || !strings.Contains(err.Error(), "bot_token") {
		t.Fatalf("expected bot_token error, got %v", err)
	}
}

func TestLoadDisabledAlertingSkipsCredentialChecks(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, `
monitor:
  gpus: [RTX 5090]
alerting:
  enabled: false
`))
	if err != nil {
		t.Fatalf("disabled alerting must not require credentials: %v", err)
	}
	if cfg.Alerting.Enabled {
		t.Fatal("alerting should be disabled")
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
monitor:
  gpus: [RTX 5090]
  check_interval: 0s
email:
  username: monitor@example.com
  password: secret
  recipient: ops@example.com
`))
	if err == nil || !strings.Contains(err.Error(), "check_interval") {
		t.Fatalf("expected check_interval error, got %v", err)
	}
}

func TestResolveMaxPoints(t *testing.T) {
	cfg := &Config{Export: ExportConfig{MaxDataPoints: 500}}

	if got := cfg.ResolveMaxPoints(0); got != 500 {
		t.Fatalf("expected config default 500, got %d", got)
	}
	if got := cfg.ResolveMaxPoints(42); got != 42 {
		t.Fatalf("expected override 42, got %d", got)
	}
}
