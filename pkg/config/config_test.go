package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
analysis:
  service_url: http://localhost:9000
`

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.Server.Port != 8080 {
		t.Fatalf("server.port default: got %d", c.Server.Port)
	}
	if c.Logging.Level != "info" || c.Logging.Format != "console" {
		t.Fatalf("logging defaults: %+v", c.Logging)
	}
	if c.Analysis.CallTimeout != 45*time.Second {
		t.Fatalf("analysis.call_timeout default: got %s", c.Analysis.CallTimeout)
	}
	if c.Analysis.Quorum.MinSuccess != 2 {
		t.Fatalf("quorum.min_success default: got %d", c.Analysis.Quorum.MinSuccess)
	}
	if !c.Analysis.ContextEnabled {
		t.Fatalf("analysis.context_enabled should default to true")
	}
	if c.Metrics.Path != "/metrics" {
		t.Fatalf("metrics.path default: got %s", c.Metrics.Path)
	}
}

func TestLoadParsesProviders(t *testing.T) {
	c, err := Load(writeConfig(t, `
environment: test
analysis:
  service_url: http://localhost:9000
  providers:
    valuation:
      enabled: true
      variant: deep
      per_minute: 5
      per_day: 200
    technical:
      enabled: false
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	p, ok := c.Analysis.Providers["valuation"]
	if !ok {
		t.Fatalf("valuation provider missing")
	}
	if !p.Enabled || p.Variant != "deep" || p.PerMinute != 5 || p.PerDay != 200 {
		t.Fatalf("unexpected provider config: %+v", p)
	}
	if c.Analysis.Providers["technical"].Enabled {
		t.Fatalf("technical should be disabled")
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing environment",
			yaml: "analysis:\n  service_url: http://localhost:9000\n",
			want: "environment",
		},
		{
			name: "missing service url",
			yaml: "environment: test\n",
			want: "service_url",
		},
		{
			name: "redis enabled without addr",
			yaml: minimalConfig + "redis:\n  enabled: true\n",
			want: "redis.addr",
		},
		{
			name: "queue without redis",
			yaml: minimalConfig + "queue:\n  enabled: true\n",
			want: "queue requires redis",
		},
		{
			name: "kafka without brokers",
			yaml: minimalConfig + "kafka:\n  enabled: true\n  topic: decisions\n",
			want: "kafka.brokers",
		},
		{
			name: "kafka without topic",
			yaml: minimalConfig + "kafka:\n  enabled: true\n  brokers: [localhost:9092]\n",
			want: "kafka.topic",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("ANALYSIS_SERVICE_URL", "http://override:9100")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.Analysis.ServiceURL != "http://override:9100" {
		t.Fatalf("service_url override: got %s", c.Analysis.ServiceURL)
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("kafka brokers override: %v", c.Kafka.Brokers)
	}
}
