package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_UsesDefaults_WhenNoFile(t *testing.T) {
	// Reset viper to avoid cross-test pollution
	viper.Reset()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Web.Enabled != true {
		t.Errorf("expected Web.Enabled default true, got %v", cfg.Web.Enabled)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("expected Web.Port default 8080, got %d", cfg.Web.Port)
	}
	if cfg.Trunk.Control != true {
		t.Errorf("expected Trunk.Control default true, got %v", cfg.Trunk.Control)
	}
	if cfg.ACL.RegACL != "PERMIT:ALL" {
		t.Errorf("expected ACL.RegACL default PERMIT:ALL, got %q", cfg.ACL.RegACL)
	}
	if cfg.Logging.Level == "" {
		t.Errorf("expected Logging.Level to be set (default info)")
	}
	if cfg.Metrics.Prometheus.Port != 9090 {
		t.Errorf("expected Prometheus.Port default 9090, got %d", cfg.Metrics.Prometheus.Port)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Run("missing site_id", func(t *testing.T) {
		cfg := &Config{Site: SiteConfig{ChannelNo: 1}, Trunk: TrunkConfig{VoiceChCnt: 1}}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for zero site.site_id")
		}
	})

	t.Run("invalid web port when enabled", func(t *testing.T) {
		cfg := &Config{
			Site:  SiteConfig{SiteId: 1, ChannelNo: 1},
			Trunk: TrunkConfig{VoiceChCnt: 1},
			Web:   WebConfig{Enabled: true, Port: 70000},
		}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for invalid web.port out of range")
		}
	})

	t.Run("mqtt enabled without broker", func(t *testing.T) {
		cfg := &Config{
			Site:  SiteConfig{SiteId: 1, ChannelNo: 1},
			Trunk: TrunkConfig{VoiceChCnt: 1},
			MQTT:  MQTTConfig{Enabled: true},
		}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for mqtt enabled without broker")
		}
	})

	t.Run("invalid ACL prefix", func(t *testing.T) {
		cfg := &Config{
			Site:  SiteConfig{SiteId: 1, ChannelNo: 1},
			Trunk: TrunkConfig{VoiceChCnt: 1},
			ACL:   ACLConfig{RegACL: "ALLOW:1"},
		}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for ACL not starting with PERMIT: or DENY:")
		}
	})

	t.Run("no voice channels configured", func(t *testing.T) {
		cfg := &Config{Site: SiteConfig{SiteId: 1, ChannelNo: 1}}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for empty voice channel table")
		}
	})
}
