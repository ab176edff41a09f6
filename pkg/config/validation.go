package config

import (
	"fmt"
	"strings"
)

// validate validates the configuration.
func validate(cfg *Config) error {
	if cfg.Site.SiteId == 0 {
		return fmt.Errorf("site.site_id must be nonzero")
	}
	if cfg.Site.ChannelNo == 0 {
		return fmt.Errorf("site.chan_no must be nonzero")
	}

	if cfg.Trunk.VoiceChCnt == 0 && len(cfg.Trunk.VoiceChTable) == 0 {
		return fmt.Errorf("trunk.voice_ch_table must not be empty")
	}
	if cfg.Trunk.CCBcstInterval < 0 {
		return fmt.Errorf("trunk.cc_bcst_interval must not be negative")
	}

	for name, acl := range map[string]string{
		"acl.reg_acl": cfg.ACL.RegACL,
		"acl.sub_acl": cfg.ACL.SubACL,
		"acl.tg_acl":  cfg.ACL.TGACL,
	} {
		if acl == "" {
			continue
		}
		if !strings.HasPrefix(acl, "PERMIT:") && !strings.HasPrefix(acl, "DENY:") {
			return fmt.Errorf("%s must start with PERMIT: or DENY:", name)
		}
	}

	if cfg.Web.Enabled {
		if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
			return fmt.Errorf("web.port must be between 1 and 65535")
		}
	}

	if cfg.MQTT.Enabled {
		if cfg.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		if cfg.Metrics.Prometheus.Port <= 0 || cfg.Metrics.Prometheus.Port > 65535 {
			return fmt.Errorf("metrics.prometheus.port must be between 1 and 65535")
		}
	}

	return nil
}
