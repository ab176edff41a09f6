package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Site     SiteConfig     `mapstructure:"site"`
	Trunk    TrunkConfig    `mapstructure:"trunk"`
	ACL      ACLConfig      `mapstructure:"acl"`
	Web      WebConfig      `mapstructure:"web"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// SiteConfig identifies the control channel's site within the P25
// system, matching pkg/p25/site.Data's fields one for one.
type SiteConfig struct {
	NetId     uint32 `mapstructure:"net_id"`
	SysId     uint16 `mapstructure:"sys_id"`
	RfssId    byte   `mapstructure:"rfss_id"`
	SiteId    byte   `mapstructure:"site_id"`
	Lra       byte   `mapstructure:"lra"`
	ChannelId byte   `mapstructure:"chan_id"`
	ChannelNo uint16 `mapstructure:"chan_no"`
	Callsign  string `mapstructure:"callsign"`
}

// TrunkConfig mirrors pkg/p25/trunk.Config's mapstructure surface.
type TrunkConfig struct {
	Verbose        bool `mapstructure:"verbose"`
	Debug          bool `mapstructure:"debug"`
	Control        bool `mapstructure:"control"`
	VerifyReg      bool `mapstructure:"verify_reg"`
	VerifyAff      bool `mapstructure:"verify_aff"`
	InhibitIllegal bool `mapstructure:"inhibit_illegal"`
	NoStatusAck    bool `mapstructure:"no_status_ack"`
	NoMessageAck   bool `mapstructure:"no_message_ack"`

	StatusCmdEnable       bool `mapstructure:"status_cmd_enable"`
	StatusRadioCheck      byte `mapstructure:"status_radio_check"`
	StatusRadioInhibit    byte `mapstructure:"status_radio_inhibit"`
	StatusRadioUninhibit  byte `mapstructure:"status_radio_uninhibit"`
	StatusRadioForceReg   byte `mapstructure:"status_radio_force_reg"`
	StatusRadioForceDereg byte `mapstructure:"status_radio_force_dereg"`

	VoiceChCnt      byte     `mapstructure:"voice_ch_cnt"`
	VoiceChTable    []uint16 `mapstructure:"voice_ch_table"`
	CCBcstInterval  int      `mapstructure:"cc_bcst_interval"` // seconds
	PatchSuperGroup uint32   `mapstructure:"patch_super_group"`
	HangCount       uint32   `mapstructure:"hang_count"`

	Duplex               bool `mapstructure:"duplex"`
	ContinuousControl    bool `mapstructure:"continuous_control"`
	AckRspSwapWorkaround bool `mapstructure:"ack_rsp_swap_workaround"`
}

// ACLConfig holds the three access-control rule strings consumed by
// pkg/p25/acl.NewSet.
type ACLConfig struct {
	RegACL string `mapstructure:"reg_acl"`
	SubACL string `mapstructure:"sub_acl"`
	TGACL  string `mapstructure:"tg_acl"`
}

// WebConfig holds web dashboard configuration.
type WebConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	AuthRequired bool   `mapstructure:"auth_required"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
}

// MQTTConfig holds MQTT client configuration.
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	QoS         byte   `mapstructure:"qos"`
	Retained    bool   `mapstructure:"retained"`
}

// DatabaseConfig holds the activity-log database's connection options.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig holds Prometheus metrics exposition configuration.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from file and environment variables.
func Load(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/p25-cc")
	}

	viper.SetEnvPrefix("P25CC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is OK, use defaults.
		} else if os.IsNotExist(err) {
			// File explicitly specified but doesn't exist - that's also OK.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	// Site defaults.
	viper.SetDefault("site.net_id", 1)
	viper.SetDefault("site.sys_id", 0x001)
	viper.SetDefault("site.rfss_id", 1)
	viper.SetDefault("site.site_id", 1)
	viper.SetDefault("site.chan_id", 1)
	viper.SetDefault("site.chan_no", 1)
	viper.SetDefault("site.callsign", "P25CC")

	// Trunk defaults.
	viper.SetDefault("trunk.control", true)
	viper.SetDefault("trunk.duplex", true)
	viper.SetDefault("trunk.voice_ch_cnt", 1)
	viper.SetDefault("trunk.voice_ch_table", []uint16{2})
	viper.SetDefault("trunk.cc_bcst_interval", 3)
	viper.SetDefault("trunk.hang_count", 3)
	viper.SetDefault("trunk.ack_rsp_swap_workaround", true)

	// ACL defaults.
	viper.SetDefault("acl.reg_acl", "PERMIT:ALL")
	viper.SetDefault("acl.sub_acl", "PERMIT:ALL")
	viper.SetDefault("acl.tg_acl", "PERMIT:ALL")

	// Web defaults.
	viper.SetDefault("web.enabled", true)
	viper.SetDefault("web.host", "0.0.0.0")
	viper.SetDefault("web.port", 8080)
	viper.SetDefault("web.auth_required", false)

	// MQTT defaults.
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.topic_prefix", "p25/cc")
	viper.SetDefault("mqtt.client_id", "p25-cc")
	viper.SetDefault("mqtt.qos", 1)
	viper.SetDefault("mqtt.retained", false)

	// Database defaults.
	viper.SetDefault("database.path", "p25-cc.db")

	// Logging defaults.
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Metrics defaults.
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.prometheus.enabled", true)
	viper.SetDefault("metrics.prometheus.port", 9090)
	viper.SetDefault("metrics.prometheus.path", "/metrics")
}
