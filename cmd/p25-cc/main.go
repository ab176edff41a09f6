package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dbehnke/p25-cc/pkg/config"
	"github.com/dbehnke/p25-cc/pkg/database"
	"github.com/dbehnke/p25-cc/pkg/logger"
	"github.com/dbehnke/p25-cc/pkg/metrics"
	"github.com/dbehnke/p25-cc/pkg/mqtt"
	"github.com/dbehnke/p25-cc/pkg/p25/acl"
	"github.com/dbehnke/p25-cc/pkg/p25/frame"
	"github.com/dbehnke/p25-cc/pkg/p25/registry"
	"github.com/dbehnke/p25-cc/pkg/p25/site"
	"github.com/dbehnke/p25-cc/pkg/p25/trunk"
	"github.com/dbehnke/p25-cc/pkg/web"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	validateOnly := flag.Bool("validate", false, "Validate configuration and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("p25-cc %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	log := logger.New(logger.Config{Level: "info", Format: "text"})

	log.Info("Starting p25-cc",
		logger.String("version", version),
		logger.String("build_time", buildTime))

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("Failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	if *validateOnly {
		log.Info("Configuration is valid")
		os.Exit(0)
	}

	log.Info("Configuration loaded successfully", logger.String("config_file", *configFile))

	aclSet, err := acl.NewSet(cfg.ACL.RegACL, cfg.ACL.SubACL, cfg.ACL.TGACL)
	if err != nil {
		log.Error("Failed to build ACL set", logger.Error(err))
		os.Exit(1)
	}

	siteData := site.Data{
		NetId:     cfg.Site.NetId,
		SysId:     cfg.Site.SysId,
		RfssId:    cfg.Site.RfssId,
		SiteId:    cfg.Site.SiteId,
		Lra:       cfg.Site.Lra,
		ChannelId: cfg.Site.ChannelId,
		ChannelNo: cfg.Site.ChannelNo,
	}
	siteState := site.New(siteData, cfg.Site.Callsign)

	pool := registry.NewVoiceChannelPool(cfg.Trunk.VoiceChTable, trunk.GrantTimerTimeout)
	registries := registry.New(trunk.AdjSiteUpdateCnt, pool)

	shaper := frame.New(frame.Config{
		Duplex:            cfg.Trunk.Duplex,
		ContinuousControl: cfg.Trunk.ContinuousControl,
		HangCount:         cfg.Trunk.HangCount,
	}, nil, nil, nil)

	db, err := database.NewDB(database.Config{Path: cfg.Database.Path}, log.WithComponent("database"))
	if err != nil {
		log.Error("Failed to open activity-log database", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	activityLog := database.NewActivityLog(db)
	grantRepo := database.NewGrantEventRepository(db.GetDB())

	collector := metrics.NewCollector()

	trunkCfg := trunk.Config{
		Verbose:               cfg.Trunk.Verbose,
		Debug:                 cfg.Trunk.Debug,
		Control:               cfg.Trunk.Control,
		VerifyReg:             cfg.Trunk.VerifyReg,
		VerifyAff:             cfg.Trunk.VerifyAff,
		InhibitIllegal:        cfg.Trunk.InhibitIllegal,
		NoStatusAck:           cfg.Trunk.NoStatusAck,
		NoMessageAck:          cfg.Trunk.NoMessageAck,
		StatusCmdEnable:       cfg.Trunk.StatusCmdEnable,
		StatusRadioCheck:      cfg.Trunk.StatusRadioCheck,
		StatusRadioInhibit:    cfg.Trunk.StatusRadioInhibit,
		StatusRadioUninhibit:  cfg.Trunk.StatusRadioUninhibit,
		StatusRadioForceReg:   cfg.Trunk.StatusRadioForceReg,
		StatusRadioForceDereg: cfg.Trunk.StatusRadioForceDereg,
		VoiceChCnt:            cfg.Trunk.VoiceChCnt,
		CCBcstInterval:        time.Duration(cfg.Trunk.CCBcstInterval) * time.Second,
		PatchSuperGroup:       cfg.Trunk.PatchSuperGroup,
		HangCount:             cfg.Trunk.HangCount,
		Duplex:                cfg.Trunk.Duplex,
		ContinuousControl:     cfg.Trunk.ContinuousControl,
		AckRspSwapWorkaround:  cfg.Trunk.AckRspSwapWorkaround,
	}

	engine := trunk.New(trunkCfg, siteState, registries, aclSet, shaper, nil, log.WithComponent("trunk"), activityLog, collector)
	engine.PreloadVoicePool(cfg.Trunk.VoiceChTable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := engine.Run(ctx, time.Second); err != nil && err != context.Canceled {
			log.Error("Trunk engine stopped with error", logger.Error(err))
		}
	}()
	log.Info("Trunk engine started", logger.Int("voice_channels", len(cfg.Trunk.VoiceChTable)))

	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metricsServer := metrics.NewPrometheusServer(
				metrics.PrometheusConfig{
					Enabled: cfg.Metrics.Prometheus.Enabled,
					Port:    cfg.Metrics.Prometheus.Port,
					Path:    cfg.Metrics.Prometheus.Path,
				},
				collector,
				log.WithComponent("metrics"),
			)
			if err := metricsServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Prometheus metrics server error", logger.Error(err))
			}
		}()
		log.Info("Prometheus metrics server started",
			logger.Int("port", cfg.Metrics.Prometheus.Port),
			logger.String("path", cfg.Metrics.Prometheus.Path))
	}

	var mqttPublisher *mqtt.Publisher
	if cfg.MQTT.Enabled {
		mqttPublisher = mqtt.New(
			mqtt.Config{
				Enabled:     cfg.MQTT.Enabled,
				Broker:      cfg.MQTT.Broker,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				QoS:         cfg.MQTT.QoS,
				Retained:    cfg.MQTT.Retained,
			},
			log.WithComponent("mqtt"),
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := mqttPublisher.Start(ctx); err != nil && err != context.Canceled {
				log.Error("MQTT publisher error", logger.Error(err))
			}
		}()
		log.Info("MQTT publisher started",
			logger.String("broker", cfg.MQTT.Broker),
			logger.String("topic_prefix", cfg.MQTT.TopicPrefix))
	}

	if cfg.Web.Enabled {
		webServer := web.NewServer(cfg.Web, log.WithComponent("web"), engine, grantRepo)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := webServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Web server error", logger.Error(err))
			}
		}()
		log.Info("Web server started",
			logger.String("host", cfg.Web.Host),
			logger.Int("port", cfg.Web.Port))
	}

	log.Info("p25-cc initialized", logger.String("callsign", cfg.Site.Callsign))

	sig := <-sigChan
	log.Info("Received shutdown signal", logger.String("signal", sig.String()))

	cancel()

	if mqttPublisher != nil {
		mqttPublisher.Stop()
	}

	wg.Wait()

	log.Info("p25-cc stopped")
}
