// Package trunk implements the Trunk Engine: the control-channel
// state machine that dispatches decoded TSBK/TDULC messages from the
// RF and network directions, applies ACL and registry checks, runs
// the channel-grant algorithm, and drives the periodic
// control-channel broadcast cadence.
package trunk

import (
	"time"

	"github.com/dbehnke/p25-cc/pkg/p25/codec"
	"github.com/dbehnke/p25-cc/pkg/p25/frame"
	"github.com/dbehnke/p25-cc/pkg/logger"
	"github.com/dbehnke/p25-cc/pkg/p25/registry"
	"github.com/dbehnke/p25-cc/pkg/p25/site"
)

// Engine is the Trunk Engine. It is not safe for concurrent method
// calls: ProcessRF, ProcessNet, and Clock must run to completion on a
// single goroutine.
type Engine struct {
	cfg    Config
	site   *site.State
	reg    *registry.Registries
	acl    ACL
	shaper *frame.Shaper
	fec    codec.FECCodec
	log    *logger.Logger

	activity ActivityLog
	metrics  MetricsSink

	status StatusCommand

	rfState     RFState
	netBusy     bool
	rfLastDstId uint32
	netLastDstId uint32

	netTGHangDstId     uint32
	netTGHangRemaining time.Duration

	networkActive bool
	callsign      string

	frameCnt     byte
	bcstSeq      int
	adjCursor    int
	adjBcstTimer time.Duration
}

// New creates a Trunk Engine. activity and metrics may be nil.
func New(cfg Config, st *site.State, reg *registry.Registries, acl ACL, shaper *frame.Shaper, fec codec.FECCodec, log *logger.Logger, activity ActivityLog, metrics MetricsSink) *Engine {
	return &Engine{
		cfg:          cfg,
		site:         st,
		reg:          reg,
		acl:          acl,
		shaper:       shaper,
		fec:          fec,
		log:          log.WithComponent("trunk"),
		activity:     activity,
		metrics:      metrics,
		rfState:      RFIdle,
		adjBcstTimer: AdjSiteTimerTimeout + cfg.CCBcstInterval,
	}
}

// SetCallsign updates the engine's cached callsign; the site identity
// itself lives in the injected *site.State.
func (e *Engine) SetCallsign(callsign string) { e.callsign = callsign }

// SetNetworkActive flips whether the network uplink is currently
// reachable; when false, network-bound writes still queue but are
// understood to be discarded at the transport sink.
func (e *Engine) SetNetworkActive(active bool) { e.networkActive = active }

// SetChannelCount records the advertised voice-channel count.
func (e *Engine) SetChannelCount(n byte) { e.cfg.VoiceChCnt = n }

// PreloadVoicePool replaces the free-channel pool wholesale, used at
// startup before any grant has been issued.
func (e *Engine) PreloadVoicePool(channels []uint16) { e.reg.SetVoicePool(channels) }

// SetRFState reports the surrounding RF front-end's current state;
// the transport layer (out of scope here) drives this.
func (e *Engine) SetRFState(s RFState) { e.rfState = s }

// SetNetState reports the surrounding network FSM's busy state and
// its last-seen destination, used by the grant algorithm's
// PTT-collision check.
func (e *Engine) SetNetState(busy bool, lastDstId uint32) {
	e.netBusy = busy
	e.netLastDstId = lastDstId
}

// ArmNetworkTGHang starts (or refreshes) the network-talkgroup hang
// timer that protects a just-used talkgroup from an unrelated RF grant
// request.
func (e *Engine) ArmNetworkTGHang(dstId uint32, d time.Duration) {
	e.netTGHangDstId = dstId
	e.netTGHangRemaining = d
}

func (e *Engine) networkTGHangRunning() bool { return e.netTGHangRemaining > 0 }

// Status is a point-in-time snapshot of the engine's public state, for
// dashboards and health checks. It is safe to call from any goroutine
// as long as no ProcessRF/ProcessNet/Clock call is concurrently
// mutating the engine.
type Status struct {
	Site          site.Data
	Callsign      string
	NetworkActive bool
	Grants        []registry.GrantInfo
	UnitRegCount  int
	AffCount      int
	FreeChannels  int
}

// Status returns a snapshot of the engine's current state.
func (e *Engine) Status() Status {
	return Status{
		Site:          e.site.Data(),
		Callsign:      e.callsign,
		NetworkActive: e.networkActive,
		Grants:        e.reg.GrantSnapshot(),
		UnitRegCount:  e.reg.UnitRegCount(),
		AffCount:      e.reg.AffCount(),
		FreeChannels:  e.reg.FreeChannelCount(),
	}
}

// WriteAdjSSNetwork broadcasts this site's ADJ_STS_BCAST upstream.
func (e *Engine) WriteAdjSSNetwork() {
	d := e.site.Data()
	t := &codec.TSBK{LCO: codec.LCOAdjStsBcast, Site: d}
	e.shaper.WriteNetTSDU(t, e.fec)
}

// ProcessRF is the entry point for a decoded RF TSDU. data is the
// message-level TSBK payload; duid distinguishes TSDU from TDULC.
func (e *Engine) ProcessRF(duid frame.DUID, data []byte) error {
	if duid == frame.DUIDTDULC {
		// TDULC carries no ISP traffic in this design; RF TDULC frames
		// are a voice-path artifact and are out of scope.
		return nil
	}

	t, err := codec.DecodeTSBK(data, e.fec)
	if err != nil {
		e.log.Debug("dropping undecodable RF TSBK", logger.Error(err))
		return nil
	}

	e.dispatchRF(t)
	return nil
}

func (e *Engine) dispatchRF(t *codec.TSBK) {
	// The disarm check reads the current TSBK, matching resetStatusCommand
	// consulting the just-decoded m_rfTSBK rather than a stashed one: an
	// armed status command survives only across a CALL_ALRT/EXT_FNCT
	// frame, and is cleared by anything else.
	if e.status.Armed() && t.LCO != codec.LCOCallAlrt && t.LCO != codec.LCOExtFnct {
		e.status = StatusCommand{}
	}

	if e.cfg.Verbose {
		e.log.Debug("RF TSBK", logger.String("lco", t.LCO.String()),
			logger.Uint32("src", t.SrcId), logger.Uint32("dst", t.DstId))
	}

	switch t.LCO {
	case codec.LCOGrpVch:
		e.handleGrpVch(t)
	case codec.LCOUuVch:
		e.handleUuVch(t)
	case codec.LCOUuAns:
		e.handleUuAns(t)
	case codec.LCOTeleIntAns:
		e.handleTeleIntAns(t)
	case codec.LCOStsUpdt:
		e.handleStsUpdt(t)
	case codec.LCOMsgUpdt:
		e.handleMsgUpdt(t)
	case codec.LCOCallAlrt:
		e.handleCallAlrt(t)
	case codec.LCOAckRsp:
		e.handleAckRsp(t)
	case codec.LCOCanSrvReq:
		e.handleCanSrvReq(t)
	case codec.LCOExtFnct:
		e.handleExtFnct(t)
	case codec.LCOGrpAff:
		e.handleGrpAff(t)
	case codec.LCOGrpAffQRsp:
		e.handleGrpAffQRsp(t)
	case codec.LCOUDeregReq:
		e.handleUDeregReq(t)
	case codec.LCOUReg:
		e.handleUReg(t)
	case codec.LCOLocRegReq:
		e.handleLocRegReq(t)
	default:
		e.log.Debug("dropping unknown RF LCO", logger.String("lco", t.LCO.String()))
	}
}

// ProcessNet is the entry point for a decoded network TSDU. Network
// TSBKs are informational: ACL-failed traffic is dropped silently,
// affiliation/deregistration commands are ignored, and everything
// else not specially handled is reflected to the outbound network
// queue.
func (e *Engine) ProcessNet(duid frame.DUID, data []byte) error {
	if duid == frame.DUIDTDULC {
		return nil
	}

	t, err := codec.DecodeTSBK(data, e.fec)
	if err != nil {
		e.log.Debug("dropping undecodable network TSBK", logger.Error(err))
		return nil
	}

	if !e.acl.Validate(t.SrcId) {
		e.log.Debug("network TSBK dropped by ACL", logger.Uint32("src", t.SrcId))
		return nil
	}

	switch t.LCO {
	case codec.LCOAdjStsBcast:
		if t.Site.SiteId != e.site.Data().SiteId {
			e.reg.UpsertAdj(t.Site)
		}
		return nil
	case codec.LCOGrpAff, codec.LCOGrpAffQRsp, codec.LCOUDeregReq, codec.LCOUDeregAck, codec.LCOUReg, codec.LCOURegCmd:
		// Affiliation/registration commands arriving from network are
		// informational only; the network never asserts ownership of
		// these tables.
		return nil
	default:
		e.log.Debug("reflecting network TSBK", logger.String("lco", t.LCO.String()))
		e.shaper.WriteNetTSDU(t, e.fec)
	}
	return nil
}

// Clock advances every timer by elapsed. It should be called on a
// steady cadence of at most 20ms.
func (e *Engine) Clock(elapsed time.Duration) {
	if e.netTGHangRemaining > 0 {
		e.netTGHangRemaining -= elapsed
		if e.netTGHangRemaining < 0 {
			e.netTGHangRemaining = 0
		}
	}

	for _, g := range e.reg.TickGrants(elapsed) {
		e.releaseGrant(g.DstId, g.Group, "expired")
	}

	e.adjBcstTimer -= elapsed
	if e.adjBcstTimer <= 0 {
		for _, siteId := range e.reg.TickAdj() {
			e.log.Warn("adjacent site failed", logger.Uint32("site_id", uint32(siteId)))
			if e.metrics != nil {
				e.metrics.SetAdjSiteFailure(siteId, true)
			}
		}
		e.adjBcstTimer = AdjSiteTimerTimeout + e.cfg.CCBcstInterval
	}

	if e.metrics != nil {
		e.metrics.SetGrantCount(e.reg.GrantCount())
		e.metrics.SetFreeChannelCount(e.reg.FreeChannelCount())
		e.metrics.SetUnitRegCount(e.reg.UnitRegCount())
		e.metrics.SetAffCount(e.reg.AffCount())
	}
}
