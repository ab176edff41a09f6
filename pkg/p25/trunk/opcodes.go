package trunk

import (
	"github.com/dbehnke/p25-cc/pkg/logger"
	"github.com/dbehnke/p25-cc/pkg/p25/codec"
)

// handleGrpVch answers a GRP_VCH request: the destination must be a
// valid talkgroup, affiliation is checked when configured, and the
// grant algorithm issues (or denies/queues) the channel.
func (e *Engine) handleGrpVch(t *codec.TSBK) {
	if !e.checkBasic(t, true) {
		return
	}
	if ok, reason := e.checkTG(t.DstId); !ok {
		e.emitDeny(t.SrcId, t.DstId, t.LCO, reason)
		return
	}
	e.writeRFGrant(true, t.SrcId, t.DstId, false)
}

// handleUuVch answers a UU_VCH request: the destination is a unit
// rather than a talkgroup, and affiliation does not apply.
func (e *Engine) handleUuVch(t *codec.TSBK) {
	if !e.checkBasic(t, false) {
		return
	}
	if ok, reason := e.checkDstUnit(t.DstId); !ok {
		e.emitDeny(t.SrcId, t.DstId, t.LCO, reason)
		return
	}
	e.writeRFGrant(false, t.SrcId, t.DstId, false)
}

// handleUuAns relays the called unit's answer to a pending UU_VCH
// page: PROCEED completes the grant (collision checks were already
// applied to the original request, so they are skipped here), DENY
// and WAIT reflect straight back to the caller.
func (e *Engine) handleUuAns(t *codec.TSBK) {
	if !e.checkBasic(t, false) {
		return
	}
	switch t.Response {
	case codec.ResponseProceed:
		e.writeRFGrant(false, t.DstId, t.SrcId, true)
	case codec.ResponseDeny:
		e.emitDeny(t.SrcId, t.DstId, codec.LCOUuVch, codec.DenyTgtUnitRefused)
	case codec.ResponseWait:
		e.emitQueue(t.SrcId, t.DstId, codec.LCOUuVch, codec.QueueTgtUnitQueued)
	default:
		e.log.Debug("unrecognized UU_ANS response", logger.Uint32("response", uint32(t.Response)))
	}
}

// handleTeleIntAns mirrors handleUuAns for telephone interconnect,
// except its DENY path is faithful to an apparent source bug: rather than sending a DENY_RSP, it sends a second,
// duplicate ACK_RSP.
func (e *Engine) handleTeleIntAns(t *codec.TSBK) {
	if !e.checkBasic(t, false) {
		return
	}
	switch t.Response {
	case codec.ResponseProceed:
		e.emitAckFNE(t.SrcId, codec.LCOTeleIntAns)
	case codec.ResponseDeny:
		e.emitAckFNE(t.SrcId, codec.LCOTeleIntAns)
		e.emitAckFNE(t.SrcId, codec.LCOTeleIntAns)
	case codec.ResponseWait:
		e.emitQueue(t.SrcId, t.DstId, codec.LCOTeleIntAns, codec.QueueTgtUnitQueued)
	}
}

// handleStsUpdt feeds the status-command preprocessor and,
// unless suppressed, acknowledges.
func (e *Engine) handleStsUpdt(t *codec.TSBK) {
	if !e.checkBasic(t, false) {
		return
	}
	e.feedStatusCommand(t.SrcId, t.Value)
	if !e.cfg.NoStatusAck {
		e.emitAckFNE(t.SrcId, codec.LCOStsUpdt)
	}
}

// handleMsgUpdt acknowledges a free-text message update unless
// acknowledgment is suppressed.
func (e *Engine) handleMsgUpdt(t *codec.TSBK) {
	if !e.checkBasic(t, false) {
		return
	}
	if !e.cfg.NoMessageAck {
		e.emitAckFNE(t.SrcId, codec.LCOMsgUpdt)
	}
}

// handleCallAlrt relays a call alert to its target, first giving the
// status-command preprocessor a chance to consume it in place of a
// plain relay.
func (e *Engine) handleCallAlrt(t *codec.TSBK) {
	if !e.checkBasic(t, false) {
		return
	}
	if e.consumeStatusCommand(t) {
		return
	}
	e.shaper.WriteRFTSDUSBF(t, e.fec, false, true)
	if !e.cfg.NoMessageAck {
		e.emitAckFNE(t.SrcId, codec.LCOCallAlrt)
	}
}

// handleAckRsp relays an ACK_RSP, applying the configurable src/dst
// swap workaround for
// endpoints that report AIV==false but still expect the swap.
func (e *Engine) handleAckRsp(t *codec.TSBK) {
	if !e.checkBasic(t, false) {
		return
	}
	out := *t
	if e.cfg.AckRspSwapWorkaround && !t.AIV {
		out.SrcId, out.DstId = t.DstId, t.SrcId
	}
	e.shaper.WriteRFTSDUSBF(&out, e.fec, false, true)
}

// handleCanSrvReq cancels any active grant held for the request's
// destination (dstId).
func (e *Engine) handleCanSrvReq(t *codec.TSBK) {
	if !e.checkBasic(t, false) {
		return
	}
	if e.reg.HasGrant(t.DstId) {
		grp := e.reg.IsGroup(t.DstId)
		e.reg.ReleaseGrant(t.DstId, false)
		e.releaseGrant(t.DstId, grp, "canceled")
	}
}

// handleExtFnct acknowledges an extended-function command echoed back
// from a subscriber, completing the check/inhibit/uninhibit round
// trip the status-command preprocessor (or denial_inhibit) started.
func (e *Engine) handleExtFnct(t *codec.TSBK) {
	if !e.checkBasic(t, false) {
		return
	}
	if !e.cfg.NoStatusAck {
		e.emitAckFNE(t.SrcId, codec.LCOExtFnct)
	}
}

// handleGrpAff runs the Grp_Aff_Rsp algorithm: checkBasic already denies
// an unregistered source when registration is required, so the outcome
// computed here only needs to model the talkgroup ACL; affiliate the
// requester to the target group if it validates, and report the
// outcome back on the same opcode with the response code carried in
// Value.
func (e *Engine) handleGrpAff(t *codec.TSBK) {
	if !e.checkBasic(t, false) {
		return
	}
	e.emitAckFNE(t.SrcId, codec.LCOGrpAff)
	outcome := codec.AffAccept
	if ok, _ := e.checkTG(t.DstId); !ok {
		outcome = codec.AffDeny
	} else {
		e.reg.SetAff(t.SrcId, t.DstId)
	}
	resp := &codec.TSBK{LCO: codec.LCOGrpAff, SrcId: t.SrcId, DstId: t.DstId, Value: byte(outcome)}
	e.shaper.WriteRFTSDUSBF(resp, e.fec, false, true)
}

// handleGrpAffQRsp logs the reply to an engine-originated GRP_AFF_Q;
// this opcode is informational only on RF inbound.
func (e *Engine) handleGrpAffQRsp(t *codec.TSBK) {
	e.log.Debug("affiliation query response", logger.Uint32("src", t.SrcId), logger.Uint32("dst", t.DstId))
}

// handleUDeregReq deregisters the requesting unit and acknowledges with
// ACK_FNE followed by U_DEREG_ACK, addressed from the well-known system
// ID to the deregistering unit. A zero request dstId is first set to
// WUIDSys.
func (e *Engine) handleUDeregReq(t *codec.TSBK) {
	if t.DstId == 0 {
		t.DstId = WUIDSys
	}
	e.reg.RemoveUnitReg(t.SrcId)
	if e.activity != nil {
		e.activity.RecordRegistration(t.SrcId, false)
	}
	e.emitAckFNE(t.SrcId, codec.LCOUDeregReq)
	ack := &codec.TSBK{LCO: codec.LCOUDeregAck, SrcId: WUIDSys, DstId: t.SrcId, Site: e.site.Data()}
	e.shaper.WriteRFTSDUSBF(ack, e.fec, false, true)
}

// handleUReg runs the U_Reg_Rsp algorithm: a valid unit is registered
// and answered with this site's identity; an invalid one is denied.
func (e *Engine) handleUReg(t *codec.TSBK) {
	if ok, reason := e.checkSrc(t.SrcId); !ok {
		e.emitDeny(t.SrcId, t.SrcId, codec.LCOUReg, reason)
		e.denialInhibit(t.SrcId)
		return
	}
	if ok, reason := e.checkSysId(t.Site.SysId); !ok {
		e.emitDeny(t.SrcId, t.SrcId, codec.LCOUReg, reason)
		return
	}
	e.reg.AddUnitReg(t.SrcId)
	if e.activity != nil {
		e.activity.RecordRegistration(t.SrcId, true)
	}
	e.emitAckFNE(t.SrcId, codec.LCOUReg)
	resp := &codec.TSBK{LCO: codec.LCOUReg, SrcId: t.SrcId, DstId: t.SrcId, Site: e.site.Data()}
	e.shaper.WriteRFTSDUSBF(resp, e.fec, false, true)
}

// handleLocRegReq registers the requesting unit's location and
// acknowledges it.
func (e *Engine) handleLocRegReq(t *codec.TSBK) {
	if ok, reason := e.checkSrc(t.SrcId); !ok {
		e.emitDeny(t.SrcId, t.SrcId, codec.LCOLocRegReq, reason)
		return
	}
	e.reg.AddUnitReg(t.SrcId)
	if e.activity != nil {
		e.activity.RecordRegistration(t.SrcId, true)
	}
	e.emitAckFNE(t.SrcId, codec.LCOLocRegReq)
}
