package trunk

import "github.com/dbehnke/p25-cc/pkg/p25/codec"

// checkControl is the first precondition every RF opcode applies:
// the engine must be configured as a control channel.
func (e *Engine) checkControl() (bool, codec.DenyReason) {
	if !e.cfg.Control {
		return false, codec.DenySysUnsupportedSvc
	}
	return true, codec.DenyNone
}

func (e *Engine) checkSrc(srcId uint32) (bool, codec.DenyReason) {
	if !e.acl.Validate(srcId) {
		return false, codec.DenyReqUnitNotValid
	}
	return true, codec.DenyNone
}

func (e *Engine) checkDstUnit(dstId uint32) (bool, codec.DenyReason) {
	if !e.acl.Validate(dstId) {
		return false, codec.DenyTgtUnitNotValid
	}
	return true, codec.DenyNone
}

func (e *Engine) checkTG(tgid uint32) (bool, codec.DenyReason) {
	if !e.acl.ValidateTG(tgid) {
		return false, codec.DenyTgtGroupNotValid
	}
	return true, codec.DenyNone
}

func (e *Engine) checkRegRequired(srcId uint32) (bool, codec.DenyReason) {
	if e.cfg.VerifyReg && !e.reg.HasUnitReg(srcId) {
		return false, codec.DenyReqUnitNotAuth
	}
	return true, codec.DenyNone
}

func (e *Engine) checkAffRequired(srcId, dstId uint32) (bool, codec.DenyReason) {
	if e.cfg.VerifyAff && !e.reg.HasAff(srcId, dstId) {
		return false, codec.DenyReqUnitNotAuth
	}
	return true, codec.DenyNone
}

// checkSysId rejects a U_REG whose requested sysId doesn't match this
// site's own. A zero sysId (field absent from the request) is treated
// as unspecified, not a mismatch.
func (e *Engine) checkSysId(sysId uint16) (bool, codec.DenyReason) {
	if sysId != 0 && sysId != e.site.Data().SysId {
		return false, codec.DenyReqUnitNotValid
	}
	return true, codec.DenyNone
}

// checkBasic runs the control+src+regRequired+affRequired chain common
// to the voice-grant opcodes, emitting the engine's standard side
// effects (DENY_RSP, denial_inhibit, U_REG_CMD) on first failure.
func (e *Engine) checkBasic(t *codec.TSBK, requireAff bool) bool {
	if ok, reason := e.checkControl(); !ok {
		e.emitDeny(t.SrcId, t.DstId, t.LCO, reason)
		return false
	}
	if ok, reason := e.checkSrc(t.SrcId); !ok {
		e.emitDeny(t.SrcId, t.DstId, t.LCO, reason)
		e.denialInhibit(t.SrcId)
		return false
	}
	if ok, reason := e.checkRegRequired(t.SrcId); !ok {
		e.emitDeny(t.SrcId, t.DstId, t.LCO, reason)
		e.emitURegCmd(t.SrcId)
		return false
	}
	if requireAff {
		if ok, reason := e.checkAffRequired(t.SrcId, t.DstId); !ok {
			e.emitDeny(t.SrcId, t.DstId, t.LCO, reason)
			e.emitURegCmd(t.SrcId)
			return false
		}
	}
	return true
}
