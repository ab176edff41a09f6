package trunk

import "github.com/dbehnke/p25-cc/pkg/p25/codec"

// feedStatusCommand arms the one-slot status-command preprocessor if
// value matches one of the configured status codes, recording it to
// the activity log. srcId is STS_UPDT's source, the unit whose
// following CALL_ALRT will trigger the eventual action. Non-matching
// values leave the slot untouched.
func (e *Engine) feedStatusCommand(srcId uint32, value byte) {
	if !e.cfg.StatusCmdEnable {
		return
	}
	switch value {
	case e.cfg.StatusRadioCheck, e.cfg.StatusRadioInhibit, e.cfg.StatusRadioUninhibit,
		e.cfg.StatusRadioForceReg, e.cfg.StatusRadioForceDereg:
		e.status = StatusCommand{StatusSrcId: srcId, StatusValue: value}
		if e.activity != nil {
			e.activity.RecordStatusCommand(srcId, value)
		}
	}
}

// consumeStatusCommand completes the subprotocol armed by
// feedStatusCommand: a matching CALL_ALRT (same source unit) turns
// into the corresponding EXT_FNCT (check/inhibit/uninhibit) or
// U_REG_CMD (force-reg) addressed to the CALL_ALRT's destination, or,
// for force-dereg, removes that destination's registration without
// emitting a frame, instead of being relayed as a plain call alert.
// Returns true if it consumed t.
func (e *Engine) consumeStatusCommand(t *codec.TSBK) bool {
	if !e.status.Armed() || e.status.StatusSrcId != t.SrcId {
		return false
	}
	value := e.status.StatusValue
	target := t.DstId
	e.status = StatusCommand{}

	switch value {
	case e.cfg.StatusRadioCheck:
		e.emitExtFnct(t.SrcId, target, codec.ExtFunctionCheck)
	case e.cfg.StatusRadioInhibit:
		e.emitExtFnct(t.SrcId, target, codec.ExtFunctionInhibit)
	case e.cfg.StatusRadioUninhibit:
		e.emitExtFnct(t.SrcId, target, codec.ExtFunctionUninhibit)
	case e.cfg.StatusRadioForceReg:
		e.emitURegCmd(target)
	case e.cfg.StatusRadioForceDereg:
		e.reg.RemoveUnitReg(target)
	}
	e.emitAckFNE(t.SrcId, codec.LCOCallAlrt)
	return true
}
