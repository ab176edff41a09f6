package trunk

import "github.com/dbehnke/p25-cc/pkg/p25/codec"

// emitDeny builds and writes a DENY_RSP addressed back to srcId,
// counts it, and records it to the activity log.
func (e *Engine) emitDeny(srcId, dstId uint32, serviceType codec.LCO, reason codec.DenyReason) {
	t := &codec.TSBK{LCO: codec.LCODenyRsp, SrcId: dstId, DstId: srcId, DenyReason: reason, ServiceType: serviceType}
	e.shaper.WriteRFTSDUSBF(t, e.fec, false, true)
	e.countDeny(reason)
	if e.activity != nil {
		e.activity.RecordDeny(srcId, dstId, serviceType, reason)
	}
}

// emitQueue builds and writes a QUE_RSP addressed back to srcId.
func (e *Engine) emitQueue(srcId, dstId uint32, serviceType codec.LCO, reason codec.QueueReason) {
	t := &codec.TSBK{LCO: codec.LCOQueRsp, SrcId: dstId, DstId: srcId, QueueReason: reason, ServiceType: serviceType}
	e.shaper.WriteRFTSDUSBF(t, e.fec, false, true)
	if e.metrics != nil {
		e.metrics.IncQueue(queueReasonLabel(reason))
	}
}

// emitAckFNE builds and writes an infrastructure ACK_RSP ("ACK_FNE"),
// addressed to srcId for the given service type, mirroring U_Reg_Rsp's
// vendor quirk of setting both src and dst to the acknowledged unit.
func (e *Engine) emitAckFNE(srcId uint32, serviceType codec.LCO) {
	t := &codec.TSBK{LCO: codec.LCOAckRsp, SrcId: srcId, DstId: srcId, AIV: true, ServiceType: serviceType}
	e.shaper.WriteRFTSDUSBF(t, e.fec, false, true)
}

// emitURegCmd tells srcId to (re)register, carrying this site's
// identity in the payload.
func (e *Engine) emitURegCmd(srcId uint32) {
	t := &codec.TSBK{LCO: codec.LCOURegCmd, SrcId: srcId, DstId: srcId, Site: e.site.Data()}
	e.shaper.WriteRFTSDUSBF(t, e.fec, false, true)
}

// emitExtFnct writes an EXT_FNCT command to dstId, carrying fn and
// argId.
func (e *Engine) emitExtFnct(srcId, dstId uint32, fn codec.ExtFunction) {
	t := &codec.TSBK{LCO: codec.LCOExtFnct, SrcId: srcId, DstId: dstId, ExtFunction: fn, ArgId: dstId}
	e.shaper.WriteRFTSDUSBF(t, e.fec, false, true)
}

// denialInhibit extends the inhibitIllegal option: on ACL-src
// failure, additionally send an EXT_FNCT(INHIBIT) to the offending
// unit.
func (e *Engine) denialInhibit(srcId uint32) {
	if !e.cfg.InhibitIllegal {
		return
	}
	e.emitExtFnct(0, srcId, codec.ExtFunctionInhibit)
}

func (e *Engine) countDeny(reason codec.DenyReason) {
	if e.metrics != nil {
		e.metrics.IncDeny(denyReasonLabel(reason))
	}
}

func denyReasonLabel(r codec.DenyReason) string {
	switch r {
	case codec.DenyReqUnitNotValid:
		return "req_unit_not_valid"
	case codec.DenyTgtUnitNotValid:
		return "tgt_unit_not_valid"
	case codec.DenyTgtGroupNotValid:
		return "tgt_group_not_valid"
	case codec.DenyReqUnitNotAuth:
		return "req_unit_not_auth"
	case codec.DenyPttCollide:
		return "ptt_collide"
	case codec.DenySysUnsupportedSvc:
		return "sys_unsupported_svc"
	case codec.DenyTgtUnitRefused:
		return "tgt_unit_refused"
	default:
		return "unknown"
	}
}

func queueReasonLabel(r codec.QueueReason) string {
	switch r {
	case codec.QueueChnResourceNotAvail:
		return "chn_resource_not_avail"
	case codec.QueueTgtUnitQueued:
		return "tgt_unit_queued"
	default:
		return "unknown"
	}
}
