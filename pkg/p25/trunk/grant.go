package trunk

import "github.com/dbehnke/p25-cc/pkg/p25/codec"

// writeRFGrant runs the channel-grant algorithm. skip bypasses the
// PTT-collision and hang checks, used when a grant is being
// (re)issued as a direct consequence of another accepted request
// (e.g. UU_ANS PROCEED) rather than a fresh GRP_VCH/UU_VCH.
func (e *Engine) writeRFGrant(grp bool, srcId, dstId uint32, skip bool) bool {
	if dstId == TGIDAll {
		return true
	}

	if !skip {
		if e.rfState != RFIdle {
			e.emitDeny(srcId, dstId, grantLCO(grp), codec.DenyPttCollide)
			return false
		}
		if e.netBusy && e.netLastDstId == dstId {
			e.emitDeny(srcId, dstId, grantLCO(grp), codec.DenyPttCollide)
			return false
		}
		if e.rfLastDstId != 0 && e.rfLastDstId != dstId && e.networkTGHangRunning() {
			return false
		}
	}

	var chNo uint16
	reused := false
	if !e.reg.HasGrant(dstId) {
		ch, ok := e.reg.AcquireGrant(dstId, grp)
		if !ok {
			e.emitQueue(srcId, dstId, grantLCO(grp), codec.QueueChnResourceNotAvail)
			return false
		}
		chNo = ch
	} else {
		ch, _ := e.reg.ChannelFor(dstId)
		e.reg.TouchGrant(dstId)
		chNo = ch
		reused = true
	}

	if e.metrics != nil {
		e.metrics.IncGrantAcquired(reused)
	}
	if e.activity != nil {
		e.activity.RecordGrant(dstId, chNo, reused)
	}

	e.rfLastDstId = dstId
	t := &codec.TSBK{LCO: grantLCO(grp), SrcId: srcId, DstId: dstId, ChannelNo: chNo}
	e.shaper.WriteRFTSDUSBF(t, e.fec, false, true)
	if !reused {
		e.shaper.WriteRFTDULCChanGrant(grp, srcId, dstId, e.fec)
	}
	return true
}

func grantLCO(grp bool) codec.LCO {
	if grp {
		return codec.LCOGrpVch
	}
	return codec.LCOUuVch
}

// releaseGrant is invoked when a grant expires in Clock or is
// explicitly released, replaying the TDULC channel-release sequence.
// grp records whether the just-released grant was a group call, since
// by the time this runs the registry has already forgotten it.
func (e *Engine) releaseGrant(dstId uint32, grp bool, reason string) {
	netSite := &codec.TDULC{LCO: codec.LCNetStsBcast, Site: e.site.Data()}
	rfssSite := &codec.TDULC{LCO: codec.LCRfssStsBcast, Site: e.site.Data()}
	e.shaper.WriteRFTDULCChanRelease(grp, 0, dstId, netSite, rfssSite, e.fec)

	if e.metrics != nil {
		e.metrics.IncGrantReleased(reason)
	}
	if e.activity != nil {
		e.activity.RecordGrantReleased(dstId, reason)
	}
}
