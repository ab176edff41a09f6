package trunk

import "github.com/dbehnke/p25-cc/pkg/p25/codec"

// WriteControlData drives the periodic control-channel broadcast
// cadence: each call advances frameCnt by one
// and, on its own turn in a simple three-way round robin, writes one
// of RFSS_STS_BCAST, NET_STS_BCAST, or ADJ_STS_BCAST. Adjacent-site
// broadcasts round-robin through the known adjacent-site table; with
// none known this step is a no-op rather than repeating the site's
// own descriptor.
func (e *Engine) WriteControlData() {
	e.frameCnt++

	switch e.bcstSeq % 3 {
	case 0:
		e.shaper.WriteRFTSDUSBF(&codec.TSBK{LCO: codec.LCORfssStsBcast, Site: e.site.Data()}, e.fec, false, false)
	case 1:
		e.shaper.WriteRFTSDUSBF(&codec.TSBK{LCO: codec.LCONetStsBcast, Site: e.site.Data()}, e.fec, false, false)
	case 2:
		adj := e.reg.ListAdj()
		if len(adj) > 0 {
			idx := e.adjCursor % len(adj)
			e.adjCursor++
			e.shaper.WriteRFTSDUSBF(&codec.TSBK{LCO: codec.LCOAdjStsBcast, Site: adj[idx].SiteData}, e.fec, false, false)
		}
	}
	e.bcstSeq++
}
