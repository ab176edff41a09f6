package codec

import "github.com/dbehnke/p25-cc/pkg/p25/site"

// tdulcHeaderLen mirrors tsbkHeaderLen for the smaller TDULC surface.
const tdulcHeaderLen = 8

// TDULC is a terminator data unit with link control: it carries only
// enough information to open or close a voice channel grant, or to
// broadcast site status as part of that termination sequence.
type TDULC struct {
	LCO       LCO
	SrcId     uint32
	DstId     uint32
	Emergency bool

	// Broadcast variants (LC_RFSS_STS_BCAST / LC_NET_STS_BCAST) carry
	// site info instead of src/dst.
	Site site.Data
}

// DecodeTDULC mirrors DecodeTSBK for the TDULC frame.
func DecodeTDULC(data []byte, fec FECCodec) (*TDULC, error) {
	if fec != nil {
		if err := fec.ValidateTDULC(data); err != nil {
			return nil, err
		}
	}
	if len(data) < tdulcHeaderLen {
		return nil, ErrTruncated
	}

	d := &TDULC{}
	d.LCO = LCO(data[0] & 0x3F)
	d.Emergency = data[0]&0x40 != 0
	d.DstId = u24(data[2:5])
	d.SrcId = u24(data[5:8])

	switch d.LCO {
	case LCRfssStsBcast, LCNetStsBcast:
		if len(data) >= tdulcHeaderLen+10 {
			p := data[tdulcHeaderLen:]
			d.Site.NetId = u24(p[0:3])
			d.Site.SysId = uint16(p[3])<<4 | uint16(p[4]>>4)
			d.Site.RfssId = p[5]
			d.Site.SiteId = p[6]
			d.Site.Lra = p[7]
			d.Site.ChannelId = (p[8] >> 4) & 0x0F
			d.Site.ChannelNo = (uint16(p[8]&0x0F) << 8) | uint16(p[9])
		}
	}
	return d, nil
}

// EncodeTDULC is the mirror of DecodeTDULC.
//
// setEncrypted(lc.getEmergency()) on the TDULC side of the original
// source appears copy-pasted from the emergency field and is
// preserved rather than silently corrected: this
// codec has no separate "encrypted" bit at all, so Emergency alone
// carries both meanings here, same as the original's bug in effect.
func EncodeTDULC(d *TDULC, fec FECCodec) []byte {
	header := make([]byte, tdulcHeaderLen)
	header[0] = byte(d.LCO) & 0x3F
	if d.Emergency {
		header[0] |= 0x40
	}
	putU24(header[2:5], d.DstId)
	putU24(header[5:8], d.SrcId)

	var payload []byte
	switch d.LCO {
	case LCRfssStsBcast, LCNetStsBcast:
		payload = make([]byte, 10)
		putU24(payload[0:3], d.Site.NetId)
		payload[3] = byte(d.Site.SysId >> 4)
		payload[4] = byte(d.Site.SysId<<4) & 0xF0
		payload[5] = d.Site.RfssId
		payload[6] = d.Site.SiteId
		payload[7] = d.Site.Lra
		payload[8] = (d.Site.ChannelId&0x0F)<<4 | byte((d.Site.ChannelNo>>8)&0x0F)
		payload[9] = byte(d.Site.ChannelNo)
	}

	data := append(header, payload...)
	if fec != nil {
		data = fec.ApplyTDULC(data)
	}
	return data
}
