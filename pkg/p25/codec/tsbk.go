package codec

import (
	"github.com/dbehnke/p25-cc/pkg/p25/site"
)

// tsbkHeaderLen is the length, in bytes, of the common TSBK header
// this codec packs ahead of any LCO-specific payload: flags+LCO (1),
// MFId (1), DstId u24 (3), SrcId u24 (3).
const tsbkHeaderLen = 8

// TSBK is a tagged message: the common header plus whichever fields
// are meaningful for its LCO variant. Fields not named for a given
// LCO variant are zeroed on Encode and ignored on Decode. TSBK is
// deliberately flat (one struct, many optional fields) rather than
// modeled via inheritance, avoiding dynamic dispatch across variants.
type TSBK struct {
	LCO       LCO
	MFId      byte
	LastBlock bool
	Protect   bool
	SrcId     uint32 // u24
	DstId     uint32 // u24

	// GRP_VCH / UU_VCH grant payload.
	ChannelId byte   // u4
	ChannelNo uint16 // u12
	Emergency bool
	Priority  byte

	// UU_ANS / TELE_INT_ANS.
	Response ResponseCode

	// STS_UPDT / MSG_UPDT.
	Value byte

	// ACK_RSP.
	AIV         bool
	ServiceType LCO

	// EXT_FNCT.
	ExtFunction ExtFunction
	ArgId       uint32 // u24

	// DENY_RSP / QUE_RSP.
	DenyReason  DenyReason
	QueueReason QueueReason

	// U_REG / U_REG_CMD / U_DEREG_ACK / broadcast opcodes.
	Site site.Data

	// MOT_GRG_ADD.
	PatchSuperGroupId uint32
	PatchGroup1Id     uint32
	PatchGroup2Id     uint32
	PatchGroup3Id     uint32

	// Raw carries the undecoded payload for an unrecognized LCO, so
	// the frame can still be logged or re-serialized untouched.
	Raw []byte
}

// FECCodec is the wire-level collaborator this package defers to for
// CRC/FEC/trellis framing. A nil FECCodec is valid: Decode/Encode then operate purely
// on the message-level bytes.
type FECCodec interface {
	ValidateTSBK(data []byte) error
	ApplyTSBK(data []byte) []byte
	ValidateTDULC(data []byte) error
	ApplyTDULC(data []byte) []byte
}

// DecodeTSBK validates (via fec, if non-nil) and parses a TSBK
// message. Unknown LCOs are returned with ErrUnknownLCO and the raw
// payload retained in TSBK.Raw.
func DecodeTSBK(data []byte, fec FECCodec) (*TSBK, error) {
	if fec != nil {
		if err := fec.ValidateTSBK(data); err != nil {
			return nil, err
		}
	}
	if len(data) < tsbkHeaderLen {
		return nil, ErrTruncated
	}

	t := &TSBK{}
	t.LastBlock = data[0]&0x80 != 0
	t.Protect = data[0]&0x40 != 0
	t.LCO = LCO(data[0] & 0x3F)
	t.MFId = data[1]
	t.DstId = u24(data[2:5])
	t.SrcId = u24(data[5:8])

	payload := data[tsbkHeaderLen:]

	if !knownLCO(t.MFId, t.LCO) {
		t.Raw = append([]byte{}, payload...)
		return t, ErrUnknownLCO
	}

	decodeTSBKPayload(t, payload)
	return t, nil
}

// EncodeTSBK serializes a TSBK. When raw is false the FECCodec (if
// any) is asked to apply CRC/FEC before the bytes are returned; when
// raw is true the pre-FEC message-level payload is returned directly
// (used when stacking blocks into an MBF triple).
func EncodeTSBK(t *TSBK, raw bool, fec FECCodec) []byte {
	header := make([]byte, tsbkHeaderLen)
	header[0] = byte(t.LCO) & 0x3F
	if t.LastBlock {
		header[0] |= 0x80
	}
	if t.Protect {
		header[0] |= 0x40
	}
	header[1] = t.MFId
	putU24(header[2:5], t.DstId)
	putU24(header[5:8], t.SrcId)

	payload := encodeTSBKPayload(t)
	data := append(header, payload...)

	if !raw && fec != nil {
		data = fec.ApplyTSBK(data)
	}
	return data
}

// knownLCO reports whether (mfId, lco) identifies an opcode this
// codec understands.
func knownLCO(mfId byte, lco LCO) bool {
	if mfId == MFIdMotorola {
		switch lco {
		case LCOMotGrgAdd, LCOMotPshCch, LCOMotCcBsi:
			return true
		default:
			return false
		}
	}
	switch lco {
	case LCOGrpVch, LCOUuVch, LCOUuAns, LCOTeleIntAns, LCOStsUpdt, LCOMsgUpdt,
		LCOCallAlrt, LCOAckRsp, LCOExtFnct, LCOGrpAff, LCOUReg,
		LCOCanSrvReq, LCOGrpAffQRsp, LCOUDeregReq, LCOLocRegReq,
		LCOGrpAffQ, LCOURegCmd, LCOUDeregAck, LCODenyRsp, LCOQueRsp,
		LCOIdenUpVU, LCOIdenUp, LCORfssStsBcast, LCONetStsBcast,
		LCOAdjStsBcast, LCOSndcpChAnn:
		return true
	default:
		return false
	}
}

func isBroadcast(lco LCO) bool {
	switch lco {
	case LCOIdenUp, LCOIdenUpVU, LCORfssStsBcast, LCONetStsBcast, LCOAdjStsBcast, LCOSndcpChAnn:
		return true
	default:
		return false
	}
}

func isGrant(lco LCO) bool {
	return lco == LCOGrpVch || lco == LCOUuVch
}

// decodeTSBKPayload fills the LCO-specific fields of t from the
// opcode payload bytes. Fields not meaningful for t.LCO are left at
// their zero value.
func decodeTSBKPayload(t *TSBK, p []byte) {
	switch {
	case t.MFId == MFIdMotorola && t.LCO == LCOMotGrgAdd:
		if len(p) >= 12 {
			t.PatchSuperGroupId = u24(p[0:3])
			t.PatchGroup1Id = u24(p[3:6])
			t.PatchGroup2Id = u24(p[6:9])
			t.PatchGroup3Id = u24(p[9:12])
		}
		return
	case isGrant(t.LCO):
		if len(p) >= 4 {
			t.ChannelId = (p[0] >> 4) & 0x0F
			t.ChannelNo = (uint16(p[0]&0x0F) << 8) | uint16(p[1])
			t.Emergency = p[2]&0x80 != 0
			t.Priority = p[2] & 0x07
		}
		return
	case t.LCO == LCOUuAns || t.LCO == LCOTeleIntAns:
		if len(p) >= 1 {
			t.Response = ResponseCode(p[0])
		}
		return
	case t.LCO == LCOStsUpdt || t.LCO == LCOMsgUpdt || t.LCO == LCOGrpAff:
		if len(p) >= 1 {
			t.Value = p[0]
		}
		return
	case t.LCO == LCOAckRsp:
		if len(p) >= 2 {
			t.AIV = p[0]&0x80 != 0
			t.ServiceType = LCO(p[1] & 0x3F)
		}
		return
	case t.LCO == LCOExtFnct:
		if len(p) >= 4 {
			t.ExtFunction = ExtFunction(p[0])
			t.ArgId = u24(p[1:4])
		}
		return
	case t.LCO == LCODenyRsp:
		if len(p) >= 2 {
			t.DenyReason = DenyReason(p[0])
			t.ServiceType = LCO(p[1] & 0x3F)
		}
		return
	case t.LCO == LCOQueRsp:
		if len(p) >= 2 {
			t.QueueReason = QueueReason(p[0])
			t.ServiceType = LCO(p[1] & 0x3F)
		}
		return
	case isBroadcast(t.LCO) || t.LCO == LCOUReg || t.LCO == LCOURegCmd || t.LCO == LCOUDeregAck:
		if len(p) >= 10 {
			t.Site.NetId = u24(p[0:3])
			t.Site.SysId = uint16(p[3])<<4 | uint16(p[4]>>4)
			t.Site.RfssId = p[5]
			t.Site.SiteId = p[6]
			t.Site.Lra = p[7]
			t.Site.ChannelId = (p[8] >> 4) & 0x0F
			t.Site.ChannelNo = (uint16(p[8]&0x0F) << 8) | uint16(p[9])
			if len(p) >= 11 {
				t.Site.CFVA = p[10] & 0x0F
			}
		}
		return
	default:
		// CALL_ALRT, CAN_SRV_REQ, GRP_AFF_Q, GRP_AFF_Q_RSP,
		// U_DEREG_REQ, LOC_REG_REQ carry no payload beyond src/dst.
		return
	}
}

// encodeTSBKPayload is the mirror of decodeTSBKPayload.
func encodeTSBKPayload(t *TSBK) []byte {
	switch {
	case t.MFId == MFIdMotorola && t.LCO == LCOMotGrgAdd:
		p := make([]byte, 12)
		putU24(p[0:3], t.PatchSuperGroupId)
		putU24(p[3:6], t.PatchGroup1Id)
		putU24(p[6:9], t.PatchGroup2Id)
		putU24(p[9:12], t.PatchGroup3Id)
		return p
	case isGrant(t.LCO):
		p := make([]byte, 4)
		p[0] = (t.ChannelId&0x0F)<<4 | byte((t.ChannelNo>>8)&0x0F)
		p[1] = byte(t.ChannelNo)
		if t.Emergency {
			p[2] |= 0x80
		}
		p[2] |= t.Priority & 0x07
		return p
	case t.LCO == LCOUuAns || t.LCO == LCOTeleIntAns:
		return []byte{byte(t.Response)}
	case t.LCO == LCOStsUpdt || t.LCO == LCOMsgUpdt || t.LCO == LCOGrpAff:
		return []byte{t.Value}
	case t.LCO == LCOAckRsp:
		aiv := byte(0)
		if t.AIV {
			aiv = 0x80
		}
		return []byte{aiv, byte(t.ServiceType) & 0x3F}
	case t.LCO == LCOExtFnct:
		p := make([]byte, 4)
		p[0] = byte(t.ExtFunction)
		putU24(p[1:4], t.ArgId)
		return p
	case t.LCO == LCODenyRsp:
		return []byte{byte(t.DenyReason), byte(t.ServiceType) & 0x3F}
	case t.LCO == LCOQueRsp:
		return []byte{byte(t.QueueReason), byte(t.ServiceType) & 0x3F}
	case isBroadcast(t.LCO) || t.LCO == LCOUReg || t.LCO == LCOURegCmd || t.LCO == LCOUDeregAck:
		p := make([]byte, 11)
		putU24(p[0:3], t.Site.NetId)
		p[3] = byte(t.Site.SysId >> 4)
		p[4] = byte(t.Site.SysId<<4) & 0xF0
		p[5] = t.Site.RfssId
		p[6] = t.Site.SiteId
		p[7] = t.Site.Lra
		p[8] = (t.Site.ChannelId&0x0F)<<4 | byte((t.Site.ChannelNo>>8)&0x0F)
		p[9] = byte(t.Site.ChannelNo)
		p[10] = t.Site.CFVA & 0x0F
		return p
	default:
		return nil
	}
}

func u24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func putU24(dst []byte, v uint32) {
	dst[0] = byte(v >> 16)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v)
}
