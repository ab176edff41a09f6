package codec

// LCO is the Link Control Opcode carried by every TSBK/TDULC message.
// Values below are the message-level opcode assignments this core
// uses internally; the wire-level trellis/CRC framing that would
// carry these over the air is a codec-library concern outside this
// package.
type LCO byte

// Standard (MFId == MFIdStandard) shared IOSP opcodes: meaningful on
// both RF and network, inbound and outbound.
const (
	LCOGrpVch      LCO = 0x00 // GRP_VCH: group voice channel grant
	LCOUuVch       LCO = 0x04 // UU_VCH: unit-to-unit voice channel grant
	LCOUuAns       LCO = 0x05 // UU_ANS: unit-to-unit answer response
	LCOTeleIntAns  LCO = 0x0A // TELE_INT_ANS: telephone interconnect answer
	LCOStsUpdt     LCO = 0x18 // STS_UPDT: status update
	LCOMsgUpdt     LCO = 0x1C // MSG_UPDT: message update
	LCOCallAlrt    LCO = 0x1F // CALL_ALRT: call alert
	LCOAckRsp      LCO = 0x20 // ACK_RSP: acknowledge response
	LCOExtFnct     LCO = 0x24 // EXT_FNCT: extended function command
	LCOGrpAff      LCO = 0x28 // GRP_AFF: group affiliation request/response
	LCOUReg        LCO = 0x2C // U_REG: unit registration request/response
)

// ISP-only opcodes: meaningful inbound (RF/network to engine) only.
const (
	LCOCanSrvReq   LCO = 0x23 // CAN_SRV_REQ: cancel service request
	LCOGrpAffQRsp  LCO = 0x29 // GRP_AFF_Q_RSP: group affiliation query response
	LCOUDeregReq   LCO = 0x2B // U_DEREG_REQ: unit deregistration request
	LCOLocRegReq   LCO = 0x2D // LOC_REG_REQ: location registration request
)

// OSP-only opcodes: emitted by the engine only.
const (
	LCOGrpAffQ      LCO = 0x2A // GRP_AFF_Q: group affiliation query
	LCOURegCmd      LCO = 0x2E // U_REG_CMD: unit registration command
	LCOUDeregAck    LCO = 0x2F // U_DEREG_ACK: unit deregistration acknowledge
	LCODenyRsp      LCO = 0x27 // DENY_RSP: deny response
	LCOQueRsp       LCO = 0x21 // QUE_RSP: queued response
	LCOIdenUpVU     LCO = 0x33 // IDEN_UP_VU: channel identifier update, VHF/UHF
	LCOIdenUp       LCO = 0x34 // IDEN_UP: channel identifier update
	LCORfssStsBcast LCO = 0x3A // RFSS_STS_BCAST: RF subsystem status broadcast
	LCONetStsBcast  LCO = 0x3B // NET_STS_BCAST: network status broadcast
	LCOAdjStsBcast  LCO = 0x3C // ADJ_STS_BCAST: adjacent site status broadcast
	LCOSndcpChAnn   LCO = 0x3D // SNDCP_CH_ANN: SNDCP channel announcement
)

// Manufacturer ID for the standard, non-vendor-specific opcode space.
const MFIdStandard byte = 0x00

// MFIdMotorola is the manufacturer ID Motorola-specific opcodes are
// tagged with. The LCO byte values below overlap the standard space
// above; (MFId, LCO) together identify the opcode, matching how real
// P25 equipment multiplexes vendor opcodes onto the same six-bit LCO
// field.
const MFIdMotorola byte = 0x90

const (
	LCOMotGrgAdd LCO = 0x01 // MOT_GRG_ADD: Motorola group regroup add (patch supergroup)
	LCOMotPshCch LCO = 0x02 // MOT_PSH_CCH: Motorola control channel push
	LCOMotCcBsi  LCO = 0x0B // MOT_CC_BSI: Motorola control channel base station identifier
)

// String renders the opcode name, primarily for log messages.
func (l LCO) String() string {
	switch l {
	case LCOGrpVch:
		return "GRP_VCH"
	case LCOUuVch:
		return "UU_VCH"
	case LCOUuAns:
		return "UU_ANS"
	case LCOTeleIntAns:
		return "TELE_INT_ANS"
	case LCOStsUpdt:
		return "STS_UPDT"
	case LCOMsgUpdt:
		return "MSG_UPDT"
	case LCOCallAlrt:
		return "CALL_ALRT"
	case LCOAckRsp:
		return "ACK_RSP"
	case LCOExtFnct:
		return "EXT_FNCT"
	case LCOGrpAff:
		return "GRP_AFF"
	case LCOUReg:
		return "U_REG"
	case LCOCanSrvReq:
		return "CAN_SRV_REQ"
	case LCOGrpAffQRsp:
		return "GRP_AFF_Q_RSP"
	case LCOUDeregReq:
		return "U_DEREG_REQ"
	case LCOLocRegReq:
		return "LOC_REG_REQ"
	case LCOGrpAffQ:
		return "GRP_AFF_Q"
	case LCOURegCmd:
		return "U_REG_CMD"
	case LCOUDeregAck:
		return "U_DEREG_ACK"
	case LCODenyRsp:
		return "DENY_RSP"
	case LCOQueRsp:
		return "QUE_RSP"
	case LCOIdenUpVU:
		return "IDEN_UP_VU"
	case LCOIdenUp:
		return "IDEN_UP"
	case LCORfssStsBcast:
		return "RFSS_STS_BCAST"
	case LCONetStsBcast:
		return "NET_STS_BCAST"
	case LCOAdjStsBcast:
		return "ADJ_STS_BCAST"
	case LCOSndcpChAnn:
		return "SNDCP_CH_ANN"
	case LCOMotGrgAdd:
		return "MOT_GRG_ADD"
	case LCOMotPshCch:
		return "MOT_PSH_CCH"
	case LCOMotCcBsi:
		return "MOT_CC_BSI"
	default:
		return "UNKNOWN"
	}
}

// TDULC link control opcodes. A much smaller surface than TSBK's:
// TDULC only terminates voice calls.
const (
	LCGroup      LCO = 0x00 // LC_GROUP: group voice channel user
	LCPrivate    LCO = 0x03 // LC_PRIVATE: unit-to-unit voice channel user
	LCRfssStsBcast LCO = 0x3A
	LCNetStsBcast  LCO = 0x3B
	LCCallTerm     LCO = 0x2F // LC_CALL_TERM: call termination
)

// ResponseCode is carried by UU_ANS and TELE_INT_ANS.
type ResponseCode byte

const (
	ResponseProceed ResponseCode = 0x20
	ResponseDeny    ResponseCode = 0x21
	ResponseWait    ResponseCode = 0x22
)

// DenyReason enumerates the reasons DENY_RSP carries in TSBK.Value.
type DenyReason byte

const (
	DenyNone               DenyReason = 0x00
	DenyReqUnitNotValid    DenyReason = 0x01
	DenyTgtUnitNotValid    DenyReason = 0x02
	DenyTgtGroupNotValid   DenyReason = 0x03
	DenyReqUnitNotAuth     DenyReason = 0x04
	DenyPttCollide         DenyReason = 0x05
	DenySysUnsupportedSvc  DenyReason = 0x06
	DenyTgtUnitRefused     DenyReason = 0x07
)

// QueueReason enumerates the reasons QUEUED_RSP carries in TSBK.Value.
type QueueReason byte

const (
	QueueNone                QueueReason = 0x00
	QueueChnResourceNotAvail QueueReason = 0x01
	QueueTgtUnitQueued       QueueReason = 0x02
)

// ExtFunction enumerates the status-command subprotocol's EXT_FNCT
// verbs.
type ExtFunction byte

const (
	ExtFunctionCheck     ExtFunction = 0x0A
	ExtFunctionInhibit   ExtFunction = 0x7F
	ExtFunctionUninhibit ExtFunction = 0x7E
)

// AffResponse enumerates GRP_AFF's response byte, carried in
// TSBK.Value alongside STS_UPDT/MSG_UPDT.
type AffResponse byte

const (
	AffAccept  AffResponse = 0x00
	AffDeny    AffResponse = 0x01
	AffRefused AffResponse = 0x02
	AffFailed  AffResponse = 0x03
)
