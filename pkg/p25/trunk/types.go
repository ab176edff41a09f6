package trunk

import (
	"time"

	"github.com/dbehnke/p25-cc/pkg/p25/codec"
)

// ACL is the access-control collaborator the engine consults per RF
// TSBK through Validate and ValidateTG; the engine does not call
// ValidateReg. *acl.Set satisfies this, nil-safely.
type ACL interface {
	Validate(id uint32) bool
	ValidateTG(tgid uint32) bool
	ValidateReg(id uint32) bool
}

// ActivityLog is the optional external activity-log collaborator. All
// methods are expected to be cheap and non-blocking; a nil
// ActivityLog is valid and every call below is a no-op against it.
type ActivityLog interface {
	RecordGrant(dstId uint32, chNo uint16, reused bool)
	RecordGrantReleased(dstId uint32, reason string)
	RecordDeny(srcId, dstId uint32, serviceType codec.LCO, reason codec.DenyReason)
	RecordRegistration(srcId uint32, registered bool)
	RecordStatusCommand(srcId uint32, value byte)
}

// MetricsSink is the optional Prometheus-backed metrics collaborator.
// A nil MetricsSink is valid; every engine call site below guards it.
type MetricsSink interface {
	IncDeny(reason string)
	IncQueue(reason string)
	SetGrantCount(n int)
	SetFreeChannelCount(n int)
	SetUnitRegCount(n int)
	SetAffCount(n int)
	IncGrantAcquired(reused bool)
	IncGrantReleased(reason string)
	SetAdjSiteFailure(siteId byte, failed bool)
}

// RFState is the subset of the surrounding RF front-end's state this
// engine needs to make grant decisions. The physical RF/NET FSM
// itself is transport-layer, out of scope here; the transport drives
// these through SetRFState/SetNetState.
type RFState int

const (
	RFIdle RFState = iota // LISTENING or DATA: a new grant may proceed
	RFBusy
)

// Config carries the Trunk Engine's runtime options, including the
// AckRspSwapWorkaround interop flag.
type Config struct {
	Verbose bool
	Debug   bool

	Control        bool
	VerifyReg      bool
	VerifyAff      bool
	InhibitIllegal bool
	NoStatusAck    bool
	NoMessageAck   bool

	StatusCmdEnable       bool
	StatusRadioCheck      byte
	StatusRadioInhibit    byte
	StatusRadioUninhibit  byte
	StatusRadioForceReg   byte
	StatusRadioForceDereg byte

	VoiceChCnt      byte
	CCBcstInterval  time.Duration
	PatchSuperGroup uint32
	HangCount       uint32

	Duplex            bool
	ContinuousControl bool

	// AckRspSwapWorkaround controls whether an ACK_RSP with AIV==false
	// has its src/dst swapped, a known interop workaround for broken
	// endpoints, kept on by default but switchable off.
	AckRspSwapWorkaround bool
}

// StatusCommand is the one-slot status-command preprocessor state.
type StatusCommand struct {
	StatusSrcId uint32
	StatusValue byte
}

// Armed reports whether a status update is waiting for a matching
// CALL_ALRT to complete the subprotocol.
func (s StatusCommand) Armed() bool { return s.StatusSrcId != 0 }
