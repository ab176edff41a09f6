package trunk

import (
	"testing"
	"time"

	"github.com/dbehnke/p25-cc/pkg/logger"
	"github.com/dbehnke/p25-cc/pkg/p25/acl"
	"github.com/dbehnke/p25-cc/pkg/p25/codec"
	"github.com/dbehnke/p25-cc/pkg/p25/frame"
	"github.com/dbehnke/p25-cc/pkg/p25/registry"
	"github.com/dbehnke/p25-cc/pkg/p25/site"
)

type fakeSink struct{ frames [][]byte }

func (f *fakeSink) Enqueue(fr []byte) { f.frames = append(f.frames, fr) }

type fakeActivity struct {
	grants     int
	releases   int
	denies     int
	statusCmds int
}

func (a *fakeActivity) RecordGrant(uint32, uint16, bool)                { a.grants++ }
func (a *fakeActivity) RecordGrantReleased(uint32, string)              { a.releases++ }
func (a *fakeActivity) RecordDeny(uint32, uint32, codec.LCO, codec.DenyReason) { a.denies++ }
func (a *fakeActivity) RecordRegistration(uint32, bool)                 {}
func (a *fakeActivity) RecordStatusCommand(uint32, byte)                { a.statusCmds++ }

func testEngine(t *testing.T, cfg Config) (*Engine, *fakeSink, *fakeSink) {
	e, modem, net, _ := testEngineWithActivity(t, cfg)
	return e, modem, net
}

func testEngineWithActivity(t *testing.T, cfg Config) (*Engine, *fakeSink, *fakeSink, *fakeActivity) {
	t.Helper()
	cfg.Control = true
	cfg.Duplex = true
	st := site.New(site.Data{SiteId: 1, NetId: 52, SysId: 0x294, RfssId: 1, ChannelId: 1, ChannelNo: 10}, "W1AW")
	pool := registry.NewVoiceChannelPool([]uint16{2, 3}, GrantTimerTimeout)
	reg := registry.New(AdjSiteUpdateCnt, pool)
	set, err := acl.NewSet("", "", "")
	if err != nil {
		t.Fatalf("acl.NewSet: %v", err)
	}
	modem := &fakeSink{}
	net := &fakeSink{}
	shaper := frame.New(frame.Config{Duplex: true, SkipSBFPreamble: true, HangCount: cfg.HangCount}, nil, modem, net)
	log := logger.New(logger.Config{Level: "error"})
	activity := &fakeActivity{}
	e := New(cfg, st, reg, set, shaper, nil, log, activity, nil)
	return e, modem, net, activity
}

func TestHandleGrpVchIssuesGrant(t *testing.T) {
	e, modem, _ := testEngine(t, Config{})
	e.dispatchRF(&codec.TSBK{LCO: codec.LCOGrpVch, SrcId: 1001, DstId: 5000})
	// One GRP_VCH SBF plus a four-times TDULC channel-grant replay.
	if len(modem.frames) != 5 {
		t.Fatalf("expected 5 modem frames (1 grant SBF + 4 TDULC replays), got %d", len(modem.frames))
	}
	if !e.reg.HasGrant(5000) {
		t.Fatal("expected grant recorded for dst 5000")
	}
}

func TestHandleGrpVchDeniesPTTCollision(t *testing.T) {
	e, modem, _ := testEngine(t, Config{})
	e.SetRFState(RFBusy)
	e.dispatchRF(&codec.TSBK{LCO: codec.LCOGrpVch, SrcId: 1001, DstId: 5000})
	if e.reg.HasGrant(5000) {
		t.Fatal("expected no grant while RF busy")
	}
	if len(modem.frames) != 1 {
		t.Fatalf("expected exactly one DENY_RSP frame, got %d", len(modem.frames))
	}
}

func TestGrantExpiryReplaysChanRelease(t *testing.T) {
	e, modem, _ := testEngine(t, Config{HangCount: 2})
	e.dispatchRF(&codec.TSBK{LCO: codec.LCOGrpVch, SrcId: 1001, DstId: 5000})
	before := len(modem.frames)

	e.Clock(GrantTimerTimeout + time.Second)

	if e.reg.HasGrant(5000) {
		t.Fatal("expected grant released after full timeout elapses")
	}
	if len(modem.frames) <= before {
		t.Fatal("expected chan-release TDULC frames enqueued on expiry")
	}
}

// TestStatusCommandDisarmReadsCurrentTSBK exercises the disarm check
// against an intervening TSBK that is neither CALL_ALRT nor EXT_FNCT:
// the armed slot must be cleared before it has a chance to be
// consumed.
func TestStatusCommandDisarmReadsCurrentTSBK(t *testing.T) {
	e, _, _ := testEngine(t, Config{StatusCmdEnable: true, StatusRadioInhibit: 0x05})

	e.dispatchRF(&codec.TSBK{LCO: codec.LCOStsUpdt, SrcId: 9000, DstId: 4001, Value: 0x05})
	if !e.status.Armed() {
		t.Fatal("expected status command armed by matching STS_UPDT")
	}

	// A MSG_UPDT intervenes before the matching CALL_ALRT arrives; its
	// own LCO (not the previously-dispatched STS_UPDT's) decides the
	// disarm, and MSG_UPDT is neither CALL_ALRT nor EXT_FNCT.
	e.dispatchRF(&codec.TSBK{LCO: codec.LCOMsgUpdt, SrcId: 1234, DstId: 1})
	if e.status.Armed() {
		t.Fatal("expected disarm on an intervening non-CALL_ALRT/EXT_FNCT TSBK")
	}
}

// TestStatusCommandSurvivesToConsume is scenario S6: an armed status
// command (STS_UPDT keyed on its source unit) survives to the matching
// CALL_ALRT from that same source and is consumed into an EXT_FNCT
// addressed to the CALL_ALRT's destination, followed by the ACK_FNE
// that closes out the CALL_ALRT.
func TestStatusCommandSurvivesToConsume(t *testing.T) {
	e, modem, _ := testEngine(t, Config{StatusCmdEnable: true, StatusRadioCheck: 0x05, NoStatusAck: false})

	e.dispatchRF(&codec.TSBK{LCO: codec.LCOStsUpdt, SrcId: 1001, DstId: 4001, Value: 0x05})
	if !e.status.Armed() {
		t.Fatal("expected status command armed")
	}
	if len(modem.frames) != 1 {
		t.Fatalf("expected ACK_FNE(STS_UPDT), got %d frames", len(modem.frames))
	}

	e.dispatchRF(&codec.TSBK{LCO: codec.LCOCallAlrt, SrcId: 1001, DstId: 1002})
	if e.status.Armed() {
		t.Fatal("expected status command consumed and cleared")
	}
	if len(modem.frames) != 3 {
		t.Fatalf("expected EXT_FNCT(CHECK) + ACK_FNE(CALL_ALRT) appended, got %d total frames", len(modem.frames))
	}

	extFnct, err := codec.DecodeTSBK(modem.frames[1][2:], nil)
	if err != nil {
		t.Fatalf("decode EXT_FNCT: %v", err)
	}
	if extFnct.LCO != codec.LCOExtFnct || extFnct.SrcId != 1001 || extFnct.DstId != 1002 {
		t.Fatalf("expected EXT_FNCT src=1001 dst=1002, got LCO=%v src=%d dst=%d", extFnct.LCO, extFnct.SrcId, extFnct.DstId)
	}

	ack, err := codec.DecodeTSBK(modem.frames[2][2:], nil)
	if err != nil {
		t.Fatalf("decode ACK_FNE: %v", err)
	}
	if ack.LCO != codec.LCOAckRsp || ack.ServiceType != codec.LCOCallAlrt {
		t.Fatalf("expected ACK_FNE(CALL_ALRT), got LCO=%v serviceType=%v", ack.LCO, ack.ServiceType)
	}
}

// TestStatusCommandIgnoresMismatchedSource is the negative half of S6:
// a CALL_ALRT from a different source than the arming STS_UPDT is
// relayed normally rather than consumed.
func TestStatusCommandIgnoresMismatchedSource(t *testing.T) {
	e, modem, _ := testEngine(t, Config{StatusCmdEnable: true, StatusRadioCheck: 0x05, NoMessageAck: true})

	e.dispatchRF(&codec.TSBK{LCO: codec.LCOStsUpdt, SrcId: 1001, DstId: 4001, Value: 0x05})
	before := len(modem.frames)

	e.dispatchRF(&codec.TSBK{LCO: codec.LCOCallAlrt, SrcId: 9999, DstId: 1002})
	if !e.status.Armed() {
		t.Fatal("expected status command to remain armed across an unrelated CALL_ALRT")
	}
	if len(modem.frames) != before+1 {
		t.Fatalf("expected the CALL_ALRT relayed rather than consumed, got %d new frames", len(modem.frames)-before)
	}
}

func TestTeleIntAnsDenyBugSendsDuplicateAck(t *testing.T) {
	e, modem, _ := testEngine(t, Config{})
	e.dispatchRF(&codec.TSBK{LCO: codec.LCOTeleIntAns, SrcId: 1001, DstId: 5000, Response: codec.ResponseDeny})
	if len(modem.frames) != 2 {
		t.Fatalf("expected the faithful bug to write two ACK_RSP frames instead of one DENY_RSP, got %d", len(modem.frames))
	}
}

func TestAckRspSwapWorkaroundToggle(t *testing.T) {
	e, _, net := testEngine(t, Config{AckRspSwapWorkaround: true})
	e.dispatchRF(&codec.TSBK{LCO: codec.LCOAckRsp, SrcId: 1001, DstId: 2002, AIV: false})
	if len(net.frames) != 1 {
		t.Fatalf("expected 1 network frame, got %d", len(net.frames))
	}
	out, err := codec.DecodeTSBK(net.frames[0][2:], nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.SrcId != 2002 || out.DstId != 1001 {
		t.Fatalf("expected src/dst swapped to (2002,1001), got (%d,%d)", out.SrcId, out.DstId)
	}

	e2, _, net2 := testEngine(t, Config{AckRspSwapWorkaround: false})
	e2.dispatchRF(&codec.TSBK{LCO: codec.LCOAckRsp, SrcId: 1001, DstId: 2002, AIV: false})
	out2, err := codec.DecodeTSBK(net2.frames[0][2:], nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out2.SrcId != 1001 || out2.DstId != 2002 {
		t.Fatalf("expected src/dst left unswapped, got (%d,%d)", out2.SrcId, out2.DstId)
	}
}

func TestGrpAffAcceptsValidTGAndDeniesInvalid(t *testing.T) {
	set, err := acl.NewSet("", "", "DENY:9999")
	if err != nil {
		t.Fatalf("acl.NewSet: %v", err)
	}
	e, modem, _ := testEngine(t, Config{})
	e.acl = set

	e.dispatchRF(&codec.TSBK{LCO: codec.LCOGrpAff, SrcId: 1001, DstId: 5000})
	if !e.reg.HasAff(1001, 5000) {
		t.Fatal("expected affiliation recorded for valid TG")
	}
	if len(modem.frames) != 2 {
		t.Fatalf("expected ACK_FNE plus GRP_AFF response frame, got %d", len(modem.frames))
	}

	e.dispatchRF(&codec.TSBK{LCO: codec.LCOGrpAff, SrcId: 1002, DstId: 9999})
	if e.reg.HasAff(1002, 9999) {
		t.Fatal("expected no affiliation recorded for denied TG")
	}
}

func TestUDeregReqDeregistersRequestingUnit(t *testing.T) {
	e, _, _ := testEngine(t, Config{})
	e.reg.AddUnitReg(1001)
	e.dispatchRF(&codec.TSBK{LCO: codec.LCOUDeregReq, SrcId: 1001})
	if e.reg.HasUnitReg(1001) {
		t.Fatal("expected the requesting unit deregistered, not the well-known system id")
	}
}

func TestUuVchGrantsToValidUnit(t *testing.T) {
	e, modem, _ := testEngine(t, Config{})
	e.dispatchRF(&codec.TSBK{LCO: codec.LCOUuVch, SrcId: 1001, DstId: 1002})
	if !e.reg.HasGrant(1002) {
		t.Fatal("expected individual grant issued")
	}
	if len(modem.frames) == 0 {
		t.Fatal("expected frames enqueued for grant")
	}
}

func TestActivityLogRecordsGrantAndDeny(t *testing.T) {
	e, _, _, activity := testEngineWithActivity(t, Config{})
	e.dispatchRF(&codec.TSBK{LCO: codec.LCOGrpVch, SrcId: 1001, DstId: 5000})
	if activity.grants != 1 {
		t.Fatalf("expected 1 recorded grant, got %d", activity.grants)
	}

	e.SetRFState(RFBusy)
	e.dispatchRF(&codec.TSBK{LCO: codec.LCOGrpVch, SrcId: 1002, DstId: 6000})
	if activity.denies != 1 {
		t.Fatalf("expected 1 recorded deny, got %d", activity.denies)
	}
}

func TestAllCallGrantSkipsResourceAllocation(t *testing.T) {
	e, _, _ := testEngine(t, Config{})
	ok := e.writeRFGrant(true, 1001, TGIDAll, false)
	if !ok {
		t.Fatal("expected all-call grant to always succeed")
	}
	if e.reg.HasGrant(TGIDAll) {
		t.Fatal("expected all-call to bypass the channel pool entirely")
	}
}

func TestHandleURegAcceptsAndRegisters(t *testing.T) {
	e, modem, _ := testEngine(t, Config{})
	e.dispatchRF(&codec.TSBK{LCO: codec.LCOUReg, SrcId: 1001})
	if !e.reg.HasUnitReg(1001) {
		t.Fatal("expected unit registered")
	}
	if len(modem.frames) != 2 {
		t.Fatalf("expected ACK_FNE plus U_REG response frame, got %d", len(modem.frames))
	}
}

func TestHandleURegDeniesAndInhibitsInvalidSrc(t *testing.T) {
	set, err := acl.NewSet("", "DENY:1001", "")
	if err != nil {
		t.Fatalf("acl.NewSet: %v", err)
	}
	e, modem, _ := testEngine(t, Config{InhibitIllegal: true})
	e.acl = set

	e.dispatchRF(&codec.TSBK{LCO: codec.LCOUReg, SrcId: 1001})
	if e.reg.HasUnitReg(1001) {
		t.Fatal("expected registration refused for ACL-denied unit")
	}
	if len(modem.frames) != 2 {
		t.Fatalf("expected DENY_RSP plus EXT_FNCT(INHIBIT), got %d frames", len(modem.frames))
	}
	inhibit, err := codec.DecodeTSBK(modem.frames[1][2:], nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if inhibit.LCO != codec.LCOExtFnct || inhibit.ExtFunction != codec.ExtFunctionInhibit || inhibit.DstId != 1001 {
		t.Fatalf("expected EXT_FNCT(INHIBIT) targeting 1001, got LCO=%v fn=%v dst=%d", inhibit.LCO, inhibit.ExtFunction, inhibit.DstId)
	}
}

func TestHandleURegDeniesSysIdMismatch(t *testing.T) {
	e, modem, _ := testEngine(t, Config{})
	e.dispatchRF(&codec.TSBK{LCO: codec.LCOUReg, SrcId: 1001, Site: site.Data{SysId: 0x999}})
	if e.reg.HasUnitReg(1001) {
		t.Fatal("expected registration refused for mismatched sysId")
	}
	if len(modem.frames) != 1 {
		t.Fatalf("expected one DENY_RSP frame, got %d", len(modem.frames))
	}
	deny, err := codec.DecodeTSBK(modem.frames[0][2:], nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if deny.LCO != codec.LCODenyRsp || deny.DenyReason != codec.DenyReqUnitNotValid {
		t.Fatalf("expected DENY_RSP(ReqUnitNotValid), got LCO=%v reason=%v", deny.LCO, deny.DenyReason)
	}
}
