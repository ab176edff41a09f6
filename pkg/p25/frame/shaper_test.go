package frame

import (
	"testing"

	"github.com/dbehnke/p25-cc/pkg/p25/codec"
)

type fakeSink struct {
	frames [][]byte
	clears int
}

func (f *fakeSink) Enqueue(frame []byte) { f.frames = append(f.frames, frame) }
func (f *fakeSink) Clear()               { f.clears++ }

type fakeFEC struct{}

func (fakeFEC) Sync() []byte                 { return []byte{0xAA, 0xBB} }
func (fakeFEC) NID(duid byte) []byte         { return []byte{duid} }
func (fakeFEC) SetBusyBits(f []byte, a, b bool) []byte { return f }
func (fakeFEC) SetIdleBits(f []byte, a, b bool) []byte { return f }
func (fakeFEC) Interleave(triple []byte) []byte        { return triple }

func TestWriteRFTSDUSBFTagsAndSyncsFrame(t *testing.T) {
	modem := &fakeSink{}
	net := &fakeSink{}
	s := New(Config{SkipSBFPreamble: true}, fakeFEC{}, modem, net)

	tsbk := &codec.TSBK{LCO: codec.LCOGrpVch, SrcId: 1001, DstId: 5000, ChannelNo: 2}
	s.WriteRFTSDUSBF(tsbk, nil, false, false)

	if len(modem.frames) != 1 {
		t.Fatalf("expected 1 modem frame, got %d", len(modem.frames))
	}
	frame := modem.frames[0]
	if frame[0] != TagData || frame[1] != 0x00 {
		t.Fatalf("expected modem tag prefix, got %x", frame[:2])
	}
	if len(net.frames) != 1 {
		t.Fatalf("expected frame mirrored to network queue, got %d", len(net.frames))
	}
	if !tsbk.LastBlock {
		t.Fatal("expected SBF to mark LastBlock true")
	}
}

func TestWriteRFTSDUSBFNoNetworkSuppressesMirror(t *testing.T) {
	modem := &fakeSink{}
	net := &fakeSink{}
	s := New(Config{SkipSBFPreamble: true}, fakeFEC{}, modem, net)

	s.WriteRFTSDUSBF(&codec.TSBK{LCO: codec.LCOGrpVch}, nil, true, false)
	if len(net.frames) != 0 {
		t.Fatalf("expected no network mirror when noNetwork set, got %d", len(net.frames))
	}
}

func TestWriteRFTSDUSBFPreamble(t *testing.T) {
	modem := &fakeSink{}
	s := New(Config{SkipSBFPreamble: false}, fakeFEC{}, modem, nil)
	s.WriteRFTSDUSBF(&codec.TSBK{LCO: codec.LCOGrpVch}, nil, true, false)
	if len(modem.frames) != 2 {
		t.Fatalf("expected preamble + SBF frames, got %d", len(modem.frames))
	}
}

func TestWriteRFTSDUSBFReroutesToMBFWhenContinuousControl(t *testing.T) {
	modem := &fakeSink{}
	s := New(Config{ContinuousControl: true, Duplex: true, SkipSBFPreamble: true}, fakeFEC{}, modem, nil)

	s.WriteRFTSDUSBF(&codec.TSBK{LCO: codec.LCOIdenUp}, nil, true, false)
	s.WriteRFTSDUSBF(&codec.TSBK{LCO: codec.LCORfssStsBcast}, nil, true, false)
	if len(modem.frames) != 0 {
		t.Fatalf("expected no SBF frames while rerouted to MBF, got %d", len(modem.frames))
	}
	s.WriteRFTSDUSBF(&codec.TSBK{LCO: codec.LCONetStsBcast}, nil, true, false)
	if len(modem.frames) != 1 {
		t.Fatalf("expected one triple frame after third MBF block, got %d", len(modem.frames))
	}
}

func TestWriteRFTSDUMBFAssemblesTripleAndResets(t *testing.T) {
	modem := &fakeSink{}
	s := New(Config{Duplex: true}, fakeFEC{}, modem, nil)

	t1 := &codec.TSBK{LCO: codec.LCOIdenUp}
	t2 := &codec.TSBK{LCO: codec.LCORfssStsBcast}
	t3 := &codec.TSBK{LCO: codec.LCONetStsBcast}

	s.WriteRFTSDUMBF(t1, nil, false)
	s.WriteRFTSDUMBF(t2, nil, false)
	if len(modem.frames) != 0 {
		t.Fatalf("expected no frame before third block, got %d", len(modem.frames))
	}
	if t1.LastBlock || t2.LastBlock {
		t.Fatal("only the third block should be marked LastBlock")
	}

	s.WriteRFTSDUMBF(t3, nil, false)
	if !t3.LastBlock {
		t.Fatal("expected third block marked LastBlock")
	}
	if len(modem.frames) != 1 {
		t.Fatalf("expected exactly one triple frame, got %d", len(modem.frames))
	}
	if s.mbf.Cursor() != 0 {
		t.Fatalf("expected cursor reset after triple, got %d", s.mbf.Cursor())
	}
}

func TestWriteRFTSDUMBFSimplexDisablesMBF(t *testing.T) {
	modem := &fakeSink{}
	s := New(Config{Duplex: false}, fakeFEC{}, modem, nil)
	s.WriteRFTSDUMBF(&codec.TSBK{LCO: codec.LCOIdenUp}, nil, false)
	if s.mbf.Cursor() != 0 {
		t.Fatalf("expected simplex MBF write to leave cursor at 0, got %d", s.mbf.Cursor())
	}
	if len(modem.frames) != 0 {
		t.Fatal("expected no frames in simplex MBF write")
	}
}

func TestWriteRFTDULCChanGrantReplaysFourTimes(t *testing.T) {
	modem := &fakeSink{}
	s := New(Config{Duplex: true}, fakeFEC{}, modem, nil)
	s.WriteRFTDULCChanGrant(true, 1001, 5000, nil)
	if len(modem.frames) != 4 {
		t.Fatalf("expected 4 TDULC replays, got %d", len(modem.frames))
	}
}

func TestWriteRFTDULCChanReleaseSequence(t *testing.T) {
	modem := &fakeSink{}
	s := New(Config{Duplex: true, HangCount: 6}, fakeFEC{}, modem, nil)
	netSite := &codec.TDULC{LCO: codec.LCNetStsBcast}
	rfssSite := &codec.TDULC{LCO: codec.LCRfssStsBcast}
	s.WriteRFTDULCChanRelease(true, 1001, 5000, netSite, rfssSite, nil)

	// hangCount/2 = 3 repetitions of 3 TDULCs + 1 terminator = 10.
	if len(modem.frames) != 10 {
		t.Fatalf("expected 10 TDULC frames for hangCount=6, got %d", len(modem.frames))
	}
}

func TestWriteRFTSDUSBFClearBeforeWrite(t *testing.T) {
	modem := &fakeSink{}
	s := New(Config{SkipSBFPreamble: true}, fakeFEC{}, modem, nil)
	s.WriteRFTSDUSBF(&codec.TSBK{LCO: codec.LCOGrpVch}, nil, true, true)
	if modem.clears != 1 {
		t.Fatalf("expected modem queue cleared once, got %d", modem.clears)
	}
}
