// Package frame is the Frame Shaper: it
// assembles encoded TSBK/TDULC payloads into single-block (SBF) or
// triple-block (MBF) TSDU bursts and TDULC frames, adds the modem tag
// prefix, and enqueues them to the modem and network transmit sinks.
package frame

import (
	"github.com/dbehnke/p25-cc/pkg/p25/codec"
)

// FEC is the frame-level collaborator supplying the sync pattern, NID
// field, busy/idle-bit patterns, and the 114->720 bit interleave
// permutation TIA-102 specifies. A nil FEC is
// valid, following codec.FECCodec's own nil-safe convention: Shaper
// then emits frames with empty sync/NID fields and an unpermuted
// triple body, which is how this package's own tests exercise the
// framing sequence without a real TIA-102 codec wired in.
type FEC interface {
	Sync() []byte
	NID(duid byte) []byte
	SetBusyBits(frame []byte, ss0, ss1 bool) []byte
	SetIdleBits(frame []byte, ss0, ss1 bool) []byte
	Interleave(triple []byte) []byte
}

// Sink receives fully-built, tag-prefixed frames ready for the wire —
// satisfied by the modem transmit queue and the network transmit
// queue.
type Sink interface {
	Enqueue(frame []byte)
}

// clearableSink is implemented by sinks that support being flushed
// before a fresh write.
type clearableSink interface {
	Clear()
}

// Config carries the Frame Shaper's wire-shaping options.
type Config struct {
	Duplex            bool
	ContinuousControl bool
	SkipSBFPreamble   bool
	HangCount         uint32
}

// Shaper is the Frame Shaper component.
type Shaper struct {
	cfg   Config
	fec   FEC
	modem Sink
	net   Sink

	mbf       MBFAssembler
	ccRunning bool
}

// New creates a Shaper. modem and net may be nil, in which case the
// corresponding enqueue calls are no-ops.
func New(cfg Config, fec FEC, modem, net Sink) *Shaper {
	return &Shaper{cfg: cfg, fec: fec, modem: modem, net: net}
}

// SetCCRunning reflects the engine's continuous-control-channel
// transmission state, which reroutes SBF writes into the MBF path.
func (s *Shaper) SetCCRunning(running bool) { s.ccRunning = running }

func (s *Shaper) sync() []byte {
	if s.fec == nil {
		return nil
	}
	return s.fec.Sync()
}

func (s *Shaper) nid(duid DUID) []byte {
	if s.fec == nil {
		return nil
	}
	return s.fec.NID(byte(duid))
}

func (s *Shaper) busyBits(frame []byte) []byte {
	if s.fec == nil {
		return frame
	}
	return s.fec.SetBusyBits(frame, true, true)
}

func (s *Shaper) idleBits(frame []byte) []byte {
	if s.fec == nil {
		return frame
	}
	return s.fec.SetIdleBits(frame, true, true)
}

func (s *Shaper) interleave(triple []byte) []byte {
	if s.fec == nil {
		return triple
	}
	return s.fec.Interleave(triple)
}

func (s *Shaper) enqueue(sink Sink, frame []byte, clearFirst bool) {
	if sink == nil {
		return
	}
	if clearFirst {
		if c, ok := sink.(clearableSink); ok {
			c.Clear()
		}
	}
	sink.Enqueue(frame)
}

func tagged(tag byte, body []byte) []byte {
	out := make([]byte, 0, len(body)+2)
	out = append(out, tag, 0x00)
	out = append(out, body...)
	return out
}

// writePreamble sends a bare sync+NID preamble frame ahead of an SBF,
// unless cfg.SkipSBFPreamble is set.
func (s *Shaper) writePreamble() {
	if s.cfg.SkipSBFPreamble {
		return
	}
	body := append(append([]byte{}, s.sync()...), s.nid(DUIDTSDU)...)
	s.enqueue(s.modem, tagged(TagData, body), false)
}

// WriteRFTSDUSBF builds a single-block TSDU from t and enqueues it to
// the modem (and, unless noNetwork, the network) transmit queue. When
// continuousControl is configured or the engine is mid-burst, the
// write is rerouted into the MBF path instead.
func (s *Shaper) WriteRFTSDUSBF(t *codec.TSBK, fec codec.FECCodec, noNetwork, clearBeforeWrite bool) {
	if s.cfg.ContinuousControl || s.ccRunning {
		s.WriteRFTSDUMBF(t, fec, clearBeforeWrite)
		return
	}

	t.LastBlock = true
	payload := codec.EncodeTSBK(t, false, fec)

	s.writePreamble()

	body := append(append([]byte{}, s.sync()...), s.nid(DUIDTSDU)...)
	body = append(body, payload...)
	body = s.busyBits(body)

	frame := tagged(TagData, body)
	s.enqueue(s.modem, frame, clearBeforeWrite)
	if !noNetwork {
		s.enqueue(s.net, frame, false)
	}
}

// WriteRFTSDUMBF appends t's pre-FEC payload into the shared MBF
// staging buffer. When the third block lands, the buffer's last TSBK
// is marked LastBlock, the three blocks are assembled into a
// triple-length TSDU with sync/NID/interleave/busy/idle bits, and the
// result is enqueued to the modem queue; the cursor then resets. In
// simplex mode (duplex disabled) MBF is unavailable: the buffer is
// zeroed and the write silently dropped.
func (s *Shaper) WriteRFTSDUMBF(t *codec.TSBK, fec codec.FECCodec, clearBeforeWrite bool) {
	if !s.cfg.Duplex {
		s.mbf.Reset()
		return
	}

	willComplete := s.mbf.Cursor() == 2
	t.LastBlock = willComplete
	payload := codec.EncodeTSBK(t, true, fec)

	full := s.mbf.Append(payload)
	if !full {
		return
	}

	triple := s.mbf.Bytes()
	body := append(append([]byte{}, s.sync()...), s.nid(DUIDTSDU)...)
	body = append(body, s.interleave(triple)...)
	body = s.busyBits(body)
	body = s.idleBits(body)

	s.enqueue(s.modem, tagged(TagData, body), clearBeforeWrite)
	s.mbf.Reset()
}

// WriteRFTDULC builds a TDULC frame for d and, in duplex mode,
// enqueues it to the modem; unless noNetwork, it is also mirrored to
// the network queue.
func (s *Shaper) WriteRFTDULC(d *codec.TDULC, fec codec.FECCodec, noNetwork bool) {
	payload := codec.EncodeTDULC(d, fec)
	body := append(append([]byte{}, s.sync()...), s.nid(DUIDTDULC)...)
	body = append(body, payload...)
	frame := tagged(TagEOT, body)

	if s.cfg.Duplex {
		s.enqueue(s.modem, frame, false)
	}
	if !noNetwork {
		s.enqueue(s.net, frame, false)
	}
}

// WriteRFTDULCChanGrant replays a voice-channel-grant TDULC four
// times, carrying LC_GROUP or LC_PRIVATE depending on grp.
func (s *Shaper) WriteRFTDULCChanGrant(grp bool, src, dst uint32, fec codec.FECCodec) {
	lco := codec.LCPrivate
	if grp {
		lco = codec.LCGroup
	}
	d := &codec.TDULC{LCO: lco, SrcId: src, DstId: dst}
	for i := 0; i < 4; i++ {
		s.WriteRFTDULC(d, fec, true)
	}
}

// WriteRFTDULCChanRelease replays hangCount/2 repetitions of
// {grant-LCO, NET_STS_BCAST, RFSS_STS_BCAST} TDULCs, followed by one
// LC_CALL_TERM, terminating a voice call.
func (s *Shaper) WriteRFTDULCChanRelease(grp bool, src, dst uint32, netSite, rfssSite *codec.TDULC, fec codec.FECCodec) {
	lco := codec.LCPrivate
	if grp {
		lco = codec.LCGroup
	}
	grant := &codec.TDULC{LCO: lco, SrcId: src, DstId: dst}

	reps := s.cfg.HangCount / 2
	for i := uint32(0); i < reps; i++ {
		s.WriteRFTDULC(grant, fec, true)
		if netSite != nil {
			s.WriteRFTDULC(netSite, fec, true)
		}
		if rfssSite != nil {
			s.WriteRFTDULC(rfssSite, fec, true)
		}
	}
	s.WriteRFTDULC(&codec.TDULC{LCO: codec.LCCallTerm, SrcId: src, DstId: dst}, fec, true)
}

// WriteNetTSDU mirrors WriteRFTSDUSBF's framing onto the network
// transmit queue only.
func (s *Shaper) WriteNetTSDU(t *codec.TSBK, fec codec.FECCodec) {
	t.LastBlock = true
	payload := codec.EncodeTSBK(t, false, fec)
	body := append(append([]byte{}, s.sync()...), s.nid(DUIDTSDU)...)
	body = append(body, payload...)
	s.enqueue(s.net, tagged(TagData, body), false)
}

// WriteNetTDULC mirrors WriteRFTDULC onto the network transmit queue
// only.
func (s *Shaper) WriteNetTDULC(d *codec.TDULC, fec codec.FECCodec) {
	payload := codec.EncodeTDULC(d, fec)
	body := append(append([]byte{}, s.sync()...), s.nid(DUIDTDULC)...)
	body = append(body, payload...)
	s.enqueue(s.net, tagged(TagEOT, body), false)
}
