package frame

// MBFAssembler is the fixed-capacity, three-TSBK staging buffer
// the Frame Shaper round-robins outbound control
// traffic through. It is private to Frame Shaper; the Trunk Engine
// never touches it directly.
type MBFAssembler struct {
	buf [TSBKFECLengthBytes * 3]byte

	mbfCnt      byte // 0..3: how many TSBK blocks are currently staged
	mbfIdenCnt  int
	mbfAdjSSCnt int
}

// Append copies a pre-FEC TSBK payload into the next free slot of
// the staging buffer and advances the cursor. It reports whether the
// buffer is now full (three blocks staged).
func (m *MBFAssembler) Append(payload []byte) (full bool) {
	if m.mbfCnt >= 3 {
		return true
	}
	off := int(m.mbfCnt) * TSBKFECLengthBytes
	copy(m.buf[off:off+TSBKFECLengthBytes], payload)
	m.mbfCnt++
	return m.mbfCnt >= 3
}

// Cursor reports how many blocks are currently staged (0..3).
func (m *MBFAssembler) Cursor() byte { return m.mbfCnt }

// Bytes returns a copy of the full three-block staging buffer.
func (m *MBFAssembler) Bytes() []byte {
	out := make([]byte, len(m.buf))
	copy(out, m.buf[:])
	return out
}

// Reset zeros the staging buffer and its cursor.
func (m *MBFAssembler) Reset() {
	m.buf = [TSBKFECLengthBytes * 3]byte{}
	m.mbfCnt = 0
}

// NextIdenIndex returns the next identity-table index to broadcast
// and advances the cursor, wrapping modulo tableSize.
func (m *MBFAssembler) NextIdenIndex(tableSize int) int {
	if tableSize <= 0 {
		return 0
	}
	i := m.mbfIdenCnt % tableSize
	m.mbfIdenCnt++
	return i
}

// NextAdjSSIndex is NextIdenIndex's counterpart for the adjacent-site
// table.
func (m *MBFAssembler) NextAdjSSIndex(tableSize int) int {
	if tableSize <= 0 {
		return 0
	}
	i := m.mbfAdjSSCnt % tableSize
	m.mbfAdjSSCnt++
	return i
}
