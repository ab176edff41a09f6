package registry

import "time"

// VoiceChannelPool is the free-channel pool and active-grant map: a
// channel number is in exactly one of free or (as a value) grants at
// any instant.
type VoiceChannelPool struct {
	free    []uint16
	grants  map[uint32]uint16        // dstId -> chNo
	group   map[uint32]bool          // dstId -> true if a group grant
	timers  map[uint32]time.Duration // dstId -> remaining lease
	timeout time.Duration
}

// NewVoiceChannelPool seeds the pool with the given free channel
// numbers. timeout is the lease duration AcquireGrant/TouchGrant arm.
func NewVoiceChannelPool(channels []uint16, timeout time.Duration) *VoiceChannelPool {
	return &VoiceChannelPool{
		free:    append([]uint16{}, channels...),
		grants:  make(map[uint32]uint16),
		group:   make(map[uint32]bool),
		timers:  make(map[uint32]time.Duration),
		timeout: timeout,
	}
}

// SetFreeChannels replaces the free-channel pool wholesale. Active
// grants are left untouched; only the unassigned pool is reset.
func (p *VoiceChannelPool) SetFreeChannels(channels []uint16) {
	p.free = append([]uint16{}, channels...)
}

// HasGrant reports whether dstId currently holds a channel grant.
func (p *VoiceChannelPool) HasGrant(dstId uint32) bool {
	_, ok := p.grants[dstId]
	return ok
}

// ChannelFor returns the granted channel number for dstId, if any.
func (p *VoiceChannelPool) ChannelFor(dstId uint32) (uint16, bool) {
	ch, ok := p.grants[dstId]
	return ch, ok
}

// IsChBusy reports whether chNo is currently assigned to any grant.
func (p *VoiceChannelPool) IsChBusy(chNo uint16) bool {
	for _, ch := range p.grants {
		if ch == chNo {
			return true
		}
	}
	return false
}

// GrantInfo is a read-only snapshot of one active grant, for status
// reporting.
type GrantInfo struct {
	DstId     uint32
	ChannelNo uint16
	Group     bool
}

// Snapshot returns a point-in-time copy of every active grant.
func (p *VoiceChannelPool) Snapshot() []GrantInfo {
	out := make([]GrantInfo, 0, len(p.grants))
	for dst, ch := range p.grants {
		out = append(out, GrantInfo{DstId: dst, ChannelNo: ch, Group: p.group[dst]})
	}
	return out
}

// FreeCount returns the number of unassigned channels.
func (p *VoiceChannelPool) FreeCount() int { return len(p.free) }

// GrantCount returns the number of active grants.
func (p *VoiceChannelPool) GrantCount() int { return len(p.grants) }

// AcquireGrant pops the first free channel, assigns it to dstId, and
// starts a fresh lease timer. grp records whether the grant is a
// group (true) or individual (false) call, needed later to replay
// the correct TDULC link-control opcode on release. Returns ok=false
// if the pool is exhausted.
func (p *VoiceChannelPool) AcquireGrant(dstId uint32, grp bool) (chNo uint16, ok bool) {
	if len(p.free) == 0 {
		return 0, false
	}
	ch := p.free[0]
	p.free = p.free[1:]
	p.grants[dstId] = ch
	p.group[dstId] = grp
	p.timers[dstId] = p.timeout
	return ch, true
}

// IsGroup reports whether dstId's active grant is a group call.
func (p *VoiceChannelPool) IsGroup(dstId uint32) bool {
	return p.group[dstId]
}

// TouchGrant resets dstId's lease to the full timeout, if a grant for
// it exists.
func (p *VoiceChannelPool) TouchGrant(dstId uint32) {
	if _, ok := p.grants[dstId]; ok {
		p.timers[dstId] = p.timeout
	}
}

// ReleasedGrant describes a grant that just left the active map,
// carrying enough information (was it a group call?) to replay the
// correct TDULC release sequence after the map entry is gone.
type ReleasedGrant struct {
	DstId uint32
	Group bool
}

// ReleaseGrant returns dstId's channel to the free pool and stops its
// timer. If releaseAll, every active grant is released instead. The
// returned slice describes every grant actually released.
func (p *VoiceChannelPool) ReleaseGrant(dstId uint32, releaseAll bool) []ReleasedGrant {
	if releaseAll {
		released := make([]ReleasedGrant, 0, len(p.grants))
		for dst := range p.grants {
			released = append(released, ReleasedGrant{DstId: dst, Group: p.group[dst]})
		}
		for _, r := range released {
			p.releaseOne(r.DstId)
		}
		return released
	}
	if _, ok := p.grants[dstId]; ok {
		r := ReleasedGrant{DstId: dstId, Group: p.group[dstId]}
		p.releaseOne(dstId)
		return []ReleasedGrant{r}
	}
	return nil
}

func (p *VoiceChannelPool) releaseOne(dstId uint32) {
	ch := p.grants[dstId]
	delete(p.grants, dstId)
	delete(p.group, dstId)
	delete(p.timers, dstId)
	p.free = append(p.free, ch)
}

// Tick decrements every running lease timer by elapsed and releases
// (returning) the grants whose lease just expired.
func (p *VoiceChannelPool) Tick(elapsed time.Duration) []ReleasedGrant {
	var expired []uint32
	for dst, remaining := range p.timers {
		if remaining <= elapsed {
			expired = append(expired, dst)
			continue
		}
		p.timers[dst] = remaining - elapsed
	}
	released := make([]ReleasedGrant, 0, len(expired))
	for _, dst := range expired {
		released = append(released, ReleasedGrant{DstId: dst, Group: p.group[dst]})
		p.releaseOne(dst)
	}
	return released
}
