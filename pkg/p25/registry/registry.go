// Package registry holds the control channel's in-memory tables:
// unit registrations, group affiliations, adjacent-site descriptors,
// and the voice-channel pool with its per-grant lease timers. All
// mutating calls are expected from the engine's single thread; the
// mutex here only fences concurrent reads, mirroring
// pkg/peer/manager.go's RWMutex-guarded map style.
package registry

import (
	"sync"
	"time"

	"github.com/dbehnke/p25-cc/pkg/p25/site"
)

// AdjSiteEntry is a known adjacent site's descriptor plus liveness state.
type AdjSiteEntry struct {
	SiteData           site.Data
	UpdateCntRemaining byte
}

// Registries owns the three tables plus the voice-channel pool.
type Registries struct {
	mu sync.RWMutex

	unitReg map[uint32]time.Time
	aff     map[uint32]uint32 // srcId -> dstId

	adjUpdateCnt byte
	adj          map[byte]*AdjSiteEntry

	pool *VoiceChannelPool

	onDeregAck func(srcId uint32)
}

// New creates an empty Registries backed by pool. adjUpdateCnt is the
// value every adjacent-site counter is (re)armed to on upsert.
func New(adjUpdateCnt byte, pool *VoiceChannelPool) *Registries {
	return &Registries{
		unitReg:      make(map[uint32]time.Time),
		aff:          make(map[uint32]uint32),
		adjUpdateCnt: adjUpdateCnt,
		adj:          make(map[byte]*AdjSiteEntry),
		pool:         pool,
	}
}

// OnDeregAck registers the callback ClearAff(_, true) invokes once
// per affected subscriber.
func (r *Registries) OnDeregAck(fn func(srcId uint32)) {
	r.mu.Lock()
	r.onDeregAck = fn
	r.mu.Unlock()
}

// HasUnitReg reports whether srcId currently holds a registration.
func (r *Registries) HasUnitReg(srcId uint32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.unitReg[srcId]
	return ok
}

// AddUnitReg registers srcId. Idempotent: a second call leaves the
// table identical.
func (r *Registries) AddUnitReg(srcId uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.unitReg[srcId]; !ok {
		r.unitReg[srcId] = time.Now()
	}
}

// RemoveUnitReg deregisters srcId, idempotently, and drops any group
// affiliation it held.
func (r *Registries) RemoveUnitReg(srcId uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.unitReg, srcId)
	delete(r.aff, srcId)
}

// UnitRegCount returns the number of registered units.
func (r *Registries) UnitRegCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.unitReg)
}

// HasAff reports whether srcId is currently affiliated to dstId.
func (r *Registries) HasAff(srcId, dstId uint32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.aff[srcId]
	return ok && g == dstId
}

// SetAff affiliates srcId to dstId, overwriting any prior affiliation.
func (r *Registries) SetAff(srcId, dstId uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aff[srcId] = dstId
}

// ClearAff drops affiliations to dstId. When releaseAll is set every
// affiliation is dropped regardless of its value and onDeregAck (if
// registered) fires once per affected srcId.
func (r *Registries) ClearAff(dstId uint32, releaseAll bool) {
	r.mu.Lock()
	var affected []uint32
	for src, dst := range r.aff {
		if releaseAll || dst == dstId {
			affected = append(affected, src)
			delete(r.aff, src)
		}
	}
	cb := r.onDeregAck
	r.mu.Unlock()

	if releaseAll && cb != nil {
		for _, src := range affected {
			cb(src)
		}
	}
}

// AffCount returns the number of active affiliations.
func (r *Registries) AffCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.aff)
}

// HasGrant reports whether dstId currently holds a channel grant.
func (r *Registries) HasGrant(dstId uint32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool.HasGrant(dstId)
}

// IsChBusy reports whether chNo is assigned to any active grant.
func (r *Registries) IsChBusy(chNo uint16) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool.IsChBusy(chNo)
}

// ChannelFor returns dstId's granted channel number, if any.
func (r *Registries) ChannelFor(dstId uint32) (uint16, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool.ChannelFor(dstId)
}

// AcquireGrant pops a free channel for dstId and starts its lease
// timer. Returns ok=false if the pool is exhausted.
func (r *Registries) AcquireGrant(dstId uint32, grp bool) (chNo uint16, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pool.AcquireGrant(dstId, grp)
}

// IsGroup reports whether dstId's active grant is a group call.
func (r *Registries) IsGroup(dstId uint32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool.IsGroup(dstId)
}

// TouchGrant resets dstId's lease to the full timeout, if present.
func (r *Registries) TouchGrant(dstId uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pool.TouchGrant(dstId)
}

// ReleaseGrant returns dstId's channel to the free pool. When
// releaseAll is set every active grant is released and the returned
// slice describes every grant that was released.
func (r *Registries) ReleaseGrant(dstId uint32, releaseAll bool) []ReleasedGrant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pool.ReleaseGrant(dstId, releaseAll)
}

// FreeChannelCount returns the number of unassigned channels.
func (r *Registries) FreeChannelCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool.FreeCount()
}

// GrantCount returns the number of active grants.
func (r *Registries) GrantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool.GrantCount()
}

// GrantSnapshot returns a point-in-time copy of every active grant.
func (r *Registries) GrantSnapshot() []GrantInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool.Snapshot()
}

// UnitRegIds returns a point-in-time copy of every registered unit's
// source ID.
func (r *Registries) UnitRegIds() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]uint32, 0, len(r.unitReg))
	for id := range r.unitReg {
		out = append(out, id)
	}
	return out
}

// Affiliations returns a point-in-time copy of the srcId->dstId
// affiliation table.
func (r *Registries) Affiliations() map[uint32]uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uint32]uint32, len(r.aff))
	for src, dst := range r.aff {
		out[src] = dst
	}
	return out
}

// SetVoicePool replaces the free-channel pool wholesale.
func (r *Registries) SetVoicePool(channels []uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pool.SetFreeChannels(channels)
}

// TickGrants advances every running grant timer by elapsed and
// releases (returning) any grant whose lease just expired.
func (r *Registries) TickGrants(elapsed time.Duration) []ReleasedGrant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pool.Tick(elapsed)
}
