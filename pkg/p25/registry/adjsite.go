package registry

import "github.com/dbehnke/p25-cc/pkg/p25/site"

// UpsertAdj inserts or refreshes siteId's adjacent-site descriptor,
// resetting its update counter to the configured ADJ_SITE_UPDATE_CNT.
func (r *Registries) UpsertAdj(d site.Data) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.adj[d.SiteId]; ok {
		e.SiteData = d
		e.UpdateCntRemaining = r.adjUpdateCnt
		return
	}
	r.adj[d.SiteId] = &AdjSiteEntry{SiteData: d, UpdateCntRemaining: r.adjUpdateCnt}
}

// TickAdj decrements every adjacent-site counter by one, saturating
// at zero, and returns the siteIds whose counter just reached zero.
// Entries are never deleted on failure.
func (r *Registries) TickAdj() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	var justFailed []byte
	for id, e := range r.adj {
		if e.UpdateCntRemaining == 0 {
			continue
		}
		e.UpdateCntRemaining--
		if e.UpdateCntRemaining == 0 {
			justFailed = append(justFailed, id)
		}
	}
	return justFailed
}

// ListAdj returns a snapshot of every adjacent-site descriptor, with
// site.CFVAFailure set on the reported SiteData for any entry whose
// counter has reached zero.
func (r *Registries) ListAdj() []AdjSiteEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]AdjSiteEntry, 0, len(r.adj))
	for _, e := range r.adj {
		entry := *e
		if entry.UpdateCntRemaining == 0 {
			entry.SiteData.CFVA |= site.CFVAFailure
		}
		out = append(out, entry)
	}
	return out
}

// AdjCount returns the number of adjacent-site descriptors tracked.
func (r *Registries) AdjCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adj)
}
