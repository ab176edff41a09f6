package registry

import (
	"testing"
	"time"

	"github.com/dbehnke/p25-cc/pkg/p25/site"
)

func newTestRegistries() *Registries {
	pool := NewVoiceChannelPool([]uint16{2, 3, 4}, 15*time.Second)
	return New(5, pool)
}

func TestUnitRegMonotonicity(t *testing.T) {
	r := newTestRegistries()
	r.AddUnitReg(1001)
	r.AddUnitReg(1001)
	if r.UnitRegCount() != 1 {
		t.Fatalf("expected 1 registration after duplicate AddUnitReg, got %d", r.UnitRegCount())
	}
	if !r.HasUnitReg(1001) {
		t.Fatal("expected HasUnitReg(1001) true")
	}
	r.RemoveUnitReg(1001)
	r.RemoveUnitReg(1001)
	if r.HasUnitReg(1001) {
		t.Fatal("expected HasUnitReg(1001) false after removal")
	}
}

func TestRemoveUnitRegClearsAffiliation(t *testing.T) {
	r := newTestRegistries()
	r.SetAff(1001, 5000)
	r.RemoveUnitReg(1001)
	if r.HasAff(1001, 5000) {
		t.Fatal("expected affiliation cleared on unit deregistration")
	}
}

func TestAffiliationUnique(t *testing.T) {
	r := newTestRegistries()
	r.SetAff(1001, 5000)
	r.SetAff(1001, 6000)
	if r.HasAff(1001, 5000) {
		t.Fatal("stale affiliation to 5000 should be gone")
	}
	if !r.HasAff(1001, 6000) {
		t.Fatal("expected affiliation to 6000")
	}
	if r.AffCount() != 1 {
		t.Fatalf("expected exactly one affiliation, got %d", r.AffCount())
	}
}

func TestClearAffReleaseAllInvokesCallback(t *testing.T) {
	r := newTestRegistries()
	r.SetAff(1001, 5000)
	r.SetAff(1002, 6000)

	var acked []uint32
	r.OnDeregAck(func(srcId uint32) { acked = append(acked, srcId) })

	r.ClearAff(0, true)
	if r.AffCount() != 0 {
		t.Fatalf("expected all affiliations cleared, got %d remaining", r.AffCount())
	}
	if len(acked) != 2 {
		t.Fatalf("expected 2 dereg-ack callbacks, got %d", len(acked))
	}
}

func TestClearAffByDst(t *testing.T) {
	r := newTestRegistries()
	r.SetAff(1001, 5000)
	r.SetAff(1002, 6000)
	r.ClearAff(5000, false)
	if r.HasAff(1001, 5000) {
		t.Fatal("expected 1001's affiliation to 5000 cleared")
	}
	if !r.HasAff(1002, 6000) {
		t.Fatal("expected 1002's affiliation to 6000 untouched")
	}
}

func TestGrantPoolClosure(t *testing.T) {
	r := newTestRegistries()
	total := r.FreeChannelCount() + r.GrantCount()

	ch, ok := r.AcquireGrant(5000, true)
	if !ok || ch != 2 {
		t.Fatalf("expected first grant to acquire channel 2, got %d ok=%v", ch, ok)
	}
	if r.FreeChannelCount()+r.GrantCount() != total {
		t.Fatalf("pool closure violated: free=%d grants=%d want total=%d",
			r.FreeChannelCount(), r.GrantCount(), total)
	}

	r.AcquireGrant(5001, true)
	r.AcquireGrant(5002, true)
	if _, ok := r.AcquireGrant(5003, true); ok {
		t.Fatal("expected pool exhaustion on 4th acquire")
	}
	if r.FreeChannelCount()+r.GrantCount() != total {
		t.Fatalf("pool closure violated after exhaustion: free=%d grants=%d want total=%d",
			r.FreeChannelCount(), r.GrantCount(), total)
	}

	r.ReleaseGrant(5000, false)
	if r.FreeChannelCount()+r.GrantCount() != total {
		t.Fatalf("pool closure violated after release: free=%d grants=%d want total=%d",
			r.FreeChannelCount(), r.GrantCount(), total)
	}
}

func TestGrantReuseAndTouch(t *testing.T) {
	r := newTestRegistries()
	ch, _ := r.AcquireGrant(5000, true)
	r.TouchGrant(5000)
	got, ok := r.ChannelFor(5000)
	if !ok || got != ch {
		t.Fatalf("expected touched grant to keep channel %d, got %d", ch, got)
	}
}

func TestGrantExpiry(t *testing.T) {
	r := newTestRegistries()
	r.AcquireGrant(5000, true)

	expired := r.TickGrants(14 * time.Second)
	if len(expired) != 0 {
		t.Fatalf("expected no expiry before full timeout, got %v", expired)
	}
	if !r.HasGrant(5000) {
		t.Fatal("expected grant still active before timeout")
	}

	expired = r.TickGrants(1 * time.Second)
	if len(expired) != 1 || expired[0].DstId != 5000 || !expired[0].Group {
		t.Fatalf("expected group grant 5000 to expire at 15s boundary, got %v", expired)
	}
	if r.HasGrant(5000) {
		t.Fatal("expected grant released after expiry")
	}
}

func TestAdjSiteAgeOut(t *testing.T) {
	r := newTestRegistries()
	r.UpsertAdj(site.Data{SiteId: 2, NetId: 52, SysId: 0x294, RfssId: 1, ChannelId: 1, ChannelNo: 10})

	list := r.ListAdj()
	if len(list) != 1 || list[0].UpdateCntRemaining != 5 {
		t.Fatalf("expected fresh adjacent-site entry with counter 5, got %+v", list)
	}

	for i := 0; i < 4; i++ {
		r.TickAdj()
	}
	list = r.ListAdj()
	if list[0].SiteData.CFVA&site.CFVAFailure != 0 {
		t.Fatal("did not expect FAILURE before 5th tick")
	}

	failed := r.TickAdj()
	if len(failed) != 1 || failed[0] != 2 {
		t.Fatalf("expected siteId 2 reported failed on 5th tick, got %v", failed)
	}
	list = r.ListAdj()
	if list[0].SiteData.CFVA&site.CFVAFailure == 0 {
		t.Fatal("expected FAILURE flag set after counter reaches zero")
	}

	// Entries are never deleted, even long after failure.
	r.TickAdj()
	if r.AdjCount() != 1 {
		t.Fatalf("expected adjacent-site entry retained after failure, count=%d", r.AdjCount())
	}
}
