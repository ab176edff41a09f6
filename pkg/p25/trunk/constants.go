package trunk

import "time"

// Protocol constants carried bit-exact for interop.
const (
	AdjSiteTimerTimeout = 30 * time.Second
	AdjSiteUpdateCnt    = 5
	TSBKMBFCnt          = 3
	GrantTimerTimeout   = 15 * time.Second

	// WUIDSys is the well-known unit ID representing the infrastructure
	// itself, used as the responder on U_DEREG_ACK and as the fallback
	// dstId for U_DEREG_REQ.
	WUIDSys uint32 = 0xFFFFFC

	// TGIDAll is the all-call group ID: a grant request for it never
	// acquires a channel.
	TGIDAll uint32 = 0xFFFF
)
