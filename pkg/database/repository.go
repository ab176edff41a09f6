package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/dbehnke/p25-cc/pkg/p25/codec"
)

// ActivityLog persists engine activity to the database, satisfying
// trunk.ActivityLog. Every method discards its database error rather
// than returning or logging it: activity logging is best-effort and must never block
// or fail a protocol operation.
type ActivityLog struct {
	db  *gorm.DB
	now func() time.Time
}

// NewActivityLog creates an ActivityLog backed by db.
func NewActivityLog(db *DB) *ActivityLog {
	return &ActivityLog{db: db.GetDB(), now: time.Now}
}

func (a *ActivityLog) RecordGrant(dstId uint32, chNo uint16, reused bool) {
	a.db.Create(&GrantEvent{DstId: dstId, ChannelNo: chNo, Reused: reused, GrantedAt: a.now()})
}

func (a *ActivityLog) RecordGrantReleased(dstId uint32, reason string) {
	now := a.now()
	var ev GrantEvent
	err := a.db.Where("dst_id = ? AND released_at IS NULL", dstId).
		Order("granted_at DESC").First(&ev).Error
	if err != nil {
		return
	}
	ev.ReleasedAt = &now
	ev.ReleaseReason = reason
	a.db.Save(&ev)
}

func (a *ActivityLog) RecordDeny(srcId, dstId uint32, serviceType codec.LCO, reason codec.DenyReason) {
	a.db.Create(&DenyEvent{
		SrcId:       srcId,
		DstId:       dstId,
		ServiceType: byte(serviceType),
		Reason:      byte(reason),
		At:          a.now(),
	})
}

func (a *ActivityLog) RecordRegistration(srcId uint32, registered bool) {
	a.db.Create(&RegistrationEvent{SrcId: srcId, Registered: registered, At: a.now()})
}

func (a *ActivityLog) RecordStatusCommand(srcId uint32, value byte) {
	a.db.Create(&StatusCommandEvent{SrcId: srcId, Value: value, At: a.now()})
}

// GrantEventRepository handles read access to historical grant events.
type GrantEventRepository struct {
	db *gorm.DB
}

// NewGrantEventRepository creates a new grant-event repository.
func NewGrantEventRepository(db *gorm.DB) *GrantEventRepository {
	return &GrantEventRepository{db: db}
}

// GetRecent retrieves the most recent N grant events.
func (r *GrantEventRepository) GetRecent(limit int) ([]GrantEvent, error) {
	var events []GrantEvent
	err := r.db.Order("granted_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

// GetByDstId retrieves grant events for a specific talkgroup or unit.
func (r *GrantEventRepository) GetByDstId(dstId uint32, limit int) ([]GrantEvent, error) {
	var events []GrantEvent
	err := r.db.Where("dst_id = ?", dstId).
		Order("granted_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// GetActive retrieves grant events that have not yet been released.
func (r *GrantEventRepository) GetActive() ([]GrantEvent, error) {
	var events []GrantEvent
	err := r.db.Where("released_at IS NULL").Find(&events).Error
	return events, err
}

// DeleteOlderThan deletes grant events granted before the given time.
func (r *GrantEventRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("granted_at < ?", before).Delete(&GrantEvent{})
	return result.RowsAffected, result.Error
}
