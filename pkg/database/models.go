package database

import "time"

// GrantEvent records the lifecycle of one voice-channel grant: when it
// was issued, on which channel, and (once known) how and when it was
// released.
type GrantEvent struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	DstId         uint32     `gorm:"index;not null" json:"dst_id"`
	ChannelNo     uint16     `gorm:"not null" json:"channel_no"`
	Reused        bool       `gorm:"not null" json:"reused"`
	GrantedAt     time.Time  `gorm:"index;not null" json:"granted_at"`
	ReleasedAt    *time.Time `json:"released_at,omitempty"`
	ReleaseReason string     `gorm:"size:20" json:"release_reason,omitempty"`
}

// TableName specifies the table name for GrantEvent.
func (GrantEvent) TableName() string {
	return "grant_events"
}

// RegistrationEvent records a unit registering or deregistering with
// the site.
type RegistrationEvent struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	SrcId      uint32    `gorm:"index;not null" json:"src_id"`
	Registered bool      `gorm:"not null" json:"registered"`
	At         time.Time `gorm:"index;not null" json:"at"`
}

// TableName specifies the table name for RegistrationEvent.
func (RegistrationEvent) TableName() string {
	return "registration_events"
}

// StatusCommandEvent records a status-command preprocessor arm, keyed
// on the source unit of the arming STS_UPDT and the status value that
// armed it.
type StatusCommandEvent struct {
	ID     uint      `gorm:"primarykey" json:"id"`
	SrcId  uint32    `gorm:"index;not null" json:"src_id"`
	Value  byte      `gorm:"not null" json:"value"`
	At     time.Time `gorm:"index;not null" json:"at"`
}

// TableName specifies the table name for StatusCommandEvent.
func (StatusCommandEvent) TableName() string {
	return "status_command_events"
}

// DenyEvent records a DENY_RSP the engine emitted in response to a
// failed check.
type DenyEvent struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	SrcId       uint32    `gorm:"index;not null" json:"src_id"`
	DstId       uint32    `gorm:"index;not null" json:"dst_id"`
	ServiceType byte      `gorm:"not null" json:"service_type"`
	Reason      byte      `gorm:"not null" json:"reason"`
	At          time.Time `gorm:"index;not null" json:"at"`
}

// TableName specifies the table name for DenyEvent.
func (DenyEvent) TableName() string {
	return "deny_events"
}
