package domain

import (
	"time"

	"gorm.io/datatypes"
)

// DatasetSlot is one string-keyed slot of the local store. Payload holds the
// JSON array of a dataset (or the single-element SystemMeta array).
type DatasetSlot struct {
	SlotKey   string         `gorm:"column:slot_key;primaryKey"`
	Payload   datatypes.JSON `gorm:"column:payload"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (DatasetSlot) TableName() string {
	return "dataset_slots"
}

// SyncRun records one sync, push or inbox run for operator history.
type SyncRun struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	Source     string    `gorm:"column:source" json:"source"`
	Kind       string    `gorm:"column:kind" json:"kind"`
	Success    bool      `gorm:"column:success" json:"success"`
	Message    string    `gorm:"column:message" json:"message"`
	InboxCount int       `gorm:"column:inbox_count" json:"inboxCount"`
	StartedAt  time.Time `gorm:"column:started_at" json:"startedAt"`
	FinishedAt time.Time `gorm:"column:finished_at" json:"finishedAt"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}

// Sync run kinds
const (
	RunKindSync  = "sync"
	RunKindPush  = "push"
	RunKindInbox = "inbox"
)
