package domain

// ChangeEvent notifies observers that a dataset (or AllDatasets) changed.
type ChangeEvent struct {
	Dataset string `json:"dataset"`
}

// SyncResult is the outcome of a sync or push run. Failures are reported
// here rather than returned as errors.
type SyncResult struct {
	Success      bool   `json:"success"`
	AuthRequired bool   `json:"authRequired,omitempty"`
	Message      string `json:"message"`
	Created      bool   `json:"created,omitempty"`
	Pushed       bool   `json:"pushed,omitempty"`
	InboxCount   int    `json:"inboxCount,omitempty"`
}

// InboxResult is the outcome of an inbox ingestion run.
type InboxResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Orphans int    `json:"orphans,omitempty"`
	Failed  int    `json:"failed,omitempty"`
	Message string `json:"message,omitempty"`
}

// Sync triggers, recorded as the source of each run.
const (
	TriggerManual       = "manual"
	TriggerTimer        = "timer"
	TriggerStartup      = "startup"
	TriggerConnectivity = "connectivity"
	TriggerVisibility   = "visibility"
	TriggerInbox        = "inbox"
)

// IsExternalTrigger reports whether clients may request a run for trigger.
func IsExternalTrigger(trigger string) bool {
	switch trigger {
	case TriggerManual, TriggerVisibility, TriggerConnectivity:
		return true
	}
	return false
}
