package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Project record field names used outside typed decoding.
const (
	FieldProjectCode  = "projectCode"
	FieldStatus       = "status"
	FieldTrackingData = "trackingData"
)

// ProjectStatus is a position on the fixed ordinal progress scale.
type ProjectStatus string

const (
	StatusEnquiry    ProjectStatus = "0"
	StatusQuoted     ProjectStatus = "15"
	StatusAwarded    ProjectStatus = "35"
	StatusDesign     ProjectStatus = "55"
	StatusProduction ProjectStatus = "75"
	StatusFinishing  ProjectStatus = "85"
	StatusDispatched ProjectStatus = "90"
	StatusInstalled  ProjectStatus = "95"
	StatusClosed     ProjectStatus = "100"
)

// StatusScale is the ordered progress scale.
var StatusScale = []ProjectStatus{
	StatusEnquiry, StatusQuoted, StatusAwarded, StatusDesign, StatusProduction,
	StatusFinishing, StatusDispatched, StatusInstalled, StatusClosed,
}

// UnmarshalJSON accepts the status as a string or a bare number.
func (s *ProjectStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = ProjectStatus(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid project status %s", data)
	}
	*s = ProjectStatus(n.String())
	return nil
}

// Valid reports whether s is on the scale.
func (s ProjectStatus) Valid() bool {
	return s.Rank() >= 0
}

// Rank is the position on the scale, -1 when unknown.
func (s ProjectStatus) Rank() int {
	for i, v := range StatusScale {
		if v == s {
			return i
		}
	}
	return -1
}

// FeedbackStatus tracks customer feedback: none → requested → received → verified.
type FeedbackStatus string

const (
	FeedbackNone      FeedbackStatus = "none"
	FeedbackRequested FeedbackStatus = "requested"
	FeedbackReceived  FeedbackStatus = "received"
	FeedbackVerified  FeedbackStatus = "verified"
)

// Tracking data field names touched by inbox ingestion.
const (
	FieldFeedbackStatus   = "feedbackStatus"
	FieldCustomerFeedback = "customerFeedback"
)

// CustomerFeedback is a customer's rating of a finished project.
type CustomerFeedback struct {
	Quality       int    `json:"quality" validate:"gte=1,lte=5"`
	Timeliness    int    `json:"timeliness" validate:"gte=1,lte=5"`
	Communication int    `json:"communication" validate:"gte=1,lte=5"`
	Overall       int    `json:"overall" validate:"gte=1,lte=5"`
	Comment       string `json:"comment"`
	SubmittedAt   string `json:"submittedAt"`
	VerifiedAt    string `json:"verifiedAt,omitempty"`
	VerifiedBy    string `json:"verifiedBy,omitempty"`
}

// ProjectTrackingData holds operational stage fields of a project.
type ProjectTrackingData struct {
	FeedbackStatus    FeedbackStatus    `json:"feedbackStatus,omitempty"`
	CustomerFeedback  *CustomerFeedback `json:"customerFeedback,omitempty"`
	QCSignedOff       bool              `json:"qcSignedOff"`
	DeliveryConfirmed bool              `json:"deliveryConfirmed"`
	PaymentReceived   bool              `json:"paymentReceived"`
}

// FramingItem is a framing take-off line.
type FramingItem struct {
	Material string `json:"material"`
	Length   Number `json:"length"`
	Width    Number `json:"width"`
	Qty      Number `json:"qty"`
}

// FinishItem is a finishes take-off line.
type FinishItem struct {
	Material string `json:"material"`
	Qty      Number `json:"qty"`
}

// Job is a unit of fabrication work inside a project.
type Job struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	FramingTakeOff  []FramingItem `json:"framingTakeOff"`
	FinishesTakeOff []FinishItem  `json:"finishesTakeOff"`
}

// Project is the typed view of a projects record.
type Project struct {
	ID               string               `json:"id"`
	ProjectCode      string               `json:"projectCode"`
	Name             string               `json:"name"`
	ClientName       string               `json:"clientName"`
	Status           ProjectStatus        `json:"status"`
	Jobs             []Job                `json:"jobs"`
	CostingVariables map[string]Number    `json:"costingVariables"`
	TrackingData     *ProjectTrackingData `json:"trackingData,omitempty"`
	CreatedAt        string               `json:"createdAt,omitempty"`
	UpdatedAt        string               `json:"updatedAt,omitempty"`
}

// FeedbackState returns the project's feedback status, none when unset.
func (p *Project) FeedbackState() FeedbackStatus {
	if p.TrackingData == nil || p.TrackingData.FeedbackStatus == "" {
		return FeedbackNone
	}
	return p.TrackingData.FeedbackStatus
}

// CloseoutReady reports whether the project may move to StatusClosed.
func (p *Project) CloseoutReady() bool {
	td := p.TrackingData
	return td != nil &&
		td.FeedbackStatus == FeedbackVerified &&
		td.QCSignedOff && td.DeliveryConfirmed && td.PaymentReceived
}

// NormalizeCode upper-cases and trims a project code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// BaseCode is the normalized code cut at the first '.', dropping revision suffixes.
func BaseCode(code string) string {
	n := NormalizeCode(code)
	if i := strings.IndexByte(n, '.'); i >= 0 {
		return n[:i]
	}
	return n
}

// CodesMatch reports whether two codes refer to the same project, either on
// the full normalized form or on the base form.
func CodesMatch(a, b string) bool {
	na, nb := NormalizeCode(a), NormalizeCode(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || BaseCode(a) == BaseCode(b)
}

// InboxSubmission is the body of one inbox file.
type InboxSubmission struct {
	Code     string            `json:"code"`
	Feedback *CustomerFeedback `json:"feedback"`
}

// UnassignedFeedback is an inbox submission that matched no local project.
type UnassignedFeedback struct {
	ID            string            `json:"id"`
	SubmittedCode string            `json:"submittedCode"`
	Feedback      *CustomerFeedback `json:"feedback"`
	RemoteFileID  string            `json:"remoteFileId"`
	ReceivedAt    string            `json:"receivedAt"`
	UpdatedAt     string            `json:"updatedAt,omitempty"`
}

// NewUnassignedFeedback builds the orphan entry for a remote inbox file.
// The remote file id doubles as the entry id so repeated scans do not duplicate it.
func NewUnassignedFeedback(fileID string, sub InboxSubmission, now time.Time) UnassignedFeedback {
	return UnassignedFeedback{
		ID:            fileID,
		SubmittedCode: sub.Code,
		Feedback:      sub.Feedback,
		RemoteFileID:  fileID,
		ReceivedAt:    FormatTimestamp(now),
	}
}
