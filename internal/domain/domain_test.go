package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{name: "iso with millis", input: "2024-02-01T10:00:00.000Z", want: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), wantOK: true},
		{name: "iso without millis", input: "2024-01-01T00:00:00Z", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "date only", input: "2024-03-05", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "empty", input: "", want: EpochZero},
		{name: "garbage", input: "yesterday", want: EpochZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestRecord_UpdatedAtDefaultsToEpochZero(t *testing.T) {
	r := Record{"id": "a"}
	assert.True(t, r.UpdatedAt().Equal(EpochZero))
	assert.False(t, r.HasUpdatedAt())

	r.Touch(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC))
	assert.Equal(t, "2024-05-01T12:30:00.000Z", r.String(FieldUpdatedAt))
}

func TestCodesMatch(t *testing.T) {
	tests := []struct {
		incoming string
		local    string
		want     bool
	}{
		{"AEP-XYZ-001.26", "AEP-XYZ-001", true},
		{"AEP-XYZ-001.26", "AEP-XYZ-001.26", true},
		{" aep-xyz-001.26 ", "AEP-XYZ-001.24", true},
		{"AEP-XYZ-001", "AEP-XYZ-002", false},
		{"", "AEP-XYZ-001", false},
	}
	for _, tt := range tests {
		t.Run(tt.incoming+"~"+tt.local, func(t *testing.T) {
			assert.Equal(t, tt.want, CodesMatch(tt.incoming, tt.local))
		})
	}
	assert.Equal(t, "AEP-XYZ-001", BaseCode(" aep-xyz-001.26"))
}

func TestFramingMaterialFromRecord(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   FramingMaterial
	}{
		{
			name:   "legacy columns with string numbers",
			record: Record{"MATERIAL / GROUP": "Angles", "MATERIAL": "L50 x50 x3 - Angle Section", "RATE": "2363.64", "Surface Area": "0.2"},
			want:   FramingMaterial{Group: "Angles", Name: "L50 x50 x3 - Angle Section", Rate: 2363.64, SurfaceAreaFactor: 0.2},
		},
		{
			name:   "named fields",
			record: Record{"group": "Sheets", "name": "Glass 6mm", "rate": 950.0, "surfaceAreaFactor": 0.0},
			want:   FramingMaterial{Group: "Sheets", Name: "Glass 6mm", Rate: 950},
		},
		{
			name:   "missing values",
			record: Record{"name": "Mystery"},
			want:   FramingMaterial{Name: "Mystery"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FramingMaterialFromRecord(tt.record))
		})
	}
}

func TestFinishMaterialFromRecord(t *testing.T) {
	got := FinishMaterialFromRecord(Record{"GROUP": "Paint", "DESCRIPTION": "Red oxide primer", "PRICE": "1,250.50", "COVERAGE": 12})
	assert.Equal(t, FinishMaterial{Group: "Paint", Name: "Red oxide primer", Price: 1250.5, Coverage: 12}, got)
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	var item FramingItem
	require.NoError(t, json.Unmarshal([]byte(`{"material":"L50","length":"2","width":null,"qty":5}`), &item))
	assert.Equal(t, Number(2), item.Length)
	assert.Equal(t, Number(0), item.Width)
	assert.Equal(t, Number(5), item.Qty)
}

func TestProject_CloseoutReady(t *testing.T) {
	p := Project{TrackingData: &ProjectTrackingData{FeedbackStatus: FeedbackReceived, QCSignedOff: true, DeliveryConfirmed: true, PaymentReceived: true}}
	assert.False(t, p.CloseoutReady())

	p.TrackingData.FeedbackStatus = FeedbackVerified
	assert.True(t, p.CloseoutReady())

	p.TrackingData.PaymentReceived = false
	assert.False(t, p.CloseoutReady())

	assert.Equal(t, FeedbackNone, (&Project{}).FeedbackState())
}

func TestSystemMeta_Overlay(t *testing.T) {
	defaults := SystemMeta{ClientID: "default-client"}
	got := defaults.Overlay(SystemMeta{AccessToken: "tok", LastSync: "2024-01-01T00:00:00.000Z"})
	assert.Equal(t, SystemMeta{ClientID: "default-client", AccessToken: "tok", LastSync: "2024-01-01T00:00:00.000Z"}, got)
	assert.True(t, got.Connected())
}

func TestStatusScale(t *testing.T) {
	assert.True(t, ProjectStatus("55").Valid())
	assert.False(t, ProjectStatus("50").Valid())
	assert.Less(t, StatusQuoted.Rank(), StatusClosed.Rank())
}
