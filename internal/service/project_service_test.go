package service_test

import (
	"testing"
	"time"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberSequence_Next(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var seq service.NumberSequence

	tests := []struct {
		name     string
		project  string
		existing []string
		want     string
	}{
		{name: "first of its kind", project: "John Doe", want: "AEP-JD-001.24"},
		{name: "after highest", project: "John Doe", existing: []string{"AEP-JD-001.24", "AEP-JD-007.24", "AEP-JD-003.24"}, want: "AEP-JD-008.24"},
		{name: "other initials ignored", project: "John Doe", existing: []string{"AEP-MB-004.24"}, want: "AEP-JD-001.24"},
		{name: "other year ignored", project: "John Doe", existing: []string{"AEP-JD-010.23"}, want: "AEP-JD-001.24"},
		{name: "revision suffix counted", project: "John Doe", existing: []string{"aep-jd-002.24-r1"}, want: "AEP-JD-003.24"},
		{name: "three initials max", project: "Marina Bay Canopy Works", want: "AEP-MBC-001.24"},
		{name: "punctuation", project: "al-noor / tower", want: "AEP-ANT-001.24"},
		{name: "no letters", project: "  ", want: "AEP-XX-001.24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, seq.Next(tt.project, now, tt.existing))
		})
	}
}

func TestProjectService_Create(t *testing.T) {
	f := newFixture(t)
	f.saveLocal(t, domain.DatasetDefaultCostingVariables, domain.Record{"id": "v1", "key": "markupPercent", "value": 30.0})

	first, err := f.projects.Create(f.ctx, domain.CreateProjectRequest{Name: "John Doe", ClientName: "Acme"})
	require.NoError(t, err)
	second, err := f.projects.Create(f.ctx, domain.CreateProjectRequest{Name: "John Doe", ClientName: "Acme"})
	require.NoError(t, err)

	assert.Equal(t, "AEP-JD-001.24", first.String(domain.FieldProjectCode))
	assert.Equal(t, "AEP-JD-002.24", second.String(domain.FieldProjectCode))

	p, err := f.projects.GetTyped(f.ctx, "AEP-JD-001.24")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnquiry, p.Status)
	assert.Equal(t, domain.FeedbackNone, p.FeedbackState())
	require.Len(t, p.Jobs, 1)
	assert.Equal(t, domain.Number(30), p.CostingVariables["markupPercent"])
	assert.Contains(t, f.events, domain.DatasetProjects)
}

func TestProjectService_FeedbackTransitions(t *testing.T) {
	f := newFixture(t)
	f.saveLocal(t, domain.DatasetProjects, projectRecord("AEP-JD-001.24", "Acme", f.clock.Now()))
	code := "AEP-JD-001.24"

	_, err := f.projects.VerifyFeedback(f.ctx, code, "lead")
	assert.ErrorIs(t, err, service.ErrInvalidFeedbackTransition)

	p, err := f.projects.RequestFeedback(f.ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "requested", feedbackStatus(p))

	_, err = f.projects.RequestFeedback(f.ctx, code)
	assert.ErrorIs(t, err, service.ErrInvalidFeedbackTransition)

	f.dropInbox(t, "fb.json", `{"code":"`+code+`",`+goodFeedback+`}`)
	require.Equal(t, 1, f.inbox.SyncInboxFeedback(f.ctx, "tok", nil).Count)

	p, err = f.projects.VerifyFeedback(f.ctx, code, "lead@aeworks.example")
	require.NoError(t, err)
	assert.Equal(t, "verified", feedbackStatus(p))
	fb := p.Object(domain.FieldTrackingData).Object(domain.FieldCustomerFeedback)
	assert.Equal(t, "lead@aeworks.example", fb.String("verifiedBy"))
	assert.Equal(t, "Great work", fb.String("comment"))

	_, err = f.projects.RequestFeedback(f.ctx, "AEP-NO-404.24")
	assert.ErrorIs(t, err, service.ErrProjectNotFound)
}

func TestProjectService_LookupIsExact(t *testing.T) {
	f := newFixture(t)
	f.saveLocal(t, domain.DatasetProjects,
		projectRecord("AEP-JD-001.24", "Acme", f.clock.Now()),
		projectRecord("AEP-JD-001.25", "Acme", f.clock.Now()),
	)

	p, err := f.projects.Get(f.ctx, " aep-jd-001.25 ")
	require.NoError(t, err)
	assert.Equal(t, "AEP-JD-001.25", p.String(domain.FieldProjectCode))

	_, err = f.projects.Get(f.ctx, "AEP-JD-001")
	assert.ErrorIs(t, err, service.ErrProjectNotFound, "base code alone names no project")

	_, err = f.projects.RequestFeedback(f.ctx, "AEP-JD-001.25")
	require.NoError(t, err)
	assert.Equal(t, "requested", feedbackStatus(f.project(t, "AEP-JD-001.25")))
	assert.Empty(t, feedbackStatus(f.project(t, "AEP-JD-001.24")))
}

func TestProjectService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	p := projectRecord("AEP-JD-001.24", "Acme", f.clock.Now())
	p["customField"] = "kept"
	f.saveLocal(t, domain.DatasetProjects, p)
	code := "AEP-JD-001.24"

	updated, err := f.projects.UpdateStatus(f.ctx, code, domain.StatusProduction)
	require.NoError(t, err)
	assert.Equal(t, "75", updated.String(domain.FieldStatus))
	assert.Equal(t, "kept", updated.String("customField"))

	_, err = f.projects.UpdateStatus(f.ctx, code, "42")
	assert.ErrorIs(t, err, service.ErrInvalidStatus)

	_, err = f.projects.UpdateStatus(f.ctx, code, domain.StatusClosed)
	assert.ErrorIs(t, err, service.ErrCloseoutBlocked)

	yes := true
	_, err = f.projects.UpdateTracking(f.ctx, code, domain.UpdateTrackingRequest{QCSignedOff: &yes, DeliveryConfirmed: &yes, PaymentReceived: &yes})
	require.NoError(t, err)
	_, err = f.projects.UpdateStatus(f.ctx, code, domain.StatusClosed)
	assert.ErrorIs(t, err, service.ErrCloseoutBlocked, "feedback still unverified")

	_, err = f.projects.RequestFeedback(f.ctx, code)
	require.NoError(t, err)
	f.dropInbox(t, "fb.json", `{"code":"`+code+`",`+goodFeedback+`}`)
	require.Equal(t, 1, f.inbox.SyncInboxFeedback(f.ctx, "tok", nil).Count)
	_, err = f.projects.VerifyFeedback(f.ctx, code, "lead")
	require.NoError(t, err)

	closed, err := f.projects.UpdateStatus(f.ctx, code, domain.StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, "100", closed.String(domain.FieldStatus))
	assert.Equal(t, true, closed.Object(domain.FieldTrackingData)["qcSignedOff"])
}
