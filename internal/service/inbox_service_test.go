package service_test

import (
	"testing"
	"time"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodFeedback = `"feedback":{"quality":5,"timeliness":4,"communication":5,"overall":5,"comment":"Great work"}`

func TestInboxService_NoFolder(t *testing.T) {
	f := newFixture(t)

	res := f.inbox.SyncInboxFeedback(f.ctx, "tok", nil)
	assert.True(t, res.Success)
	assert.Zero(t, res.Count)
}

func TestInboxService_RequiresToken(t *testing.T) {
	f := newFixture(t)

	res := f.inbox.SyncInboxFeedback(f.ctx, "", nil)
	assert.False(t, res.Success)
}

func TestInboxService_AppliesMatchedFeedback(t *testing.T) {
	f := newFixture(t)
	t0 := f.clock.Now()
	f.saveLocal(t, domain.DatasetProjects, projectRecord("AEP-JD-001.24", "Acme", t0))
	f.dropInbox(t, "fb1.json", `{"code":"AEP-JD-001.24",`+goodFeedback+`}`)

	var called []string
	f.clock.Advance(time.Minute)
	res := f.inbox.SyncInboxFeedback(f.ctx, "tok", func(code string) { called = append(called, code) })

	require.True(t, res.Success, res.Message)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []string{"AEP-JD-001.24"}, called)
	assert.False(t, f.inboxHas("fb1.json"))

	p := f.project(t, "AEP-JD-001.24")
	assert.Equal(t, "received", feedbackStatus(p))
	assert.Equal(t, ts(f.clock.Now()), p.String("updatedAt"))
	fb := p.Object(domain.FieldTrackingData).Object(domain.FieldCustomerFeedback)
	assert.Equal(t, "Great work", fb.String("comment"))

	// the whole document was pushed for teammates
	remote := f.readRemote(t)
	require.Len(t, remote[domain.DatasetProjects], 1)
	assert.Equal(t, "received", feedbackStatus(remote[domain.DatasetProjects][0]))
}

func TestInboxService_FuzzyCodeMatch(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
	}{
		{name: "lower case and spaces", submitted: "  aep-jd-001.24 "},
		{name: "base code only", submitted: "AEP-JD-001"},
		{name: "revision suffix", submitted: "AEP-JD-001.24-R2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.saveLocal(t, domain.DatasetProjects, projectRecord("AEP-JD-001.24", "Acme", f.clock.Now()))
			f.dropInbox(t, "fb.json", `{"code":"`+tt.submitted+`",`+goodFeedback+`}`)

			res := f.inbox.SyncInboxFeedback(f.ctx, "tok", nil)
			require.True(t, res.Success)
			assert.Equal(t, 1, res.Count)
			assert.Equal(t, "received", feedbackStatus(f.project(t, "AEP-JD-001.24")))
		})
	}
}

func TestInboxService_ExactCodeBeatsBaseCode(t *testing.T) {
	f := newFixture(t)
	f.saveLocal(t, domain.DatasetProjects,
		projectRecord("AEP-JD-001.24", "Acme", f.clock.Now()),
		projectRecord("AEP-JD-001.25", "Acme", f.clock.Now()),
	)
	f.dropInbox(t, "fb.json", `{"code":"AEP-JD-001.25",`+goodFeedback+`}`)

	res := f.inbox.SyncInboxFeedback(f.ctx, "tok", nil)
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "received", feedbackStatus(f.project(t, "AEP-JD-001.25")))
	assert.Empty(t, feedbackStatus(f.project(t, "AEP-JD-001.24")))
}

func TestInboxService_LinkTargetsExactProject(t *testing.T) {
	f := newFixture(t)
	f.saveLocal(t, domain.DatasetProjects,
		projectRecord("AEP-JD-001.24", "Acme", f.clock.Now()),
		projectRecord("AEP-JD-001.25", "Acme", f.clock.Now()),
	)
	id := f.dropInbox(t, "typo.json", `{"code":"AEP-XX-001.25",`+goodFeedback+`}`)
	require.Equal(t, 1, f.inbox.SyncInboxFeedback(f.ctx, "tok", nil).Orphans)

	p, err := f.inbox.LinkUnassigned(f.ctx, "tok", id, "AEP-JD-001.25")
	require.NoError(t, err)
	assert.Equal(t, "AEP-JD-001.25", p.String(domain.FieldProjectCode))
	assert.Empty(t, feedbackStatus(f.project(t, "AEP-JD-001.24")))
}

func TestInboxService_VerifiedIsNotOverwritten(t *testing.T) {
	f := newFixture(t)
	p := projectRecord("AEP-JD-001.24", "Acme", f.clock.Now())
	p[domain.FieldTrackingData] = map[string]any{
		"feedbackStatus":   "verified",
		"customerFeedback": map[string]any{"comment": "original"},
	}
	f.saveLocal(t, domain.DatasetProjects, p)
	f.dropInbox(t, "late.json", `{"code":"AEP-JD-001.24",`+goodFeedback+`}`)

	var called int
	res := f.inbox.SyncInboxFeedback(f.ctx, "tok", func(string) { called++ })

	require.True(t, res.Success)
	assert.Zero(t, res.Count)
	assert.Zero(t, called)
	assert.False(t, f.inboxHas("late.json"))

	stored := f.project(t, "AEP-JD-001.24")
	assert.Equal(t, "verified", feedbackStatus(stored))
	assert.Equal(t, "original", stored.Object(domain.FieldTrackingData).Object(domain.FieldCustomerFeedback).String("comment"))
}

func TestInboxService_UnmatchedIsKept(t *testing.T) {
	f := newFixture(t)
	f.saveLocal(t, domain.DatasetProjects, projectRecord("AEP-JD-001.24", "Acme", f.clock.Now()))
	fileID := f.dropInbox(t, "orphan.json", `{"code":"AEP-ZZ-009.24",`+goodFeedback+`}`)

	for i := 0; i < 2; i++ {
		res := f.inbox.SyncInboxFeedback(f.ctx, "tok", nil)
		require.True(t, res.Success)
		assert.Zero(t, res.Count)
	}

	assert.True(t, f.inboxHas("orphan.json"))
	orphans := f.inbox.ListUnassigned(f.ctx)
	require.Len(t, orphans, 1)
	assert.Equal(t, fileID, orphans[0].ID)
	assert.Equal(t, "AEP-ZZ-009.24", orphans[0].SubmittedCode)
	assert.Empty(t, feedbackStatus(f.project(t, "AEP-JD-001.24")))
}

func TestInboxService_ErrorIsolation(t *testing.T) {
	f := newFixture(t)
	f.saveLocal(t, domain.DatasetProjects,
		projectRecord("AEP-JD-001.24", "Acme", f.clock.Now()),
		projectRecord("AEP-MB-002.24", "Beta", f.clock.Now()),
	)
	f.dropInbox(t, "a-broken.json", `{"code":`)
	f.dropInbox(t, "b-nocode.json", `{`+goodFeedback+`}`)
	f.dropInbox(t, "c-good.json", `{"code":"AEP-MB-002.24",`+goodFeedback+`}`)

	res := f.inbox.SyncInboxFeedback(f.ctx, "tok", nil)
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 1, res.Failed)

	assert.True(t, f.inboxHas("a-broken.json"))
	assert.True(t, f.inboxHas("b-nocode.json"))
	assert.False(t, f.inboxHas("c-good.json"))
	assert.Equal(t, "received", feedbackStatus(f.project(t, "AEP-MB-002.24")))
}

func TestInboxService_LinkAndDiscard(t *testing.T) {
	f := newFixture(t)
	f.saveLocal(t, domain.DatasetProjects, projectRecord("AEP-JD-001.24", "Acme", f.clock.Now()))
	linkID := f.dropInbox(t, "typo.json", `{"code":"AEP-DJ-001.24",`+goodFeedback+`}`)
	dropID := f.dropInbox(t, "spam.json", `{"code":"hello",`+goodFeedback+`}`)

	res := f.inbox.SyncInboxFeedback(f.ctx, "tok", nil)
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Orphans)

	t.Run("link applies feedback", func(t *testing.T) {
		p, err := f.inbox.LinkUnassigned(f.ctx, "tok", linkID, "AEP-JD-001.24")
		require.NoError(t, err)
		assert.Equal(t, "received", feedbackStatus(p))
		assert.False(t, f.inboxHas("typo.json"))
		assert.Len(t, f.inbox.ListUnassigned(f.ctx), 1)
	})

	t.Run("link unknown project", func(t *testing.T) {
		_, err := f.inbox.LinkUnassigned(f.ctx, "tok", dropID, "AEP-NO-999.24")
		assert.ErrorIs(t, err, service.ErrProjectNotFound)
	})

	t.Run("discard", func(t *testing.T) {
		require.NoError(t, f.inbox.DiscardUnassigned(f.ctx, "tok", dropID))
		assert.False(t, f.inboxHas("spam.json"))
		assert.Empty(t, f.inbox.ListUnassigned(f.ctx))
	})

	t.Run("unknown item", func(t *testing.T) {
		assert.ErrorIs(t, f.inbox.DiscardUnassigned(f.ctx, "tok", "nope"), service.ErrUnassignedNotFound)
	})

	t.Run("no token", func(t *testing.T) {
		_, err := f.inbox.LinkUnassigned(f.ctx, "", "x", "AEP-JD-001.24")
		assert.ErrorIs(t, err, service.ErrAuthRequired)
	})
}
