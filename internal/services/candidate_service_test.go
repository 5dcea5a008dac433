package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ksys/admission-service/internal/events"
	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
)

func TestFormatAdmissionID(t *testing.T) {
	assert.Equal(t, "2026000001", FormatAdmissionID(2026, 1))
	assert.Equal(t, "2026012345", FormatAdmissionID(2026, 12345))
}

func TestCandidateService_Submit(t *testing.T) {
	env := newTestEnv(t)
	svc := env.candidates(2026)
	ctx := context.Background()

	first, err := svc.Submit(ctx, form("Ravi Singh", "+91 98765 43210"))
	require.NoError(t, err)
	assert.Equal(t, "2026000001", first.AdmissionID)
	assert.Equal(t, models.CandidatePending, first.Status)

	second, err := svc.Submit(ctx, form("Anita Sharma", "9123456789"))
	require.NoError(t, err)
	assert.Equal(t, "2026000002", second.AdmissionID)

	assert.Len(t, env.publisher.EventsOfType(events.CandidateSubmitted), 2)

	stored, err := env.repo.Candidate().GetByAdmissionID(ctx, nil, first.AdmissionID)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", stored.Mobile)
}

func TestCandidateService_SubmitDuplicateMobileReturnsPriorID(t *testing.T) {
	env := newTestEnv(t)
	svc := env.candidates(2026)
	ctx := context.Background()

	first, err := svc.Submit(ctx, form("Ravi Singh", "9876543210"))
	require.NoError(t, err)

	for _, variant := range []string{"+91 98765 43210", "098765 43210", "9876543210"} {
		_, err := svc.Submit(ctx, form("Someone Else", variant))
		require.Error(t, err, variant)

		var dup *MobileAlreadyRegisteredError
		require.True(t, errors.As(err, &dup), variant)
		assert.Equal(t, first.AdmissionID, dup.AdmissionID)
		assert.ErrorIs(t, err, ErrMobileAlreadyRegistered)
	}

	list, err := svc.List(ctx, repositories.CandidateFilters{}, helperAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
}

func TestCandidateService_SubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.candidates(2026)
	ctx := context.Background()

	_, err := svc.Submit(ctx, form("Ravi", "12345"))
	assert.ErrorIs(t, err, ErrInvalidMobile)

	bad := form("", "9876543210")
	_, err = svc.Submit(ctx, bad)
	var ve ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "full_name", ve[0].Field)

	noQualification := form("Ravi", "9876543210")
	noQualification.LastQualification = ""
	_, err = svc.Submit(ctx, noQualification)
	assert.NoError(t, err)
}

func TestCandidateService_StatusWorkflow(t *testing.T) {
	env := newTestEnv(t)
	svc := env.candidates(2026)
	ctx := context.Background()

	a, err := svc.Submit(ctx, form("Ravi", "9876543210"))
	require.NoError(t, err)
	b, err := svc.Submit(ctx, form("Anita", "9123456789"))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, a.AdmissionID, &StatusUpdateRequest{Status: models.CandidateApproved}, outsider)
	assertPermissionError(t, err)

	reason := "documents verified"
	resp, err := svc.UpdateStatus(ctx, a.AdmissionID, &StatusUpdateRequest{Status: models.CandidateApproved, Reason: &reason}, helperAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.CandidateApproved, resp.Status)
	assert.Equal(t, PrintURL(a.AdmissionID), resp.PrintURL)

	resp, err = svc.UpdateStatus(ctx, b.AdmissionID, &StatusUpdateRequest{Status: models.CandidateRejected}, helperAdmin)
	require.NoError(t, err)
	assert.Empty(t, resp.PrintURL)

	pending, err := svc.ListByStatus(ctx, models.CandidatePending, repositories.CandidateFilters{}, helperAdmin)
	require.NoError(t, err)
	assert.Empty(t, pending.Candidates)

	all, err := svc.List(ctx, repositories.CandidateFilters{}, helperAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	// Terminal states admit no further transitions
	_, err = svc.UpdateStatus(ctx, a.AdmissionID, &StatusUpdateRequest{Status: models.CandidateRejected}, helperAdmin)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	_, err = svc.UpdateStatus(ctx, a.AdmissionID, &StatusUpdateRequest{Status: models.CandidateApproved}, helperAdmin)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = svc.UpdateStatus(ctx, "2026099999", &StatusUpdateRequest{Status: models.CandidateApproved}, helperAdmin)
	assert.ErrorIs(t, err, ErrCandidateNotFound)

	history, err := svc.History(ctx, a.AdmissionID, helperAdmin)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.CandidatePending, history[0].FromStatus)
	assert.Equal(t, helperAdmin, history[0].ChangedBy)
	assert.JSONEq(t, `{"reason":"documents verified"}`, string(history[0].Metadata))

	stats, err := svc.Stats(ctx, helperAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Approved)
	assert.EqualValues(t, 1, stats.Rejected)
	assert.EqualValues(t, 0, stats.Pending)

	assert.Len(t, env.publisher.EventsOfType(events.CandidateStatusChanged), 2)
}

func TestCandidateService_ListByStatusRejectsUnknown(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.candidates(2026).ListByStatus(context.Background(), "archived", repositories.CandidateFilters{}, helperAdmin)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCandidateService_LookupByMobile(t *testing.T) {
	env := newTestEnv(t)
	svc := env.candidates(2026)
	ctx := context.Background()

	sub, err := svc.Submit(ctx, form("Ravi", "9876543210"))
	require.NoError(t, err)

	res, err := svc.LookupByMobile(ctx, "+91 98765 43210")
	require.NoError(t, err)
	assert.Equal(t, LookupFound, res.State)
	assert.Equal(t, sub.AdmissionID, res.Candidate.AdmissionID)

	res, err = svc.LookupByMobile(ctx, "9000000000")
	require.NoError(t, err)
	assert.Equal(t, LookupNotFound, res.State)
	assert.Nil(t, res.Candidate)

	res, err = svc.LookupByMobile(ctx, "12ab")
	require.NoError(t, err)
	assert.Equal(t, LookupNotFound, res.State)

	_, err = svc.LookupByMobile(ctx, "   ")
	var ve ValidationErrors
	assert.True(t, errors.As(err, &ve))
}

func TestCandidateService_LookupConcurrent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.candidates(2026)
	ctx := context.Background()

	_, err := svc.Submit(ctx, form("Ravi", "9876543210"))
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			res, err := svc.LookupByMobile(ctx, "098765 43210")
			if err != nil {
				return err
			}
			if res.State != LookupFound {
				return errors.New("expected found, got " + string(res.State))
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestCandidateService_LookupUnavailable(t *testing.T) {
	env := newTestEnv(t)
	svc := env.candidates(2026)

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	res, err := svc.LookupByMobile(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, LookupUnavailable, res.State)
}

func TestCandidateService_Delete(t *testing.T) {
	env := newTestEnv(t)
	svc := env.candidates(2026)
	ctx := context.Background()

	sub, err := svc.Submit(ctx, form("Ravi", "9876543210"))
	require.NoError(t, err)

	_, err = svc.Delete(ctx, sub.AdmissionID, outsider)
	assertPermissionError(t, err)

	deleted, err := svc.Delete(ctx, sub.AdmissionID, helperAdmin)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, sub.AdmissionID, helperAdmin)
	require.NoError(t, err)
	assert.False(t, deleted)

	res, err := svc.LookupByMobile(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, LookupNotFound, res.State)

	// The mobile can be registered again and gets a fresh serial
	again, err := svc.Submit(ctx, form("Ravi", "9876543210"))
	require.NoError(t, err)
	assert.Equal(t, "2026000002", again.AdmissionID)
}

func TestCandidateService_Search(t *testing.T) {
	env := newTestEnv(t)
	svc := env.candidates(2026)
	ctx := context.Background()

	_, err := svc.Submit(ctx, form("Ravi Singh", "9876543210"))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, form("Anita Sharma", "9123456789"))
	require.NoError(t, err)

	res, err := svc.List(ctx, repositories.CandidateFilters{Query: "sharma"}, helperAdmin)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Anita Sharma", res.Candidates[0].FullName)

	res, err = svc.List(ctx, repositories.CandidateFilters{Query: "2026000001"}, helperAdmin)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Ravi Singh", res.Candidates[0].FullName)
}

func TestCandidateService_ReprintReflectsReview(t *testing.T) {
	env, mr := newCachedTestEnv(t)
	svc := env.candidates(2026)
	ctx := context.Background()

	sub, err := svc.Submit(ctx, form("Ravi", "9876543210"))
	require.NoError(t, err)

	res, err := svc.LookupByMobile(ctx, "9876543210")
	require.NoError(t, err)
	require.Equal(t, LookupFound, res.State)
	assert.Equal(t, models.CandidatePending, res.Candidate.Status)
	assert.True(t, mr.Exists("candidate:mobile:9876543210"))

	_, err = svc.UpdateStatus(ctx, sub.AdmissionID, &StatusUpdateRequest{Status: models.CandidateApproved}, helperAdmin)
	require.NoError(t, err)
	assert.False(t, mr.Exists("candidate:mobile:9876543210"))

	res, err = svc.LookupByMobile(ctx, "9876543210")
	require.NoError(t, err)
	require.Equal(t, LookupFound, res.State)
	assert.Equal(t, models.CandidateApproved, res.Candidate.Status)

	card, err := svc.GetIDCard(ctx, sub.AdmissionID, helperAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.CandidateApproved, card.Status)

	stats, err := svc.Stats(ctx, helperAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Approved)
	assert.EqualValues(t, 0, stats.Pending)
}

func TestCandidateService_DeleteFreesMobileInCache(t *testing.T) {
	env, mr := newCachedTestEnv(t)
	svc := env.candidates(2026)
	ctx := context.Background()

	sub, err := svc.Submit(ctx, form("Ravi", "9876543210"))
	require.NoError(t, err)
	_, err = svc.LookupByMobile(ctx, "9876543210")
	require.NoError(t, err)
	_, err = svc.GetByAdmissionID(ctx, sub.AdmissionID, helperAdmin)
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, sub.AdmissionID, helperAdmin)
	require.NoError(t, err)
	require.True(t, deleted)
	assert.False(t, mr.Exists("candidate:mobile:9876543210"))
	assert.False(t, mr.Exists("candidate:admission:"+sub.AdmissionID))

	res, err := svc.LookupByMobile(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, LookupNotFound, res.State)

	again, err := svc.Submit(ctx, form("Ravi", "9876543210"))
	require.NoError(t, err)
	assert.NotEqual(t, sub.AdmissionID, again.AdmissionID)
}
