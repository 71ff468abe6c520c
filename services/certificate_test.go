package services

import (
	"context"
	"testing"
	"time"

	"elearning/apperr"
	"elearning/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedEnrollment(t *testing.T, env *testEnv, user models.User, program models.Program) models.Enrollment {
	t.Helper()
	now := testNow
	e := models.Enrollment{
		UserID:             user.ID,
		ProgramID:          program.ID,
		Status:             models.EnrollmentCompleted,
		ProgressPercentage: models.FullPercentage,
		CompletedAt:        &now,
	}
	require.NoError(t, env.db.Create(&e).Error)
	return e
}

func TestCreateCertificate(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCertificateService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramWorkshop, 0)
	e := completedEnrollment(t, env, user, program)

	expires := testNow.AddDate(1, 0, 0)
	view, err := svc.Create(ctx, CertificateInput{EnrollmentID: e.ID, IssuedAt: testNow, ExpiredAt: &expires})
	require.NoError(t, err)

	assert.Equal(t, "WRS0001-U0001", view.Credential)
	assert.Equal(t, program.Title, view.Title)
	require.NotNil(t, view.ProgramTitle)
	assert.Equal(t, program.Title, *view.ProgramTitle)
	require.NotNil(t, view.ProgramType)
	assert.Equal(t, models.ProgramWorkshop, *view.ProgramType)

	key := "documents/certificates/WRS0001-U0001-" + itoa(testNow.UnixMilli()) + ".pdf"
	require.NotNil(t, view.DocumentURL)
	assert.Equal(t, "https://cdn.test/"+key, *view.DocumentURL)
	assert.Contains(t, env.storage.objects, key)

	require.Len(t, env.renderer.calls, 1)
	assert.Equal(t, user.FullName, env.renderer.calls[0].FullName)
	assert.Len(t, env.mailer.sent, 1)
}

func TestCreateCertificateActiveRules(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCertificateService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramCourse, 0)
	e := completedEnrollment(t, env, user, program)

	_, err := svc.Create(ctx, CertificateInput{EnrollmentID: e.ID, IssuedAt: testNow})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CertificateInput{EnrollmentID: e.ID, IssuedAt: testNow})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err), "no expiry is active")

	past := testNow.Add(-time.Hour)
	require.NoError(t, env.db.Model(&models.Certificate{}).Where("enrollment_id = ?", e.ID).
		Updates(map[string]interface{}{"issued_at": testNow.AddDate(-1, 0, 0), "expired_at": past}).Error)

	view, err := svc.Create(ctx, CertificateInput{EnrollmentID: e.ID, IssuedAt: testNow})
	require.NoError(t, err)
	assert.Equal(t, "CRS0001-U0001", view.Credential, "credential is stable across reissues")

	var n int64
	env.db.Model(&models.Certificate{}).Where("enrollment_id = ?", e.ID).Count(&n)
	assert.Equal(t, int64(2), n)
}

func TestCreateCertificateRejections(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCertificateService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramSeminar, 0)

	_, err := svc.Create(ctx, CertificateInput{EnrollmentID: 42, IssuedAt: testNow})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	inProgress := models.Enrollment{UserID: user.ID, ProgramID: program.ID, Status: models.EnrollmentInProgress, ProgressPercentage: models.ZeroPercentage}
	require.NoError(t, env.db.Create(&inProgress).Error)
	_, err = svc.Create(ctx, CertificateInput{EnrollmentID: inProgress.ID, IssuedAt: testNow})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	e := completedEnrollment(t, env, user, program)
	before := testNow.Add(-time.Minute)
	_, err = svc.Create(ctx, CertificateInput{EnrollmentID: e.ID, IssuedAt: testNow, ExpiredAt: &before})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	env.renderer.err = errUpstream
	_, err = svc.Create(ctx, CertificateInput{EnrollmentID: e.ID, IssuedAt: testNow})
	assert.Equal(t, apperr.KindBadGateway, apperr.KindOf(err))
	var n int64
	env.db.Model(&models.Certificate{}).Count(&n)
	assert.Zero(t, n)
}

func TestUpdateCertificate(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCertificateService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramCompetition, 0)
	e := completedEnrollment(t, env, user, program)

	created, err := svc.Create(ctx, CertificateInput{EnrollmentID: e.ID, IssuedAt: testNow})
	require.NoError(t, err)
	oldURL := *created.DocumentURL

	env.now = testNow.Add(time.Minute)
	title := "Champion"
	expires := testNow.AddDate(2, 0, 0)
	updated, err := svc.UpdateOne(ctx, created.ID, CertificateUpdate{Title: &title, ExpiredAt: &expires})
	require.NoError(t, err)

	assert.Equal(t, "Champion", updated.Title)
	require.NotNil(t, updated.ExpiredAt)
	assert.NotEqual(t, oldURL, *updated.DocumentURL)
	assert.Equal(t, 2, env.storage.count(), "previous document is kept")
	assert.Equal(t, "Champion", env.renderer.calls[1].Title)

	tooEarly := testNow.Add(-time.Hour)
	_, err = svc.UpdateOne(ctx, created.ID, CertificateUpdate{ExpiredAt: &tooEarly})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	laterIssue := testNow.AddDate(3, 0, 0)
	_, err = svc.UpdateOne(ctx, created.ID, CertificateUpdate{IssuedAt: &laterIssue})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "existing expiry before new issue date")

	_, err = svc.UpdateOne(ctx, 999, CertificateUpdate{Title: &title})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteCertificate(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCertificateService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramSeminar, 0)
	e := completedEnrollment(t, env, user, program)

	created, err := svc.Create(ctx, CertificateInput{EnrollmentID: e.ID, IssuedAt: testNow})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteOne(ctx, created.ID))
	assert.Zero(t, env.storage.count())
	assert.Equal(t, []string{"documents/certificates/SMN0001-U0001-" + itoa(testNow.UnixMilli()) + ".pdf"}, env.storage.deleted)

	noDoc := models.Certificate{EnrollmentID: e.ID, UserID: user.ID, Title: "x", Credential: "SMN0001-U0001", IssuedAt: testNow}
	require.NoError(t, env.db.Create(&noDoc).Error)
	require.NoError(t, svc.DeleteOne(ctx, noDoc.ID))
	assert.Len(t, env.storage.deleted, 1)

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.DeleteOne(ctx, noDoc.ID)))
}

func TestGetCertificatesToleratesOrphans(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCertificateService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	other := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramSeminar, 0)
	e := completedEnrollment(t, env, user, program)

	linked, err := svc.Create(ctx, CertificateInput{EnrollmentID: e.ID, IssuedAt: testNow})
	require.NoError(t, err)
	orphan := models.Certificate{EnrollmentID: 777, UserID: user.ID, Title: "Legacy", Credential: "SMN0099-U0001", IssuedAt: testNow}
	require.NoError(t, env.db.Create(&orphan).Error)

	views, page, err := svc.GetMany(ctx, actorOf(user), CertificateFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalRecords)
	byID := map[uint]CertificateView{}
	for _, v := range views {
		byID[v.ID] = v
	}
	assert.NotNil(t, byID[linked.ID].ProgramTitle)
	assert.Nil(t, byID[orphan.ID].ProgramTitle)

	none, _, err := svc.GetMany(ctx, actorOf(other), CertificateFilter{UserID: user.ID})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.GetOne(ctx, actorOf(other), linked.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	one, err := svc.GetOne(ctx, actorOf(user), orphan.ID)
	require.NoError(t, err)
	assert.Nil(t, one.ProgramID)
}
