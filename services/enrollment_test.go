package services

import (
	"context"
	"testing"
	"time"

	"elearning/apperr"
	"elearning/models"
	"elearning/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFreeEnrollment(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEnrollmentService(env.deps)
	user := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramSeminar, 0)

	out, err := svc.Create(context.Background(), actorOf(user), program.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, models.EnrollmentInProgress, out.Enrollment.Status)
	assert.Equal(t, "0.00", out.Enrollment.ProgressPercentage.String())
	assert.Equal(t, models.InvoiceVerified, out.Invoice.Status)
	assert.Nil(t, out.Invoice.PaymentDueDatetime)
	assert.Nil(t, out.Invoice.VirtualAccountNumber)
	assert.Zero(t, out.Invoice.AmountIdr)
	assert.Equal(t, out.Enrollment.ID, out.Invoice.EnrollmentID)
	assert.Len(t, env.mailer.sent, 1)
}

func TestCreatePricedEnrollment(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEnrollmentService(env.deps)
	user := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramCourse, 250000)

	out, err := svc.Create(context.Background(), actorOf(user), program.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, models.EnrollmentUnpaid, out.Enrollment.Status)
	assert.Equal(t, models.InvoiceUnverified, out.Invoice.Status)
	assert.Equal(t, int64(250000), out.Invoice.AmountIdr)
	require.NotNil(t, out.Invoice.PaymentDueDatetime)
	assert.WithinDuration(t, testNow.Add(60*time.Minute), *out.Invoice.PaymentDueDatetime, time.Second)
	require.NotNil(t, out.Invoice.VirtualAccountNumber)
	assert.GreaterOrEqual(t, len(*out.Invoice.VirtualAccountNumber), 16)
	assert.LessOrEqual(t, len(*out.Invoice.VirtualAccountNumber), 18)

	var stored models.Invoice
	require.NoError(t, env.db.Where("enrollment_id = ?", out.Enrollment.ID).First(&stored).Error)
	assert.Equal(t, models.InvoiceUnverified, stored.Status)
}

func TestCreateEnrollmentConflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("pending payment", func(t *testing.T) {
		env := newTestEnv(t)
		svc := NewEnrollmentService(env.deps)
		user := env.user(t, models.RoleUser)
		program := env.program(t, models.ProgramWorkshop, 1000)

		_, err := svc.Create(ctx, actorOf(user), program.ID, 0)
		require.NoError(t, err)
		_, err = svc.Create(ctx, actorOf(user), program.ID, 0)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	for _, status := range []models.EnrollmentStatus{models.EnrollmentInProgress, models.EnrollmentCompleted} {
		t.Run(string(status), func(t *testing.T) {
			env := newTestEnv(t)
			svc := NewEnrollmentService(env.deps)
			user := env.user(t, models.RoleUser)
			program := env.program(t, models.ProgramSeminar, 0)

			out, err := svc.Create(ctx, actorOf(user), program.ID, 0)
			require.NoError(t, err)
			require.NoError(t, env.db.Model(&models.Enrollment{}).Where("id = ?", out.Enrollment.ID).Update("status", status).Error)

			_, err = svc.Create(ctx, actorOf(user), program.ID, 0)
			assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		})
	}

	t.Run("expired enrollment allows a new one", func(t *testing.T) {
		env := newTestEnv(t)
		svc := NewEnrollmentService(env.deps)
		user := env.user(t, models.RoleUser)
		program := env.program(t, models.ProgramWorkshop, 1000)

		_, err := svc.Create(ctx, actorOf(user), program.ID, 0)
		require.NoError(t, err)

		env.now = testNow.Add(2 * time.Hour)
		sweeper, err := utils.NewInvoiceSweeper(env.db, env.deps.Log, env.deps.Now, "* * * * *")
		require.NoError(t, err)
		n, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		_, err = svc.Create(ctx, actorOf(user), program.ID, 0)
		assert.NoError(t, err)
	})
}

func TestCreateEnrollmentAvailability(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEnrollmentService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	admin := env.user(t, models.RoleAdmin)

	program := env.program(t, models.ProgramCompetition, 0)
	require.NoError(t, env.db.Model(&program).Update("available_date", testNow.Add(48*time.Hour)).Error)

	_, err := svc.Create(ctx, actorOf(user), program.ID, 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	out, err := svc.Create(ctx, actorOf(admin), program.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.Enrollment.UserID)

	_, err = svc.Create(ctx, actorOf(user), 999, 0)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCompleteModuleReachesHundred(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEnrollmentService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramCourse, 0)
	modules := env.modules(t, program.ID, 3)

	out, err := svc.Create(ctx, actorOf(user), program.ID, 0)
	require.NoError(t, err)
	id := out.Enrollment.ID

	want := []string{"33.33", "66.67", "100.00"}
	for i, m := range modules {
		res, err := svc.CompleteModule(ctx, actorOf(user), id, m.ID)
		require.NoError(t, err)
		assert.Equal(t, want[i], res.ProgressPercentage.String())
		assert.Equal(t, m.ID, res.CompletedModule.CourseModuleID)
		if i < 2 {
			assert.Nil(t, res.Certificate)
		}
	}

	view, err := svc.GetOne(ctx, actorOf(user), id)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCompleted, view.Status)
	assert.Equal(t, "100.00", view.ProgressPercentage.String())
	require.NotNil(t, view.CompletedAt)
	require.NotNil(t, view.CompletedModules)
	assert.Len(t, *view.CompletedModules, 3)

	var certs []models.Certificate
	require.NoError(t, env.db.Where("enrollment_id = ?", id).Find(&certs).Error)
	require.Len(t, certs, 1)
	assert.Equal(t, "CRS0001-U0001", certs[0].Credential)
	require.NotNil(t, certs[0].DocumentURL)
	assert.Contains(t, *certs[0].DocumentURL, "documents/certificates/CRS0001-U0001-")
	assert.Len(t, env.renderer.calls, 1)
	assert.Equal(t, 1, env.storage.count())
}

func TestCompleteModuleTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEnrollmentService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramCourse, 0)
	modules := env.modules(t, program.ID, 2)

	out, err := svc.Create(ctx, actorOf(user), program.ID, 0)
	require.NoError(t, err)

	_, err = svc.CompleteModule(ctx, actorOf(user), out.Enrollment.ID, modules[0].ID)
	require.NoError(t, err)
	_, err = svc.CompleteModule(ctx, actorOf(user), out.Enrollment.ID, modules[0].ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	var n int64
	env.db.Model(&models.CompletedModule{}).Where("enrollment_id = ?", out.Enrollment.ID).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestCompleteModuleRejections(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEnrollmentService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	other := env.user(t, models.RoleUser)

	course := env.program(t, models.ProgramCourse, 5000)
	modules := env.modules(t, course.ID, 2)
	unpaid, err := svc.Create(ctx, actorOf(user), course.ID, 0)
	require.NoError(t, err)

	_, err = svc.CompleteModule(ctx, actorOf(user), unpaid.Enrollment.ID, modules[0].ID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "unpaid")

	_, err = svc.CompleteModule(ctx, actorOf(other), unpaid.Enrollment.ID, modules[0].ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.CompleteModule(ctx, actorOf(user), unpaid.Enrollment.ID, 999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.CompleteModule(ctx, actorOf(user), 999, modules[0].ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	seminar := env.program(t, models.ProgramSeminar, 0)
	enrolled, err := svc.Create(ctx, actorOf(user), seminar.ID, 0)
	require.NoError(t, err)
	_, err = svc.CompleteModule(ctx, actorOf(user), enrolled.Enrollment.ID, modules[0].ID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "not a course")
}

func TestCompleteModuleRenderFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEnrollmentService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramCourse, 0)
	modules := env.modules(t, program.ID, 2)

	out, err := svc.Create(ctx, actorOf(user), program.ID, 0)
	require.NoError(t, err)
	_, err = svc.CompleteModule(ctx, actorOf(user), out.Enrollment.ID, modules[0].ID)
	require.NoError(t, err)

	env.renderer.err = errUpstream
	_, err = svc.CompleteModule(ctx, actorOf(user), out.Enrollment.ID, modules[1].ID)
	assert.Equal(t, apperr.KindBadGateway, apperr.KindOf(err))

	view, err := svc.GetOne(ctx, actorOf(user), out.Enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentInProgress, view.Status)
	assert.Equal(t, "50.00", view.ProgressPercentage.String())
	assert.Len(t, *view.CompletedModules, 1)

	var certs int64
	env.db.Model(&models.Certificate{}).Count(&certs)
	assert.Zero(t, certs)

	env.renderer.err = nil
	res, err := svc.CompleteModule(ctx, actorOf(user), out.Enrollment.ID, modules[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", res.ProgressPercentage.String())
	assert.NotNil(t, res.Certificate)
}

func TestUpdateOneCompletesNonCourse(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEnrollmentService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramSeminar, 0)

	out, err := svc.Create(ctx, actorOf(user), program.ID, 0)
	require.NoError(t, err)

	view, err := svc.UpdateOne(ctx, actorOf(user), out.Enrollment.ID, models.EnrollmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCompleted, view.Status)
	assert.Equal(t, "100.00", view.ProgressPercentage.String())
	assert.NotNil(t, view.CompletedAt)
	assert.Nil(t, view.CompletedModules)

	var cert models.Certificate
	require.NoError(t, env.db.Where("enrollment_id = ?", out.Enrollment.ID).First(&cert).Error)
	assert.Equal(t, utils.GenerateCredential("SMN", program.ID, user.ID), cert.Credential)

	_, err = svc.UpdateOne(ctx, actorOf(user), out.Enrollment.ID, models.EnrollmentCompleted)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "already completed")
}

func TestUpdateOneRejections(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEnrollmentService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)

	course := env.program(t, models.ProgramCourse, 0)
	courseEnrollment, err := svc.Create(ctx, actorOf(user), course.ID, 0)
	require.NoError(t, err)
	_, err = svc.UpdateOne(ctx, actorOf(user), courseEnrollment.Enrollment.ID, models.EnrollmentCompleted)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "course")

	priced := env.program(t, models.ProgramWorkshop, 9000)
	unpaid, err := svc.Create(ctx, actorOf(user), priced.ID, 0)
	require.NoError(t, err)
	_, err = svc.UpdateOne(ctx, actorOf(user), unpaid.Enrollment.ID, models.EnrollmentCompleted)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "unpaid")

	_, err = svc.UpdateOne(ctx, actorOf(user), 999, models.EnrollmentCompleted)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateOneUploadFailureAppliesNothing(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEnrollmentService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramCompetition, 0)

	out, err := svc.Create(ctx, actorOf(user), program.ID, 0)
	require.NoError(t, err)

	env.storage.uploadErr = apperr.BadGateway("Failed to upload file", errUpstream)
	_, err = svc.UpdateOne(ctx, actorOf(user), out.Enrollment.ID, models.EnrollmentCompleted)
	assert.Equal(t, apperr.KindBadGateway, apperr.KindOf(err))

	view, err := svc.GetOne(ctx, actorOf(user), out.Enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentInProgress, view.Status)
	assert.Equal(t, "0.00", view.ProgressPercentage.String())
	assert.Nil(t, view.CompletedAt)

	var certs int64
	env.db.Model(&models.Certificate{}).Count(&certs)
	assert.Zero(t, certs)
}

func TestGetManyEnrollments(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEnrollmentService(env.deps)
	ctx := context.Background()
	alice := env.user(t, models.RoleUser)
	bob := env.user(t, models.RoleUser)
	admin := env.user(t, models.RoleAdmin)

	course := env.program(t, models.ProgramCourse, 0)
	seminar := env.program(t, models.ProgramSeminar, 0)
	for _, u := range []models.User{alice, bob} {
		for _, p := range []models.Program{course, seminar} {
			_, err := svc.Create(ctx, actorOf(u), p.ID, 0)
			require.NoError(t, err)
		}
	}

	own, page, err := svc.GetMany(ctx, actorOf(alice), EnrollmentFilter{UserID: bob.ID})
	require.NoError(t, err)
	assert.Len(t, own, 2)
	assert.Equal(t, int64(2), page.TotalRecords)
	for _, v := range own {
		assert.Equal(t, alice.ID, v.UserID)
		assert.Equal(t, alice.FullName, v.OwnerFullName)
		if v.ProgramType == models.ProgramCourse {
			assert.NotNil(t, v.CompletedModules)
		} else {
			assert.Nil(t, v.CompletedModules)
		}
	}

	all, page, err := svc.GetMany(ctx, actorOf(admin), EnrollmentFilter{
		PageQuery:   utils.PageQuery{Page: 1, Limit: 1, Sort: "createdAt"},
		ProgramType: models.ProgramCourse,
	})
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, int64(2), page.TotalRecords)
	assert.Equal(t, 2, page.TotalPages)
	require.NotNil(t, page.NextPage)
	assert.Equal(t, 2, *page.NextPage)
	assert.Equal(t, course.Title, all[0].ProgramTitle)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = svc.GetMany(canceled, actorOf(admin), EnrollmentFilter{ProgramType: models.ProgramSeminar})
	assert.Error(t, err)

	_, _, err = svc.GetMany(ctx, actorOf(admin), EnrollmentFilter{PageQuery: utils.PageQuery{Sort: "password"}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeleteEnrollment(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEnrollmentService(env.deps)
	ctx := context.Background()
	user := env.user(t, models.RoleUser)
	other := env.user(t, models.RoleUser)
	program := env.program(t, models.ProgramCourse, 0)
	modules := env.modules(t, program.ID, 2)

	out, err := svc.Create(ctx, actorOf(user), program.ID, 0)
	require.NoError(t, err)
	_, err = svc.CompleteModule(ctx, actorOf(user), out.Enrollment.ID, modules[0].ID)
	require.NoError(t, err)

	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(svc.DeleteOne(ctx, actorOf(other), out.Enrollment.ID)))
	require.NoError(t, svc.DeleteOne(ctx, actorOf(user), out.Enrollment.ID))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.DeleteOne(ctx, actorOf(user), out.Enrollment.ID)))

	var e models.Enrollment
	require.NoError(t, env.db.Unscoped().First(&e, out.Enrollment.ID).Error)
	assert.True(t, e.DeletedAt.Valid)

	var inv models.Invoice
	require.NoError(t, env.db.Unscoped().Where("enrollment_id = ?", out.Enrollment.ID).First(&inv).Error)
	assert.True(t, inv.DeletedAt.Valid)

	var n int64
	env.db.Model(&models.CompletedModule{}).Where("enrollment_id = ?", out.Enrollment.ID).Count(&n)
	assert.Zero(t, n)

	_, err = svc.Create(ctx, actorOf(user), program.ID, 0)
	assert.NoError(t, err)
}
