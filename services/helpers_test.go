package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"elearning/database"
	"elearning/models"
	"elearning/services/pdfrender"
	"elearning/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, key string, body []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.objects[key] = body
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls []pdfrender.CertificateData
	err   error
}

func (f *fakeRenderer) RenderCertificate(_ context.Context, data pdfrender.CertificateData) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, data)
	return []byte("%PDF " + data.Credential), nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []utils.EmailMessage
}

func (f *fakeMailer) SendMessages(messages ...utils.EmailMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, messages...)
}

type testEnv struct {
	db       *gorm.DB
	deps     Deps
	storage  *fakeStorage
	renderer *fakeRenderer
	mailer   *fakeMailer
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		storage:  newFakeStorage(),
		renderer: &fakeRenderer{},
		mailer:   &fakeMailer{},
		now:      testNow,
	}
	env.deps = Deps{
		DB:       db,
		Log:      zap.NewNop().Sugar(),
		Storage:  env.storage,
		Renderer: env.renderer,
		Mailer:   env.mailer,
		Now:      func() time.Time { return env.now },
	}
	return env
}

var errUpstream = errors.New("upstream down")

func (e *testEnv) user(t *testing.T, role models.Role) models.User {
	t.Helper()
	var n int64
	e.db.Model(&models.User{}).Count(&n)
	u := models.User{FullName: fmt.Sprintf("User %d", n+1), Email: fmt.Sprintf("user%d@test.io", n+1), Password: "x", Role: role}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

func (e *testEnv) program(t *testing.T, typ models.ProgramType, price int64) models.Program {
	t.Helper()
	p := models.Program{
		Title:         string(typ) + " program",
		Type:          typ,
		PriceIdr:      price,
		AvailableDate: testNow.Add(-24 * time.Hour),
	}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e *testEnv) modules(t *testing.T, programID uint, n int) []models.CourseModule {
	t.Helper()
	out := make([]models.CourseModule, 0, n)
	for i := 1; i <= n; i++ {
		m := models.CourseModule{ProgramID: programID, Title: fmt.Sprintf("Module %d", i), OrderIndex: i}
		require.NoError(t, e.db.Create(&m).Error)
		out = append(out, m)
	}
	return out
}

func actorOf(u models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

func itoa(v int64) string {
	return fmt.Sprint(v)
}
