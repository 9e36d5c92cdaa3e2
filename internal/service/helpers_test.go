package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"kreuzen_backend/internal/config"
	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/util"
	"kreuzen_backend/pkg/database"

	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	questions  *QuestionService
	sessions   *SessionService
	selections *SelectionService
	course     model.Course
	student    Actor
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dialector, err := database.Dialector(&config.DatabaseConfig{
		Driver: "sqlite",
		DBName: filepath.Join(t.TempDir(), "kreuzen.db"),
	})
	if err != nil {
		t.Fatalf("dialector: %v", err)
	}
	db, err := database.Open(dialector, false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)

	uni := model.University{Name: "Universität Heidelberg"}
	mustCreate(t, db, &uni)
	module := model.Module{Name: "Anatomie", UniversityID: uni.ID}
	mustCreate(t, db, &module)
	semester := model.Semester{Name: "WS 2024/25", StartYear: 2024, EndYear: 2025}
	mustCreate(t, db, &semester)
	course := model.Course{Name: "Anatomie I", ModuleID: module.ID, SemesterID: semester.ID}
	mustCreate(t, db, &course)

	questionRepo := repository.NewQuestionRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)

	questions := NewQuestionService(questionRepo, sessionRepo, selectionRepo, nil, db)
	sessions := NewSessionService(sessionRepo, questions, db, nil, time.Minute, 500)
	selections := NewSelectionService(selectionRepo, sessions, questions, db)

	return &testEnv{
		db:         db,
		questions:  questions,
		sessions:   sessions,
		selections: selections,
		course:     course,
		student:    Actor{UserID: 1, Role: model.RoleUser},
	}
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool { return &v }
func uintPtr(v uint) *uint { return &v }
func ctxBG() context.Context { return context.Background() }

func answerTexts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Antwort %d", i+1)
	}
	return out
}

func (e *testEnv) base(text string, points int) QuestionBaseRequest {
	return QuestionBaseRequest{
		Text:     strPtr(text),
		Points:   intPtr(points),
		CourseID: uintPtr(e.course.ID),
		Origin:   strPtr("original"),
	}
}

func (e *testEnv) createSingleChoice(t *testing.T, texts []string, correct, points int) *Question {
	t.Helper()
	q, err := e.questions.Create(ctxBG(), e.student.UserID, e.base("Welche Stadt ist die Hauptstadt?", points),
		&SingleChoiceCreate{Answers: texts, CorrectAnswerLocalID: intPtr(correct)})
	if err != nil {
		t.Fatalf("create single-choice: %v", err)
	}
	return q
}

func (e *testEnv) createMultipleChoice(t *testing.T, texts []string, correct []int, points int) *Question {
	t.Helper()
	q, err := e.questions.Create(ctxBG(), e.student.UserID, e.base("Welche Aussagen treffen zu?", points),
		&MultipleChoiceCreate{Answers: texts, CorrectAnswerLocalIDs: correct})
	if err != nil {
		t.Fatalf("create multiple-choice: %v", err)
	}
	return q
}

func (e *testEnv) createAssignment(t *testing.T, identifiers, texts []string, correct []int, points int) *Question {
	t.Helper()
	q, err := e.questions.Create(ctxBG(), e.student.UserID, e.base("Ordne die Begriffe einander zu.", points),
		&AssignmentCreate{Identifiers: identifiers, Answers: texts, CorrectAnswerLocalIDs: correct})
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	return q
}

func (e *testEnv) createSession(t *testing.T, random bool, filter SessionFilter) *SessionView {
	t.Helper()
	s, err := e.sessions.Create(ctxBG(), e.student.UserID, CreateSessionRequest{
		SessionFilter: filter,
		Name:          "Klausurvorbereitung",
		SessionType:   "practice",
		IsRandom:      boolPtr(random),
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func (e *testEnv) questionCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&model.Question{}).Count(&n).Error; err != nil {
		t.Fatalf("count questions: %v", err)
	}
	return n
}

func expectConflict(t *testing.T, err error, code util.ConflictCode) {
	t.Helper()
	if got := util.ConflictCodeOf(err); got != code {
		t.Fatalf("expected conflict %q, got %v", code, err)
	}
}

func expectValidation(t *testing.T, err error) {
	t.Helper()
	var ve *util.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// memoryCache 进程内的计数缓存
type memoryCache struct {
	mu     sync.Mutex
	values map[string]int64
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]int64)}
}

func (c *memoryCache) Get(_ context.Context, key string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *memoryCache) Set(_ context.Context, key string, value int64, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	c.sets++
}

// recordingNotifier 记录发出的邮件任务
type recordingNotifier struct {
	mu   sync.Mutex
	jobs []MailJob
}

func (n *recordingNotifier) Notify(_ context.Context, job MailJob) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, job)
}

func (n *recordingNotifier) last() MailJob {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.jobs) == 0 {
		return MailJob{}
	}
	return n.jobs[len(n.jobs)-1]
}
