package service

import (
	"errors"
	"slices"
	"testing"

	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/util"
)

func sessionQuestionIDs(t *testing.T, env *testEnv, sessionID uint) []uint {
	t.Helper()
	sqs, err := env.sessions.ListQuestions(ctxBG(), sessionID, env.student)
	if err != nil {
		t.Fatalf("list session questions: %v", err)
	}
	ids := make([]uint, len(sqs))
	for i, sq := range sqs {
		if sq.LocalID != i+1 {
			t.Fatalf("expected local id %d at position %d, got %d", i+1, i, sq.LocalID)
		}
		ids[i] = sq.QuestionID
	}
	return ids
}

func TestCreateSessionKeepsPoolOrder(t *testing.T) {
	env := newTestEnv(t)
	var want []uint
	for i := 0; i < 4; i++ {
		want = append(want, env.createSingleChoice(t, answerTexts(3), 1, 1).Base.ID)
	}

	session := env.createSession(t, false, SessionFilter{})
	if session.QuestionCount != 4 || session.IsRandom || session.IsFinished {
		t.Fatalf("unexpected session: %+v", session)
	}
	if got := sessionQuestionIDs(t, env, session.ID); !slices.Equal(got, want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
}

func TestCreateRandomSessionIsPermutation(t *testing.T) {
	env := newTestEnv(t)
	var pool []uint
	for i := 0; i < 6; i++ {
		pool = append(pool, env.createSingleChoice(t, answerTexts(3), 1, 1).Base.ID)
	}

	env.sessions.shuffle = func(ids []uint) { slices.Reverse(ids) }
	reversed := env.createSession(t, true, SessionFilter{})
	got := sessionQuestionIDs(t, env, reversed.ID)
	want := slices.Clone(pool)
	slices.Reverse(want)
	if !slices.Equal(got, want) {
		t.Fatalf("expected shuffled order %v, got %v", want, got)
	}

	env.sessions.shuffle = NewSessionService(nil, nil, nil, nil, 0, 0).shuffle
	random := env.createSession(t, true, SessionFilter{})
	got = sessionQuestionIDs(t, env, random.ID)
	slices.Sort(got)
	if !slices.Equal(got, pool) {
		t.Fatalf("random session must cover every question once, got %v", got)
	}
}

func TestCreateSessionFilters(t *testing.T) {
	env := newTestEnv(t)
	env.createSingleChoice(t, answerTexts(3), 1, 1)
	mc := env.createMultipleChoice(t, answerTexts(4), []int{1, 2}, 1)

	session := env.createSession(t, false, SessionFilter{QuestionTypes: []string{string(MultipleChoiceType)}})
	if got := sessionQuestionIDs(t, env, session.ID); !slices.Equal(got, []uint{mc.Base.ID}) {
		t.Fatalf("expected only the multiple-choice question, got %v", got)
	}

	_, err := env.sessions.Create(ctxBG(), env.student.UserID, CreateSessionRequest{
		SessionFilter: SessionFilter{ModuleIDs: []uint{9999}},
		Name:          "Leere Auswahl",
		SessionType:   "practice",
		IsRandom:      boolPtr(false),
	})
	expectConflict(t, err, util.ConflictEmptyQuestionPool)

	_, err = env.sessions.Create(ctxBG(), env.student.UserID, CreateSessionRequest{
		Name:        "ab",
		SessionType: "practice",
		IsRandom:    boolPtr(false),
	})
	expectValidation(t, err)

	var ute *util.UnknownTypeError
	_, err = env.sessions.Create(ctxBG(), env.student.UserID, CreateSessionRequest{
		SessionFilter: SessionFilter{QuestionTypes: []string{"essay"}},
		Name:          "Unbekannter Typ",
		SessionType:   "practice",
		IsRandom:      boolPtr(false),
	})
	if !errors.As(err, &ute) {
		t.Fatalf("expected unknown type error, got %v", err)
	}

	var sessions int64
	env.db.Model(&model.Session{}).Count(&sessions)
	if sessions != 1 {
		t.Fatalf("rejected creates must not persist sessions, got %d", sessions)
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.createSingleChoice(t, answerTexts(3), 1, 1)
	session := env.createSession(t, false, SessionFilter{})

	for i := 0; i < 2; i++ {
		if err := env.sessions.Submit(ctxBG(), session.ID, 1, env.student); err != nil {
			t.Fatalf("submit #%d: %v", i+1, err)
		}
	}
	status, err := env.sessions.Status(ctxBG(), session.ID, 1, env.student)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.IsSubmitted {
		t.Fatalf("expected question to be submitted")
	}

	var nf *util.NotFoundError
	if err := env.sessions.Submit(ctxBG(), session.ID, 2, env.student); !errors.As(err, &nf) {
		t.Fatalf("expected not found for unknown local id, got %v", err)
	}
}

func TestRecordTimeAndFinish(t *testing.T) {
	env := newTestEnv(t)
	env.createSingleChoice(t, answerTexts(3), 1, 1)
	env.createSingleChoice(t, answerTexts(3), 2, 1)
	session := env.createSession(t, false, SessionFilter{})

	if err := env.sessions.RecordTime(ctxBG(), session.ID, 2, 42, env.student); err != nil {
		t.Fatalf("record time: %v", err)
	}
	expectValidation(t, env.sessions.RecordTime(ctxBG(), session.ID, 2, -1, env.student))

	status, err := env.sessions.Status(ctxBG(), session.ID, 2, env.student)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Time != 42 || status.IsSubmitted {
		t.Fatalf("unexpected status: %+v", status)
	}

	finished, err := env.sessions.Finish(ctxBG(), session.ID, env.student)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !finished.IsFinished {
		t.Fatalf("expected finished session")
	}
	sqs, err := env.sessions.ListQuestions(ctxBG(), session.ID, env.student)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	for _, sq := range sqs {
		if !sq.IsSubmitted {
			t.Fatalf("finishing must submit question %d", sq.LocalID)
		}
	}

	expectConflict(t, env.sessions.RecordTime(ctxBG(), session.ID, 1, 10, env.student), util.ConflictSessionFinished)
	if _, err := env.sessions.Finish(ctxBG(), session.ID, env.student); err != nil {
		t.Fatalf("finishing twice must succeed, got %v", err)
	}
}

func TestSessionAccessRequiresOwnerOrModerator(t *testing.T) {
	env := newTestEnv(t)
	env.createSingleChoice(t, answerTexts(3), 1, 1)
	session := env.createSession(t, false, SessionFilter{})

	stranger := Actor{UserID: 2, Role: model.RoleUser}
	if _, err := env.sessions.Get(ctxBG(), session.ID, stranger); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	moderator := Actor{UserID: 3, Role: model.RoleModerator}
	if err := env.sessions.Submit(ctxBG(), session.ID, 1, moderator); err != nil {
		t.Fatalf("moderator submit: %v", err)
	}
	admin := Actor{UserID: 4, Role: model.RoleAdmin}
	if _, err := env.sessions.Get(ctxBG(), session.ID, admin); err != nil {
		t.Fatalf("admin get: %v", err)
	}

	sessions, total, err := env.sessions.List(ctxBG(), stranger, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 || len(sessions) != 0 {
		t.Fatalf("stranger must not list foreign sessions, got %d", total)
	}
}

func TestUpdateAndDeleteSession(t *testing.T) {
	env := newTestEnv(t)
	env.createSingleChoice(t, answerTexts(3), 1, 1)
	session := env.createSession(t, false, SessionFilter{})

	updated, err := env.sessions.Update(ctxBG(), session.ID, env.student, UpdateSessionRequest{
		Name:  strPtr("Physikum Wiederholung"),
		Notes: strPtr("Schwerpunkt Herz"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Physikum Wiederholung" || updated.Notes != "Schwerpunkt Herz" || updated.SessionType != "practice" {
		t.Fatalf("unexpected session after update: %+v", updated)
	}
	if updated.QuestionCount != 1 {
		t.Fatalf("update must keep questions, got %d", updated.QuestionCount)
	}

	if err := env.selections.SetSelection(ctxBG(), session.ID, 1, env.student, SelectionRequest{
		Type:                 string(SingleChoiceType),
		CheckedLocalAnswerID: intPtr(1),
	}); err != nil {
		t.Fatalf("set selection: %v", err)
	}

	if err := env.sessions.Delete(ctxBG(), session.ID, env.student); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var nf *util.NotFoundError
	if _, err := env.sessions.Get(ctxBG(), session.ID, env.student); !errors.As(err, &nf) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	var rows int64
	env.db.Model(&model.SingleChoiceSelection{}).Where("session_id = ?", session.ID).Count(&rows)
	if rows != 0 {
		t.Fatalf("expected selections to be deleted, got %d", rows)
	}
}

func TestCountPoolUsesCache(t *testing.T) {
	env := newTestEnv(t)
	cache := newMemoryCache()
	env.sessions.Cache = cache

	env.createSingleChoice(t, answerTexts(3), 1, 1)
	env.createMultipleChoice(t, answerTexts(3), []int{1}, 1)

	filter := SessionFilter{QuestionTypes: []string{string(SingleChoiceType), string(MultipleChoiceType)}}
	n, err := env.sessions.CountPool(ctxBG(), filter)
	if err != nil {
		t.Fatalf("count pool: %v", err)
	}
	if n != 2 || cache.sets != 1 {
		t.Fatalf("expected 2 questions and one cache write, got %d and %d", n, cache.sets)
	}

	env.createSingleChoice(t, answerTexts(3), 1, 1)
	n, err = env.sessions.CountPool(ctxBG(), filter)
	if err != nil {
		t.Fatalf("count pool again: %v", err)
	}
	if n != 2 || cache.sets != 1 {
		t.Fatalf("expected cached count 2, got %d (%d writes)", n, cache.sets)
	}

	n, err = env.sessions.CountPool(ctxBG(), SessionFilter{})
	if err != nil {
		t.Fatalf("count unfiltered: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 questions without filter, got %d", n)
	}
}

func TestCountPoolKeyIgnoresFilterOrder(t *testing.T) {
	env := newTestEnv(t)
	cache := newMemoryCache()
	env.sessions.Cache = cache
	env.createSingleChoice(t, answerTexts(3), 1, 1)

	first := SessionFilter{
		ModuleIDs:     []uint{env.course.ModuleID, 9999},
		QuestionTypes: []string{string(MultipleChoiceType), string(SingleChoiceType)},
	}
	second := SessionFilter{
		ModuleIDs:     []uint{9999, env.course.ModuleID, 9999},
		QuestionTypes: []string{string(SingleChoiceType), string(MultipleChoiceType)},
	}
	for _, f := range []SessionFilter{first, second} {
		n, err := env.sessions.CountPool(ctxBG(), f)
		if err != nil {
			t.Fatalf("count pool: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 question, got %d", n)
		}
	}
	if cache.sets != 1 {
		t.Fatalf("equivalent filters must share a cache entry, got %d writes", cache.sets)
	}
	if first.ModuleIDs[0] != env.course.ModuleID {
		t.Fatalf("caller's filter must not be reordered")
	}
}

func TestAddAndRemoveSessionQuestions(t *testing.T) {
	env := newTestEnv(t)
	first := env.createSingleChoice(t, answerTexts(3), 1, 1)
	second := env.createSingleChoice(t, answerTexts(3), 2, 1)
	session := env.createSession(t, false, SessionFilter{})
	extra := env.createSingleChoice(t, answerTexts(3), 3, 1)

	for i := 0; i < 2; i++ {
		sq, err := env.sessions.AddQuestion(ctxBG(), session.ID, extra.Base.ID, env.student)
		if err != nil {
			t.Fatalf("add question: %v", err)
		}
		if sq.LocalID != 3 {
			t.Fatalf("expected local id 3, got %d", sq.LocalID)
		}
	}
	if n, _ := env.sessions.CountQuestions(ctxBG(), session.ID, env.student); n != 3 {
		t.Fatalf("adding twice must not duplicate, got %d questions", n)
	}

	var nf *util.NotFoundError
	if _, err := env.sessions.AddQuestion(ctxBG(), session.ID, 999, env.student); !errors.As(err, &nf) {
		t.Fatalf("expected missing question, got %v", err)
	}
	stranger := Actor{UserID: 2, Role: model.RoleUser}
	if err := env.sessions.RemoveQuestion(ctxBG(), session.ID, first.Base.ID, stranger); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	if err := env.selections.SetSelection(ctxBG(), session.ID, 1, env.student, singleChoiceSelection(1)); err != nil {
		t.Fatalf("set selection: %v", err)
	}
	if err := env.sessions.RemoveQuestion(ctxBG(), session.ID, first.Base.ID, env.student); err != nil {
		t.Fatalf("remove question: %v", err)
	}
	var left int64
	env.db.Model(&model.SingleChoiceSelection{}).Where("session_id = ? AND local_question_id = ?", session.ID, 1).Count(&left)
	if left != 0 {
		t.Fatalf("selections of a removed question must be deleted, %d left", left)
	}

	sqs, err := env.sessions.ListQuestions(ctxBG(), session.ID, env.student)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sqs) != 2 || sqs[0].QuestionID != second.Base.ID || sqs[0].LocalID != 2 || sqs[1].LocalID != 3 {
		t.Fatalf("remaining questions must keep their local ids: %+v", sqs)
	}
	if err := env.sessions.RemoveQuestion(ctxBG(), session.ID, first.Base.ID, env.student); !errors.As(err, &nf) {
		t.Fatalf("expected not found for a removed question, got %v", err)
	}

	readded, err := env.sessions.AddQuestion(ctxBG(), session.ID, first.Base.ID, env.student)
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if readded.LocalID != 4 {
		t.Fatalf("expected re-added question at local id 4, got %d", readded.LocalID)
	}

	if _, err := env.sessions.Finish(ctxBG(), session.ID, env.student); err != nil {
		t.Fatalf("finish: %v", err)
	}
	_, err = env.sessions.AddQuestion(ctxBG(), session.ID, first.Base.ID, env.student)
	expectConflict(t, err, util.ConflictSessionFinished)
	expectConflict(t, env.sessions.RemoveQuestion(ctxBG(), session.ID, second.Base.ID, env.student), util.ConflictSessionFinished)
}
