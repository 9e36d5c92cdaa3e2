package service

import (
	"errors"
	"reflect"
	"testing"

	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/util"
)

func TestSingleChoiceRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	for n := singleChoiceMinAnswers; n <= singleChoiceMaxAnswers; n++ {
		texts := answerTexts(n)
		created := env.createSingleChoice(t, texts, n, 2)

		got, err := env.questions.Get(ctxBG(), created.Base.ID)
		if err != nil {
			t.Fatalf("get question with %d answers: %v", n, err)
		}
		sc, ok := got.Kind.(*SingleChoice)
		if !ok {
			t.Fatalf("expected *SingleChoice, got %T", got.Kind)
		}
		if len(sc.Answers) != n {
			t.Fatalf("expected %d answers, got %d", n, len(sc.Answers))
		}
		for i, a := range sc.Answers {
			if a.LocalID != i+1 || a.Text != texts[i] {
				t.Fatalf("answer %d: got %+v", i, a)
			}
		}
		if sc.CorrectAnswerLocalID != n {
			t.Fatalf("expected correct id %d, got %d", n, sc.CorrectAnswerLocalID)
		}
		if got.Base.Type != string(SingleChoiceType) || got.Base.IsApproved {
			t.Fatalf("unexpected base: %+v", got.Base)
		}
	}
}

func TestSingleChoiceCreateRejectsInvalidPayload(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name    string
		payload *SingleChoiceCreate
		check   func(t *testing.T, err error)
	}{
		{
			name:    "one answer",
			payload: &SingleChoiceCreate{Answers: answerTexts(1), CorrectAnswerLocalID: intPtr(1)},
			check:   func(t *testing.T, err error) { expectConflict(t, err, util.ConflictTooFewAnswers) },
		},
		{
			name:    "eleven answers",
			payload: &SingleChoiceCreate{Answers: answerTexts(11), CorrectAnswerLocalID: intPtr(1)},
			check:   func(t *testing.T, err error) { expectConflict(t, err, util.ConflictTooManyAnswers) },
		},
		{
			name:    "missing answers",
			payload: &SingleChoiceCreate{CorrectAnswerLocalID: intPtr(1)},
			check:   func(t *testing.T, err error) { expectConflict(t, err, util.ConflictAnswersMissing) },
		},
		{
			name:    "missing correct id",
			payload: &SingleChoiceCreate{Answers: answerTexts(3)},
			check:   func(t *testing.T, err error) { expectConflict(t, err, util.ConflictCorrectAnswerMissing) },
		},
		{
			name:    "correct id zero",
			payload: &SingleChoiceCreate{Answers: answerTexts(3), CorrectAnswerLocalID: intPtr(0)},
			check:   expectValidation,
		},
		{
			name:    "correct id beyond answers",
			payload: &SingleChoiceCreate{Answers: answerTexts(3), CorrectAnswerLocalID: intPtr(4)},
			check:   func(t *testing.T, err error) { expectConflict(t, err, util.ConflictCorrectAnswerIDCorrupt) },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.questions.Create(ctxBG(), env.student.UserID, env.base("Welche Antwort ist richtig?", 1), tc.payload)
			tc.check(t, err)
		})
	}

	if n := env.questionCount(t); n != 0 {
		t.Fatalf("failed creates must roll back, found %d questions", n)
	}
}

func TestMultipleChoiceBounds(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name    string
		answers int
		correct []int
		code    util.ConflictCode
	}{
		{"two answers", 2, []int{1}, util.ConflictTooFewAnswers},
		{"eleven answers", 11, []int{1}, util.ConflictTooManyAnswers},
		{"no correct answer", 4, []int{}, util.ConflictTooFewCorrectAnswers},
		{"correct id beyond answers", 4, []int{1, 5}, util.ConflictCorrectAnswerIDsCorrupt},
		{"duplicate correct id", 4, []int{2, 2}, util.ConflictCorrectAnswerIDsCorrupt},
		{"more correct ids than answers", 3, []int{1, 2, 3, 1}, util.ConflictCorrectAnswerIDsCorrupt},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.questions.Create(ctxBG(), env.student.UserID, env.base("Welche Aussagen treffen zu?", 1),
				&MultipleChoiceCreate{Answers: answerTexts(tc.answers), CorrectAnswerLocalIDs: tc.correct})
			expectConflict(t, err, tc.code)
		})
	}

	for _, n := range []int{multipleChoiceMinAnswers, multipleChoiceMaxAnswers} {
		q := env.createMultipleChoice(t, answerTexts(n), []int{1, n}, 1)
		mc := q.Kind.(*MultipleChoice)
		if len(mc.Answers) != n || !reflect.DeepEqual(mc.CorrectAnswerLocalIDs, []int{1, n}) {
			t.Fatalf("unexpected multiple-choice data for %d answers: %+v", n, mc)
		}
	}
}

func TestAssignmentCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	create := func(identifiers, texts []string, correct []int) error {
		_, err := env.questions.Create(ctxBG(), env.student.UserID, env.base("Ordne die Begriffe einander zu.", 1),
			&AssignmentCreate{Identifiers: identifiers, Answers: texts, CorrectAnswerLocalIDs: correct})
		return err
	}

	expectConflict(t, create(nil, answerTexts(3), []int{1}), util.ConflictIdentifiersMissing)
	expectConflict(t, create(answerTexts(1), answerTexts(3), []int{1}), util.ConflictTooFewIdentifiers)
	expectConflict(t, create(answerTexts(4), answerTexts(3), []int{1, 2, 3, 1}), util.ConflictTooManyIdentifiers)
	expectConflict(t, create(answerTexts(2), answerTexts(3), []int{1}), util.ConflictCorrectAnswerIDsCorrupt)
	expectConflict(t, create(answerTexts(2), answerTexts(3), []int{1, 4}), util.ConflictCorrectAnswerIDsCorrupt)

	q := env.createAssignment(t, []string{"Herz", "Lunge"}, []string{"Kreislauf", "Atmung", "Verdauung"}, []int{1, 2}, 3)
	as := q.Kind.(*Assignment)
	if len(as.Identifiers) != 2 || len(as.Answers) != 3 {
		t.Fatalf("unexpected assignment data: %+v", as)
	}
	if as.Identifiers[1].LocalID != 2 || as.Identifiers[1].CorrectAnswerLocalID != 2 {
		t.Fatalf("unexpected identifier: %+v", as.Identifiers[1])
	}
}

func TestUpdateReplacesAnswerSet(t *testing.T) {
	env := newTestEnv(t)
	q := env.createSingleChoice(t, answerTexts(5), 1, 1)

	updated, err := env.questions.Update(ctxBG(), q.Base.ID, env.student, QuestionRequest{Answers: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := env.questions.Get(ctxBG(), q.Base.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := []Answer{{LocalID: 1, Text: "a"}, {LocalID: 2, Text: "b"}}
	if !reflect.DeepEqual(got.Kind.(*SingleChoice).Answers, want) {
		t.Fatalf("expected %+v, got %+v", want, got.Kind.(*SingleChoice).Answers)
	}
	if updated.Base.UpdaterID == nil || *updated.Base.UpdaterID != env.student.UserID {
		t.Fatalf("expected updater to be recorded, got %v", updated.Base.UpdaterID)
	}
}

func TestUpdateRejectsCorrectIDBeyondNewAnswers(t *testing.T) {
	env := newTestEnv(t)
	q := env.createSingleChoice(t, answerTexts(5), 5, 1)

	_, err := env.questions.Update(ctxBG(), q.Base.ID, env.student, QuestionRequest{Answers: []string{"a", "b"}})
	expectConflict(t, err, util.ConflictCorrectAnswerIDCorrupt)

	got, err := env.questions.Get(ctxBG(), q.Base.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if n := len(got.Kind.(*SingleChoice).Answers); n != 5 {
		t.Fatalf("rejected update must leave answers untouched, got %d", n)
	}
}

func TestNoOpUpdateIsLossless(t *testing.T) {
	env := newTestEnv(t)
	q := env.createMultipleChoice(t, answerTexts(4), []int{2, 3}, 2)

	before, err := env.questions.Get(ctxBG(), q.Base.ID)
	if err != nil {
		t.Fatalf("get before: %v", err)
	}
	if _, err := env.questions.Update(ctxBG(), q.Base.ID, env.student, QuestionRequest{}); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	after, err := env.questions.Get(ctxBG(), q.Base.ID)
	if err != nil {
		t.Fatalf("get after: %v", err)
	}

	if !reflect.DeepEqual(RenderQuestion(before), RenderQuestion(after)) {
		t.Fatalf("no-op update changed the question:\nbefore %+v\nafter  %+v", RenderQuestion(before), RenderQuestion(after))
	}
	if after.Base.UpdaterID != nil {
		t.Fatalf("no-op update must not record an updater")
	}
}

func TestUpdatePermissions(t *testing.T) {
	env := newTestEnv(t)
	q := env.createSingleChoice(t, answerTexts(3), 1, 1)

	stranger := Actor{UserID: 99, Role: model.RoleUser}
	if _, err := env.questions.Update(ctxBG(), q.Base.ID, stranger, QuestionRequest{Answers: []string{"a", "b"}}); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	moderator := Actor{UserID: 50, Role: model.RoleModerator}
	if _, err := env.questions.Update(ctxBG(), q.Base.ID, moderator, QuestionRequest{
		QuestionBaseRequest: QuestionBaseRequest{Points: intPtr(4)},
	}); err != nil {
		t.Fatalf("moderator update: %v", err)
	}

	var nf *util.NotFoundError
	if _, err := env.questions.Update(ctxBG(), 12345, env.student, QuestionRequest{}); !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApprovalRules(t *testing.T) {
	env := newTestEnv(t)
	q := env.createSingleChoice(t, answerTexts(3), 1, 1)
	moderator := Actor{UserID: 50, Role: model.RoleModerator}

	if _, err := env.questions.SetApproval(ctxBG(), q.Base.ID, env.student, true); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("students cannot approve, got %v", err)
	}

	approved, err := env.questions.SetApproval(ctxBG(), q.Base.ID, moderator, true)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !approved.Base.IsApproved {
		t.Fatalf("expected question to be approved")
	}

	// 任何修改都会撤销审核
	if _, err := env.questions.Update(ctxBG(), q.Base.ID, moderator, QuestionRequest{
		QuestionBaseRequest: QuestionBaseRequest{Text: strPtr("Welche Stadt liegt am Rhein?")},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := env.questions.Get(ctxBG(), q.Base.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Base.IsApproved {
		t.Fatalf("update must reset approval")
	}

	_, err = env.questions.SetApproval(ctxBG(), q.Base.ID, moderator, true)
	expectConflict(t, err, util.ConflictApproveOwnUpdate)

	admin := Actor{UserID: 60, Role: model.RoleAdmin}
	if _, err := env.questions.SetApproval(ctxBG(), q.Base.ID, admin, true); err != nil {
		t.Fatalf("admin approve: %v", err)
	}
}

func TestCreateValidatesBaseFields(t *testing.T) {
	env := newTestEnv(t)
	payload := func() CreatePayload {
		return &SingleChoiceCreate{Answers: answerTexts(3), CorrectAnswerLocalID: intPtr(1)}
	}

	short := env.base("kurz", 1)
	_, err := env.questions.Create(ctxBG(), 1, short, payload())
	expectValidation(t, err)

	tooManyPoints := env.base("Welche Antwort ist richtig?", questionPointsMax+1)
	_, err = env.questions.Create(ctxBG(), 1, tooManyPoints, payload())
	expectValidation(t, err)

	badOrigin := env.base("Welche Antwort ist richtig?", 1)
	badOrigin.Origin = strPtr("rumor")
	_, err = env.questions.Create(ctxBG(), 1, badOrigin, payload())
	expectConflict(t, err, util.ConflictOriginInvalid)

	missingCourse := env.base("Welche Antwort ist richtig?", 1)
	missingCourse.CourseID = uintPtr(404)
	_, err = env.questions.Create(ctxBG(), 1, missingCourse, payload())
	var nf *util.NotFoundError
	if !errors.As(err, &nf) || nf.Resource != "course" {
		t.Fatalf("expected course not found, got %v", err)
	}
}

func TestParseQuestionType(t *testing.T) {
	for _, qt := range QuestionTypes {
		got, err := ParseQuestionType(string(qt))
		if err != nil || got != qt {
			t.Fatalf("parse %q: got %q, %v", qt, got, err)
		}
	}

	var ute *util.UnknownTypeError
	if _, err := ParseQuestionType("essay"); !errors.As(err, &ute) {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestDeleteQuestionRemovesSessionReferences(t *testing.T) {
	env := newTestEnv(t)
	q := env.createSingleChoice(t, answerTexts(3), 1, 1)
	session := env.createSession(t, false, SessionFilter{})

	if err := env.selections.SetSelection(ctxBG(), session.ID, 1, env.student, SelectionRequest{
		Type:                 string(SingleChoiceType),
		CheckedLocalAnswerID: intPtr(1),
	}); err != nil {
		t.Fatalf("set selection: %v", err)
	}

	if err := env.questions.Delete(ctxBG(), q.Base.ID, env.student); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var nf *util.NotFoundError
	if _, err := env.questions.Get(ctxBG(), q.Base.ID); !errors.As(err, &nf) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	n, err := env.sessions.CountQuestions(ctxBG(), session.ID, env.student)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected session questions to be removed, got %d", n)
	}
	var selections int64
	env.db.Model(&model.SingleChoiceSelection{}).Where("session_id = ?", session.ID).Count(&selections)
	if selections != 0 {
		t.Fatalf("expected selections to be removed, got %d", selections)
	}
}

func TestListHidesUnapprovedQuestionsOfOthers(t *testing.T) {
	env := newTestEnv(t)
	env.createSingleChoice(t, answerTexts(3), 1, 1)

	other := env.base("Eine fremde, nicht freigegebene Frage", 1)
	if _, err := env.questions.Create(ctxBG(), 77, other, &SingleChoiceCreate{Answers: answerTexts(3), CorrectAnswerLocalID: intPtr(2)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	views, total, err := env.questions.List(ctxBG(), env.student, repository.QuestionFilter{}, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(views) != 1 || views[0].CreatorID != env.student.UserID {
		t.Fatalf("student should only see own unapproved question, got %d/%d", len(views), total)
	}

	moderator := Actor{UserID: 50, Role: model.RoleModerator}
	_, total, err = env.questions.List(ctxBG(), moderator, repository.QuestionFilter{}, 1, 20)
	if err != nil {
		t.Fatalf("list as moderator: %v", err)
	}
	if total != 2 {
		t.Fatalf("moderator should see both questions, got %d", total)
	}
}

func TestMultipleChoiceUpdate(t *testing.T) {
	tests := []struct {
		name         string
		correct      []int
		req          QuestionRequest
		wantConflict util.ConflictCode
		wantCorrect  []int
		wantAnswers  []string
	}{
		{
			name:        "single correct id is enough on update",
			correct:     []int{1, 2},
			req:         QuestionRequest{CorrectAnswerLocalIDs: []int{4}},
			wantCorrect: []int{4},
			wantAnswers: answerTexts(4),
		},
		{
			name:        "new answers keep stored correct ids",
			correct:     []int{1, 3},
			req:         QuestionRequest{Answers: []string{"Aorta", "Vena cava", "Truncus pulmonalis"}},
			wantCorrect: []int{1, 3},
			wantAnswers: []string{"Aorta", "Vena cava", "Truncus pulmonalis"},
		},
		{
			name:         "shrinking below a stored correct id",
			correct:      []int{1, 4},
			req:          QuestionRequest{Answers: answerTexts(3)},
			wantConflict: util.ConflictCorrectAnswerIDsCorrupt,
			wantCorrect:  []int{1, 4},
			wantAnswers:  answerTexts(4),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			q := env.createMultipleChoice(t, answerTexts(4), tt.correct, 2)

			_, err := env.questions.Update(ctxBG(), q.Base.ID, env.student, tt.req)
			if tt.wantConflict != "" {
				expectConflict(t, err, tt.wantConflict)
			} else if err != nil {
				t.Fatalf("update: %v", err)
			}

			got, err := env.questions.Get(ctxBG(), q.Base.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			mc := got.Kind.(*MultipleChoice)
			if !reflect.DeepEqual(mc.CorrectAnswerLocalIDs, tt.wantCorrect) {
				t.Fatalf("correct ids: want %v, got %v", tt.wantCorrect, mc.CorrectAnswerLocalIDs)
			}
			if !reflect.DeepEqual(mc.Answers, numberAnswers(tt.wantAnswers)) {
				t.Fatalf("answers: want %v, got %+v", tt.wantAnswers, mc.Answers)
			}
		})
	}
}

func TestAssignmentUpdate(t *testing.T) {
	identifiers := []string{"Insulin", "Glukagon"}
	answers := []string{"Alpha-Zellen", "Beta-Zellen", "Delta-Zellen"}
	stored := []Identifier{
		{LocalID: 1, Text: "Insulin", CorrectAnswerLocalID: 3},
		{LocalID: 2, Text: "Glukagon", CorrectAnswerLocalID: 1},
	}

	tests := []struct {
		name            string
		req             QuestionRequest
		wantConflict    util.ConflictCode
		wantIdentifiers []Identifier
	}{
		{
			name: "rename identifiers only",
			req:  QuestionRequest{Identifiers: []string{"Somatostatin", "Glukagon"}},
			wantIdentifiers: []Identifier{
				{LocalID: 1, Text: "Somatostatin", CorrectAnswerLocalID: 3},
				{LocalID: 2, Text: "Glukagon", CorrectAnswerLocalID: 1},
			},
		},
		{
			name:         "shrinking answers below a stored correct id",
			req:          QuestionRequest{Answers: []string{"Alpha-Zellen", "Beta-Zellen"}},
			wantConflict: util.ConflictCorrectAnswerIDsCorrupt,
		},
		{
			name:         "more identifiers without new correct ids",
			req:          QuestionRequest{Identifiers: []string{"Insulin", "Glukagon", "Somatostatin"}},
			wantConflict: util.ConflictCorrectAnswerIDsCorrupt,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			q := env.createAssignment(t, identifiers, answers, []int{3, 1}, 2)

			_, err := env.questions.Update(ctxBG(), q.Base.ID, env.student, tt.req)
			want := tt.wantIdentifiers
			if tt.wantConflict != "" {
				expectConflict(t, err, tt.wantConflict)
				want = stored
			} else if err != nil {
				t.Fatalf("update: %v", err)
			}

			got, err := env.questions.Get(ctxBG(), q.Base.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			a := got.Kind.(*Assignment)
			if !reflect.DeepEqual(a.Identifiers, want) {
				t.Fatalf("identifiers: want %+v, got %+v", want, a.Identifiers)
			}
			if !reflect.DeepEqual(a.Answers, numberAnswers(answers)) {
				t.Fatalf("answers changed: %+v", a.Answers)
			}
		})
	}
}
