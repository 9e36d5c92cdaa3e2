package service

import (
	"kreuzen_backend/internal/model"
)

// Marks 某道会话题目上的作答标记
type Marks struct {
	Checked  []int
	Crossed  []int
	Assigned map[int]int // 标识序号 -> 选中的答案序号
}

func choiceMarks[T model.SingleChoiceSelection | model.MultipleChoiceSelection](rows []T, fields func(T) (int, bool, bool)) Marks {
	var m Marks
	for _, row := range rows {
		id, checked, crossed := fields(row)
		if checked {
			m.Checked = append(m.Checked, id)
		}
		if crossed {
			m.Crossed = append(m.Crossed, id)
		}
	}
	return m
}

func singleChoiceMarks(rows []model.SingleChoiceSelection) Marks {
	return choiceMarks(rows, func(r model.SingleChoiceSelection) (int, bool, bool) {
		return r.LocalAnswerID, r.IsChecked, r.IsCrossed
	})
}

func multipleChoiceMarks(rows []model.MultipleChoiceSelection) Marks {
	return choiceMarks(rows, func(r model.MultipleChoiceSelection) (int, bool, bool) {
		return r.LocalAnswerID, r.IsChecked, r.IsCrossed
	})
}

func assignmentMarks(rows []model.AssignmentSelection) Marks {
	m := Marks{Assigned: make(map[int]int, len(rows))}
	for _, row := range rows {
		m.Assigned[row.LocalIdentifierID] = row.SelectedAnswerLocalID
	}
	return m
}

func intSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// ScoreSingleChoice 恰好勾选正确答案时得满分
func ScoreSingleChoice(q *SingleChoice, points int, m Marks) int {
	if len(m.Checked) == 1 && m.Checked[0] == q.CorrectAnswerLocalID {
		return points
	}
	return 0
}

// ScoreMultipleChoice 勾选集合与正确集合一致且未划掉任何正确答案时得满分
func ScoreMultipleChoice(q *MultipleChoice, points int, m Marks) int {
	correct := intSet(q.CorrectAnswerLocalIDs)
	checked := intSet(m.Checked)
	if len(correct) != len(checked) {
		return 0
	}
	for id := range checked {
		if _, ok := correct[id]; !ok {
			return 0
		}
	}
	for _, id := range m.Crossed {
		if _, ok := correct[id]; ok {
			return 0
		}
	}
	return points
}

// ScoreAssignment 每个标识都对应到正确答案时得满分
func ScoreAssignment(q *Assignment, points int, m Marks) int {
	if len(q.Identifiers) == 0 {
		return 0
	}
	for _, ident := range q.Identifiers {
		if m.Assigned[ident.LocalID] != ident.CorrectAnswerLocalID {
			return 0
		}
	}
	return points
}

func scoreQuestion(q *Question, m Marks) int {
	switch k := q.Kind.(type) {
	case *SingleChoice:
		return ScoreSingleChoice(k, q.Base.Points, m)
	case *MultipleChoice:
		return ScoreMultipleChoice(k, q.Base.Points, m)
	case *Assignment:
		return ScoreAssignment(k, q.Base.Points, m)
	}
	return 0
}
