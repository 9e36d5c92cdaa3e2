package service

import "testing"

func TestScoreSingleChoice(t *testing.T) {
	q := &SingleChoice{Answers: []Answer{{1, "Paris"}, {2, "Berlin"}, {3, "Rome"}}, CorrectAnswerLocalID: 2}

	tests := []struct {
		name  string
		marks Marks
		want  int
	}{
		{"correct", Marks{Checked: []int{2}}, 5},
		{"correct with other answers crossed", Marks{Checked: []int{2}, Crossed: []int{1, 3}}, 5},
		{"wrong", Marks{Checked: []int{1}}, 0},
		{"nothing checked", Marks{}, 0},
		{"only crossed", Marks{Crossed: []int{1}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreSingleChoice(q, 5, tt.marks); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreMultipleChoice(t *testing.T) {
	q := &MultipleChoice{
		Answers:               []Answer{{1, "a"}, {2, "b"}, {3, "c"}, {4, "d"}},
		CorrectAnswerLocalIDs: []int{1, 3},
	}

	tests := []struct {
		name  string
		marks Marks
		want  int
	}{
		{"exact set", Marks{Checked: []int{3, 1}}, 2},
		{"exact set with wrong answers crossed", Marks{Checked: []int{1, 3}, Crossed: []int{2, 4}}, 2},
		{"subset", Marks{Checked: []int{1}}, 0},
		{"superset", Marks{Checked: []int{1, 2, 3}}, 0},
		{"same size but different", Marks{Checked: []int{1, 2}}, 0},
		{"nothing checked", Marks{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreMultipleChoice(q, 2, tt.marks); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreAssignment(t *testing.T) {
	q := &Assignment{
		Identifiers: []Identifier{
			{LocalID: 1, Text: "Herz", CorrectAnswerLocalID: 2},
			{LocalID: 2, Text: "Lunge", CorrectAnswerLocalID: 1},
		},
		Answers: []Answer{{1, "Atmung"}, {2, "Kreislauf"}, {3, "Verdauung"}},
	}

	tests := []struct {
		name     string
		assigned map[int]int
		want     int
	}{
		{"all correct", map[int]int{1: 2, 2: 1}, 3},
		{"one wrong", map[int]int{1: 2, 2: 3}, 0},
		{"one missing", map[int]int{1: 2}, 0},
		{"nothing assigned", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreAssignment(q, 3, Marks{Assigned: tt.assigned}); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}

	if got := ScoreAssignment(&Assignment{}, 3, Marks{}); got != 0 {
		t.Errorf("assignment without identifiers must score 0, got %d", got)
	}
}
