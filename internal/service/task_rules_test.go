package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskRules(t *testing.T) {
	rules := newTaskRules()

	tests := []struct {
		name  string
		field string
		value any
		rule  string
		want  string
	}{
		{"title ok", "title", "Write report", titleRule, ""},
		{"title blank", "title", " \t ", titleRule, msgBlankTitle},
		{"title empty", "title", "", titleRule, msgBlankTitle},
		{"title multibyte at limit", "title", strings.Repeat("é", maxTitleLength), titleRule, ""},
		{"title too long", "title", strings.Repeat("a", maxTitleLength+1), titleRule, msgLongTitle},
		{"effort ok", "effort", 1, effortRule, ""},
		{"effort zero", "effort", 0, effortRule, msgEffortMin},
		{"effort negative", "effort", -3, effortRule, msgEffortMin},
		{"date ok", "due_date", "2026-03-10", dueDateRule, ""},
		{"date wrong layout", "due_date", "10/03/2026", dueDateRule, msgDateFormat},
		{"date impossible", "due_date", "2026-02-30", dueDateRule, msgDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.check(tt.field, tt.value, tt.rule))
		})
	}
}
