package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"go-task-relay/internal/model"
)

// Field rules for a present task value. Presence itself is checked by
// apply, since a partial update may omit any field.
const (
	maxTitleLength = 200

	titleRule   = "notblank,max=200"
	effortRule  = "min=1"
	dueDateRule = "datetime=" + model.DateLayout
)

var ruleMessages = map[string]string{
	"title.notblank":    msgBlankTitle,
	"title.max":         msgLongTitle,
	"effort.min":        msgEffortMin,
	"due_date.datetime": msgDateFormat,
}

type taskRules struct {
	validate *validator.Validate
}

func newTaskRules() *taskRules {
	validate := validator.New()
	if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return &taskRules{validate: validate}
}

// check reports the message for the first rule value breaks, or "" when it
// passes.
func (r *taskRules) check(field string, value any, rule string) string {
	err := r.validate.Var(value, rule)
	if err == nil {
		return ""
	}

	var failed validator.ValidationErrors
	if errors.As(err, &failed) && len(failed) > 0 {
		if msg, ok := ruleMessages[field+"."+failed[0].Tag()]; ok {
			return msg
		}
	}
	return "Enter a valid " + strings.ReplaceAll(field, "_", " ") + "."
}
