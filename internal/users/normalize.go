package users

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/teamplan/planboard/internal/apperr"
	"github.com/teamplan/planboard/internal/models"
	"github.com/teamplan/planboard/internal/roles"
)

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type fieldSpec struct {
	name     string
	column   string
	required bool
}

// Column mapping for partial updates via gorm Updates.
var userFields = []fieldSpec{
	{name: "lastName", column: "last_name", required: true},
	{name: "firstName", column: "first_name", required: true},
	{name: "middleName", column: "middle_name"},
	{name: "birthDate", column: "birth_date"},
	{name: "groupNumber", column: "group_number"},
	{name: "login", column: "login", required: true},
	{name: "position", column: "position"},
	{name: "role", column: "role", required: true},
}

// normalize validates a request body and returns column-keyed values.
// When partial is true only supplied fields are checked, and an empty
// body is rejected.
func normalize(raw map[string]any, partial bool, assignable []roles.Role) (map[string]any, error) {
	values := make(map[string]any)
	for _, spec := range userFields {
		val, ok := raw[spec.name]
		if !ok {
			if spec.required && !partial {
				return nil, apperr.Validation("field %q is required", spec.name)
			}
			continue
		}

		text := strings.TrimSpace(stringify(val))
		switch {
		case spec.required && text == "":
			return nil, apperr.Validation("field %q is required", spec.name)
		case spec.name == "birthDate" && text != "":
			if !isoDateRe.MatchString(text) {
				return nil, apperr.Validation("invalid date, expected YYYY-MM-DD format")
			}
		case spec.name == "role":
			role, ok := roles.Parse(text)
			if !ok {
				return nil, apperr.Validation("unknown role %q", text)
			}
			if !containsRole(assignable, role) {
				return nil, apperr.Validation("role %q is not available for assignment", text)
			}
			text = string(role)
		}

		if text == "" && !spec.required {
			values[spec.column] = nil
		} else {
			values[spec.column] = text
		}
	}

	if partial && len(values) == 0 {
		return nil, apperr.Validation("nothing to update")
	}
	return values, nil
}

// toUser builds a model from fully normalized create values.
func toUser(values map[string]any) models.User {
	user := models.User{
		LastName:  values["last_name"].(string),
		FirstName: values["first_name"].(string),
		Login:     values["login"].(string),
		Role:      values["role"].(string),
	}
	user.MiddleName = optional(values, "middle_name")
	user.BirthDate = optional(values, "birth_date")
	user.GroupNumber = optional(values, "group_number")
	user.Position = optional(values, "position")
	return user
}

func optional(values map[string]any, column string) *string {
	val, ok := values[column]
	if !ok || val == nil {
		return nil
	}
	text := val.(string)
	return &text
}

func containsRole(list []roles.Role, role roles.Role) bool {
	for _, r := range list {
		if r == role {
			return true
		}
	}
	return false
}

func stringify(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
