package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/maxviazov/courtside/internal/model"
	"github.com/maxviazov/courtside/internal/repository"
)

const maxPageLimit = 200

func normalizePage(p repository.Page) repository.Page {
	limit := p.Limit
	offset := p.Offset
	if limit <= 0 {
		limit = 50
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

// validateSettings runs the struct tags of GameSettings plus the cross-field rules tags cannot express.
func validateSettings(v *validator.Validate, s model.GameSettings) []FieldError {
	var ferrs []FieldError
	if err := v.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []FieldError{{Field: "settings", Message: err.Error()}}
		}
		for _, fe := range verrs {
			ferrs = append(ferrs, FieldError{
				Field:   "settings." + strings.TrimPrefix(fe.Namespace(), "GameSettings."),
				Message: tagMessage(fe),
			})
		}
	}
	if s.Timeouts.Mode == model.TimeoutsPerQuarterCustom && len(s.Timeouts.PerQuarterValues) < s.Quarters {
		ferrs = append(ferrs, FieldError{
			Field:   "settings.timeoutSettings.timeoutsPerQuarterValues",
			Message: fmt.Sprintf("needs one value per quarter (%d)", s.Quarters),
		})
	}
	return ferrs
}

// newValidator reports fields under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be >= " + fe.Param()
	case "max":
		return "must be <= " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

// validateTeams checks rosters: a name, at least one player, unique non-empty ids,
// and no player on both sides.
func validateTeams(home, away TeamInput) []FieldError {
	var ferrs []FieldError
	seen := make(map[string]string)
	check := func(field string, t TeamInput) {
		if strings.TrimSpace(t.Name) == "" {
			ferrs = append(ferrs, FieldError{Field: field + ".name", Message: "must not be empty"})
		}
		if len(t.Players) == 0 {
			ferrs = append(ferrs, FieldError{Field: field + ".players", Message: "must have at least one player"})
		}
		for i, p := range t.Players {
			pf := fmt.Sprintf("%s.players[%d]", field, i)
			if strings.TrimSpace(p.ID) == "" {
				ferrs = append(ferrs, FieldError{Field: pf + ".id", Message: "must not be empty"})
				continue
			}
			if strings.TrimSpace(p.Name) == "" {
				ferrs = append(ferrs, FieldError{Field: pf + ".name", Message: "must not be empty"})
			}
			if p.Number != nil && (*p.Number < 0 || *p.Number > 99) {
				ferrs = append(ferrs, FieldError{Field: pf + ".number", Message: "must be between 0 and 99"})
			}
			if owner, dup := seen[p.ID]; dup {
				msg := "duplicate player id"
				if owner != field {
					msg = "player is on both rosters"
				}
				ferrs = append(ferrs, FieldError{Field: pf + ".id", Message: msg})
				continue
			}
			seen[p.ID] = field
		}
	}
	check("homeTeam", home)
	check("awayTeam", away)
	return ferrs
}

// validateAction rejects actions the reducer would otherwise silently ignore
// because they can never be meaningful, and TICK which only the clock may send.
// Payload arguments are checked through the ActionPayload struct tags.
func validateAction(v *validator.Validate, a model.Action) []FieldError {
	var ferrs []FieldError
	switch {
	case !a.Type.Valid():
		ferrs = append(ferrs, FieldError{Field: "type", Message: "unknown action type"})
	case a.Type == model.ActionTick:
		ferrs = append(ferrs, FieldError{Field: "type", Message: "TICK is driven by the server clock"})
	}
	if err := v.Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return append(ferrs, FieldError{Field: "payload", Message: err.Error()})
		}
		for _, fe := range verrs {
			ferrs = append(ferrs, FieldError{
				Field:   strings.TrimPrefix(fe.Namespace(), "Action."),
				Message: tagMessage(fe),
			})
		}
	}
	return ferrs
}
