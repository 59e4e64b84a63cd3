package report

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Violation describes one failed validation rule, tied to the indicator and
// field it concerns so the client can point at the offending form row.
type Violation struct {
	Indicator string `json:"indicator,omitempty"`
	Field     string `json:"field"`
	Message   string `json:"message"`
}

// ValidationError collects every violation found in one submission. The
// whole submission is rejected when any rule fails; nothing is stored.
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		v := e.Violations[0]
		return fmt.Sprintf("invalid submission: %s: %s", v.Field, v.Message)
	}
	return fmt.Sprintf("invalid submission: %d violations", len(e.Violations))
}

func (e *ValidationError) add(indicator, field, message string) {
	e.Violations = append(e.Violations, Violation{
		Indicator: indicator,
		Field:     field,
		Message:   message,
	})
}

// Validator checks bulletin submissions against the reporting rules. It is
// pure: the submission is never mutated, and every rule is evaluated so the
// caller sees all violations at once.
type Validator struct {
	services map[string]struct{}
}

func NewValidator(services []string) *Validator {
	set := make(map[string]struct{}, len(services))
	for _, s := range services {
		set[s] = struct{}{}
	}
	return &Validator{services: set}
}

// ValidateSubmission returns nil when the submission is acceptable, or a
// ValidationError holding every rule it breaks.
func (v *Validator) ValidateSubmission(sub *BulletinSubmission) *ValidationError {
	verr := &ValidationError{}

	if strings.TrimSpace(sub.BulletinNumber) == "" {
		verr.add("", "bulletin_number", "bulletin number is required")
	}
	if strings.TrimSpace(sub.Service) == "" {
		verr.add("", "service", "service is required")
	} else if _, ok := v.services[sub.Service]; !ok {
		verr.add("", "service", fmt.Sprintf("unknown service %q", sub.Service))
	}
	if sub.PeriodStart.IsZero() {
		verr.add("", "period_start", "period start is required")
	}
	if sub.PeriodEnd.IsZero() {
		verr.add("", "period_end", "period end is required")
	}

	for _, o := range sub.Diseases {
		v.validateDisease(verr, o)
	}
	for _, o := range sub.Tropical {
		v.validateTropical(verr, o)
	}
	for _, o := range sub.Deaths {
		v.validateDeath(verr, o)
	}

	if len(verr.Violations) == 0 {
		return nil
	}
	return verr
}

func (v *Validator) validateDisease(verr *ValidationError, o DiseaseObservation) {
	if o.Cases < 0 {
		verr.add(o.IndicatorName, "cases", "must not be negative")
	}
	if o.Deaths < 0 {
		verr.add(o.IndicatorName, "deaths", "must not be negative")
	}
	if o.Cases < 0 || o.Deaths < 0 {
		return
	}
	if o.Cases == 0 && o.Deaths == 0 {
		return
	}
	if o.IndicatorID == uuid.Nil {
		verr.add(o.IndicatorName, "indicator_id", "indicator is required")
	}
	// Simple malaria carries no death count once normalized, so the
	// deaths/cases comparison does not apply.
	if isSimpleMalaria(o.IndicatorName) {
		return
	}
	if o.Deaths > o.Cases {
		verr.add(o.IndicatorName, "deaths",
			fmt.Sprintf("deaths (%d) cannot exceed cases (%d)", o.Deaths, o.Cases))
	}
}

func (v *Validator) validateTropical(verr *ValidationError, o TropicalObservation) {
	if o.Notified < 0 {
		verr.add(o.IndicatorName, "notified", "must not be negative")
	}
	if o.Isolated < 0 {
		verr.add(o.IndicatorName, "isolated", "must not be negative")
	}
	if o.Notified < 0 || o.Isolated < 0 {
		return
	}
	if o.Notified == 0 && o.Isolated == 0 {
		return
	}
	if o.IndicatorID == uuid.Nil {
		verr.add(o.IndicatorName, "indicator_id", "indicator is required")
	}
	if o.Isolated > o.Notified {
		verr.add(o.IndicatorName, "isolated",
			fmt.Sprintf("isolated (%d) cannot exceed notified (%d)", o.Isolated, o.Notified))
	}
}

func (v *Validator) validateDeath(verr *ValidationError, o DeathObservation) {
	if o.InstitutionDeaths < 0 {
		verr.add(o.IndicatorName, "institution_deaths", "must not be negative")
	}
	if o.CommunityDeaths < 0 {
		verr.add(o.IndicatorName, "community_deaths", "must not be negative")
	}
	if o.InstitutionDeaths < 0 || o.CommunityDeaths < 0 {
		return
	}
	if o.InstitutionDeaths == 0 && o.CommunityDeaths == 0 {
		return
	}
	if o.IndicatorID == uuid.Nil {
		verr.add(o.IndicatorName, "indicator_id", "indicator is required")
	}
}
