package report

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record maps to the record table: one row per nonzero indicator observation
// within one TLOH bulletin. Each row populates exactly one of the three
// field groups (disease, tropical, death); the others stay zero.
type Record struct {
	ID                uuid.UUID `db:"id" json:"id"`
	IndicatorID       uuid.UUID `db:"indicator_id" json:"indicator_id"`
	BulletinNumber    string    `db:"bulletin_number" json:"bulletin_number"`
	PeriodStart       time.Time `db:"period_start" json:"period_start"`
	PeriodEnd         time.Time `db:"period_end" json:"period_end"`
	Service           string    `db:"service" json:"service"`
	Cases             int       `db:"cases" json:"cases"`
	Deaths            int       `db:"deaths" json:"deaths"`
	Notified          int       `db:"notified" json:"notified"`
	Isolated          int       `db:"isolated" json:"isolated"`
	InstitutionDeaths int       `db:"institution_deaths" json:"institution_deaths"`
	CommunityDeaths   int       `db:"community_deaths" json:"community_deaths"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// DiseaseObservation is the per-indicator input for an endemic disease.
type DiseaseObservation struct {
	IndicatorID   uuid.UUID `json:"indicator_id"`
	IndicatorName string    `json:"indicator_name"`
	Cases         int       `json:"cases"`
	Deaths        int       `json:"deaths"`
}

// TropicalObservation is the per-indicator input for a neglected tropical
// disease.
type TropicalObservation struct {
	IndicatorID   uuid.UUID `json:"indicator_id"`
	IndicatorName string    `json:"indicator_name"`
	Notified      int       `json:"notified"`
	Isolated      int       `json:"isolated"`
}

// DeathObservation is the per-indicator input for a death category. The
// total is always derived, never input.
type DeathObservation struct {
	IndicatorID       uuid.UUID `json:"indicator_id"`
	IndicatorName     string    `json:"indicator_name"`
	InstitutionDeaths int       `json:"institution_deaths"`
	CommunityDeaths   int       `json:"community_deaths"`
}

// TotalDeaths is the derived death count for the category.
func (o DeathObservation) TotalDeaths() int {
	return o.InstitutionDeaths + o.CommunityDeaths
}

// simpleMalariaLabel marks the endemic disease for which deaths are not
// collected; matched case-insensitively on the indicator name.
const simpleMalariaLabel = "paludisme simple"

func isSimpleMalaria(name string) bool {
	return strings.Contains(strings.ToLower(name), simpleMalariaLabel)
}

// BulletinSubmission is one TLOH bulletin as submitted: header fields plus
// the per-kind observation lists collected from the reporting form.
type BulletinSubmission struct {
	BulletinNumber string
	Service        string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	Diseases       []DiseaseObservation
	Tropical       []TropicalObservation
	Deaths         []DeathObservation
}

// Normalize applies input corrections that are independent of validity:
// deaths reported against a simple-malaria indicator are discarded, whatever
// the caller sent.
func (s *BulletinSubmission) Normalize() {
	for i := range s.Diseases {
		if isSimpleMalaria(s.Diseases[i].IndicatorName) {
			s.Diseases[i].Deaths = 0
		}
	}
}

// Records derives the rows to store: one per observation with at least one
// nonzero count. An all-zero submission derives no rows.
func (s *BulletinSubmission) Records() []*Record {
	var records []*Record

	base := Record{
		BulletinNumber: s.BulletinNumber,
		PeriodStart:    s.PeriodStart,
		PeriodEnd:      s.PeriodEnd,
		Service:        s.Service,
	}

	for _, o := range s.Diseases {
		if o.Cases == 0 && o.Deaths == 0 {
			continue
		}
		r := base
		r.IndicatorID = o.IndicatorID
		r.Cases = o.Cases
		r.Deaths = o.Deaths
		records = append(records, &r)
	}

	for _, o := range s.Tropical {
		if o.Notified == 0 && o.Isolated == 0 {
			continue
		}
		r := base
		r.IndicatorID = o.IndicatorID
		r.Notified = o.Notified
		r.Isolated = o.Isolated
		records = append(records, &r)
	}

	for _, o := range s.Deaths {
		if o.InstitutionDeaths == 0 && o.CommunityDeaths == 0 {
			continue
		}
		r := base
		r.IndicatorID = o.IndicatorID
		r.InstitutionDeaths = o.InstitutionDeaths
		r.CommunityDeaths = o.CommunityDeaths
		r.Deaths = o.TotalDeaths()
		records = append(records, &r)
	}

	return records
}

// Totals is the global dashboard rollup. Zero-valued on an empty store,
// never absent.
type Totals struct {
	TotalCases    int64 `json:"total_cases"`
	TotalDeaths   int64 `json:"total_deaths"`
	TotalIsolated int64 `json:"total_isolated"`
	TotalNotified int64 `json:"total_notified"`
}

// DiseaseRow is one aggregated surveillance line for an endemic disease.
type DiseaseRow struct {
	Indicator string `json:"indicator"`
	Cases     int64  `json:"cases"`
	Deaths    int64  `json:"deaths"`
}

// TropicalRow is one aggregated surveillance line for a neglected tropical
// disease.
type TropicalRow struct {
	Indicator string `json:"indicator"`
	Notified  int64  `json:"notified"`
	Isolated  int64  `json:"isolated"`
}

// DeathRow is one aggregated surveillance line for a death category.
type DeathRow struct {
	Indicator   string `json:"indicator"`
	Institution int64  `json:"institution"`
	Community   int64  `json:"community"`
	Total       int64  `json:"total"`
}

// SurveillanceReport groups the three aggregation tables produced for one
// filter combination. Empty tables mean no indicators are defined, not an
// error.
type SurveillanceReport struct {
	Diseases []DiseaseRow  `json:"diseases"`
	Tropical []TropicalRow `json:"tropical"`
	Deaths   []DeathRow    `json:"deaths"`
}
