package report

import (
	"context"
)

type Service struct {
	repo      Repository
	validator *Validator
}

func NewService(repo Repository, validator *Validator) *Service {
	return &Service{repo: repo, validator: validator}
}

// SubmitResult describes what one bulletin submission did. NothingToSave is
// set when the bulletin was valid but all counts were zero, so no rows were
// written.
type SubmitResult struct {
	BulletinNumber string `json:"bulletin_number"`
	RecordsSaved   int    `json:"records_saved"`
	NothingToSave  bool   `json:"nothing_to_save"`
}

// SubmitBulletin normalizes, validates and stores one bulletin. Validation
// is all-or-nothing: a single violation anywhere rejects the whole bulletin
// and nothing is written. A *ValidationError return carries the full list
// of violations.
func (s *Service) SubmitBulletin(ctx context.Context, sub *BulletinSubmission) (*SubmitResult, error) {
	sub.Normalize()
	if verr := s.validator.ValidateSubmission(sub); verr != nil {
		return nil, verr
	}

	records := sub.Records()
	if len(records) == 0 {
		return &SubmitResult{BulletinNumber: sub.BulletinNumber, NothingToSave: true}, nil
	}

	if err := s.repo.InsertRecords(ctx, records); err != nil {
		return nil, err
	}
	return &SubmitResult{BulletinNumber: sub.BulletinNumber, RecordsSaved: len(records)}, nil
}

// Surveillance builds the three aggregation tables for one filter
// combination.
func (s *Service) Surveillance(ctx context.Context, f Filter) (*SurveillanceReport, error) {
	diseases, err := s.repo.AggregateDiseases(ctx, f)
	if err != nil {
		return nil, err
	}
	tropical, err := s.repo.AggregateTropical(ctx, f)
	if err != nil {
		return nil, err
	}
	deaths, err := s.repo.AggregateDeaths(ctx, f)
	if err != nil {
		return nil, err
	}

	if diseases == nil {
		diseases = []DiseaseRow{}
	}
	if tropical == nil {
		tropical = []TropicalRow{}
	}
	if deaths == nil {
		deaths = []DeathRow{}
	}
	return &SurveillanceReport{Diseases: diseases, Tropical: tropical, Deaths: deaths}, nil
}

// Totals returns the global dashboard rollup.
func (s *Service) Totals(ctx context.Context) (*Totals, error) {
	return s.repo.SumTotals(ctx)
}
