package report

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockIndicator struct {
	id   uuid.UUID
	name string
	typ  string
}

// mockRepo mirrors the read side of the Postgres repository: aggregations
// start from the indicator catalog so unmatched indicators appear zeroed.
type mockRepo struct {
	indicators []mockIndicator
	records    []*Record
}

func newMockRepo() *mockRepo { return &mockRepo{} }

func (m *mockRepo) addIndicator(name, typ string) uuid.UUID {
	id := uuid.New()
	m.indicators = append(m.indicators, mockIndicator{id: id, name: name, typ: typ})
	return id
}

func (m *mockRepo) InsertRecords(_ context.Context, records []*Record) error {
	for _, rec := range records {
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		m.records = append(m.records, rec)
	}
	return nil
}

func (m *mockRepo) matches(rec *Record, f Filter) bool {
	if f.BulletinNumber != "" &&
		!strings.Contains(strings.ToLower(rec.BulletinNumber), strings.ToLower(f.BulletinNumber)) {
		return false
	}
	if f.Year != 0 && rec.PeriodStart.Year() != f.Year {
		return false
	}
	if f.Service != "" && rec.Service != f.Service {
		return false
	}
	return true
}

func (m *mockRepo) SumTotals(_ context.Context) (*Totals, error) {
	var t Totals
	for _, rec := range m.records {
		t.TotalCases += int64(rec.Cases)
		t.TotalDeaths += int64(rec.Deaths)
		t.TotalIsolated += int64(rec.Isolated)
		t.TotalNotified += int64(rec.Notified)
	}
	return &t, nil
}

func (m *mockRepo) AggregateDiseases(_ context.Context, f Filter) ([]DiseaseRow, error) {
	var out []DiseaseRow
	for _, ind := range m.sortedIndicators("endemic_disease") {
		row := DiseaseRow{Indicator: ind.name}
		for _, rec := range m.records {
			if rec.IndicatorID == ind.id && m.matches(rec, f) {
				row.Cases += int64(rec.Cases)
				row.Deaths += int64(rec.Deaths)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *mockRepo) AggregateTropical(_ context.Context, f Filter) ([]TropicalRow, error) {
	var out []TropicalRow
	for _, ind := range m.sortedIndicators("neglected_tropical_disease") {
		row := TropicalRow{Indicator: ind.name}
		for _, rec := range m.records {
			if rec.IndicatorID == ind.id && m.matches(rec, f) {
				row.Notified += int64(rec.Notified)
				row.Isolated += int64(rec.Isolated)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *mockRepo) AggregateDeaths(_ context.Context, f Filter) ([]DeathRow, error) {
	var out []DeathRow
	for _, ind := range m.sortedIndicators("death") {
		row := DeathRow{Indicator: ind.name}
		for _, rec := range m.records {
			if rec.IndicatorID == ind.id && m.matches(rec, f) {
				row.Institution += int64(rec.InstitutionDeaths)
				row.Community += int64(rec.CommunityDeaths)
				row.Total += int64(rec.Deaths)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *mockRepo) sortedIndicators(typ string) []mockIndicator {
	var out []mockIndicator
	for _, ind := range m.indicators {
		if ind.typ == typ {
			out = append(out, ind)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func newTestService(repo *mockRepo) *Service {
	return NewService(repo, NewValidator(testServices))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// -- Tests --

func TestSubmitBulletin_StoresNonzeroRows(t *testing.T) {
	repo := newMockRepo()
	measles := repo.addIndicator("Rougeole", "endemic_disease")
	cholera := repo.addIndicator("Choléra", "endemic_disease")
	svc := newTestService(repo)

	sub := validSubmission()
	sub.Diseases = []DiseaseObservation{
		{IndicatorID: measles, IndicatorName: "Rougeole", Cases: 5, Deaths: 1},
		{IndicatorID: cholera, IndicatorName: "Choléra"},
	}

	result, err := svc.SubmitBulletin(context.Background(), sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RecordsSaved != 1 {
		t.Errorf("expected 1 record saved (zero rows skipped), got %d", result.RecordsSaved)
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(repo.records))
	}
	rec := repo.records[0]
	if rec.IndicatorID != measles || rec.Cases != 5 || rec.Deaths != 1 {
		t.Errorf("unexpected stored record %+v", rec)
	}
	if rec.BulletinNumber != "TLOH-2024-07" || rec.Service != "Pédiatrie" {
		t.Errorf("header fields not carried onto record: %+v", rec)
	}
}

func TestSubmitBulletin_AllZeroIsNoOp(t *testing.T) {
	repo := newMockRepo()
	measles := repo.addIndicator("Rougeole", "endemic_disease")
	svc := newTestService(repo)

	sub := validSubmission()
	sub.Diseases = []DiseaseObservation{{IndicatorID: measles, IndicatorName: "Rougeole"}}

	result, err := svc.SubmitBulletin(context.Background(), sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.NothingToSave || result.RecordsSaved != 0 {
		t.Errorf("expected no-op result, got %+v", result)
	}
	if len(repo.records) != 0 {
		t.Errorf("expected no rows stored, got %d", len(repo.records))
	}
}

// One invalid observation rejects the whole bulletin: the valid measles row
// must not be stored either.
func TestSubmitBulletin_RejectsWholeBulletin(t *testing.T) {
	repo := newMockRepo()
	measles := repo.addIndicator("Rougeole", "endemic_disease")
	tryp := repo.addIndicator("Trypanosomiase", "neglected_tropical_disease")
	svc := newTestService(repo)

	sub := validSubmission()
	sub.Diseases = []DiseaseObservation{
		{IndicatorID: measles, IndicatorName: "Rougeole", Cases: 5, Deaths: 1},
	}
	sub.Tropical = []TropicalObservation{
		{IndicatorID: tryp, IndicatorName: "Trypanosomiase", Notified: 2, Isolated: 3},
	}

	_, err := svc.SubmitBulletin(context.Background(), sub)
	if err == nil {
		t.Fatal("expected submission to be rejected")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Violations) != 1 {
		t.Errorf("expected exactly 1 violation, got %d", len(verr.Violations))
	}
	if verr.Violations[0].Indicator != "Trypanosomiase" {
		t.Errorf("unexpected violation %+v", verr.Violations[0])
	}
	if len(repo.records) != 0 {
		t.Errorf("expected zero rows stored after rejection, got %d", len(repo.records))
	}
}

func TestSubmitBulletin_DeathTotalDerived(t *testing.T) {
	repo := newMockRepo()
	maternal := repo.addIndicator("Décès maternels", "death")
	svc := newTestService(repo)

	sub := validSubmission()
	sub.Deaths = []DeathObservation{
		{IndicatorID: maternal, IndicatorName: "Décès maternels", InstitutionDeaths: 2, CommunityDeaths: 3},
	}

	if _, err := svc.SubmitBulletin(context.Background(), sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.records[0].Deaths; got != 5 {
		t.Errorf("expected derived death total 5, got %d", got)
	}
}

func TestSurveillance_UnmatchedIndicatorsZeroed(t *testing.T) {
	repo := newMockRepo()
	measles := repo.addIndicator("Rougeole", "endemic_disease")
	repo.addIndicator("Choléra", "endemic_disease")
	svc := newTestService(repo)

	sub := validSubmission()
	sub.Diseases = []DiseaseObservation{
		{IndicatorID: measles, IndicatorName: "Rougeole", Cases: 4, Deaths: 1},
	}
	if _, err := svc.SubmitBulletin(context.Background(), sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rep, err := svc.Surveillance(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Diseases) != 2 {
		t.Fatalf("expected both indicators in the table, got %d rows", len(rep.Diseases))
	}
	if rep.Diseases[0].Indicator != "Choléra" || rep.Diseases[0].Cases != 0 {
		t.Errorf("expected zeroed Choléra row first, got %+v", rep.Diseases[0])
	}
	if rep.Diseases[1].Indicator != "Rougeole" || rep.Diseases[1].Cases != 4 {
		t.Errorf("expected Rougeole sums, got %+v", rep.Diseases[1])
	}
}

func TestSurveillance_FiltersCombine(t *testing.T) {
	repo := newMockRepo()
	measles := repo.addIndicator("Rougeole", "endemic_disease")
	svc := newTestService(repo)

	submit := func(bulletin, service string, start time.Time, cases int) {
		sub := &BulletinSubmission{
			BulletinNumber: bulletin,
			Service:        service,
			PeriodStart:    start,
			PeriodEnd:      start.AddDate(0, 0, 6),
			Diseases: []DiseaseObservation{
				{IndicatorID: measles, IndicatorName: "Rougeole", Cases: cases},
			},
		}
		if _, err := svc.SubmitBulletin(context.Background(), sub); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	submit("TLOH-2024-07", "Pédiatrie", date(2024, 2, 12), 3)
	submit("TLOH-2024-08", "Urgences", date(2024, 2, 19), 5)
	submit("TLOH-2023-50", "Pédiatrie", date(2023, 12, 11), 7)

	cases := func(f Filter) int64 {
		rep, err := svc.Surveillance(context.Background(), f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return rep.Diseases[0].Cases
	}

	if got := cases(Filter{}); got != 15 {
		t.Errorf("unfiltered sum: expected 15, got %d", got)
	}
	if got := cases(Filter{Year: 2024}); got != 8 {
		t.Errorf("year filter: expected 8, got %d", got)
	}
	if got := cases(Filter{Service: "Pédiatrie"}); got != 10 {
		t.Errorf("service filter: expected 10, got %d", got)
	}
	if got := cases(Filter{BulletinNumber: "2024-07"}); got != 3 {
		t.Errorf("bulletin filter: expected 3, got %d", got)
	}
	if got := cases(Filter{Year: 2024, Service: "Pédiatrie"}); got != 3 {
		t.Errorf("combined filter: expected 3, got %d", got)
	}
	if got := cases(Filter{Year: 2022}); got != 0 {
		t.Errorf("no-match filter: expected 0, got %d", got)
	}
}

func TestTotals(t *testing.T) {
	repo := newMockRepo()
	measles := repo.addIndicator("Rougeole", "endemic_disease")
	leprosy := repo.addIndicator("Lèpre", "neglected_tropical_disease")
	maternal := repo.addIndicator("Décès maternels", "death")
	svc := newTestService(repo)

	sub := validSubmission()
	sub.Diseases = []DiseaseObservation{
		{IndicatorID: measles, IndicatorName: "Rougeole", Cases: 10, Deaths: 2},
	}
	sub.Tropical = []TropicalObservation{
		{IndicatorID: leprosy, IndicatorName: "Lèpre", Notified: 4, Isolated: 1},
	}
	sub.Deaths = []DeathObservation{
		{IndicatorID: maternal, IndicatorName: "Décès maternels", InstitutionDeaths: 1, CommunityDeaths: 2},
	}
	if _, err := svc.SubmitBulletin(context.Background(), sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	totals, err := svc.Totals(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Totals{TotalCases: 10, TotalDeaths: 5, TotalIsolated: 1, TotalNotified: 4}
	if *totals != want {
		t.Errorf("totals mismatch:\n got %+v\nwant %+v", *totals, want)
	}
}

func TestSurveillance_EmptyStoreEmptyTables(t *testing.T) {
	svc := newTestService(newMockRepo())
	rep, err := svc.Surveillance(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Diseases == nil || rep.Tropical == nil || rep.Deaths == nil {
		t.Error("tables must be empty slices, not nil")
	}
	if len(rep.Diseases)+len(rep.Tropical)+len(rep.Deaths) != 0 {
		t.Errorf("expected empty tables, got %+v", rep)
	}
}
