package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"brandscope_backend/internal/analysis/domain"
	"brandscope_backend/internal/analysis/generation"
	"brandscope_backend/internal/analysis/ports"
	"brandscope_backend/internal/analysis/prompt"
	"brandscope_backend/internal/analysis/repository"
	"brandscope_backend/internal/events"
	"brandscope_backend/platform/apperr"
	"brandscope_backend/platform/logger"
)

// --- fakes ---

type fakeStore struct {
	mu        sync.Mutex
	completed map[string]domain.CompletedAnalysis
	pending   map[uuid.UUID]*domain.PendingAnalysis

	insertCompletedErr error
	listQueuedErr      error
	missFirstLookup    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		completed: make(map[string]domain.CompletedAnalysis),
		pending:   make(map[uuid.UUID]*domain.PendingAnalysis),
	}
}

func (f *fakeStore) GetCompletedByKey(_ context.Context, brandKey string) (domain.CompletedAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missFirstLookup {
		f.missFirstLookup = false
		return domain.CompletedAnalysis{}, repository.ErrNotFound
	}
	ca, ok := f.completed[brandKey]
	if !ok {
		return domain.CompletedAnalysis{}, repository.ErrNotFound
	}
	return ca, nil
}

func (f *fakeStore) InsertCompleted(_ context.Context, ca domain.CompletedAnalysis) (domain.CompletedAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertCompletedErr != nil {
		return domain.CompletedAnalysis{}, f.insertCompletedErr
	}
	if _, ok := f.completed[ca.BrandKey]; ok {
		return domain.CompletedAnalysis{}, repository.ErrDuplicateBrand
	}
	ca.ID = uuid.New()
	ca.CreatedAt = time.Now()
	f.completed[ca.BrandKey] = ca
	return ca, nil
}

func (f *fakeStore) InsertPending(_ context.Context, pa domain.PendingAnalysis) (domain.PendingAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pa.ID = uuid.New()
	pa.Status = domain.PendingStatusQueued
	pa.CreatedAt = time.Now()
	stored := pa
	f.pending[pa.ID] = &stored
	return pa, nil
}

func (f *fakeStore) ListQueued(_ context.Context, limit, maxRetries int) ([]domain.PendingAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listQueuedErr != nil {
		return nil, f.listQueuedErr
	}
	var out []domain.PendingAnalysis
	for _, pa := range f.pending {
		if pa.Status == domain.PendingStatusQueued && pa.RetryCount < maxRetries {
			out = append(out, *pa)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) ListRecent(_ context.Context, limit int) ([]domain.PendingAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.PendingAnalysis
	for _, pa := range f.pending {
		out = append(out, *pa)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) MarkProcessed(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pa, ok := f.pending[id]
	if !ok {
		return repository.ErrNotFound
	}
	pa.Status = domain.PendingStatusProcessed
	return nil
}

func (f *fakeStore) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pa, ok := f.pending[id]
	if !ok {
		return repository.ErrNotFound
	}
	pa.Status = domain.PendingStatusFailed
	pa.LastError = reason
	return nil
}

func (f *fakeStore) RegisterQuotaRetry(_ context.Context, id uuid.UUID, reason string, maxRetries int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pa, ok := f.pending[id]
	if !ok {
		return repository.ErrNotFound
	}
	pa.RetryCount++
	pa.LastError = reason
	if pa.RetryCount >= maxRetries {
		pa.Status = domain.PendingStatusFailed
	}
	return nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, p string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	call := len(f.prompts) - 1
	if call < len(f.errs) && f.errs[call] != nil {
		return "", f.errs[call]
	}
	if call < len(f.replies) {
		return f.replies[call], nil
	}
	return "analysis text", nil
}

func (f *fakeGenerator) Model() string { return "fake-model" }

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeRecorder struct {
	mu       sync.Mutex
	statuses []ports.LeadStatus
}

func (f *fakeRecorder) RecordStatus(_ context.Context, _ ports.LeadProjection, status ports.LeadStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakeRecorder) recorded() []ports.LeadStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.LeadStatus(nil), f.statuses...)
}

type fakeBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakeBus) Publish(_ context.Context, e events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeBus) PublishSync(ctx context.Context, e events.Event) error {
	f.Publish(ctx, e)
	return nil
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func (f *fakeBus) published() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Event(nil), f.events...)
}

type testConfig struct{}

func (testConfig) GetStoreTimeout() time.Duration { return 2 * time.Second }
func (testConfig) GetRetryAfterSeconds() int      { return 3600 }

type env struct {
	svc      *Service
	store    *fakeStore
	gen      *fakeGenerator
	recorder *fakeRecorder
	bus      *fakeBus
}

func newEnv(t *testing.T) *env {
	t.Helper()
	builder, err := prompt.NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	e := &env{
		store:    newFakeStore(),
		gen:      &fakeGenerator{},
		recorder: &fakeRecorder{},
		bus:      &fakeBus{},
	}
	e.svc = New(e.store, builder, e.gen, e.bus, testConfig{}, logger.New("test"))
	e.svc.SetLeadRecorder(e.recorder)
	return e
}

func request() domain.AnalysisRequest {
	return domain.AnalysisRequest{
		BrandName:    "Crescent Dairy",
		Sector:       domain.SectorFood,
		HalalStatus:  domain.HalalStatusCertified,
		Description:  "Organic yogurt line",
		TargetMarket: "UAE",
		Email:        "owner@crescent.example",
		Language:     domain.LanguageEnglish,
	}
}

// --- Analyze ---

func TestAnalyzeSuccess(t *testing.T) {
	e := newEnv(t)
	e.gen.replies = []string{"full brand analysis"}

	res, err := e.svc.Analyze(context.Background(), request(), domain.ClientMeta{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Analysis.Result != "full brand analysis" {
		t.Errorf("unexpected result %q", res.Analysis.Result)
	}
	if res.Analysis.BrandKey != "crescent dairy" {
		t.Errorf("unexpected brand key %q", res.Analysis.BrandKey)
	}
	if got := e.recorder.recorded(); len(got) != 2 || got[0] != ports.LeadStatusNew || got[1] != ports.LeadStatusGenerated {
		t.Errorf("lead statuses = %v, want [NEW GENERATED]", got)
	}
	if e.gen.calls() != 1 {
		t.Errorf("generator called %d times, want 1", e.gen.calls())
	}
}

func TestAnalyzeDuplicateBrandConflicts(t *testing.T) {
	e := newEnv(t)
	e.store.completed["crescent dairy"] = domain.CompletedAnalysis{
		BrandKey:  "crescent dairy",
		BrandName: "Crescent Dairy",
	}

	_, err := e.svc.Analyze(context.Background(), request(), domain.ClientMeta{})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("want conflict, got %v", err)
	}
	if e.gen.calls() != 0 {
		t.Error("generator must not run for a duplicate brand")
	}
	if got := e.recorder.recorded(); len(got) != 0 {
		t.Errorf("duplicate request projected lead statuses %v", got)
	}
}

func TestAnalyzeDedupIsCaseAndAccentInsensitive(t *testing.T) {
	e := newEnv(t)
	e.gen.replies = []string{"first analysis"}

	if _, err := e.svc.Analyze(context.Background(), request(), domain.ClientMeta{}); err != nil {
		t.Fatalf("first Analyze: %v", err)
	}

	second := request()
	second.BrandName = "  CRÉSCENT   Dairy!  "
	_, err := e.svc.Analyze(context.Background(), second, domain.ClientMeta{})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("want conflict for equivalent brand name, got %v", err)
	}
}

func TestAnalyzeInsertRaceMapsToConflict(t *testing.T) {
	e := newEnv(t)
	e.gen.replies = []string{"loser analysis"}
	e.store.insertCompletedErr = repository.ErrDuplicateBrand
	e.store.completed["crescent dairy"] = domain.CompletedAnalysis{
		BrandKey:  "crescent dairy",
		BrandName: "Crescent Dairy",
		Result:    "winner analysis",
	}
	// Dedup precheck misses so the race surfaces at insert time.
	e.store.missFirstLookup = true

	_, err := e.svc.Analyze(context.Background(), request(), domain.ClientMeta{})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("want conflict after losing insert race, got %v", err)
	}
}

func TestAnalyzeQuotaExhaustedQueues(t *testing.T) {
	e := newEnv(t)
	e.gen.errs = []error{&generation.QuotaError{Err: errors.New("429")}}

	_, err := e.svc.Analyze(context.Background(), request(), domain.ClientMeta{IPAddress: "203.0.113.9"})
	var qErr *QuotaQueuedError
	if !errors.As(err, &qErr) {
		t.Fatalf("want QuotaQueuedError, got %v", err)
	}
	if qErr.Language != domain.LanguageEnglish {
		t.Errorf("queued language = %v", qErr.Language)
	}

	pa, ok := e.store.pending[qErr.PendingID]
	if !ok {
		t.Fatal("pending row not inserted")
	}
	if pa.Status != domain.PendingStatusQueued || pa.RetryCount != 0 {
		t.Errorf("pending row = %+v", pa)
	}
	if pa.Request.BrandName != "Crescent Dairy" {
		t.Errorf("pending request not preserved: %+v", pa.Request)
	}
	if pa.Meta.IPAddress != "203.0.113.9" {
		t.Errorf("client meta not preserved: %+v", pa.Meta)
	}

	if got := e.recorder.recorded(); len(got) != 2 || got[1] != ports.LeadStatusQuotaBlocked {
		t.Errorf("lead statuses = %v, want [NEW QUOTA_BLOCKED]", got)
	}
	published := e.bus.published()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	if published[0].EventName() != "analysis.request.queued" {
		t.Errorf("event = %s", published[0].EventName())
	}
}

func TestAnalyzeProviderErrorIsInternal(t *testing.T) {
	e := newEnv(t)
	e.gen.errs = []error{errors.New("connection reset")}

	_, err := e.svc.Analyze(context.Background(), request(), domain.ClientMeta{})
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("want internal error, got %v", err)
	}
	if got := e.recorder.recorded(); len(got) != 2 || got[1] != ports.LeadStatusError {
		t.Errorf("lead statuses = %v, want [NEW ERROR]", got)
	}
	if len(e.store.pending) != 0 {
		t.Error("non-quota failure must not queue a pending analysis")
	}
}

func TestAnalyzeEmptyBrandNameRejected(t *testing.T) {
	e := newEnv(t)
	req := request()
	req.BrandName = "!!! ???"

	_, err := e.svc.Analyze(context.Background(), req, domain.ClientMeta{})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestAnalyzeWithoutLeadRecorder(t *testing.T) {
	e := newEnv(t)
	e.svc.SetLeadRecorder(nil)
	e.gen.replies = []string{"analysis"}

	if _, err := e.svc.Analyze(context.Background(), request(), domain.ClientMeta{}); err != nil {
		t.Fatalf("Analyze without recorder: %v", err)
	}
}

// --- language retry ---

func TestLanguageRetryRecoversOnSecondAttempt(t *testing.T) {
	e := newEnv(t)
	e.gen.replies = []string{prompt.LanguageFailureSentinel, "analyse complète"}

	req := request()
	req.Language = domain.LanguageFrench
	res, err := e.svc.Analyze(context.Background(), req, domain.ClientMeta{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Analysis.Result != "analyse complète" {
		t.Errorf("result = %q", res.Analysis.Result)
	}
	if e.gen.calls() != 2 {
		t.Fatalf("generator called %d times, want 2", e.gen.calls())
	}
	if e.gen.prompts[0] == e.gen.prompts[1] {
		t.Error("retry must use the strict prompt, not the original")
	}
}

func TestLanguageRetryTriggersOnEmbeddedSentinel(t *testing.T) {
	e := newEnv(t)
	// Models often wrap the failure token in apology text instead of
	// returning it alone.
	e.gen.replies = []string{"Je suis desole. " + prompt.LanguageFailureSentinel, "analyse complète"}

	req := request()
	req.Language = domain.LanguageFrench
	res, err := e.svc.Analyze(context.Background(), req, domain.ClientMeta{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if e.gen.calls() != 2 {
		t.Fatalf("generator called %d times, want 2", e.gen.calls())
	}
	if res.Analysis.Result != "analyse complète" {
		t.Errorf("result = %q, wrapped sentinel must not be persisted", res.Analysis.Result)
	}
}

func TestLanguageRetryIsBoundedToOne(t *testing.T) {
	e := newEnv(t)
	e.gen.replies = []string{prompt.LanguageFailureSentinel, prompt.LanguageFailureSentinel}

	res, err := e.svc.Analyze(context.Background(), request(), domain.ClientMeta{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	// Second sentinel is persisted as the completed result; the retry budget
	// is exactly one.
	if res.Analysis.Result != prompt.LanguageFailureSentinel {
		t.Errorf("result = %q", res.Analysis.Result)
	}
	if e.gen.calls() != 2 {
		t.Errorf("generator called %d times, want exactly 2", e.gen.calls())
	}
	if _, ok := e.store.completed["crescent dairy"]; !ok {
		t.Error("second sentinel must still be stored as a completed analysis")
	}
	if got := e.recorder.recorded(); got[len(got)-1] != ports.LeadStatusGenerated {
		t.Errorf("final lead status = %v, want GENERATED", got[len(got)-1])
	}
}

func TestCompliantResponseSkipsRetry(t *testing.T) {
	e := newEnv(t)
	e.gen.replies = []string{fmt.Sprintf("  %s  ", "une vraie analyse")}

	if _, err := e.svc.Analyze(context.Background(), request(), domain.ClientMeta{}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if e.gen.calls() != 1 {
		t.Errorf("generator called %d times, want 1", e.gen.calls())
	}
}
