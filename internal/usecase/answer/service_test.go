package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/contentiq/internal/domain"
	"github.com/kailas-cloud/contentiq/internal/domain/plan"
	"github.com/kailas-cloud/contentiq/internal/domain/query"
)

type fakeParser struct {
	parsed query.Parsed
	err    error
}

func (f *fakeParser) Parse(_ context.Context, _, _ string, _ bool) (query.Parsed, error) {
	return f.parsed, f.err
}

type fakeSynthesizer struct {
	plan plan.Plan
	err  error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, tenantID string, _ query.Parsed) (plan.Plan, error) {
	if f.err != nil {
		return plan.Plan{}, f.err
	}
	p := f.plan
	if len(p.Stages) == 0 {
		p = plan.Plan{Collection: "contents", Stages: []plan.Stage{plan.TenantScope{TenantID: tenantID}}}
	}
	return p, nil
}

type fakeExecutor struct {
	result plan.Result
	err    error
	calls  int
}

func (f *fakeExecutor) Execute(_ context.Context, _ plan.Plan) (plan.Result, error) {
	f.calls++
	return f.result, f.err
}

func structuredParsed() query.Parsed {
	return query.Parsed{
		RawText:        "show me TOFU content",
		Classification: query.Structured,
		Operation:      query.OpList,
		Filters:        map[string][]string{"Funnel Stage": {"TOFU"}},
	}
}

func TestAnswer_StructuredQuery(t *testing.T) {
	executor := &fakeExecutor{result: plan.Result{
		Documents: []plan.Document{{ID: "c1", Title: "Intro"}},
		Count:     1,
	}}
	svc := New(&fakeParser{parsed: structuredParsed()}, &fakeSynthesizer{}, executor)

	resp, err := svc.Answer(context.Background(), "acme", "show me TOFU content", false)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if resp.Result.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Result.Count)
	}
	if resp.Advisory != nil {
		t.Error("structured query must not carry an advisory")
	}
	if resp.Parsed.Confidence <= 0 {
		t.Errorf("confidence = %v, want > 0", resp.Parsed.Confidence)
	}
}

func TestAnswer_AdvisoryQueryGetsAdvisory(t *testing.T) {
	parsed := query.Parsed{
		RawText:        "how many TOFU pieces do we have",
		Classification: query.Advisory,
		Operation:      query.OpCount,
		Filters:        map[string][]string{"Funnel Stage": {"TOFU"}},
	}
	executor := &fakeExecutor{result: plan.Result{Count: 12}}
	svc := New(&fakeParser{parsed: parsed}, &fakeSynthesizer{}, executor)

	resp, err := svc.Answer(context.Background(), "acme", parsed.RawText, false)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if resp.Advisory == nil {
		t.Fatal("advisory query must carry an advisory")
	}
	if resp.Advisory.Count != 12 || !resp.Advisory.HasResults {
		t.Errorf("advisory = %+v", resp.Advisory)
	}
}

func TestAnswer_TenantRequired(t *testing.T) {
	svc := New(&fakeParser{}, &fakeSynthesizer{}, &fakeExecutor{})

	_, err := svc.Answer(context.Background(), "", "anything", false)
	if !errors.Is(err, domain.ErrTenantRequired) {
		t.Errorf("expected ErrTenantRequired, got %v", err)
	}
}

func TestAnswer_ParseErrorPropagates(t *testing.T) {
	svc := New(&fakeParser{err: domain.ErrSchemaUnavailable}, &fakeSynthesizer{}, &fakeExecutor{})

	_, err := svc.Answer(context.Background(), "acme", "anything", false)
	if !errors.Is(err, domain.ErrSchemaUnavailable) {
		t.Errorf("expected ErrSchemaUnavailable, got %v", err)
	}
}

func TestAnswer_SynthesisErrorPropagates(t *testing.T) {
	executor := &fakeExecutor{}
	svc := New(
		&fakeParser{parsed: structuredParsed()},
		&fakeSynthesizer{err: domain.NewUnresolvedCategory("Made Up")},
		executor,
	)

	_, err := svc.Answer(context.Background(), "acme", "anything", false)
	if !errors.Is(err, domain.ErrUnresolvedCategory) {
		t.Errorf("expected ErrUnresolvedCategory, got %v", err)
	}
	if executor.calls != 0 {
		t.Errorf("executor must not run after synthesis failure, calls = %d", executor.calls)
	}
}

func TestAnswer_ExecutionErrorPropagates(t *testing.T) {
	svc := New(
		&fakeParser{parsed: structuredParsed()},
		&fakeSynthesizer{},
		&fakeExecutor{err: errors.New("store down")},
	)

	_, err := svc.Answer(context.Background(), "acme", "anything", false)
	if err == nil {
		t.Fatal("expected execution error")
	}
}

func TestParse_NoExecution(t *testing.T) {
	executor := &fakeExecutor{}
	svc := New(&fakeParser{parsed: structuredParsed()}, &fakeSynthesizer{}, executor)

	parsed, p, _, err := svc.Parse(context.Background(), "acme", "show me TOFU content", false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if executor.calls != 0 {
		t.Errorf("Parse must not execute, calls = %d", executor.calls)
	}
	if parsed.Confidence <= 0 {
		t.Errorf("confidence = %v, want > 0", parsed.Confidence)
	}
	if len(p.Stages) == 0 {
		t.Error("expected a synthesized plan")
	}
}
