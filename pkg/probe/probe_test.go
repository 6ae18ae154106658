package probe

import (
	"context"
	"errors"
	"testing"
)

func TestRun(t *testing.T) {
	probes := []Probe{
		{
			Name:     "GitHub API",
			Check:    func(ctx context.Context) error { return nil },
			Critical: true,
		},
		{
			Name:     "Template Dir",
			Check:    func(ctx context.Context) error { return errors.New("missing") },
			Critical: false,
		},
	}

	results := Run(context.Background(), probes)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Error != nil {
		t.Errorf("passing probe returned error: %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("failing probe returned nil")
	}
}

func TestRunHonorsTimeout(t *testing.T) {
	probes := []Probe{
		{
			Name: "Hung Dependency",
			Check: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
			Critical: true,
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := Run(ctx, probes)

	if results[0].Error == nil {
		t.Error("expected context error from hung check")
	}
}

func TestAnalyzeResults(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		wantErr bool
	}{
		{
			name:    "all pass",
			results: []Result{{Probe: Probe{Name: "db", Critical: true}}},
			wantErr: false,
		},
		{
			name:    "critical failure",
			results: []Result{{Probe: Probe{Name: "github", Critical: true}, Error: errors.New("fail")}},
			wantErr: true,
		},
		{
			name:    "non-critical failure",
			results: []Result{{Probe: Probe{Name: "templates", Critical: false}, Error: errors.New("fail")}},
			wantErr: false,
		},
		{
			name: "mixed failure",
			results: []Result{
				{Probe: Probe{Name: "templates", Critical: false}, Error: errors.New("fail")},
				{Probe: Probe{Name: "github", Critical: true}, Error: errors.New("fail")},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AnalyzeResults(tt.results)
			if (err != nil) != tt.wantErr {
				t.Errorf("AnalyzeResults() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
