package gemini

import (
	"context"
	"errors"
	"testing"
)

func TestDiscoverModelsSuccess(t *testing.T) {
	svc := &fakeService{listModels: []ModelInfo{
		{ID: "gemini-2.5-flash", SupportsGeneration: true},
		{ID: "embedding-001", SupportsGeneration: false},
		{ID: "gemini-1.5-pro", SupportsGeneration: true},
	}}

	models, diag := DiscoverModels(context.Background(), svc)
	if diag != "" {
		t.Errorf("unexpected diagnostic %q", diag)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 generation models, got %v", models)
	}
	if models[0] != "gemini-2.5-flash" || models[1] != "gemini-1.5-pro" {
		t.Errorf("unexpected models %v", models)
	}
}

func TestDiscoverModelsFallbacks(t *testing.T) {
	cases := []struct {
		name string
		svc  *fakeService
	}{
		{"transport error", &fakeService{listErr: errors.New("401 unauthorized")}},
		{"empty list", &fakeService{}},
		{"no generation support", &fakeService{listModels: []ModelInfo{{ID: "embedding-001"}}}},
	}

	for _, tc := range cases {
		models, diag := DiscoverModels(context.Background(), tc.svc)
		if diag == "" {
			t.Errorf("%s: expected a diagnostic", tc.name)
		}
		if len(models) == 0 {
			t.Errorf("%s: discovery must never return zero models", tc.name)
		}
		if models[0] != FallbackModels[0] {
			t.Errorf("%s: expected fallback list, got %v", tc.name, models)
		}
	}
}

func TestDiscoverModelsDiagClassification(t *testing.T) {
	_, diag := DiscoverModels(context.Background(), &fakeService{listErr: errors.New("API key not valid")})
	if diag != "Invalid API key" {
		t.Errorf("got diag %q", diag)
	}

	_, diag = DiscoverModels(context.Background(), &fakeService{listErr: errors.New("403: caller lacks permission")})
	if diag != "API key lacks permission to list models" {
		t.Errorf("got diag %q", diag)
	}
}

func TestPreferredModel(t *testing.T) {
	if got := PreferredModel([]string{"gemini-1.5-pro", "gemini-2.5-flash"}); got != "gemini-2.5-flash" {
		t.Errorf("got %q", got)
	}
	if got := PreferredModel([]string{"gemini-1.5-pro"}); got != "gemini-1.5-pro" {
		t.Errorf("got %q", got)
	}
	if got := PreferredModel(nil); got != DefaultModel {
		t.Errorf("got %q", got)
	}
}

func TestProbeModel(t *testing.T) {
	if err := ProbeModel(context.Background(), &fakeService{generateText: "OK"}, "gemini-2.5-flash"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ProbeModel(context.Background(), &fakeService{generateErr: errors.New("404 not found")}, "gone"); err == nil {
		t.Error("expected probe failure")
	}
}
