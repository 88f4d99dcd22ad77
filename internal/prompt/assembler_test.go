package prompt

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hyperjump/ragd/internal/models"
)

func hit(id, desc string, score float64) *models.SearchHit {
	return &models.SearchHit{
		Item: &models.CatalogItem{
			ID:      id,
			Payload: map[string]string{"Description": desc, "ProductName": "name-" + id},
		},
		Score: score,
	}
}

func sampleHits() []*models.SearchHit {
	return []*models.SearchHit{
		hit("A", "Db timeout connection pool exhausted", 0.91),
		hit("B", "UI button misaligned", 0.12),
		hit("C", "Cache eviction storm", 0.05),
	}
}

func TestAssemble_ContainsQueryOnceAndHitsInOrder(t *testing.T) {
	for _, tmpl := range []Template{Diagnostic, Concise} {
		t.Run(tmpl.String(), func(t *testing.T) {
			query := "why is the database slow?"
			got, err := Assemble(query, sampleHits(), tmpl, 100000)
			if err != nil {
				t.Fatal(err)
			}
			if n := strings.Count(got, query); n != 1 {
				t.Errorf("query appears %d times, want 1", n)
			}
			a := strings.Index(got, `"id":"A"`)
			b := strings.Index(got, `"id":"B"`)
			c := strings.Index(got, `"id":"C"`)
			if a < 0 || b < 0 || c < 0 || !(a < b && b < c) {
				t.Errorf("hits missing or out of order: A=%d B=%d C=%d", a, b, c)
			}
		})
	}
}

func TestAssemble_HitLineFormat(t *testing.T) {
	got, err := Assemble("q", sampleHits()[:1], Concise, 100000)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"A","fields":{"Description":"Db timeout connection pool exhausted","ProductName":"name-A"},"score":0.91}` + "\n"
	if !strings.Contains(got, want) {
		t.Errorf("prompt does not contain hit line %q:\n%s", want, got)
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	hits := sampleHits()
	first, err := Assemble("query", hits, Diagnostic, 100000)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Assemble("query", hits, Diagnostic, 100000)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatal("Assemble is not deterministic")
		}
	}
}

func TestBuild_DropsTailHitsToFitBudget(t *testing.T) {
	hits := sampleHits()
	full, err := Build("query", hits, Concise, 100000)
	if err != nil {
		t.Fatal(err)
	}
	if full.HitsUsed != 3 {
		t.Fatalf("HitsUsed = %d, want 3", full.HitsUsed)
	}
	budget := utf8.RuneCountInString(full.Text) - 1
	trimmed, err := Build("query", hits, Concise, budget)
	if err != nil {
		t.Fatal(err)
	}
	if trimmed.HitsUsed != 2 {
		t.Errorf("HitsUsed = %d, want 2", trimmed.HitsUsed)
	}
	if strings.Contains(trimmed.Text, `"id":"C"`) {
		t.Error("tail hit C should have been dropped")
	}
	if !strings.Contains(trimmed.Text, `"id":"A"`) {
		t.Error("top hit A should be kept")
	}
}

func TestBuild_NeverExceedsBudget(t *testing.T) {
	hits := sampleHits()
	floor, err := Build("query", nil, Diagnostic, 100000)
	if err != nil {
		t.Fatal(err)
	}
	floorLen := utf8.RuneCountInString(floor.Text)
	for budget := floorLen; budget < floorLen+500; budget += 7 {
		p, err := Build("query", hits, Diagnostic, budget)
		if err != nil {
			t.Fatalf("budget %d: %v", budget, err)
		}
		if n := utf8.RuneCountInString(p.Text); n > budget {
			t.Fatalf("budget %d: prompt length %d", budget, n)
		}
	}
}

func TestBuild_PromptTooLarge(t *testing.T) {
	_, err := Build(strings.Repeat("x", 50), sampleHits(), Concise, 40)
	var tooLarge *PromptTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected PromptTooLargeError, got %v", err)
	}
	if tooLarge.MaxLength != 40 || tooLarge.Length <= 40 {
		t.Errorf("unexpected error fields %+v", tooLarge)
	}
	if models.KindOf(err) != models.KindPromptTooLarge {
		t.Errorf("KindOf = %s", models.KindOf(err))
	}
}

func TestBuild_LengthCountsCodePoints(t *testing.T) {
	query := strings.Repeat("é", 10)
	p, err := Build(query, nil, Concise, 100000)
	if err != nil {
		t.Fatal(err)
	}
	exact := utf8.RuneCountInString(p.Text)
	if _, err := Build(query, nil, Concise, exact); err != nil {
		t.Errorf("budget equal to code point length should fit: %v", err)
	}
	if _, err := Build(query, nil, Concise, exact-1); err == nil {
		t.Error("budget one below code point length should fail")
	}
}

func TestBuild_InvalidArguments(t *testing.T) {
	if _, err := Build("q", nil, Concise, 0); models.KindOf(err) != models.KindInvalidArgument {
		t.Errorf("maxLength 0: got %v", err)
	}
	if _, err := Build("q", nil, Template(42), 1000); models.KindOf(err) != models.KindInvalidArgument {
		t.Errorf("unknown template: got %v", err)
	}
}

func TestBuild_NoHitsPlaceholder(t *testing.T) {
	p, err := Build("q", nil, Concise, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if p.HitsUsed != 0 || !strings.Contains(p.Text, noResults) {
		t.Errorf("expected placeholder, got %q", p.Text)
	}
}

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		in      string
		want    Template
		wantErr bool
	}{
		{"", Diagnostic, false},
		{"diagnostic", Diagnostic, false},
		{" Concise ", Concise, false},
		{"verbose", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTemplate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTemplate(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseTemplate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
