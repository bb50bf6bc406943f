package fhir

import (
	"context"
	"strings"
	"testing"

	"github.com/spiros/phemap"
	"github.com/spiros/phemap/engine"
	"github.com/spiros/phemap/rows"
)

func testEngine(t *testing.T) *engine.Phemap {
	t.Helper()

	definitions := rows.Slice(
		rows.Row{"490", "Bronchitis", "490-498.99", "", "1", "1", "9", "respiratory"},
		rows.Row{"495", "Asthma", "490-498.99", "", "1", "0", "9", "respiratory"},
		rows.Row{"495.1", "Asthma with exacerbation", "490-498.99", "", "1", "1", "9", "respiratory"},
		rows.Row{"499", "Respiratory failure", "499-519.99", "", "1", "1", "9", "respiratory"},
		rows.Row{"600", "Hyperplasia of prostate", "600", "Male", "1", "1", "12", "genitourinary"},
	)
	mapping := rows.Slice(
		rows.Row{"J45", "495", "490-498.99", ""},
		rows.Row{"J45.1", "495", "490-498.99", ""},
	)

	eng, err := engine.New(context.Background(), definitions, mapping)
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	return eng
}

func TestCodeSystem(t *testing.T) {
	eng := testEngine(t)

	cs, err := CodeSystem(context.Background(), eng)
	if err != nil {
		t.Fatalf("CodeSystem() error = %v", err)
	}

	if cs.Url == nil || *cs.Url != PhecodeSystem {
		t.Errorf("Url = %v; want %q", cs.Url, PhecodeSystem)
	}
	if len(cs.Concept) != eng.PhecodeCount() {
		t.Fatalf("concepts = %d; want %d", len(cs.Concept), eng.PhecodeCount())
	}

	first := cs.Concept[0]
	if first.Code == nil || *first.Code != "490" {
		t.Errorf("first concept code = %v; want %q", first.Code, "490")
	}
	if first.Display == nil || *first.Display != "Bronchitis" {
		t.Errorf("first concept display = %v; want %q", first.Display, "Bronchitis")
	}
}

func TestExclusionValueSet(t *testing.T) {
	eng := testEngine(t)

	t.Run("expansion matches the range", func(t *testing.T) {
		vs, err := ExclusionValueSet(context.Background(), eng, "495")
		if err != nil {
			t.Fatalf("ExclusionValueSet() error = %v", err)
		}

		if vs.Url == nil || !strings.Contains(*vs.Url, "exclude/495") {
			t.Errorf("Url = %v; want exclude/495 suffix", vs.Url)
		}

		want := []string{"490", "495", "495.1"}
		contains := vs.Expansion.Contains
		if len(contains) != len(want) {
			t.Fatalf("expansion size = %d; want %d", len(contains), len(want))
		}
		for i, entry := range contains {
			if entry.Code == nil || *entry.Code != want[i] {
				t.Errorf("entry %d code = %v; want %q", i, entry.Code, want[i])
			}
			if entry.System == nil || *entry.System != PhecodeSystem {
				t.Errorf("entry %d system = %v; want %q", i, entry.System, PhecodeSystem)
			}
			if entry.Display == nil {
				t.Errorf("entry %d missing display", i)
			}
		}
	})

	t.Run("unknown code propagates not-found", func(t *testing.T) {
		_, err := ExclusionValueSet(context.Background(), eng, "777.77")
		if !phemap.IsNotFound(err) {
			t.Errorf("error = %v; want NotFoundError", err)
		}
	})

	t.Run("malformed range propagates", func(t *testing.T) {
		_, err := ExclusionValueSet(context.Background(), eng, "600")
		if !phemap.IsMalformedInput(err) {
			t.Errorf("error = %v; want MalformedInputError", err)
		}
	})
}

func TestICD10ValueSet(t *testing.T) {
	eng := testEngine(t)

	t.Run("expansion lists mapped terms", func(t *testing.T) {
		vs, err := ICD10ValueSet(context.Background(), eng, "495")
		if err != nil {
			t.Fatalf("ICD10ValueSet() error = %v", err)
		}

		contains := vs.Expansion.Contains
		if len(contains) != 2 {
			t.Fatalf("expansion size = %d; want 2", len(contains))
		}
		if *contains[0].Code != "J45" || *contains[1].Code != "J45.1" {
			t.Errorf("terms = %q, %q; want J45, J45.1", *contains[0].Code, *contains[1].Code)
		}
		if *contains[0].System != ICD10System {
			t.Errorf("system = %q; want %q", *contains[0].System, ICD10System)
		}
	})

	t.Run("unmapped code propagates not-found", func(t *testing.T) {
		_, err := ICD10ValueSet(context.Background(), eng, "600")
		if !phemap.IsNotFound(err) {
			t.Errorf("error = %v; want NotFoundError", err)
		}
	})
}
