package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/spiros/phemap/engine"
	"github.com/spiros/phemap/rows"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	definitions := rows.Slice(
		rows.Row{"490", "Bronchitis", "490-498.99", "", "1", "1", "9", "respiratory"},
		rows.Row{"495", "Asthma", "490-498.99", "", "1", "0", "9", "respiratory"},
		rows.Row{"495.1", "Asthma with exacerbation", "490-498.99", "", "1", "1", "9", "respiratory"},
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
	return New(eng, zerolog.Nop())
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestPhecodeInfoEndpoint(t *testing.T) {
	s := testServer(t)

	t.Run("known code", func(t *testing.T) {
		rec := get(t, s, "/api/v1/phecodes/495")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}

		var body struct {
			Phecode   string  `json:"phecode"`
			Phenotype string  `json:"phenotype"`
			Sex       *string `json:"sex"`
		}
		decode(t, rec, &body)

		if body.Phecode != "495" || body.Phenotype != "Asthma" {
			t.Errorf("body = %+v", body)
		}
		if body.Sex != nil {
			t.Errorf("sex = %q; want null", *body.Sex)
		}
	})

	t.Run("unknown code is 404", func(t *testing.T) {
		if rec := get(t, s, "/api/v1/phecodes/777.77"); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d; want 404", rec.Code)
		}
	})

	t.Run("unparseable code is 404", func(t *testing.T) {
		if rec := get(t, s, "/api/v1/phecodes/ABC123"); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d; want 404", rec.Code)
		}
	})
}

func TestExclusionsEndpoint(t *testing.T) {
	s := testServer(t)

	t.Run("known code", func(t *testing.T) {
		rec := get(t, s, "/api/v1/phecodes/495/exclusions")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}

		var body struct {
			Phecode    string   `json:"phecode"`
			Exclusions []string `json:"exclusions"`
		}
		decode(t, rec, &body)

		want := []string{"490", "495", "495.1"}
		if len(body.Exclusions) != len(want) {
			t.Fatalf("exclusions = %v; want %v", body.Exclusions, want)
		}
		for i := range want {
			if body.Exclusions[i] != want[i] {
				t.Errorf("exclusions[%d] = %q; want %q", i, body.Exclusions[i], want[i])
			}
		}
	})

	t.Run("malformed range is 422", func(t *testing.T) {
		if rec := get(t, s, "/api/v1/phecodes/600/exclusions"); rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d; want 422", rec.Code)
		}
	})
}

func TestICD10Endpoints(t *testing.T) {
	s := testServer(t)

	t.Run("icd10 for phecode", func(t *testing.T) {
		rec := get(t, s, "/api/v1/phecodes/495/icd10")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}

		var body struct {
			ICD10 []string `json:"icd10"`
		}
		decode(t, rec, &body)
		if len(body.ICD10) != 2 || body.ICD10[0] != "J45" {
			t.Errorf("icd10 = %v; want [J45 J45.1]", body.ICD10)
		}
	})

	t.Run("phecodes for icd10", func(t *testing.T) {
		rec := get(t, s, "/api/v1/icd10/J45.1/phecodes")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}

		var body struct {
			Phecodes []string `json:"phecodes"`
		}
		decode(t, rec, &body)
		if len(body.Phecodes) != 1 || body.Phecodes[0] != "495" {
			t.Errorf("phecodes = %v; want [495]", body.Phecodes)
		}
	})

	t.Run("undotted term restored", func(t *testing.T) {
		rec := get(t, s, "/api/v1/icd10/J451/phecodes?undotted=true")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}

		var body struct {
			ICD10 string `json:"icd10"`
		}
		decode(t, rec, &body)
		if body.ICD10 != "J45.1" {
			t.Errorf("icd10 = %q; want %q", body.ICD10, "J45.1")
		}
	})

	t.Run("unmapped term is 404", func(t *testing.T) {
		if rec := get(t, s, "/api/v1/icd10/Z99.9/phecodes"); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d; want 404", rec.Code)
		}
	})
}

func TestAllPhecodesEndpoint(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/api/v1/phecodes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var body []map[string]any
	decode(t, rec, &body)
	if len(body) != 4 {
		t.Errorf("records = %d; want 4", len(body))
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := testServer(t)

	// Generate some traffic first.
	get(t, s, "/api/v1/phecodes/495")
	get(t, s, "/api/v1/phecodes/777.77")

	rec := get(t, s, "/api/v1/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var body struct {
		LookupsTotal    uint64 `json:"lookups_total"`
		LookupsNotFound uint64 `json:"lookups_not_found"`
	}
	decode(t, rec, &body)
	if body.LookupsTotal != 2 || body.LookupsNotFound != 1 {
		t.Errorf("stats = %+v; want 2 total, 1 not found", body)
	}
}

func TestHealthz(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var body struct {
		Status   string `json:"status"`
		Phecodes int    `json:"phecodes"`
		Mappings int    `json:"mappings"`
	}
	decode(t, rec, &body)
	if body.Status != "ok" || body.Phecodes != 4 || body.Mappings != 2 {
		t.Errorf("healthz = %+v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := testServer(t)

	get(t, s, "/api/v1/phecodes/495")

	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "phemap_http_requests_total") {
		t.Error("request counter missing from /metrics output")
	}
}

func TestFHIREndpoints(t *testing.T) {
	s := testServer(t)

	t.Run("code system", func(t *testing.T) {
		rec := get(t, s, "/fhir/CodeSystem/phecode")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}

		var body struct {
			Url     string `json:"url"`
			Concept []struct {
				Code string `json:"code"`
			} `json:"concept"`
		}
		decode(t, rec, &body)
		if len(body.Concept) != 4 {
			t.Errorf("concepts = %d; want 4", len(body.Concept))
		}
	})

	t.Run("exclusion value set", func(t *testing.T) {
		rec := get(t, s, "/fhir/ValueSet/phecode-exclude/495")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
	})

	t.Run("icd10 value set", func(t *testing.T) {
		rec := get(t, s, "/fhir/ValueSet/phecode-icd10/495")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
	})

	t.Run("unknown code is 404", func(t *testing.T) {
		if rec := get(t, s, "/fhir/ValueSet/phecode-exclude/777.77"); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d; want 404", rec.Code)
		}
	})
}
