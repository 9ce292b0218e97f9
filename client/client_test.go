package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := routes[r.Method+" "+r.URL.Path]; ok {
			handler(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL, WithAPIKey("test-key"))
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "0.3.0", PreviewSessions: 2})
		},
	})
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("got status %q, want ok", resp.Status)
	}
	if resp.PreviewSessions != 2 {
		t.Errorf("got %d preview sessions, want 2", resp.PreviewSessions)
	}
}

func TestImportPrepare(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/imports/up-1/preview": func(w http.ResponseWriter, r *http.Request) {
			var req PrepareImportRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			if req.Content == "" {
				jsonResponse(w, 400, map[string]string{"code": "validation_error", "message": "content required"})
				return
			}
			jsonResponse(w, 201, PreparedImport{
				Success: true,
				Version: "5.5.1",
				Summary: ImportSummary{Total: 3, New: 2, Duplicates: 1},
			})
		},
	})

	result, err := c.Imports.Prepare(context.Background(), "up-1", &PrepareImportRequest{Content: "0 HEAD\n0 TRLR\n"})
	if err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	if !result.Success || result.Summary.Total != 3 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestImportPrepare_UnparsableUpload(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/imports/up-2/preview": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 422, PreparedImport{
				Success: false,
				Issues:  []ParseIssue{{Severity: "error", Code: "unsupported_version", Message: "GEDCOM 4.0 is not supported"}},
			})
		},
	})

	result, err := c.Imports.Prepare(context.Background(), "up-2", &PrepareImportRequest{Content: "0 HEAD\n"})
	if err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	if result.Success {
		t.Error("expected Success=false")
	}
	if len(result.Issues) != 1 || result.Issues[0].Code != "unsupported_version" {
		t.Errorf("unexpected issues: %+v", result.Issues)
	}
}

func TestImportSessionReads(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/imports/up-1/individuals": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("search") != "smith" {
				t.Errorf("search param: got %q", r.URL.Query().Get("search"))
			}
			jsonResponse(w, 200, IndividualPage{
				Individuals: []PreviewIndividual{{Individual: Individual{ID: "I1", Surname: "Smith"}, Status: "new"}},
				PageInfo:    PageInfo{Page: 1, Limit: 50, Total: 1, TotalPages: 1},
			})
		},
		"GET /api/v1/imports/up-1/individuals/I1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, IndividualDetail{
				PreviewIndividual: PreviewIndividual{Individual: Individual{ID: "I1"}, Status: "new"},
				Parents:           []RelativeRef{{ID: "I2", Role: "father"}},
			})
		},
		"GET /api/v1/imports/up-1/tree": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{
				"relationships": []TreeRelationship{{Type: "spouse", FromID: "I2", ToID: "I3", FamilyID: "F1"}},
			})
		},
		"GET /api/v1/imports/up-1/statistics": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Statistics{IndividualCount: 3, FamilyCount: 1})
		},
	})

	ctx := context.Background()

	page, err := c.Imports.ListIndividuals(ctx, "up-1", &ListIndividualsOptions{Search: "smith"})
	if err != nil {
		t.Fatalf("ListIndividuals error: %v", err)
	}
	if len(page.Individuals) != 1 || page.Individuals[0].Status != "new" {
		t.Errorf("unexpected page: %+v", page)
	}

	detail, err := c.Imports.GetIndividual(ctx, "up-1", "I1")
	if err != nil {
		t.Fatalf("GetIndividual error: %v", err)
	}
	if len(detail.Parents) != 1 || detail.Parents[0].Role != "father" {
		t.Errorf("unexpected detail: %+v", detail)
	}

	tree, err := c.Imports.Tree(ctx, "up-1")
	if err != nil || len(tree) != 1 {
		t.Fatalf("Tree: err=%v, len=%d", err, len(tree))
	}

	stats, err := c.Imports.Statistics(ctx, "up-1")
	if err != nil || stats.IndividualCount != 3 {
		t.Fatalf("Statistics: err=%v, stats=%+v", err, stats)
	}
}

func TestImportDecisions(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"PUT /api/v1/imports/up-1/decisions": func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Decisions []ResolutionDecision `json:"decisions"`
			}
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			if len(req.Decisions) != 1 {
				t.Errorf("got %d decisions", len(req.Decisions))
			}
			jsonResponse(w, 200, map[string]any{"summary": ImportSummary{Total: 2, Existing: 1}})
		},
		"GET /api/v1/imports/up-1/decisions": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{
				"decisions": []ResolutionDecision{{IndividualID: "I1", Resolution: "skip"}},
			})
		},
		"DELETE /api/v1/imports/up-1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]bool{"discarded": true})
		},
	})

	ctx := context.Background()

	summary, err := c.Imports.SaveDecisions(ctx, "up-1", []ResolutionDecision{{IndividualID: "I1", Resolution: "skip"}})
	if err != nil {
		t.Fatalf("SaveDecisions error: %v", err)
	}
	if summary.Existing != 1 {
		t.Errorf("Existing = %d, want 1", summary.Existing)
	}

	decisions, err := c.Imports.GetDecisions(ctx, "up-1")
	if err != nil || len(decisions) != 1 {
		t.Fatalf("GetDecisions: err=%v, len=%d", err, len(decisions))
	}

	if err := c.Imports.Discard(ctx, "up-1"); err != nil {
		t.Fatalf("Discard error: %v", err)
	}
}

func TestMerge(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/merge/preview": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, MergePreview{
				Conflicts:  []MergeConflict{{Kind: "mother", Message: "target already has a mother"}},
				CanExecute: false,
			})
		},
		"POST /api/v1/merge": func(w http.ResponseWriter, r *http.Request) {
			var req MergeRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			jsonResponse(w, 200, MergeResult{
				SourcePersonID: req.SourcePersonID,
				TargetPersonID: req.TargetPersonID,
				Transferred:    3,
				Deduplicated:   1,
			})
		},
	})

	ctx := context.Background()

	preview, err := c.Merge.Preview(ctx, &MergeRequest{SourcePersonID: "a", TargetPersonID: "b"})
	if err != nil {
		t.Fatalf("Preview error: %v", err)
	}
	if preview.CanExecute || len(preview.Conflicts) != 1 {
		t.Errorf("unexpected preview: %+v", preview)
	}

	result, err := c.Merge.Execute(ctx, &MergeRequest{SourcePersonID: "a", TargetPersonID: "b"})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.Transferred != 3 || result.Deduplicated != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestPersons(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/persons/p1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Person{ID: "p1", GivenName: "Anna"})
		},
		"GET /api/v1/persons/p1/relationships": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{
				"relationships": []Relationship{{PersonID: "p1", RelativeID: "p2", Kind: "mother"}},
			})
		},
	})

	ctx := context.Background()

	p, err := c.Persons.Get(ctx, "p1")
	if err != nil || p.GivenName != "Anna" {
		t.Fatalf("Get: err=%v, person=%+v", err, p)
	}

	rels, err := c.Persons.Relationships(ctx, "p1")
	if err != nil || len(rels) != 1 {
		t.Fatalf("Relationships: err=%v, len=%d", err, len(rels))
	}
}

func TestAudit(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/audit": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("action") != "merge.execute" {
				t.Errorf("action param: got %q", r.URL.Query().Get("action"))
			}
			jsonResponse(w, 200, map[string]any{
				"data":     []AuditEntry{{ID: 1, Action: "merge.execute"}},
				"has_more": false,
			})
		},
	})

	entries, hasMore, err := c.Audit.Query(context.Background(), &AuditQueryOptions{Action: "merge.execute"})
	if err != nil || len(entries) != 1 || hasMore {
		t.Fatalf("Query: err=%v, len=%d", err, len(entries))
	}
}

func TestAPIError(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/persons/missing": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]string{"code": "not_found", "message": "person not found"})
		},
		"POST /api/v1/merge": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 409, map[string]string{"code": "conflict", "message": "target already has a mother"})
		},
	})

	ctx := context.Background()

	_, err := c.Persons.Get(ctx, "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("expected not found, got: %v", err)
	}

	_, err = c.Merge.Execute(ctx, &MergeRequest{SourcePersonID: "a", TargetPersonID: "b"})
	if !IsConflict(err) {
		t.Errorf("expected conflict, got: %v", err)
	}
}

func TestAuthHeader(t *testing.T) {
	var gotAuth string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			jsonResponse(w, 200, HealthResponse{Status: "ok"})
		},
	})

	c.Health(context.Background()) //nolint:errcheck
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header: got %q, want %q", gotAuth, "Bearer test-key")
	}
}
