package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// ImportService handles import preview session operations.
type ImportService struct {
	c *Client
}

func importPath(uploadID, suffix string) string {
	return "/api/v1/imports/" + url.PathEscape(uploadID) + suffix
}

// Prepare parses the uploaded GEDCOM content and creates a preview session.
// An unparsable upload does not return an error; the result carries
// Success=false and the fatal issues.
func (s *ImportService) Prepare(ctx context.Context, uploadID string, req *PrepareImportRequest) (*PreparedImport, error) {
	var result PreparedImport
	err := s.c.post(ctx, importPath(uploadID, "/preview"), req, &result)
	if err == nil {
		return &result, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == 422 {
		if jsonErr := json.Unmarshal(apiErr.Body, &result); jsonErr == nil {
			return &result, nil
		}
	}

	return nil, err
}

// ListIndividuals returns one page of the session's parsed individuals.
func (s *ImportService) ListIndividuals(ctx context.Context, uploadID string, opts *ListIndividualsOptions) (*IndividualPage, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Page > 0 {
			params.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.SortBy != "" {
			params.Set("sort_by", opts.SortBy)
		}
		if opts.SortOrder != "" {
			params.Set("sort_order", opts.SortOrder)
		}
		if opts.Search != "" {
			params.Set("search", opts.Search)
		}
	}

	var page IndividualPage
	if err := s.c.get(ctx, importPath(uploadID, "/individuals"), params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetIndividual returns one parsed individual with resolved relatives.
func (s *ImportService) GetIndividual(ctx context.Context, uploadID, individualID string) (*IndividualDetail, error) {
	var detail IndividualDetail
	path := importPath(uploadID, "/individuals/"+url.PathEscape(individualID))
	if err := s.c.get(ctx, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Tree returns the session's flattened relationship tuples.
func (s *ImportService) Tree(ctx context.Context, uploadID string) ([]TreeRelationship, error) {
	var resp struct {
		Relationships []TreeRelationship `json:"relationships"`
	}
	if err := s.c.get(ctx, importPath(uploadID, "/tree"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Relationships, nil
}

// Statistics returns freshly computed statistics for the session.
func (s *ImportService) Statistics(ctx context.Context, uploadID string) (*Statistics, error) {
	var stats Statistics
	if err := s.c.get(ctx, importPath(uploadID, "/statistics"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SaveDecisions replaces the session's resolution decisions as one batch.
func (s *ImportService) SaveDecisions(ctx context.Context, uploadID string, decisions []ResolutionDecision) (*ImportSummary, error) {
	body := map[string]any{"decisions": decisions}

	var resp struct {
		Summary ImportSummary `json:"summary"`
	}
	if err := s.c.put(ctx, importPath(uploadID, "/decisions"), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Summary, nil
}

// GetDecisions returns the session's saved resolution decisions.
func (s *ImportService) GetDecisions(ctx context.Context, uploadID string) ([]ResolutionDecision, error) {
	var resp struct {
		Decisions []ResolutionDecision `json:"decisions"`
	}
	if err := s.c.get(ctx, importPath(uploadID, "/decisions"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Decisions, nil
}

// Discard drops the caller's preview session for the upload.
func (s *ImportService) Discard(ctx context.Context, uploadID string) error {
	var resp struct {
		Discarded bool `json:"discarded"`
	}
	if err := s.c.del(ctx, importPath(uploadID, ""), nil, &resp); err != nil {
		return err
	}
	if !resp.Discarded {
		return fmt.Errorf("rootline: discard not confirmed for upload %s", uploadID)
	}
	return nil
}
