package client

import "context"

// MergeService handles person merge operations.
type MergeService struct {
	c *Client
}

// Preview returns the read-only safety report for a proposed merge.
func (s *MergeService) Preview(ctx context.Context, req *MergeRequest) (*MergePreview, error) {
	var preview MergePreview
	if err := s.c.post(ctx, "/api/v1/merge/preview", req, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// Execute merges the source person into the target. The merge is atomic:
// a conflicting parent slot rolls back every transferred relationship.
func (s *MergeService) Execute(ctx context.Context, req *MergeRequest) (*MergeResult, error) {
	var result MergeResult
	if err := s.c.post(ctx, "/api/v1/merge", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
