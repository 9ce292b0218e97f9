package client

import (
	"context"
	"net/url"
)

// PersonService handles durable person reads.
type PersonService struct {
	c *Client
}

// Get returns a single person by ID.
func (s *PersonService) Get(ctx context.Context, id string) (*Person, error) {
	var p Person
	if err := s.c.get(ctx, "/api/v1/persons/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Relationships returns the person's directed relationship edges.
func (s *PersonService) Relationships(ctx context.Context, id string) ([]Relationship, error) {
	var resp struct {
		Relationships []Relationship `json:"relationships"`
	}
	path := "/api/v1/persons/" + url.PathEscape(id) + "/relationships"
	if err := s.c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Relationships, nil
}
