package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gusgushz/baches/internal/model"
	"github.com/gusgushz/baches/internal/normalize"
)

// ReportInput is the in-place edit payload for a report.
type ReportInput struct {
	Description string         `json:"description,omitempty"`
	Severity    model.Severity `json:"severity,omitempty"`
	Status      string         `json:"status,omitempty"`
	Comments    string         `json:"comments,omitempty"`
}

// Reports pages through GET /reports with ?limit=&skip=.
func (c *Client) Reports(ctx context.Context, limit, skip int) ([]model.Report, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	url := fmt.Sprintf("%s?limit=%d&skip=%d", c.endpoint("/reports"), limit, skip)
	body, err := c.do(ctx, "GET", url, nil, true)
	if err != nil {
		return nil, err
	}
	return normalize.Reports(normalize.DecodeList(body, "reports")), nil
}

// UpdateReport edits a report in place.
func (c *Client) UpdateReport(ctx context.Context, id string, in ReportInput) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("api: report id is required")
	}
	_, err := c.do(ctx, "PUT", c.endpoint("/reports/"+id), in, true)
	return err
}

// DeleteReport removes a report. The supervisor restriction is enforced by
// the screens; the backend also rejects it server-side.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("api: report id is required")
	}
	_, err := c.do(ctx, "DELETE", c.endpoint("/reports/"+id), nil, true)
	return err
}
