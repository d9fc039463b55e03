package api

import (
	"context"
	"errors"
	"strings"

	"github.com/gusgushz/baches/internal/model"
	"github.com/gusgushz/baches/internal/normalize"
)

// AssignmentInput is the creation payload built by the assignment wizard.
type AssignmentInput struct {
	WorkerID       string               `json:"workerId"`
	VehicleID      string               `json:"vehicleId,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	ProgressStatus model.ProgressStatus `json:"progressStatus"`
	Priority       model.Priority       `json:"priority"`
}

// Assignments lists every assignment (admin/supervisor view).
func (c *Client) Assignments(ctx context.Context) ([]model.Assignment, error) {
	body, err := c.do(ctx, "GET", c.endpoint("/assignments"), nil, true)
	if err != nil {
		return nil, err
	}
	return normalize.Assignments(normalize.DecodeList(body, "assignments")), nil
}

// MyAssignments lists the assignments of the logged-in worker.
func (c *Client) MyAssignments(ctx context.Context) ([]model.Assignment, error) {
	body, err := c.do(ctx, "GET", c.endpoint("/assignments/my"), nil, true)
	if err != nil {
		return nil, err
	}
	return normalize.Assignments(normalize.DecodeList(body, "assignments")), nil
}

// CreateAssignment posts a new assignment.
func (c *Client) CreateAssignment(ctx context.Context, in AssignmentInput) error {
	if strings.TrimSpace(in.WorkerID) == "" {
		return errors.New("api: assignment requires a worker")
	}
	if in.ProgressStatus == "" {
		in.ProgressStatus = model.ProgressNotStarted
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	_, err := c.do(ctx, "POST", c.endpoint("/assignments"), in, true)
	return err
}

// UpdateAssignmentStatus moves an assignment through its lifecycle.
func (c *Client) UpdateAssignmentStatus(ctx context.Context, id string, status model.ProgressStatus) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("api: assignment id is required")
	}
	_, err := c.do(ctx, "PUT", c.endpoint("/assignments/"+id), map[string]any{
		"progressStatus": status,
	}, true)
	return err
}

// DeleteAssignment removes an assignment.
func (c *Client) DeleteAssignment(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("api: assignment id is required")
	}
	_, err := c.do(ctx, "DELETE", c.endpoint("/assignments/"+id), nil, true)
	return err
}
