package api

import (
	"context"
	"errors"
	"strings"

	"github.com/gusgushz/baches/internal/model"
	"github.com/gusgushz/baches/internal/normalize"
)

// VehicleInput is the creation/update payload for a vehicle.
type VehicleInput struct {
	LicensePlate     string `json:"licensePlate"`
	Model            string `json:"model,omitempty"`
	Year             int    `json:"year,omitempty"`
	Color            string `json:"color,omitempty"`
	Corporation      string `json:"corporation,omitempty"`
	Status           string `json:"status,omitempty"`
	AssignedWorkerID string `json:"assignedWorkerId,omitempty"`
}

// Validate blocks a submit with no plate before any network call.
func (in VehicleInput) Validate() error {
	if strings.TrimSpace(in.LicensePlate) == "" {
		return errors.New("Placa requerida")
	}
	return nil
}

// Vehicles lists all vehicles, normalized.
func (c *Client) Vehicles(ctx context.Context) ([]model.Vehicle, error) {
	body, err := c.do(ctx, "GET", c.endpoint("/vehicles"), nil, true)
	if err != nil {
		return nil, err
	}
	return normalize.Vehicles(normalize.DecodeList(body, "vehicles")), nil
}

// CreateVehicle registers a new vehicle.
func (c *Client) CreateVehicle(ctx context.Context, in VehicleInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := c.do(ctx, "POST", c.endpoint("/vehicles"), in, true)
	return err
}

// UpdateVehicle edits an existing vehicle in place.
func (c *Client) UpdateVehicle(ctx context.Context, id string, in VehicleInput) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("api: vehicle id is required")
	}
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := c.do(ctx, "PUT", c.endpoint("/vehicles/"+id), in, true)
	return err
}

// DeleteVehicle removes a vehicle.
func (c *Client) DeleteVehicle(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("api: vehicle id is required")
	}
	_, err := c.do(ctx, "DELETE", c.endpoint("/vehicles/"+id), nil, true)
	return err
}
