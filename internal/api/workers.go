package api

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/gusgushz/baches/internal/model"
	"github.com/gusgushz/baches/internal/normalize"
)

// WorkerInput is the creation/update payload for a worker.
type WorkerInput struct {
	Name              string `json:"name"`
	SecondName        string `json:"secondName,omitempty"`
	Lastname          string `json:"lastname"`
	SecondLastname    string `json:"secondLastname,omitempty"`
	Role              string `json:"role"`
	Email             string `json:"email"`
	Password          string `json:"password,omitempty"`
	PhoneNumber       string `json:"phoneNumber,omitempty"`
	FechaNacimiento   string `json:"fechaNacimiento,omitempty"`
	Status            string `json:"status,omitempty"`
	PhotoURL          string `json:"photoUrl,omitempty"`
	AssignedVehicleID string `json:"assignedVehicleId,omitempty"`
}

// Validate runs the client-side checks that block a submit before any
// network call: required fields and password complexity.
func (in WorkerInput) Validate(requirePassword bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("Nombre requerido")
	}
	if strings.TrimSpace(in.Lastname) == "" {
		return errors.New("Apellido requerido")
	}
	if strings.TrimSpace(in.Email) == "" {
		return errors.New("Email requerido")
	}
	if in.Password == "" {
		if requirePassword {
			return errors.New("Contraseña requerida")
		}
		return nil
	}
	return ValidatePassword(in.Password)
}

// ValidatePassword enforces the backend's complexity rule locally: at least
// 8 characters with upper, lower, digit and symbol.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("La contraseña debe tener al menos 8 caracteres")
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return errors.New("La contraseña debe incluir mayúscula, minúscula, número y símbolo")
	}
	return nil
}

// Workers lists all workers, normalized.
func (c *Client) Workers(ctx context.Context) ([]model.UserProfile, error) {
	body, err := c.do(ctx, "GET", c.endpoint("/workers"), nil, true)
	if err != nil {
		return nil, err
	}
	return normalize.Workers(normalize.DecodeList(body, "workers", "users")), nil
}

// CreateWorker registers a new worker.
func (c *Client) CreateWorker(ctx context.Context, in WorkerInput) error {
	if err := in.Validate(true); err != nil {
		return err
	}
	_, err := c.do(ctx, "POST", c.endpoint("/workers"), in, true)
	return err
}

// UpdateWorker edits an existing worker in place.
func (c *Client) UpdateWorker(ctx context.Context, id string, in WorkerInput) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("api: worker id is required")
	}
	if err := in.Validate(false); err != nil {
		return err
	}
	_, err := c.do(ctx, "PUT", c.endpoint("/workers/"+id), in, true)
	return err
}

// DeleteWorker removes a worker. The backend refuses workers holding an
// active assignment; its message is surfaced verbatim.
func (c *Client) DeleteWorker(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("api: worker id is required")
	}
	_, err := c.do(ctx, "DELETE", c.endpoint("/workers/"+id), nil, true)
	return err
}
