// Package assign implements the multi-step assignment creation flow as a
// state machine independent of the TUI that drives it.
//
// The one-vehicle-per-worker invariant is enforced here, against the
// prefetched worker/vehicle/assignment lists, before any network request is
// issued. The backend does not validate it; two clients racing can still
// create a conflict, which is accepted at this system's scale.
package assign

import (
	"errors"
	"strings"

	"github.com/gusgushz/baches/internal/api"
	"github.com/gusgushz/baches/internal/model"
)

// Step identifies the wizard screen currently shown.
type Step int

const (
	StepSelectWorker Step = iota
	StepSelectVehicle
	StepConfirm
	StepSubmitting
)

// User-facing rejection messages. The TUI renders these verbatim.
var (
	ErrNoWorkerSelected  = errors.New("Selecciona un trabajador")
	ErrNoVehicleSelected = errors.New("Selecciona un vehículo")
	ErrWorkerHasVehicle  = errors.New("El trabajador ya tiene un vehículo asignado")
	ErrVehicleTaken      = errors.New("El vehículo ya está asignado a otro trabajador")
	ErrNotSubmitting     = errors.New("assign: wizard is not submitting")
)

// Wizard walks selectWorker → selectVehicle → confirm → submitting. Back
// navigation and cancellation are allowed from any step before submit.
type Wizard struct {
	step        Step
	workers     []model.UserProfile
	vehicles    []model.Vehicle
	assignments []model.Assignment

	worker  *model.UserProfile
	vehicle *model.Vehicle
	notes   string
}

// New creates a wizard over the prefetched lists the invariants are checked
// against.
func New(workers []model.UserProfile, vehicles []model.Vehicle, assignments []model.Assignment) *Wizard {
	return &Wizard{
		step:        StepSelectWorker,
		workers:     workers,
		vehicles:    vehicles,
		assignments: assignments,
	}
}

// Step returns the current step.
func (w *Wizard) Step() Step { return w.step }

// Worker returns the selected worker, nil before selection.
func (w *Wizard) Worker() *model.UserProfile { return w.worker }

// Vehicle returns the selected vehicle, nil before selection.
func (w *Wizard) Vehicle() *model.Vehicle { return w.vehicle }

// SetNotes records free-form notes attached to the created assignment.
func (w *Wizard) SetNotes(notes string) { w.notes = strings.TrimSpace(notes) }

// SelectWorker records the worker choice while on the selectWorker step.
func (w *Wizard) SelectWorker(id string) {
	if w.step != StepSelectWorker {
		return
	}
	for i := range w.workers {
		if w.workers[i].ID == id {
			w.worker = &w.workers[i]
			w.vehicle = nil
			return
		}
	}
}

// SelectVehicle records the vehicle choice while on the selectVehicle step.
func (w *Wizard) SelectVehicle(id string) {
	if w.step != StepSelectVehicle {
		return
	}
	for i := range w.vehicles {
		if w.vehicles[i].ID == id {
			w.vehicle = &w.vehicles[i]
			return
		}
	}
}

// Next advances the wizard, enforcing the invariants:
//   - selectWorker: a worker must be selected; role worker with an existing
//     vehicle is rejected; non-worker roles skip straight to confirm since
//     they cannot hold vehicle assignments.
//   - selectVehicle: a vehicle must be selected and free.
func (w *Wizard) Next() error {
	switch w.step {
	case StepSelectWorker:
		if w.worker == nil {
			return ErrNoWorkerSelected
		}
		if w.worker.Role != model.RoleWorker {
			w.vehicle = nil
			w.step = StepConfirm
			return nil
		}
		if w.VehicleOf(w.worker.ID) != nil {
			return ErrWorkerHasVehicle
		}
		w.step = StepSelectVehicle
		return nil
	case StepSelectVehicle:
		if w.vehicle == nil {
			return ErrNoVehicleSelected
		}
		if holder := w.HolderOf(w.vehicle.ID); holder != "" && (w.worker == nil || holder != w.worker.ID) {
			return ErrVehicleTaken
		}
		w.step = StepConfirm
		return nil
	default:
		return nil
	}
}

// Back returns to the previous step, keeping selections.
func (w *Wizard) Back() {
	switch w.step {
	case StepSelectVehicle:
		w.step = StepSelectWorker
	case StepConfirm:
		if w.worker != nil && w.worker.Role == model.RoleWorker {
			w.step = StepSelectVehicle
		} else {
			w.step = StepSelectWorker
		}
	}
}

// Cancel discards all selection state and rewinds to the first step.
func (w *Wizard) Cancel() {
	w.step = StepSelectWorker
	w.worker = nil
	w.vehicle = nil
	w.notes = ""
}

// BeginSubmit moves confirm → submitting and builds the creation payload.
func (w *Wizard) BeginSubmit() (api.AssignmentInput, error) {
	if w.step != StepConfirm || w.worker == nil {
		return api.AssignmentInput{}, ErrNoWorkerSelected
	}
	w.step = StepSubmitting
	in := api.AssignmentInput{
		WorkerID:       w.worker.ID,
		Notes:          w.notes,
		ProgressStatus: model.ProgressNotStarted,
		Priority:       model.PriorityMedium,
	}
	if w.vehicle != nil {
		in.VehicleID = w.vehicle.ID
	}
	return in, nil
}

// FailSubmit returns to confirm after a failed POST so the user can retry.
func (w *Wizard) FailSubmit() error {
	if w.step != StepSubmitting {
		return ErrNotSubmitting
	}
	w.step = StepConfirm
	return nil
}

// VehicleOf finds the vehicle currently held by a worker: either a vehicle
// that references the worker directly or an active assignment linking them.
func (w *Wizard) VehicleOf(workerID string) *model.Vehicle {
	if workerID == "" {
		return nil
	}
	for i := range w.vehicles {
		if w.vehicles[i].AssignedWorkerID == workerID {
			return &w.vehicles[i]
		}
	}
	for _, a := range w.assignments {
		if a.WorkerID != workerID || a.VehicleID == "" || a.ProgressStatus == model.ProgressCompleted {
			continue
		}
		for i := range w.vehicles {
			if w.vehicles[i].ID == a.VehicleID {
				return &w.vehicles[i]
			}
		}
	}
	return nil
}

// HolderOf returns the id of the worker holding a vehicle, empty when free.
func (w *Wizard) HolderOf(vehicleID string) string {
	if vehicleID == "" {
		return ""
	}
	for i := range w.vehicles {
		if w.vehicles[i].ID == vehicleID && w.vehicles[i].AssignedWorkerID != "" {
			return w.vehicles[i].AssignedWorkerID
		}
	}
	for _, a := range w.assignments {
		if a.VehicleID == vehicleID && a.WorkerID != "" && a.ProgressStatus != model.ProgressCompleted {
			return a.WorkerID
		}
	}
	return ""
}
