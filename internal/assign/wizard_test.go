package assign

import (
	"errors"
	"testing"

	"github.com/gusgushz/baches/internal/model"
)

func fixtures() ([]model.UserProfile, []model.Vehicle, []model.Assignment) {
	workers := []model.UserProfile{
		{ID: "w1", Role: model.RoleWorker, Name: "Luis"},
		{ID: "w2", Role: model.RoleWorker, Name: "Ana"},
		{ID: "s1", Role: model.RoleSupervisor, Name: "Marta"},
	}
	vehicles := []model.Vehicle{
		{ID: "v1", LicensePlate: "ABC-1", Status: "active", AssignedWorkerID: "w1"},
		{ID: "v2", LicensePlate: "ABC-2", Status: "active"},
	}
	assignments := []model.Assignment{
		{ID: "a1", WorkerID: "w1", VehicleID: "v1", ProgressStatus: model.ProgressInProgress},
	}
	return workers, vehicles, assignments
}

func TestWorkerWithVehicleIsRejected(t *testing.T) {
	w := New(fixtures())
	w.SelectWorker("w1")
	err := w.Next()
	if !errors.Is(err, ErrWorkerHasVehicle) {
		t.Fatalf("expected ErrWorkerHasVehicle, got %v", err)
	}
	if w.Step() != StepSelectWorker {
		t.Fatalf("rejected transition must not advance, step = %d", w.Step())
	}
}

func TestFreeWorkerAdvancesToVehicleStep(t *testing.T) {
	w := New(fixtures())
	w.SelectWorker("w2")
	if err := w.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if w.Step() != StepSelectVehicle {
		t.Fatalf("step = %d, want selectVehicle", w.Step())
	}
}

func TestNonWorkerSkipsVehicleStep(t *testing.T) {
	w := New(fixtures())
	w.SelectWorker("s1")
	if err := w.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if w.Step() != StepConfirm {
		t.Fatalf("supervisor should skip to confirm, step = %d", w.Step())
	}
	in, err := w.BeginSubmit()
	if err != nil {
		t.Fatalf("begin submit: %v", err)
	}
	if in.VehicleID != "" {
		t.Fatalf("non-worker payload must not carry a vehicle, got %q", in.VehicleID)
	}
}

func TestTakenVehicleIsRejected(t *testing.T) {
	w := New(fixtures())
	w.SelectWorker("w2")
	if err := w.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	w.SelectVehicle("v1")
	if err := w.Next(); !errors.Is(err, ErrVehicleTaken) {
		t.Fatalf("expected ErrVehicleTaken, got %v", err)
	}
	w.SelectVehicle("v2")
	if err := w.Next(); err != nil {
		t.Fatalf("free vehicle should pass: %v", err)
	}
	if w.Step() != StepConfirm {
		t.Fatalf("step = %d, want confirm", w.Step())
	}
}

func TestVehicleTakenThroughAssignmentOnly(t *testing.T) {
	// Vehicle v3 is linked to w1 only through an active assignment record,
	// not via assignedWorkerId on the vehicle.
	workers := []model.UserProfile{
		{ID: "w1", Role: model.RoleWorker},
		{ID: "w2", Role: model.RoleWorker},
	}
	vehicles := []model.Vehicle{{ID: "v3", LicensePlate: "ZZZ-3", Status: "active"}}
	assignments := []model.Assignment{
		{ID: "a2", WorkerID: "w1", VehicleID: "v3", ProgressStatus: model.ProgressNotStarted},
	}
	w := New(workers, vehicles, assignments)
	w.SelectWorker("w1")
	if err := w.Next(); !errors.Is(err, ErrWorkerHasVehicle) {
		t.Fatalf("assignment-linked worker must be rejected, got %v", err)
	}

	w2 := New(workers, vehicles, assignments)
	w2.SelectWorker("w2")
	if err := w2.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	w2.SelectVehicle("v3")
	if err := w2.Next(); !errors.Is(err, ErrVehicleTaken) {
		t.Fatalf("assignment-linked vehicle must be rejected, got %v", err)
	}
}

func TestCompletedAssignmentDoesNotBlock(t *testing.T) {
	workers := []model.UserProfile{{ID: "w1", Role: model.RoleWorker}}
	vehicles := []model.Vehicle{{ID: "v1", LicensePlate: "ABC-1", Status: "active"}}
	assignments := []model.Assignment{
		{ID: "a1", WorkerID: "w1", VehicleID: "v1", ProgressStatus: model.ProgressCompleted},
	}
	w := New(workers, vehicles, assignments)
	w.SelectWorker("w1")
	if err := w.Next(); err != nil {
		t.Fatalf("completed assignment must not block, got %v", err)
	}
}

func TestPayloadDefaults(t *testing.T) {
	w := New(fixtures())
	w.SelectWorker("w2")
	if err := w.Next(); err != nil {
		t.Fatal(err)
	}
	w.SelectVehicle("v2")
	if err := w.Next(); err != nil {
		t.Fatal(err)
	}
	w.SetNotes("  revisar calle 60  ")
	in, err := w.BeginSubmit()
	if err != nil {
		t.Fatalf("begin submit: %v", err)
	}
	if in.WorkerID != "w2" || in.VehicleID != "v2" {
		t.Fatalf("unexpected payload: %+v", in)
	}
	if in.ProgressStatus != model.ProgressNotStarted {
		t.Fatalf("progressStatus = %q, want not_started", in.ProgressStatus)
	}
	if in.Priority != model.PriorityMedium {
		t.Fatalf("priority = %q, want medium", in.Priority)
	}
	if in.Notes != "revisar calle 60" {
		t.Fatalf("notes = %q", in.Notes)
	}
	if w.Step() != StepSubmitting {
		t.Fatalf("step = %d, want submitting", w.Step())
	}
}

func TestFailSubmitReturnsToConfirm(t *testing.T) {
	w := New(fixtures())
	w.SelectWorker("s1")
	if err := w.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := w.BeginSubmit(); err != nil {
		t.Fatal(err)
	}
	if err := w.FailSubmit(); err != nil {
		t.Fatalf("fail submit: %v", err)
	}
	if w.Step() != StepConfirm {
		t.Fatalf("step = %d, want confirm", w.Step())
	}
}

func TestBackAndCancel(t *testing.T) {
	w := New(fixtures())
	w.SelectWorker("w2")
	if err := w.Next(); err != nil {
		t.Fatal(err)
	}
	w.Back()
	if w.Step() != StepSelectWorker {
		t.Fatalf("back should return to selectWorker, step = %d", w.Step())
	}
	if w.Worker() == nil {
		t.Fatal("back must keep the worker selection")
	}
	w.Cancel()
	if w.Worker() != nil || w.Vehicle() != nil || w.Step() != StepSelectWorker {
		t.Fatal("cancel must discard all selection state")
	}
}
