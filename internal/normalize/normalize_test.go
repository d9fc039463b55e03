package normalize

import (
	"testing"

	"github.com/gusgushz/baches/internal/model"
)

func TestListEnvelopeVariants(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":"1"},{"id":"2"}]`, 2},
		{"data key", `{"data":[{"id":"1"}]}`, 1},
		{"entity key", `{"vehicles":[{"id":"1"}]}`, 1},
		{"arbitrary key", `{"whatever":[{"id":"1"},{"id":"2"},{"id":"3"}]}`, 3},
		{"null", `null`, 0},
		{"empty object", `{}`, 0},
		{"scalar", `42`, 0},
		{"malformed", `{"data": [`, 0},
		{"non-object elements", `[1, "x", {"id":"1"}]`, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := DecodeList([]byte(tc.body), "vehicles")
			if len(items) != tc.want {
				t.Fatalf("DecodeList(%s) = %d items, want %d", tc.body, len(items), tc.want)
			}
		})
	}
}

func TestListPrefersEntityKeyOverArbitrary(t *testing.T) {
	body := `{"noise":[{"id":"bad"}],"data":[{"id":"good"}]}`
	items := DecodeList([]byte(body), "workers")
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if got := items[0]["id"]; got != "good" {
		t.Fatalf("expected data key to win, got id=%v", got)
	}
}

func TestVehicleFallbackParsing(t *testing.T) {
	items := DecodeList([]byte(`{"vehicles":[{"_id":"v1","plate":"ABC-123"}]}`), "vehicles")
	vehicles := Vehicles(items)
	if len(vehicles) != 1 {
		t.Fatalf("expected 1 vehicle, got %d", len(vehicles))
	}
	v := vehicles[0]
	if v.ID != "v1" {
		t.Fatalf("id = %q, want v1", v.ID)
	}
	if v.LicensePlate != "ABC-123" {
		t.Fatalf("licensePlate = %q, want ABC-123", v.LicensePlate)
	}
	if v.Status != "unknown" {
		t.Fatalf("status = %q, want unknown", v.Status)
	}
}

func TestVehicleEmbeddedWorkerReference(t *testing.T) {
	items := DecodeList([]byte(`[{"id":"v2","licensePlate":"XYZ-9","assignedWorker":{"_id":"w7","name":"Ana"}}]`))
	v := Vehicles(items)[0]
	if v.AssignedWorkerID != "w7" {
		t.Fatalf("assignedWorkerId = %q, want w7", v.AssignedWorkerID)
	}
}

func TestWorkerAliasesAndPlaceholders(t *testing.T) {
	items := DecodeList([]byte(`{"workers":[
		{"_id":"w1","fullname":"Juan","last_name":"Pech","phone":"9991234567","position":"Worker"},
		{}
	]}`), "workers")
	workers := Workers(items)
	if len(workers) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(workers))
	}
	w := workers[0]
	if w.ID != "w1" || w.Name != "Juan" || w.Lastname != "Pech" {
		t.Fatalf("unexpected worker: %+v", w)
	}
	if w.PhoneNumber != "9991234567" {
		t.Fatalf("phoneNumber = %q", w.PhoneNumber)
	}
	if w.Role != model.RoleWorker {
		t.Fatalf("role = %q, want worker", w.Role)
	}
	empty := workers[1]
	if empty.Name != PlaceholderName {
		t.Fatalf("empty worker name = %q, want %q", empty.Name, PlaceholderName)
	}
	if empty.Role != model.RoleWorker {
		t.Fatalf("empty worker role = %q, want worker", empty.Role)
	}
}

func TestWorkerNumericPhoneSurvives(t *testing.T) {
	items := DecodeList([]byte(`[{"id":"w1","name":"Ana","phoneNumber":9991234567}]`))
	w := Workers(items)[0]
	if w.PhoneNumber != "9991234567" {
		t.Fatalf("numeric phone = %q, want 9991234567", w.PhoneNumber)
	}
}

func TestSeveritySpellings(t *testing.T) {
	cases := map[string]model.Severity{
		"alta":      model.SeverityHigh,
		"HIGH":      model.SeverityHigh,
		"h":         model.SeverityHigh,
		"alto":      model.SeverityHigh,
		"muy alta":  model.SeverityHigh,
		"med":       model.SeverityMedium,
		"media":     model.SeverityMedium,
		"baja":      model.SeverityLow,
		"low":       model.SeverityLow,
		"b":         model.SeverityLow,
		"":          model.SeverityMedium,
		"garbage":   model.SeverityMedium,
		"severidad": model.SeverityMedium,
	}
	for raw, want := range cases {
		if got := Severity(raw); got != want {
			t.Fatalf("Severity(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestSeverityIdempotent(t *testing.T) {
	for _, raw := range []string{"alta", "HIGH", "med", "baja", "", "nonsense"} {
		once := Severity(raw)
		twice := Severity(string(once))
		if once != twice {
			t.Fatalf("Severity not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestProgressLegacyValues(t *testing.T) {
	cases := map[string]model.ProgressStatus{
		"pending":     model.ProgressNotStarted,
		"done":        model.ProgressCompleted,
		"in_progress": model.ProgressInProgress,
		"paused":      model.ProgressOnHold,
		"":            model.ProgressNotStarted,
		"???":         model.ProgressNotStarted,
	}
	for raw, want := range cases {
		if got := Progress(raw); got != want {
			t.Fatalf("Progress(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestAssignmentEmbeddedShapes(t *testing.T) {
	body := `{"assignments":[
		{"_id":"a1","assignedWorker":{"_id":"w1","name":"Luis","lastname":"Canul"},"vehicle":{"_id":"v1","plate":"ABC-1"},"status":"pending"},
		{"id":"a2","workerId":"w2","progressStatus":"completed","priority":"high"}
	]}`
	items := DecodeList([]byte(body), "assignments")
	asgs := Assignments(items)
	if len(asgs) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(asgs))
	}
	a := asgs[0]
	if a.WorkerID != "w1" || a.WorkerName != "Luis Canul" {
		t.Fatalf("embedded worker not resolved: %+v", a)
	}
	if a.VehicleID != "v1" || a.VehiclePlate != "ABC-1" {
		t.Fatalf("embedded vehicle not resolved: %+v", a)
	}
	if a.ProgressStatus != model.ProgressNotStarted {
		t.Fatalf("legacy pending should map to not_started, got %q", a.ProgressStatus)
	}
	if a.Priority != model.PriorityMedium {
		t.Fatalf("missing priority should default to medium, got %q", a.Priority)
	}
	b := asgs[1]
	if b.WorkerID != "w2" || b.ProgressStatus != model.ProgressCompleted || b.Priority != model.PriorityHigh {
		t.Fatalf("unexpected second assignment: %+v", b)
	}
}

func TestReportFullShape(t *testing.T) {
	body := `[{
		"_id":"r1","description":"bache grande","severity":"Alta","status":"pending",
		"street":"Calle 60","city":"Mérida","postal_code":"97000",
		"location":{"lat":20.97,"lng":-89.62},
		"images":["a.jpg","b.jpg"],
		"reportedByVehicle":{"_id":"v1","plate":"ABC-1"},
		"reportedByWorker":{"_id":"w1","nombre":"Mario","apellido":"Uc"},
		"createdAt":"2025-05-01T10:00:00Z"
	}]`
	reports := Reports(DecodeList([]byte(body), "reports"))
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	r := reports[0]
	if r.Severity != model.SeverityHigh {
		t.Fatalf("severity = %q, want high", r.Severity)
	}
	if r.Status != string(model.ProgressNotStarted) {
		t.Fatalf("status = %q, want not_started", r.Status)
	}
	if r.Location == nil || r.Location.Lat != 20.97 {
		t.Fatalf("location not parsed: %+v", r.Location)
	}
	if len(r.Images) != 2 {
		t.Fatalf("images = %v", r.Images)
	}
	if r.ReportedByVehicle == nil || r.ReportedByVehicle.LicensePlate != "ABC-1" {
		t.Fatalf("vehicle ref not parsed: %+v", r.ReportedByVehicle)
	}
	if r.ReportedByWorker == nil || r.ReportedByWorker.Name != "Mario" {
		t.Fatalf("worker ref not parsed: %+v", r.ReportedByWorker)
	}
	if r.CreatedTime().IsZero() {
		t.Fatalf("createdAt should parse")
	}
}

func TestReportTotalFunctionOnGarbage(t *testing.T) {
	bodies := []string{`null`, `{}`, `[]`, `[null,1,"x",{}]`, `{"reports":[{"images":"nope","location":"nope"}]}`}
	for _, body := range bodies {
		reports := Reports(DecodeList([]byte(body), "reports"))
		for _, r := range reports {
			if r.Images == nil {
				t.Fatalf("images must never be nil for body %s", body)
			}
			if r.Severity == "" || r.Status == "" {
				t.Fatalf("required enums must be populated for body %s", body)
			}
		}
	}
}
