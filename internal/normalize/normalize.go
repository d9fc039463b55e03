// Package normalize maps the backend's heterogeneous JSON into the canonical
// entities of internal/model.
//
// The backend wraps list responses in whatever envelope it feels like
// ({data}, {workers}, a bare array, an arbitrary key) and renames fields
// between deployments (phoneNumber/phone/phone_number). Every mapper here is
// a total function: any JSON input, however malformed, yields a well-formed
// entity slice with no missing required fields and no panic.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gusgushz/baches/internal/model"
)

// PlaceholderName substitutes a worker name the backend failed to send.
const PlaceholderName = "Sin nombre"

// envelopeKeys are tried, in order, before falling back to the first key
// whose value is an array. Entity-specific keys are prepended by callers.
var envelopeKeys = []string{"data", "items", "docs", "results"}

// List locates the payload array inside a parsed JSON body. The body itself
// may already be the array. Returns an empty slice for anything unusable.
func List(body any, entityKeys ...string) []map[string]any {
	if body == nil {
		return nil
	}
	if arr, ok := body.([]any); ok {
		return objects(arr)
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range append(append([]string{}, entityKeys...), envelopeKeys...) {
		if arr, ok := obj[key].([]any); ok {
			return objects(arr)
		}
	}
	// Last resort: any key holding an array.
	for _, v := range obj {
		if arr, ok := v.([]any); ok {
			return objects(arr)
		}
	}
	return nil
}

// DecodeList unmarshals raw bytes and locates the payload array. Malformed
// JSON yields an empty list, never an error.
func DecodeList(data []byte, entityKeys ...string) []map[string]any {
	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil
	}
	return List(body, entityKeys...)
}

func objects(arr []any) []map[string]any {
	out := make([]map[string]any, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// str resolves the first alias that holds a non-empty value, coercing
// numbers so numeric ids and phone numbers survive.
func str(m map[string]any, aliases ...string) string {
	for _, key := range aliases {
		switch v := m[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case float64:
			if v == float64(int64(v)) {
				return strconv.FormatInt(int64(v), 10)
			}
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func num(m map[string]any, aliases ...string) float64 {
	for _, key := range aliases {
		switch v := m[key].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func object(m map[string]any, aliases ...string) map[string]any {
	for _, key := range aliases {
		if obj, ok := m[key].(map[string]any); ok {
			return obj
		}
	}
	return nil
}

// Severity maps the many raw spellings (Spanish and English, full words and
// single letters) onto the fixed enum. Unrecognized input is medium, never
// an error: a report must always render.
func Severity(raw string) model.Severity {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "low", "l", "baja", "bajo", "b":
		return model.SeverityLow
	case "medium", "med", "m", "media", "medio":
		return model.SeverityMedium
	case "high", "h", "alta", "alto", "a":
		return model.SeverityHigh
	}
	switch {
	case strings.Contains(v, "baj") || strings.Contains(v, "low"):
		return model.SeverityLow
	case strings.Contains(v, "alt") || strings.Contains(v, "high"):
		return model.SeverityHigh
	default:
		return model.SeverityMedium
	}
}

// Progress remaps legacy assignment status values onto the current enum.
func Progress(raw string) model.ProgressStatus {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "in_progress", "in-progress", "inprogress", "en_progreso":
		return model.ProgressInProgress
	case "completed", "complete", "done", "finished", "completado":
		return model.ProgressCompleted
	case "on_hold", "on-hold", "paused", "hold", "en_pausa":
		return model.ProgressOnHold
	case "", "not_started", "pending", "new", "created", "no_iniciado":
		return model.ProgressNotStarted
	default:
		return model.ProgressNotStarted
	}
}

// Worker maps one raw element into a UserProfile. Required strings fall back
// to placeholders so the list view never renders an empty card.
func Worker(m map[string]any) model.UserProfile {
	if m == nil {
		m = map[string]any{}
	}
	name := str(m, "name", "fullname", "username", "nombre")
	if name == "" {
		name = PlaceholderName
	}
	role := str(m, "role", "position", "tipo", "type")
	if role == "" {
		role = "worker"
	}
	return model.UserProfile{
		ID:                str(m, "id", "_id", "workerId"),
		Role:              model.ParseRole(role),
		Name:              name,
		SecondName:        str(m, "secondName", "middleName", "second_name"),
		Lastname:          str(m, "lastname", "lastName", "last_name", "surname", "apellido"),
		SecondLastname:    str(m, "secondLastname", "second_lastname"),
		Email:             str(m, "email", "mail"),
		PhoneNumber:       str(m, "phoneNumber", "phone", "phone_number"),
		FechaNacimiento:   str(m, "fechaNacimiento", "birthdate", "birth_date"),
		Status:            str(m, "status", "state"),
		PhotoURL:          str(m, "photoUrl", "photo_url", "avatar"),
		AssignedVehicleID: str(m, "assignedVehicleId", "vehicleId"),
		CreatedAt:         str(m, "createdAt", "created_at"),
	}
}

// Workers maps a located payload array into profiles.
func Workers(items []map[string]any) []model.UserProfile {
	out := make([]model.UserProfile, 0, len(items))
	for _, m := range items {
		out = append(out, Worker(m))
	}
	return out
}

// Vehicle maps one raw element into a Vehicle. Status defaults to "unknown".
func Vehicle(m map[string]any) model.Vehicle {
	if m == nil {
		m = map[string]any{}
	}
	status := str(m, "status", "state", "condition")
	if status == "" {
		status = "unknown"
	}
	assigned := str(m, "assignedWorkerId", "workerId", "employeeId", "driverId")
	if assigned == "" {
		if aw := object(m, "assignedWorker", "assignedTo", "worker"); aw != nil {
			assigned = str(aw, "id", "_id", "email")
		}
	}
	return model.Vehicle{
		ID:               str(m, "id", "_id", "vehicleId", "vin"),
		LicensePlate:     str(m, "licensePlate", "plate", "plateNumber"),
		Model:            str(m, "model", "brand"),
		Year:             int(num(m, "year")),
		Color:            str(m, "color"),
		Corporation:      str(m, "corporation"),
		Status:           status,
		AssignedWorkerID: assigned,
	}
}

// Vehicles maps a located payload array into vehicles.
func Vehicles(items []map[string]any) []model.Vehicle {
	out := make([]model.Vehicle, 0, len(items))
	for _, m := range items {
		out = append(out, Vehicle(m))
	}
	return out
}

// Assignment maps one raw element into an Assignment. The worker reference
// may arrive embedded, as an id, or not at all.
func Assignment(m map[string]any) model.Assignment {
	if m == nil {
		m = map[string]any{}
	}
	workerID := str(m, "assignedWorkerId", "assignedToId", "workerId", "userId")
	workerName := ""
	if aw := object(m, "assignedWorker", "assignedTo", "worker", "user"); aw != nil {
		if workerID == "" {
			workerID = str(aw, "id", "_id", "email")
		}
		workerName = strings.TrimSpace(str(aw, "name", "nombre") + " " + str(aw, "lastname", "lastName", "apellido"))
	}
	vehicleID := str(m, "vehicleId")
	vehiclePlate := ""
	if veh := object(m, "vehicle", "assignedVehicle", "vehicleInfo"); veh != nil {
		if vehicleID == "" {
			vehicleID = str(veh, "id", "_id")
		}
		vehiclePlate = str(veh, "licensePlate", "plate", "plateNumber")
	}
	priority := str(m, "priority")
	if priority == "" {
		priority = string(model.PriorityMedium)
	}
	return model.Assignment{
		ID:             str(m, "id", "_id"),
		WorkerID:       workerID,
		WorkerName:     workerName,
		VehicleID:      vehicleID,
		VehiclePlate:   vehiclePlate,
		ProgressStatus: Progress(str(m, "progressStatus", "status")),
		Priority:       model.Priority(strings.ToLower(priority)),
		Notes:          str(m, "notes", "description", "summary"),
		AssignedAt:     str(m, "assignedAt", "createdAt", "created"),
		CompletedAt:    str(m, "completedAt"),
	}
}

// Assignments maps a located payload array into assignments.
func Assignments(items []map[string]any) []model.Assignment {
	out := make([]model.Assignment, 0, len(items))
	for _, m := range items {
		out = append(out, Assignment(m))
	}
	return out
}

// Report maps one raw element into a Report.
func Report(m map[string]any) model.Report {
	if m == nil {
		m = map[string]any{}
	}
	rep := model.Report{
		ID:           str(m, "id", "_id", "reportId"),
		Description:  str(m, "description", "desc", "summary"),
		Severity:     Severity(str(m, "severity", "severidad")),
		Status:       string(Progress(str(m, "status", "state"))),
		Comments:     str(m, "comments", "comment"),
		Street:       str(m, "street", "calle"),
		Neighborhood: str(m, "neighborhood", "colonia"),
		City:         str(m, "city", "town", "village", "ciudad"),
		State:        str(m, "state", "estado"),
		PostalCode:   str(m, "postalCode", "postal_code", "zip", "cp"),
		Images:       stringSlice(m, "images", "photos", "pictures"),
		CreatedAt:    str(m, "createdAt", "created_at", "date"),
	}
	if loc := object(m, "location", "coords", "position"); loc != nil {
		lat := num(loc, "lat", "latitude")
		lng := num(loc, "lng", "lon", "longitude")
		if lat != 0 || lng != 0 {
			rep.Location = &model.Location{Lat: lat, Lng: lng}
		}
	}
	if veh := object(m, "reportedByVehicle", "vehicle"); veh != nil {
		rep.ReportedByVehicle = &model.ReporterRef{
			ID:           str(veh, "id", "_id"),
			LicensePlate: str(veh, "licensePlate", "plate", "plateNumber"),
			Model:        str(veh, "model", "brand"),
		}
	}
	if w := object(m, "reportedByWorker", "worker", "reportedBy"); w != nil {
		rep.ReportedByWorker = &model.ReporterRef{
			ID:       str(w, "id", "_id"),
			Name:     str(w, "name", "nombre"),
			Lastname: str(w, "lastname", "lastName", "apellido"),
			Email:    str(w, "email"),
		}
	}
	return rep
}

// Reports maps a located payload array into reports.
func Reports(items []map[string]any) []model.Report {
	out := make([]model.Report, 0, len(items))
	for _, m := range items {
		out = append(out, Report(m))
	}
	return out
}

func stringSlice(m map[string]any, aliases ...string) []string {
	for _, key := range aliases {
		arr, ok := m[key].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(arr))
		for _, el := range arr {
			if s, ok := el.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}
