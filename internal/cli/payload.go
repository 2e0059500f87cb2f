package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"confradar/internal/occupancy"
	"confradar/internal/scheduling"
	"confradar/internal/timeslot"
	"confradar/internal/wizard"
)

// readPayloadFile decodes a YAML or JSON document into a payload.
func readPayloadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload file: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse payload file %s: %w", path, err)
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	return doc, nil
}

// buildPayload merges key=value assignments over the payload read from file.
func buildPayload(file string, assignments []string) (wizard.Payload, error) {
	payload := wizard.Payload{}
	if file != "" {
		doc, err := readPayloadFile(file)
		if err != nil {
			return nil, err
		}
		payload = wizard.Payload(doc)
	}
	for _, a := range assignments {
		key, value, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", a)
		}
		payload[key] = value
	}
	return payload, nil
}

// assignSessionIDs gives every session entry of payload without an id a
// fresh one, so the booking can be found again on the next save.
func assignSessionIDs(payload wizard.Payload) {
	switch list := payload[scheduling.FieldSessions].(type) {
	case []any:
		for _, e := range list {
			if m, ok := e.(map[string]any); ok {
				ensureID(m)
			}
		}
	case []map[string]any:
		for _, m := range list {
			ensureID(m)
		}
	default:
		if _, ok := payload[scheduling.FieldStart]; ok {
			ensureID(payload)
		}
	}
}

func ensureID(m map[string]any) {
	if id, _ := m[scheduling.FieldID].(string); id == "" {
		m[scheduling.FieldID] = uuid.NewString()
	}
}

// sessionIDs returns the ids of the session entries in payload.
func sessionIDs(payload wizard.Payload) map[string]bool {
	ids := make(map[string]bool)
	for _, p := range scheduling.DecodePlacements(payload) {
		if p.Session.ID != "" {
			ids[p.Session.ID] = true
		}
	}
	return ids
}

// replacingSource reads bookings from a store while hiding the ones a save
// is about to replace.
type replacingSource struct {
	store    occupancy.Store
	replaced map[string]bool
}

func (r replacingSource) QueryRoomOccupancy(ctx context.Context, roomID string, dates timeslot.DateRange) ([]timeslot.Session, error) {
	list, err := r.store.QueryRoomOccupancy(ctx, roomID, dates)
	if err != nil {
		return nil, err
	}
	out := make([]timeslot.Session, 0, len(list))
	for _, s := range list {
		if !r.replaced[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

// syncBookings replaces the bookings of the previous sessions payload with
// the ones in next.
func syncBookings(ctx context.Context, store occupancy.Store, prev, next wizard.Payload) (int, error) {
	keep := sessionIDs(next)
	for id := range sessionIDs(prev) {
		if keep[id] {
			continue
		}
		if err := store.Cancel(ctx, id); err != nil && !errors.Is(err, occupancy.ErrNotFound) {
			return 0, fmt.Errorf("failed to cancel booking %s: %w", id, err)
		}
	}

	booked := 0
	for _, p := range scheduling.DecodePlacements(next) {
		if _, err := store.Book(ctx, p.Session); err != nil {
			return booked, fmt.Errorf("failed to book session %s: %w", p.Session.ID, err)
		}
		booked++
	}
	return booked, nil
}

// exitCodeFor maps a save error to an exit code: a gate rejection of a
// placement is 2, anything else 1.
func exitCodeFor(err error) int {
	if errors.Is(err, wizard.ErrStepBlocked) && scheduling.IsRejection(err) {
		return ExitCodeRejected
	}
	return ExitCodeError
}
