package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/frontdesk-ai/frontdesk/internal/calendar"
)

// defaultAppointmentDuration applies when a schedule request omits the end
// time.
const defaultAppointmentDuration = 30 * time.Minute

// defaultListWindow is the lookahead for list_appointments when no range is
// given.
const defaultListWindow = 7 * 24 * time.Hour

// CalendarService is the slice of the calendar client the toolset needs.
type CalendarService interface {
	Availability(ctx context.Context, from, to time.Time) ([]calendar.BusyInterval, error)
	Schedule(ctx context.Context, appt calendar.Appointment) (calendar.Appointment, error)
	Cancel(ctx context.Context, eventID string) error
	List(ctx context.Context, from, to time.Time) ([]calendar.Appointment, error)
}

type availabilityArgs struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type scheduleArgs struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

type cancelArgs struct {
	EventID string `json:"event_id"`
}

type listArgs struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RegisterCalendar registers the scheduling tools against svc.
func RegisterCalendar(r *Registry, svc CalendarService) error {
	tools := []Tool{
		{
			Name:        "check_availability",
			Description: "Check the calendar for busy intervals in a time range. Free time is any gap between the returned intervals.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"start": map[string]any{"type": "string", "description": "Range start, RFC 3339 timestamp"},
					"end":   map[string]any{"type": "string", "description": "Range end, RFC 3339 timestamp"},
				},
				"required": []string{"start", "end"},
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
				var args availabilityArgs
				if err := json.Unmarshal(raw, &args); err != nil {
					return nil, fmt.Errorf("parsing arguments: %w", err)
				}
				from, to, err := parseRange(args.Start, args.End)
				if err != nil {
					return nil, err
				}
				busy, err := svc.Availability(ctx, from, to)
				if err != nil {
					return nil, err
				}
				return map[string]any{"busy": busy}, nil
			},
		},
		{
			Name:        "schedule_appointment",
			Description: "Create an appointment on the calendar. Defaults to a 30 minute duration when no end time is given.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"summary":     map[string]any{"type": "string", "description": "Short title for the appointment"},
					"description": map[string]any{"type": "string", "description": "Optional details"},
					"start":       map[string]any{"type": "string", "description": "Start, RFC 3339 timestamp"},
					"end":         map[string]any{"type": "string", "description": "Optional end, RFC 3339 timestamp"},
				},
				"required": []string{"summary", "start"},
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
				var args scheduleArgs
				if err := json.Unmarshal(raw, &args); err != nil {
					return nil, fmt.Errorf("parsing arguments: %w", err)
				}
				if args.Summary == "" {
					return nil, fmt.Errorf("summary is required")
				}
				start, err := time.Parse(time.RFC3339, args.Start)
				if err != nil {
					return nil, fmt.Errorf("invalid start time %q: %w", args.Start, err)
				}
				end := start.Add(defaultAppointmentDuration)
				if args.End != "" {
					end, err = time.Parse(time.RFC3339, args.End)
					if err != nil {
						return nil, fmt.Errorf("invalid end time %q: %w", args.End, err)
					}
				}
				if !end.After(start) {
					return nil, fmt.Errorf("end time must be after start time")
				}
				return svc.Schedule(ctx, calendar.Appointment{
					Summary:     args.Summary,
					Description: args.Description,
					Start:       start,
					End:         end,
				})
			},
		},
		{
			Name:        "cancel_appointment",
			Description: "Cancel an existing appointment by its event id.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"event_id": map[string]any{"type": "string", "description": "The calendar event id"},
				},
				"required": []string{"event_id"},
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
				var args cancelArgs
				if err := json.Unmarshal(raw, &args); err != nil {
					return nil, fmt.Errorf("parsing arguments: %w", err)
				}
				if args.EventID == "" {
					return nil, fmt.Errorf("event_id is required")
				}
				if err := svc.Cancel(ctx, args.EventID); err != nil {
					return nil, err
				}
				return map[string]any{"cancelled": args.EventID}, nil
			},
		},
		{
			Name:        "list_appointments",
			Description: "List upcoming appointments. Defaults to the next seven days when no range is given.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"start": map[string]any{"type": "string", "description": "Optional range start, RFC 3339 timestamp"},
					"end":   map[string]any{"type": "string", "description": "Optional range end, RFC 3339 timestamp"},
				},
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
				var args listArgs
				if err := json.Unmarshal(raw, &args); err != nil {
					return nil, fmt.Errorf("parsing arguments: %w", err)
				}
				from := time.Now()
				to := from.Add(defaultListWindow)
				if args.Start != "" && args.End != "" {
					var err error
					from, to, err = parseRange(args.Start, args.End)
					if err != nil {
						return nil, err
					}
				}
				appts, err := svc.List(ctx, from, to)
				if err != nil {
					return nil, err
				}
				return map[string]any{"appointments": appts}, nil
			},
		},
	}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// parseRange parses and validates an RFC 3339 time range.
func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time %q: %w", startStr, err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time %q: %w", endStr, err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end time must be after start time")
	}
	return start, end, nil
}
