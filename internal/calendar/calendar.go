// Package calendar wraps the Google Calendar API for the scheduling tools:
// availability queries, event creation, cancellation, and listing against a
// single configured calendar.
package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/frontdesk-ai/frontdesk/internal/log"
)

// Appointment is a scheduled event on the calendar.
type Appointment struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// BusyInterval is a span of time during which the calendar is occupied.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Service is a client for one Google calendar.
type Service struct {
	svc        *gcal.Service
	calendarID string
	logger     log.Logger
}

// New creates a Service for the given calendar ID. Credentials are resolved
// by the Google API client (service-account file, workload identity, or
// application default credentials) via the provided client options.
func New(ctx context.Context, calendarID string, logger log.Logger, opts ...option.ClientOption) (*Service, error) {
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Service{svc: svc, calendarID: calendarID, logger: logger}, nil
}

// Availability returns the busy intervals on the calendar between from and to.
func (s *Service) Availability(ctx context.Context, from, to time.Time) ([]BusyInterval, error) {
	req := &gcal.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: s.calendarID}},
	}

	resp, err := s.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query: %w", err)
	}

	cal, ok := resp.Calendars[s.calendarID]
	if !ok {
		return nil, fmt.Errorf("freebusy query: calendar %q missing from response", s.calendarID)
	}

	busy := make([]BusyInterval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("parsing busy start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("parsing busy end %q: %w", period.End, err)
		}
		busy = append(busy, BusyInterval{Start: start, End: end})
	}
	return busy, nil
}

// Schedule inserts the appointment and returns it with the assigned event ID.
func (s *Service) Schedule(ctx context.Context, appt Appointment) (Appointment, error) {
	event := &gcal.Event{
		Summary:     appt.Summary,
		Description: appt.Description,
		Start:       &gcal.EventDateTime{DateTime: appt.Start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: appt.End.Format(time.RFC3339)},
	}

	created, err := s.svc.Events.Insert(s.calendarID, event).Context(ctx).Do()
	if err != nil {
		return Appointment{}, fmt.Errorf("inserting event: %w", err)
	}

	appt.ID = created.Id
	s.logger.Info("appointment scheduled", "event_id", created.Id, "start", appt.Start)
	return appt, nil
}

// Cancel deletes the event with the given ID.
func (s *Service) Cancel(ctx context.Context, eventID string) error {
	if err := s.svc.Events.Delete(s.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting event %q: %w", eventID, err)
	}
	s.logger.Info("appointment cancelled", "event_id", eventID)
	return nil
}

// List returns the appointments between from and to, ordered by start time.
func (s *Service) List(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	resp, err := s.svc.Events.List(s.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	appts := make([]Appointment, 0, len(resp.Items))
	for _, item := range resp.Items {
		appt := Appointment{
			ID:          item.Id,
			Summary:     item.Summary,
			Description: item.Description,
		}
		if item.Start != nil && item.Start.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
				appt.Start = t
			}
		}
		if item.End != nil && item.End.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
				appt.End = t
			}
		}
		appts = append(appts, appt)
	}
	return appts, nil
}
