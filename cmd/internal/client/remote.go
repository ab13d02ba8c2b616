package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nailbook/cmd/internal/booking"

	"github.com/goccy/go-json"
)

const maxErrorBody = 4 << 10

// Credentials supplies the bearer token for each request. The booking session receives
// it explicitly; there is no process-wide login state.
type Credentials interface {
	Token() string
}

type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Status  int
	Kind    string
	Message string
	kind    error
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (HTTP %d)", e.kind, e.Status)
	}
	return fmt.Sprintf("%v (HTTP %d): %s", e.kind, e.Status, e.Message)
}

func (e *StatusError) Unwrap() error { return e.kind }

// sentinelFor maps an HTTP status onto the error taxonomy.
func sentinelFor(status int) error {
	switch {
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	case status >= 400 && status < 500 && status != http.StatusTooManyRequests:
		return ErrInvalidInput
	default:
		return ErrServer
	}
}

// RemoteBackend talks to the nailbook REST API.
type RemoteBackend struct {
	baseURL string
	http    *http.Client
	creds   Credentials
}

func NewRemoteBackend(baseURL string, creds Credentials) *RemoteBackend {
	return &RemoteBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		creds:   creds,
	}
}

type remoteAppointment struct {
	ID              int        `json:"id"`
	ServiceID       string     `json:"service_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	StartsAt        string     `json:"starts_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Location        string     `json:"location"`
	Status          string     `json:"status"`
	Attendees       []Attendee `json:"attendees"`
}

func (a remoteAppointment) toAppointment() (Appointment, error) {
	start, err := time.Parse(time.RFC3339, a.StartsAt)
	if err != nil {
		return Appointment{}, fmt.Errorf("%w: appointment %d has start %q", ErrServer, a.ID, a.StartsAt)
	}
	return Appointment{
		ID:              strconv.Itoa(a.ID),
		ServiceID:       a.ServiceID,
		Title:           a.Title,
		Description:     a.Description,
		StartsAt:        start,
		DurationMinutes: a.DurationMinutes,
		Location:        a.Location,
		Attendees:       a.Attendees,
		Status:          a.Status,
	}, nil
}

type remoteBlocked struct {
	ID         int    `json:"id"`
	Date       string `json:"date"`
	Reason     string `json:"reason"`
	Recurrence string `json:"recurring_pattern"`
}

func (r *RemoteBackend) ListAppointments(ctx context.Context) ([]Appointment, error) {
	var resp struct {
		Appointments []remoteAppointment `json:"appointments"`
	}
	if err := r.do(ctx, http.MethodGet, "/api/appointments", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]Appointment, 0, len(resp.Appointments))
	for _, raw := range resp.Appointments {
		appt, err := raw.toAppointment()
		if err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	return out, nil
}

func (r *RemoteBackend) CreateAppointment(ctx context.Context, in AppointmentInput) (*Appointment, error) {
	body := map[string]any{
		"service_id":       in.ServiceID,
		"duration_minutes": in.DurationMinutes,
		"starts_at":        in.StartsAt.UTC().Format(time.RFC3339),
		"title":            in.Title,
		"notes":            in.Notes,
		"location":         in.Location,
		"attendees":        in.Attendees,
	}

	var raw remoteAppointment
	if err := r.do(ctx, http.MethodPost, "/api/appointments", body, &raw); err != nil {
		return nil, err
	}
	appt, err := raw.toAppointment()
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *RemoteBackend) UpdateAppointment(ctx context.Context, id string, patch AppointmentPatch) (*Appointment, error) {
	body := map[string]any{
		"starts_at":  patch.StartsAt.UTC().Format(time.RFC3339),
		"service_id": patch.ServiceID,
	}

	var raw remoteAppointment
	if err := r.do(ctx, http.MethodPut, "/api/appointments/"+url.PathEscape(id), body, &raw); err != nil {
		return nil, err
	}
	appt, err := raw.toAppointment()
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *RemoteBackend) DeleteAppointment(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/api/appointments/"+url.PathEscape(id), nil, nil)
}

func (r *RemoteBackend) ListBlockedInRange(ctx context.Context, start, end booking.Day) ([]BlockedDate, error) {
	q := url.Values{}
	q.Set("start", start.String())
	q.Set("end", end.String())

	var resp struct {
		BlockedDates []remoteBlocked `json:"blocked_dates"`
	}
	if err := r.do(ctx, http.MethodGet, "/api/blocked-dates/range?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	out := make([]BlockedDate, len(resp.BlockedDates))
	for i, b := range resp.BlockedDates {
		out[i] = BlockedDate{ID: strconv.Itoa(b.ID), Date: b.Date, Reason: b.Reason, Recurrence: b.Recurrence}
	}
	return out, nil
}

func (r *RemoteBackend) Block(ctx context.Context, day booking.Day, reason string) error {
	body := map[string]string{"date": day.String(), "reason": reason}
	return r.do(ctx, http.MethodPost, "/api/blocked-dates", body, nil)
}

func (r *RemoteBackend) Unblock(ctx context.Context, day booking.Day) error {
	return r.do(ctx, http.MethodDelete, "/api/blocked-dates/date/"+day.String(), nil, nil)
}

func (r *RemoteBackend) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrInvalidInput, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrInvalidInput, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.creds != nil {
		if token := r.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrServer, method, path, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	serr := &StatusError{Status: resp.StatusCode, kind: sentinelFor(resp.StatusCode)}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Kind    string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		serr.Kind = body.Kind
		serr.Message = body.Message
	}
	return serr
}

// Catalogue is implemented by backends that can list the salon's services.
type Catalogue interface {
	ListServices(ctx context.Context) ([]booking.Service, error)
}

func (r *RemoteBackend) ListServices(ctx context.Context) ([]booking.Service, error) {
	var resp struct {
		Services []struct {
			ID              string  `json:"id"`
			Name            string  `json:"name"`
			DurationMinutes int     `json:"duration_minutes"`
			Price           float64 `json:"price"`
		} `json:"services"`
	}
	if err := r.do(ctx, http.MethodGet, "/api/services", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]booking.Service, len(resp.Services))
	for i, s := range resp.Services {
		out[i] = booking.Service{ID: s.ID, Name: s.Name, DurationMinutes: s.DurationMinutes, Price: s.Price}
	}
	return out, nil
}
