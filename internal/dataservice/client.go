package dataservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const maxResponseBytes = 4 << 20

// Client talks to a remote data API that speaks the Envelope wire format.
// Calls run through a circuit breaker that only counts transport failures
// and 5xx responses against the remote.
type Client struct {
	baseURL         string
	persistBookings bool
	http            *http.Client
	breaker         *gobreaker.CircuitBreaker[[]byte]
	log             *zap.Logger
}

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration

	// BreakerFailures consecutive failures open the circuit for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration

	// PersistBookings sends confirmed bookings to the remote. When false
	// CreateAppointment acknowledges without a request, as Memory does.
	PersistBookings bool

	// HTTPClient overrides the default client; Timeout is then ignored.
	HTTPClient *http.Client
}

func NewClient(cfg ClientConfig, log *zap.Logger) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	c := &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		persistBookings: cfg.PersistBookings,
		http:            hc,
		log:             log,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "dataservice",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			var netErr *NetworkError
			if errors.As(err, &netErr) {
				return !netErr.ServerSide()
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("data service circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

func (c *Client) Specialties(ctx context.Context) ([]doctor.Specialty, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/specialties", nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]doctor.Specialty](body)
}

func (c *Client) Doctors(ctx context.Context, specialtyID *int) ([]doctor.Doctor, error) {
	q := url.Values{}
	if specialtyID != nil {
		q.Set("specialtyId", strconv.Itoa(*specialtyID))
	}
	body, err := c.do(ctx, http.MethodGet, "/api/doctors", q, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]doctor.Doctor](body)
}

func (c *Client) Appointments(ctx context.Context, lq appointment.ListQuery) ([]appointment.Appointment, error) {
	q := url.Values{}
	if lq.DoctorID != nil {
		q.Set("doctorId", strconv.Itoa(*lq.DoctorID))
	}
	if lq.Status != nil {
		q.Set("status", string(*lq.Status))
	}
	if lq.Date != "" {
		q.Set("date", lq.Date)
	}
	body, err := c.do(ctx, http.MethodGet, "/api/appointments", q, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]appointment.Appointment](body)
}

func (c *Client) UpdateAppointment(ctx context.Context, cmd appointment.UpdateStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	body, err := c.do(ctx, http.MethodPatch, "/api/appointments", nil, cmd)
	if err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) && netErr.StatusCode == http.StatusNotFound {
			netErr.Err = appointment.ErrAppointmentNotFound
		}
		return err
	}
	_, err = decode[json.RawMessage](body)
	return err
}

func (c *Client) CreateAppointment(ctx context.Context, a *appointment.Appointment) error {
	if !c.persistBookings {
		c.log.Info("appointment booking acknowledged without storing",
			zap.String("appointment_id", a.ID),
			zap.Int("doctor_id", a.DoctorID),
		)
		return nil
	}
	body, err := c.do(ctx, http.MethodPost, "/api/appointments", nil, a)
	if err != nil {
		return err
	}
	_, err = decode[json.RawMessage](body)
	return err
}

func (c *Client) Patients(ctx context.Context, lq patient.ListQuery) ([]patient.Patient, error) {
	q := url.Values{}
	if lq.DoctorID != nil {
		q.Set("doctorId", strconv.Itoa(*lq.DoctorID))
	}
	if lq.PatientID != "" {
		q.Set("patientId", lq.PatientID)
	}
	if lq.Search != "" {
		q.Set("search", lq.Search)
	}
	body, err := c.do(ctx, http.MethodGet, "/api/patients", q, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]patient.Patient](body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var reqBody io.Reader
		if payload != nil {
			b, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("encoding request: %w", err)
			}
			reqBody = bytes.NewReader(b)
		}

		target := c.baseURL + path
		if len(query) > 0 {
			target += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &NetworkError{Err: err}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, &NetworkError{Err: fmt.Errorf("reading body: %w", err)}
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &NetworkError{StatusCode: resp.StatusCode, Message: envelopeMessage(body)}
		}
		return body, nil
	})
}

// decode unwraps an Envelope, keeping the three malformed-body cases apart:
// no body, unparsable body, and a well-formed success=false.
func decode[T any](body []byte) (T, error) {
	var zero T
	if len(bytes.TrimSpace(body)) == 0 {
		return zero, ErrEmptyResponse
	}
	var env Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, &MalformedResponseError{Excerpt: excerpt(body), Err: err}
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return zero, &DomainError{Message: msg}
	}
	return env.Data, nil
}

// envelopeMessage extracts the error text from an error response body, if any.
func envelopeMessage(body []byte) string {
	var env Envelope[json.RawMessage]
	if json.Unmarshal(body, &env) != nil {
		return ""
	}
	if env.Error != "" {
		return env.Error
	}
	return env.Message
}
