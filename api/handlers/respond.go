package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-docket-api/billing"
	"github.com/linesmerrill/court-docket-api/config"
	"github.com/linesmerrill/court-docket-api/models"
)

var validate = newValidator()

// dateLayouts are accepted for request body dates and the date query
// parameter. Layouts without a zone are read as UTC.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// Date is a request date that accepts any of dateLayouts
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", models.ErrValidation)
	}
	t, err := parseDate(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Ptr returns the date as a *time.Time, nil for a nil d
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, models.ErrValidation)
}

// newValidator validates Date fields as the time they hold, so required
// rejects a missing date
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(Date); ok {
			return d.Time
		}
		return nil
	}, Date{})
	return v
}

// BlockedResponse is returned when a lawyer's outstanding balance closes the gate
type BlockedResponse struct {
	Message     string `json:"message"`
	Redirect    string `json:"redirect"`
	Outstanding string `json:"outstanding"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden), errors.Is(err, models.ErrBlocked):
		return http.StatusForbidden
	case errors.Is(err, models.ErrHearingConflict),
		errors.Is(err, models.ErrAlreadyResolved),
		errors.Is(err, models.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, models.ErrStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError records the outcome in metrics and writes the error body
func (c Court) writeError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, models.ErrHearingConflict):
		c.Metrics.HearingConflicts.Inc()
	case errors.Is(err, models.ErrBlocked):
		c.Metrics.GateBlocks.Inc()
		var blocked *billing.BlockedError
		resp := BlockedResponse{Message: "Billing threshold reached. Please complete payment.", Redirect: billing.RedirectHint}
		if errors.As(err, &blocked) {
			resp.Outstanding = blocked.Outstanding.StringFixed(2)
		}
		zap.S().Infow("lawyer blocked", "error", err)
		writeJSON(w, http.StatusForbidden, resp)
		return
	}
	config.ErrorStatus(message, statusFor(err), w, err)
}

// decodeBody decodes and validates a JSON request body
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode body: %v: %w", err, models.ErrValidation)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%v: %w", err, models.ErrValidation)
	}
	return nil
}

// dayWindow reads the optional date query parameter as a 24 hour window
func dayWindow(r *http.Request) (*models.DateRange, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return models.DayRange(t), nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required: %w", name, models.ErrValidation)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, raw, models.ErrValidation)
	}
	return n, nil
}
