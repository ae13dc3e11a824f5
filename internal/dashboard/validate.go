package dashboard

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/carbontrack/internal/gateway"
)

// Validation messages shown to the user.
var (
	ErrTypeRequired = errors.New("Please select an activity type")
	ErrInvalidValue = errors.New("Please enter a valid number")
	ErrInvalidDate  = errors.New("Date must be YYYY-MM-DD")
)

// FormInput is the raw content of the log form.
type FormInput struct {
	Type     string
	Category string
	Value    string
	Date     string
	Notes    string
}

// ValidateEntry turns form input into a gateway entry. An empty date means
// today.
func ValidateEntry(in FormInput, today time.Time) (gateway.Entry, error) {
	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		return gateway.Entry{}, ErrTypeRequired
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(in.Value), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return gateway.Entry{}, ErrInvalidValue
	}
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = Today(today)
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return gateway.Entry{}, ErrInvalidDate
	}
	return gateway.Entry{
		Type:     typ,
		Category: strings.TrimSpace(in.Category),
		Value:    value,
		Date:     date,
		Notes:    strings.TrimSpace(in.Notes),
	}, nil
}

// Today formats t as the form's default date.
func Today(t time.Time) string {
	return t.Format("2006-01-02")
}
