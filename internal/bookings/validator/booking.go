package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"hallbook/pkg/dates"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as a field -> message map for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

func fieldError(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

type Limits struct {
	MaxDurationDays int
	MaxAttendees    int
}

type BookingValidator struct {
	validate *validator.Validate
	limits   Limits
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger, limits Limits) *BookingValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so messages match the request payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	log.Info("Booking validator initialized successfully",
		"max_duration_days", limits.MaxDurationDays,
		"max_attendees", limits.MaxAttendees,
	)

	return &BookingValidator{
		validate: v,
		limits:   limits,
		logger:   log,
	}
}

// ValidateObjectID checks that value is a well-formed identifier for field.
func (v *BookingValidator) ValidateObjectID(field, value string) error {
	if err := v.validate.Var(value, "required,mongodb"); err != nil {
		return fieldError(field, fmt.Sprintf("%s must be a valid MongoDB ObjectID", field))
	}
	return nil
}

// ValidateRequest checks presence and length of the request fields.
func (v *BookingValidator) ValidateRequest(req *model.CreateBookingRequest) error {
	if req == nil {
		return fieldError("body", "request body is required")
	}
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ParseDates turns the request's calendar-day strings into day starts in loc.
func (v *BookingValidator) ParseDates(req *model.CreateBookingRequest, loc *time.Location) (time.Time, time.Time, error) {
	var errs ValidationErrors

	startDay, err := dates.ParseDay(req.StartDate, loc)
	if err != nil {
		errs = append(errs, ValidationError{Field: "start_date", Message: "start_date must be a date in YYYY-MM-DD format"})
	}
	endDay, err := dates.ParseDay(req.EndDate, loc)
	if err != nil {
		errs = append(errs, ValidationError{Field: "end_date", Message: "end_date must be a date in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return startDay, endDay, nil
}

// ValidateInterval applies the calendar rules in order: the start is not in the
// past, the end is not before the start, and the span fits the maximum duration.
func (v *BookingValidator) ValidateInterval(startDay, endDay, today time.Time, loc *time.Location) error {
	if dates.DaysBetween(today, startDay, loc) < 0 {
		return fieldError("start_date", "start_date cannot be in the past")
	}
	return v.ValidateRange(startDay, endDay, loc)
}

// ValidateRange checks ordering and maximum span without regard to today.
func (v *BookingValidator) ValidateRange(startDay, endDay time.Time, loc *time.Location) error {
	span := dates.DaysBetween(startDay, endDay, loc)
	if span < 0 {
		return fieldError("end_date", "end_date must be on or after start_date")
	}

	if span > v.limits.MaxDurationDays {
		return fieldError("end_date", fmt.Sprintf("booking cannot span more than %d days", v.limits.MaxDurationDays))
	}

	return nil
}

func (v *BookingValidator) ValidateAttendeeCount(count int) error {
	rule := "min=1,max=" + strconv.Itoa(v.limits.MaxAttendees)
	if err := v.validate.Var(count, rule); err != nil {
		return fieldError("attendee_count", fmt.Sprintf("attendee_count must be between 1 and %d", v.limits.MaxAttendees))
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			if err.Kind() == reflect.String {
				message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
			} else {
				message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
			}
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
