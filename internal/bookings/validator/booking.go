package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"classbook/pkg/logger"
	"classbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const (
	FieldStartTime = "start_time"
	FieldEndTime   = "end_time"
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

// Fields lists the offending field names in report order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, err := range v {
		fields = append(fields, err.Field)
	}
	return fields
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation("booking_email", validateEmail); err != nil {
		log.Fatal("Failed to register 'booking_email' validator",
			"error", err,
		)
	}

	log.Debug("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func validateEmail(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

// Validate checks a booking request and returns every problem found; an empty
// result means the request is well formed. Required fields are reported first,
// then format problems, then time parsing, then ordering.
func (v *BookingValidator) Validate(req *model.BookingRequest) ValidationErrors {
	var errs ValidationErrors

	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return ValidationErrors{{Field: "request", Message: err.Error()}}
		}
		errs = append(errs, v.translateValidationErrors(validationErrs)...)
	}

	var start, end time.Time
	var startOK, endOK bool
	if req.StartTime != "" {
		var err error
		if start, err = ParseInstant(req.StartTime); err != nil {
			errs = append(errs, ValidationError{Field: FieldStartTime, Message: "start_time is not a valid RFC 3339 date-time"})
		} else {
			startOK = true
		}
	}
	if req.EndTime != "" {
		var err error
		if end, err = ParseInstant(req.EndTime); err != nil {
			errs = append(errs, ValidationError{Field: FieldEndTime, Message: "end_time is not a valid RFC 3339 date-time"})
		} else {
			endOK = true
		}
	}

	if startOK && endOK && !start.Before(end) {
		errs = append(errs, ValidationError{Field: FieldStartTime, Message: "start_time must precede end_time"})
	}

	return errs
}

// ParseInstant parses an RFC 3339 date-time and returns it in UTC.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ParseRange parses both ends of a request already accepted by Validate.
func ParseRange(req *model.BookingRequest) (model.TimeRange, error) {
	start, err := ParseInstant(req.StartTime)
	if err != nil {
		return model.TimeRange{}, err
	}
	end, err := ParseInstant(req.EndTime)
	if err != nil {
		return model.TimeRange{}, err
	}
	return model.NewTimeRange(start, end), nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	type ranked struct {
		rank int
		err  ValidationError
	}
	out := make([]ranked, 0, len(errs))

	for _, err := range errs {
		message := err.Error()
		rank := 1

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
			rank = 0
		case "booking_email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		}

		out = append(out, ranked{rank: rank, err: ValidationError{
			Field:   err.Field(),
			Message: message,
		}})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].rank < out[j].rank })

	validationErrors := make(ValidationErrors, 0, len(out))
	for _, r := range out {
		validationErrors = append(validationErrors, r.err)
	}
	return validationErrors
}
