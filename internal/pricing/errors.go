package pricing

import (
	"errors"
	"fmt"

	"github.com/richxcame/logistics-pricing/pkg/common"
	"github.com/richxcame/logistics-pricing/pkg/kvstore"
	"github.com/richxcame/logistics-pricing/pkg/validation"
)

var (
	// ErrNoApplicablePricing means no rule and no enabled vehicle default
	// exist for the trip. A trip is never quoted at zero instead.
	ErrNoApplicablePricing = errors.New("no applicable pricing")
	// ErrInvalidDistance rejects negative distances.
	ErrInvalidDistance = errors.New("distance must not be negative")
	// ErrInvalidDuration rejects negative durations.
	ErrInvalidDuration = errors.New("duration must not be negative")
	// ErrConfigValidationFailed wraps the violations of a rejected write.
	ErrConfigValidationFailed = errors.New("config validation failed")
	// ErrRuleNotFound is returned for unknown rule ids.
	ErrRuleNotFound = errors.New("pricing rule not found")
	// ErrCityNotFound is returned for unknown city ids.
	ErrCityNotFound = errors.New("city not found")
	// ErrConcurrentUpdate means other writers kept winning the snapshot race.
	ErrConcurrentUpdate = errors.New("configuration was modified concurrently")
)

// ValidationFailed wraps violations so ToAppError reports them as a 422.
func ValidationFailed(violations validation.Violations) error {
	return fmt.Errorf("%w: %w", ErrConfigValidationFailed, violations)
}

// ViolationsOf extracts the violation list from a failed write.
func ViolationsOf(err error) (validation.Violations, bool) {
	var violations validation.Violations
	if errors.As(err, &violations) {
		return violations, true
	}
	return nil, false
}

// ToAppError maps engine and store errors onto API errors. Unknown errors
// are returned unchanged so the handler logs and reports them.
func ToAppError(err error) error {
	var appErr *common.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, ErrNoApplicablePricing):
		return common.NewUnprocessableError("no applicable pricing for this trip", err).
			WithCode(common.CodeNoApplicablePricing)
	case errors.Is(err, ErrInvalidDistance):
		return common.NewBadRequestError("distance_km must not be negative", err).
			WithCode(common.CodeInvalidDistance)
	case errors.Is(err, ErrInvalidDuration):
		return common.NewBadRequestError("duration_minutes must not be negative", err).
			WithCode(common.CodeInvalidDuration)
	case errors.Is(err, ErrConfigValidationFailed):
		violations, _ := ViolationsOf(err)
		validationErr := common.NewValidationError("invalid configuration", violations)
		validationErr.Err = err
		return validationErr
	case errors.Is(err, ErrRuleNotFound):
		return common.NewNotFoundError("pricing rule not found", err)
	case errors.Is(err, ErrCityNotFound):
		return common.NewNotFoundError("city not found", err)
	case errors.Is(err, ErrConcurrentUpdate), errors.Is(err, kvstore.ErrConflict):
		return common.NewConflictError("configuration was modified concurrently, retry the request", err).
			WithCode(common.CodeConcurrentUpdate)
	default:
		return err
	}
}
