package engine

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPrecision is matched by every ConfigurationError raised for a bad movement precision
var ErrInvalidPrecision = errors.New("movement precision must be a finite value greater than zero")

// ErrInvalidUnitScale is matched by a ConfigurationError raised for a bad host-to-simulation unit scale
var ErrInvalidUnitScale = errors.New("unit scale must be a finite value greater than zero")

// ErrNilCollaborator is returned when the scheduler is built without a frame source or agent collection
var ErrNilCollaborator = errors.New("nil collaborator")

// ConfigurationError reports a configuration value rejected at the point of configuration
type ConfigurationError struct {
	Field string
	Value any
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s=%v: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// AgentUpdateError wraps a failure returned by a single agent update
type AgentUpdateError struct {
	AgentID string
	Err     error
}

func (e *AgentUpdateError) Error() string {
	if e.AgentID == "" {
		return fmt.Sprintf("agent update failed: %v", e.Err)
	}
	return fmt.Sprintf("agent %s update failed: %v", e.AgentID, e.Err)
}

func (e *AgentUpdateError) Unwrap() error { return e.Err }

// ValidatePrecision rejects zero, negative and non-finite sub-step sizes
func ValidatePrecision(precision float64) error {
	if math.IsNaN(precision) || math.IsInf(precision, 0) || precision <= 0 {
		return &ConfigurationError{Field: "movement_precision", Value: precision, Err: ErrInvalidPrecision}
	}
	return nil
}

// ValidateUnitScale rejects zero, negative and non-finite host-to-simulation scales
func ValidateUnitScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return &ConfigurationError{Field: "unit_scale", Value: scale, Err: ErrInvalidUnitScale}
	}
	return nil
}
