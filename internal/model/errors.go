package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidImage          = errors.New("invalid image")
	ErrSegmentationFailure   = errors.New("segmentation failure")
	ErrEndpointNotFound      = errors.New("endpoint not found")
	ErrLocatorUnresolved     = errors.New("locator unresolved")
	ErrDegenerateCalibration = errors.New("degenerate calibration")
)

// SegmentationError reports which color class produced no regions.
type SegmentationError struct {
	Class ColorClass
}

func (e *SegmentationError) Error() string {
	return fmt.Sprintf("segmentation failure: no %s regions", e.Class)
}

func (e *SegmentationError) Unwrap() error { return ErrSegmentationFailure }

// LocatorError reports a control point whose station name did not resolve.
type LocatorError struct {
	Role  string // "start" or "end"
	Query string
	Score int
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("locator unresolved: %s station %q (best score %d)", e.Role, e.Query, e.Score)
}

func (e *LocatorError) Unwrap() error { return ErrLocatorUnresolved }

// Kind returns the taxonomy name of a pipeline error, or "Error" for anything else.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidImage):
		return "InvalidImage"
	case errors.Is(err, ErrSegmentationFailure):
		return "SegmentationFailure"
	case errors.Is(err, ErrEndpointNotFound):
		return "EndpointNotFound"
	case errors.Is(err, ErrLocatorUnresolved):
		return "LocatorUnresolved"
	case errors.Is(err, ErrDegenerateCalibration):
		return "DegenerateCalibration"
	}
	return "Error"
}
