// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package status models the workload status a charm can set for its
// unit and application. The set of values is closed: simulated runs
// only ever see the statuses juju itself would accept from status-set,
// plus the error and unknown states juju imposes.
package status

import (
	"github.com/juju/errors"
)

// Status represents the workload status of a unit or application.
type Status string

// String returns a string representation of the Status.
func (s Status) String() string {
	return string(s)
}

const (
	// Unknown is set when:
	// A unit-agent has finished calling install, config-changed, and start,
	// but the charm has not called status-set yet.
	Unknown Status = "unknown"

	// Error means the entity requires human intervention
	// in order to operate correctly.
	Error Status = "error"

	// Active is set when:
	// The unit believes it is correctly offering all the services it has
	// been asked to offer.
	Active Status = "active"

	// Blocked is set when:
	// The unit needs manual intervention to get back to the Running state.
	Blocked Status = "blocked"

	// Maintenance is set when:
	// The unit is not yet providing services, but is actively doing stuff
	// in preparation for providing those services.
	// This is a "spinning" state, not an error state.
	Maintenance Status = "maintenance"

	// Waiting is set when:
	// The unit is unable to progress to an active state because an
	// application to which it is related is not running.
	Waiting Status = "waiting"
)

// KnownStatus returns true if status is one of the closed set of
// workload status values.
func (s Status) KnownStatus() bool {
	switch s {
	case Unknown, Error, Active, Blocked, Maintenance, Waiting:
		return true
	default:
		return false
	}
}

// ValidWorkloadStatus returns true if status has a valid value (that is
// to say, a value a charm is allowed to set) for units or applications.
// Juju reserves error and unknown for itself.
func ValidWorkloadStatus(status Status) bool {
	switch status {
	case Active, Blocked, Maintenance, Waiting:
		return true
	default:
		return false
	}
}

// StatusInfo holds a Status and an associated message. Two StatusInfo
// values are equal exactly when both status and message match, so the
// type is comparable with ==.
type StatusInfo struct {
	Status  Status
	Message string
}

// Validate returns an error if the status is not one of the known
// workload status values.
func (s StatusInfo) Validate() error {
	if !s.Status.KnownStatus() {
		return errors.NotValidf("status %q", s.Status)
	}
	return nil
}

// UnknownStatus returns the status juju reports before the charm has
// set one.
func UnknownStatus() StatusInfo {
	return StatusInfo{Status: Unknown}
}

// ActiveStatus returns an active status with the given message.
func ActiveStatus(message string) StatusInfo {
	return StatusInfo{Status: Active, Message: message}
}

// BlockedStatus returns a blocked status with the given message.
func BlockedStatus(message string) StatusInfo {
	return StatusInfo{Status: Blocked, Message: message}
}

// MaintenanceStatus returns a maintenance status with the given message.
func MaintenanceStatus(message string) StatusInfo {
	return StatusInfo{Status: Maintenance, Message: message}
}

// WaitingStatus returns a waiting status with the given message.
func WaitingStatus(message string) StatusInfo {
	return StatusInfo{Status: Waiting, Message: message}
}

// ErrorStatus returns an error status with the given message.
func ErrorStatus(message string) StatusInfo {
	return StatusInfo{Status: Error, Message: message}
}
