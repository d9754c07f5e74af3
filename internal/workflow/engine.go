// Package workflow holds the pure rules that move an order through its stages
// and build the email sent at each transition.
package workflow

import (
	"fmt"
	"strings"

	"labelflow/internal/domain"
	apperrors "labelflow/internal/errors"
)

var nextStatus = map[domain.Stage]domain.Stage{
	domain.StageOrderDetails: domain.StageSampling,
	domain.StageSampling:     domain.StageProduction,
	domain.StageProduction:   domain.StageShipment,
	domain.StageShipment:     domain.StageShipment,
}

// NextStatus returns the stage following s. Shipment is terminal and maps to itself.
// Unknown values are returned unchanged.
func NextStatus(s domain.Stage) domain.Stage {
	if next, ok := nextStatus[s]; ok {
		return next
	}
	return s
}

// IsStageComplete reports whether target has been reached by an order whose
// status is status.
func IsStageComplete(status, target domain.Stage) bool {
	if !status.Valid() || !target.Valid() {
		return false
	}
	return target.Ordinal() <= status.Ordinal()
}

// Advance returns the status after the email for completed has gone out.
// The result never precedes current.
func Advance(current, completed domain.Stage) domain.Stage {
	next := NextStatus(completed)
	if next.Ordinal() > current.Ordinal() {
		return next
	}
	return current
}

// CheckMove validates an explicit status change requested by a user.
func CheckMove(current, target domain.Stage) error {
	if !target.Valid() {
		return apperrors.NewValidationError("invalid status", apperrors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("status must be one of %s", stageList()),
		})
	}
	if target.Ordinal() < current.Ordinal() {
		return apperrors.NewConflictError(fmt.Sprintf("order status cannot move back from %s to %s", current, target))
	}
	return nil
}

// ValidateRequired checks the fields a stage email needs regardless of who
// receives it. Order details need a customer email.
func ValidateRequired(kind domain.Stage, order *domain.Order) error {
	if !kind.Valid() {
		return apperrors.NewValidationError("invalid stage", apperrors.ValidationDetail{
			Field:   "stage",
			Message: fmt.Sprintf("stage must be one of %s", stageList()),
		})
	}

	if kind == domain.StageOrderDetails && strings.TrimSpace(order.CustomerEmail) == "" {
		return apperrors.NewValidationError("customer email is required", apperrors.ValidationDetail{
			Field:   domain.FieldCustomerEmail,
			Message: "customerEmail must not be empty",
		})
	}

	return nil
}

// ValidateForSend checks that a stage email can be sent to its resolved
// recipient. It includes ValidateRequired.
func ValidateForSend(kind domain.Stage, rec *domain.StageRecord, order *domain.Order) error {
	if err := ValidateRequired(kind, order); err != nil {
		return err
	}

	if rec == nil && kind != domain.StageOrderDetails {
		return apperrors.NewValidationError(fmt.Sprintf("%s has not been saved yet", kind))
	}

	if strings.TrimSpace(Recipient(kind, rec, order)) == "" {
		field := domain.FieldVendorEmail
		if kind == domain.StageShipment {
			field = domain.FieldRecipientEmail
		}
		return apperrors.NewValidationError("recipient is required", apperrors.ValidationDetail{
			Field:   field,
			Message: field + " must not be empty",
		})
	}

	return nil
}

// Recipient resolves the address a stage email goes to.
func Recipient(kind domain.Stage, rec *domain.StageRecord, order *domain.Order) string {
	switch kind {
	case domain.StageOrderDetails:
		return order.CustomerEmail
	case domain.StageSampling, domain.StageProduction:
		return rec.Field(domain.FieldVendorEmail)
	case domain.StageShipment:
		if to := rec.Field(domain.FieldRecipientEmail); to != "" {
			return to
		}
		return order.CustomerEmail
	}
	return ""
}

func stageList() string {
	stages := domain.Stages()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
