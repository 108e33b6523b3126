/**
 * @description
 * This file implements the beneficiary validation pipeline: field format
 * checks followed by third-party risk screening (account validity, fraud
 * score, sanctions list, account status). The orchestrator short-circuits
 * on the first failure.
 *
 * @notes
 * - Sanctions screening is a hard legal gate and is never bypassed by the
 *   strict/lenient toggle. Fraud-score handling and screening-backend
 *   availability are tunable trade-offs controlled by ValidationConfig.
 * - The config is passed in at construction, not read from globals, so each
 *   Validator instance behaves deterministically.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alokkulkarni/beneficiaries/internal/domain"
)

var (
	// ErrInvalidFormat marks field-level syntax violations. Surfaced to the
	// caller, never retried.
	ErrInvalidFormat = errors.New("invalid beneficiary format")

	// ErrValidationFailed marks a rejection by the risk screening pipeline.
	ErrValidationFailed = errors.New("beneficiary validation failed")
)

var (
	accountNumberPattern = regexp.MustCompile(`^[0-9]{8,20}$`)
	bankCodePattern      = regexp.MustCompile(`^[A-Z0-9]{6,11}$`)
)

const fraudScoreThreshold = 0.7

// FormatError reports which field failed syntax validation and why.
type FormatError struct {
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrInvalidFormat }

// ValidationError reports a screening rejection, optionally wrapping the
// underlying screening client failure.
type ValidationError struct {
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// ScreeningClient is the contract with the external risk screening provider.
// A returned error means the provider could not be consulted (an
// infrastructure failure), as opposed to a verdict rejecting the beneficiary.
type ScreeningClient interface {
	Screen(ctx context.Context, accountNumber, bankCode, name, beneficiaryType string) (*domain.ScreeningResult, error)
}

// ValidationConfig controls the validation pipeline's behavior.
type ValidationConfig struct {
	// Enabled turns the whole pipeline on or off. The escape hatch for
	// environments without a screening backend.
	Enabled bool
	// StrictMode blocks on high fraud scores and on screening-backend
	// unavailability. In lenient mode both are logged and tolerated.
	StrictMode bool
}

// Validator composes format validation and third-party screening into a
// single pass/fail gate.
type Validator struct {
	cfg    ValidationConfig
	client ScreeningClient
}

// NewValidator creates a Validator with the given policy and screening client.
func NewValidator(cfg ValidationConfig, client ScreeningClient) *Validator {
	return &Validator{cfg: cfg, client: client}
}

// Validate runs the full pipeline against a beneficiary request. It returns
// nil when the beneficiary is acceptable, a *FormatError for syntax
// violations, or a *ValidationError for screening rejections.
func (v *Validator) Validate(ctx context.Context, req *domain.BeneficiaryRequest) error {
	if !v.cfg.Enabled {
		return nil
	}

	if err := validateFormat(req); err != nil {
		return err
	}
	return v.screen(ctx, req)
}

// validateFormat checks field syntax. Pure function, no external state.
func validateFormat(req *domain.BeneficiaryRequest) error {
	if !accountNumberPattern.MatchString(req.BeneficiaryAccountNumber) {
		return &FormatError{Field: "beneficiary_account_number", Reason: "must be 8-20 digits"}
	}
	if !bankCodePattern.MatchString(req.BeneficiaryBankCode) {
		return &FormatError{Field: "beneficiary_bank_code", Reason: "must be 6-11 uppercase alphanumeric characters"}
	}
	name := strings.TrimSpace(req.BeneficiaryName)
	if name == "" {
		return &FormatError{Field: "beneficiary_name", Reason: "is required"}
	}
	// Length bounds count characters, not bytes, so multi-byte names
	// measure the same as their ASCII equivalents.
	length := utf8.RuneCountInString(req.BeneficiaryName)
	if length < 2 {
		return &FormatError{Field: "beneficiary_name", Reason: "must be at least 2 characters"}
	}
	if length > 100 {
		return &FormatError{Field: "beneficiary_name", Reason: "must not exceed 100 characters"}
	}
	return nil
}

// screen consults the third-party provider and applies the verdict policy.
func (v *Validator) screen(ctx context.Context, req *domain.BeneficiaryRequest) error {
	result, err := v.client.Screen(ctx, req.BeneficiaryAccountNumber, req.BeneficiaryBankCode, req.BeneficiaryName, req.BeneficiaryType)
	if err != nil {
		// Provider unreachable: a validation failure only in strict mode.
		if v.cfg.StrictMode {
			return &ValidationError{Reason: "unable to screen beneficiary with third-party service", Cause: err}
		}
		log.Printf("level=warn component=validation msg=\"screening unavailable, continuing in lenient mode\" account=%s err=%v",
			req.BeneficiaryAccountNumber, err)
		return nil
	}

	if !result.Valid {
		reason := result.FailureReason
		if reason == "" {
			reason = "account validation failed"
		}
		return &ValidationError{Reason: "third-party validation failed: " + reason}
	}

	// Sanctions are a hard gate regardless of mode.
	if result.Sanctioned {
		return &ValidationError{Reason: "beneficiary is on sanctions list and cannot be added"}
	}

	if result.FraudScore != nil && *result.FraudScore > fraudScoreThreshold {
		if v.cfg.StrictMode {
			return &ValidationError{Reason: "high fraud risk detected, beneficiary cannot be added"}
		}
		log.Printf("level=warn component=validation msg=\"high fraud score accepted in lenient mode\" account=%s score=%.2f",
			req.BeneficiaryAccountNumber, *result.FraudScore)
	}

	if result.AccountStatus != "" && !strings.EqualFold(result.AccountStatus, "ACTIVE") {
		return &ValidationError{Reason: "beneficiary account is not active: " + result.AccountStatus}
	}

	return nil
}
