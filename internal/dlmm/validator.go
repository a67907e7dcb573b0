package dlmm

import "math"

// Validation messages surfaced to callers
const (
	MsgTokensRequired = "Input and output tokens are required"
	MsgAmountPositive = "Amount must be positive"
	MsgAmountFinite   = "Amount must be finite"
	MsgTokensSame     = "Input and output tokens must be different"
)

// Validate checks swap params in a fixed order and returns the first
// violated rule as a *ValidationError. Token identifiers are compared as
// given; callers normalise them before validation if they need to.
func Validate(p SwapParams) error {
	if p.InputToken == "" {
		return &ValidationError{Field: "input_token", Message: MsgTokensRequired}
	}
	if p.OutputToken == "" {
		return &ValidationError{Field: "output_token", Message: MsgTokensRequired}
	}
	// !(x > 0) also catches NaN
	if !(p.Amount > 0) {
		return &ValidationError{Field: "amount", Message: MsgAmountPositive}
	}
	if math.IsInf(p.Amount, 1) {
		return &ValidationError{Field: "amount", Message: MsgAmountFinite}
	}
	if p.InputToken == p.OutputToken {
		return &ValidationError{Field: "output_token", Message: MsgTokensSame}
	}
	return nil
}
