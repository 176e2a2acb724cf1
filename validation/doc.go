// Package validation checks request payloads with go-playground/validator
// struct tags and reports failures as INVALID_INPUT AppErrors.
//
//	type ExtractRequest struct {
//	    ID    string  `json:"id" validate:"required,max=256"`
//	    Start float64 `json:"start" validate:"finite,gte=0"`
//	    End   float64 `json:"end" validate:"finite,gtfield=Start"`
//	}
//
//	if err := validation.Validate(req); err != nil {
//	    return err // *errors.AppError with per-field details
//	}
//
// Fields are named by their json tag in messages and details.
package validation
