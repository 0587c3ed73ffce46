// Package validation provides input validation for request payloads.
//
// Struct tag validation runs through go-playground/validator and reports
// field names by their json tags:
//
//	type SubmitRequest struct {
//	    URL string `json:"url" validate:"required,http_url"`
//	}
//	err := validation.Validate(req)
//
// Programmatic validation collects errors field by field:
//
//	v := validation.New()
//	v.Required("url", url).HTTPURL("url", url)
//	if err := v.Validate(); err != nil { ... }
//
// Both return an *errors.AppError with code INVALID_INPUT and a "fields"
// detail listing each failure.
package validation
