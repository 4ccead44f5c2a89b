// Package validator provides struct validation for the training pipeline.
//
// This package wraps go-playground/validator to provide:
//   - Consistent validation of message payloads at construction
//   - Human-readable error messages
//
// # Usage
//
// Use validator.Validate() on any tagged struct:
//
//	if err := validator.Validate(myStruct); err != nil {
//	    // err is a validator.ValidationErrors
//	}
//
// # Custom Validations
//
// Custom validations are registered in the init() function.
// The validator instance is package-level and thread-safe.
package validator
