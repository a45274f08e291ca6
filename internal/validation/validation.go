// Package validation binds HTTP requests into typed payloads and validates
// them.
//
// It uses go-playground/validator for struct tags and converts failures into
// the errs.HTTPError shape with one FieldError per offending field.
package validation
