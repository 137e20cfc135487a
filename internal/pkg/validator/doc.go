// Package validator validates request and dependency structs.
//
// Business code depends on the Validator interface; V10Validator implements it
// with go-playground/validator v10 and English messages.
package validator
