// Package errors provides custom error types for catalog operations.
package errors

import "errors"

var ErrInvalidFilter = errors.New("invalid filter")
var ErrProductNotFound = errors.New("product not found")
var ErrCategoryNotFound = errors.New("category not found")
