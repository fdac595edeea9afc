// Package errors provides custom error types for order operations.
package errors

import "errors"

var ErrOrderNotFound = errors.New("order not found")
var ErrInvalidStatus = errors.New("invalid order status")
var ErrFulfillmentFailed = errors.New("fulfillment failed")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")
