package pkg

import "errors"

// Flash driver errors.
var (
	// ErrInvalidParameter indicates an invalid argument (missing required
	// buffer, undersized transfer count). Reported before any device phase
	// is issued.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrReadyTimeout indicates the device ready/busy line or status
	// register did not report ready within the polling budget.
	ErrReadyTimeout = errors.New("device ready timeout")

	// ErrTransferTimeout indicates the offload engine did not arm or
	// complete a data-phase transfer within its polling budget.
	ErrTransferTimeout = errors.New("transfer timeout")

	// ErrWriteFailed indicates the status register reported the error bit
	// after a program operation.
	ErrWriteFailed = errors.New("program failed")

	// ErrEraseFailed indicates the status register reported the error bit
	// after an erase operation.
	ErrEraseFailed = errors.New("erase failed")

	// ErrECC indicates page data contains errors beyond single-bit
	// correction capability.
	ErrECC = errors.New("uncorrectable ECC error")

	// ErrOpInFlight indicates an asynchronous program or erase is still
	// outstanding on the chip; the caller must Sync before issuing the
	// next operation.
	ErrOpInFlight = errors.New("operation in flight")

	// ErrNotReady indicates the chip reported busy where ready was
	// required.
	ErrNotReady = errors.New("device not ready")
)
