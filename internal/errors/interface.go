package errors

// ErrorCode identifies a class of failure, e.g. "sampling_fault".
type ErrorCode string

// Error is a coded error that may carry a cause and a context payload
// (operation name, device, ...) for postmortem diagnosis.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory defines methods for creating domain errors
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
