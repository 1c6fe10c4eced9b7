package domain

// Result is the uniform outcome of every public session and ledger operation.
// Callers must check Success; Err keeps the cause and is never serialized.
type Result struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
	Data    any    `json:"data,omitempty"`
	Err     error  `json:"-"`
}

// OK builds a successful result.
func OK(msg string, data any) Result {
	return Result{Success: true, Msg: msg, Data: data}
}

// Fail builds a failed result from err.
func Fail(err error) Result {
	return Result{Success: false, Msg: MessageOf(err), Err: err}
}
