package builder

import "fmt"

// ---------------------------------------------------------------------------
// Bailout
// ---------------------------------------------------------------------------

// BailoutError aborts the current compilation attempt: the builder met
// bytecode or state it cannot legally translate. It is not retryable inside
// the builder; the compilation driver decides whether to retry at a lower
// tier or fall back to interpretation.
type BailoutError struct {
	Method  string // key of the method being parsed when the bailout hit
	BCI     int    // bytecode index of the offending instruction
	Message string
}

func (e *BailoutError) Error() string {
	return fmt.Sprintf("bailout: %s (in %s at bci %d)", e.Message, e.Method, e.BCI)
}
