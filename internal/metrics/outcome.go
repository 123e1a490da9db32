package metrics

import "time"

// OutcomeKind distinguishes a received response from a transport failure.
type OutcomeKind int

const (
	// OutcomeOK means a response was received; StatusCode and Elapsed are set.
	OutcomeOK OutcomeKind = iota
	// OutcomeError covers timeouts, refused connections, DNS and TLS failures
	// and any other transport-level problem. It carries no status code.
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the result of a single GET attempt.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Elapsed    time.Duration
	// Err is kept for logging and error breakdowns only.
	Err error
}

// OK builds an outcome for a received response.
func OK(statusCode int, elapsed time.Duration) Outcome {
	return Outcome{Kind: OutcomeOK, StatusCode: statusCode, Elapsed: elapsed}
}

// Failure builds an outcome for a transport-level failure.
func Failure(err error) Outcome {
	return Outcome{Kind: OutcomeError, Err: err}
}

// ElapsedMs returns the elapsed time in milliseconds with sub-millisecond precision.
func (o Outcome) ElapsedMs() float64 {
	return durationMs(o.Elapsed)
}

// Class is the report bucket an outcome is counted in.
type Class int

const (
	ClassSuccess Class = iota // 2xx
	ClassFailed               // 4xx and 5xx
	ClassError                // transport failure
	ClassOther                // 1xx, 3xx and anything out of range
)

func (c Class) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassFailed:
		return "failed"
	case ClassError:
		return "error"
	default:
		return "other"
	}
}

// Classify maps an outcome to its report bucket.
func Classify(o Outcome) Class {
	if o.Kind != OutcomeOK {
		return ClassError
	}
	switch {
	case o.StatusCode >= 200 && o.StatusCode < 300:
		return ClassSuccess
	case o.StatusCode >= 400 && o.StatusCode < 600:
		return ClassFailed
	default:
		return ClassOther
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
