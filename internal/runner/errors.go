package runner

import (
	"errors"
	"fmt"

	"github.com/torosent/hostbench/internal/httpclient"
)

var (
	// ErrInvalidArgument reports a count or worker setting below one.
	ErrInvalidArgument = httpclient.ErrInvalidArgument
	// ErrInvalidHost reports a host rejected by the Validator.
	ErrInvalidHost = errors.New("invalid host")
	// ErrNoHosts reports an empty host list.
	ErrNoHosts = errors.New("no hosts to test")
	// ErrBatchAborted wraps the host error that stopped a fail-fast run.
	ErrBatchAborted = errors.New("batch aborted")
)

// HostError ties a failure to the host that caused it.
type HostError struct {
	Host string
	Err  error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("host %q: %v", e.Host, e.Err)
}

func (e *HostError) Unwrap() error {
	return e.Err
}
