// pkg/remote/winrm.go
//
// WinRM session handling for remote Windows queries. One Session per
// machine per operation; no pooling, no reuse across machines.

package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	winrm "github.com/CalypsoSys/bobwinrm"
	cerr "github.com/cockroachdb/errors"
)

const (
	// DefaultPort is the WinRM HTTP listener port.
	DefaultPort = 5985
	// DefaultHTTPSPort is the WinRM HTTPS listener port.
	DefaultHTTPSPort = 5986
)

// Config carries the transport settings for WinRM endpoints.
type Config struct {
	Port     int
	HTTPS    bool
	Insecure bool
	User     string
	Password string
	Timeout  time.Duration
}

// RemoteError is a command that ran on the target but exited nonzero.
type RemoteError struct {
	Machine  string
	ExitCode int
	Stderr   string
}

func (e *RemoteError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = "no error output"
	}
	return fmt.Sprintf("remote command on %s exited %d: %s", e.Machine, e.ExitCode, msg)
}

// Session is an established WinRM context on one machine.
type Session struct {
	machine string
	client  *winrm.Client
}

// Dial builds a WinRM client for machine and probes it with a trivial
// command so unreachable hosts fail here, not on first use. NTLM message
// encryption is used on plain HTTP endpoints.
func Dial(ctx context.Context, cfg Config, machine string) (*Session, error) {
	endpoint := winrm.NewEndpoint(machine, cfg.Port, cfg.HTTPS, cfg.Insecure, nil, nil, nil, cfg.Timeout)

	params := winrm.DefaultParameters
	enc, err := winrm.NewEncryption("ntlm")
	if err != nil {
		return nil, cerr.Wrap(err, "configure ntlm encryption")
	}
	params.TransportDecorator = func() winrm.Transporter { return enc }

	client, err := winrm.NewClientWithParameters(endpoint, cfg.User, cfg.Password, params)
	if err != nil {
		return nil, cerr.Wrapf(err, "create winrm client for %s", machine)
	}

	sess := &Session{machine: machine, client: client}
	if _, _, _, err := client.RunCmdWithContext(ctx, "hostname"); err != nil {
		return nil, cerr.Wrapf(err, "winrm probe of %s failed", machine)
	}
	return sess, nil
}

// Machine returns the host this session is bound to.
func (s *Session) Machine() string { return s.machine }

// RunScript executes a PowerShell script on the target and returns its
// stdout. Transport failures and nonzero exits are distinct errors; the
// latter carry the remote stderr for classification by callers.
func (s *Session) RunScript(ctx context.Context, script string) (string, error) {
	stdout, stderr, exitCode, err := s.client.RunPSWithContext(ctx, script)
	if err != nil {
		return "", cerr.Wrapf(err, "winrm transport to %s", s.machine)
	}
	if exitCode != 0 {
		return "", &RemoteError{Machine: s.machine, ExitCode: exitCode, Stderr: stderr}
	}
	return strings.TrimSpace(stdout), nil
}

// Close releases the session. WinRM shells are per-request, so this only
// drops the client reference, but callers treat Sessions as scoped
// resources and must call it on every exit path.
func (s *Session) Close() error {
	s.client = nil
	return nil
}
