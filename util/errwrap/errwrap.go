// Package errwrap contains the error helpers used to combine and format the
// layered failures the engine produces: a rule import that fails partway
// through a document, a shell command that misses its deadline and then
// fails to kill its own process group, a collaborator error that needs a
// domain-meaningful message wrapped around it before it reaches a log line.
package errwrap

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Wrapf annotates err with a formatted message, keeping err in the chain. If
// err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Append can be used to safely append an error onto an existing one. If you
// pass in a nil error to append, the existing error will be returned unchanged.
// If the existing error is already nil, then the new error will be returned
// unchanged. This makes it easy to use Append as a safe `reterr += err`, when
// you don't know if either is nil or not.
func Append(reterr, err error) error {
	if reterr == nil {
		return err
	}
	if err == nil {
		return reterr
	}
	return multierror.Append(reterr, err)
}

// String returns a string representation of the error. In particular, if the
// error is nil, it returns an empty string instead of panicking.
func String(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Timeout combines a deadline failure with whatever went wrong trying to
// clean up after it — the shell gateway's case of a command missing its
// context deadline and then failing to kill the orphaned process group.
// Either half may be nil; a nil cleanupErr collapses to just deadlineErr
// rather than appending a non-error onto the chain.
func Timeout(deadlineErr, cleanupErr error) error {
	if cleanupErr == nil {
		return deadlineErr
	}
	return Append(deadlineErr, errors.Wrap(cleanupErr, "cleanup after timeout"))
}
