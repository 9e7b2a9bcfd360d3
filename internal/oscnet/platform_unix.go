//go:build unix

package oscnet

/*------------------------------------------------------------------
 *
 * Purpose:	Unix-specific OS-error classification, via the errno
 *		constants in golang.org/x/sys/unix rather than the narrower
 *		stdlib syscall package.
 *
 *---------------------------------------------------------------*/

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isFatalSocketErr reports whether err is one of the OS errors that
// should force the socket closed rather than just failing this one send:
// ECONNRESET, EPIPE, ENOTCONN.
func isFatalSocketErr(err error) bool {
	return errors.Is(err, unix.ECONNRESET) ||
		errors.Is(err, unix.EPIPE) ||
		errors.Is(err, unix.ENOTCONN)
}
