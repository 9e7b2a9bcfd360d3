package oscnet

/*------------------------------------------------------------------
 *
 * Purpose:	Small OS-error classification helpers. AF_UNIX is available
 *		on every platform this engine targets (Linux, macOS, modern
 *		Windows), so the NotImplemented path is reached only when
 *		the runtime genuinely rejects the "unix" network name.
 *		The fatal-send-error classifier itself lives in
 *		platform_unix.go/platform_other.go, split by build tag
 *		since the precise errno set is a unix.* concept.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"net"
	"strings"
)

func isUnixUnsupported(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return strings.Contains(opErr.Err.Error(), "unknown network")
	}
	return false
}
