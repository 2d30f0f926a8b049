package realtime

import "errors"

// errSessionGone means a push raced a disconnect: presence said the user was
// live, but the session closed before the write. The notification is already
// persisted, so the recipient catches up by polling.
var errSessionGone = errors.New("realtime: session no longer connected")
