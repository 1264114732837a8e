package factstore

import "errors"

// ErrIO wraps any underlying filesystem error from Save/Load beyond the
// "missing file" and "corrupt file" cases, which are handled specially.
var ErrIO = errors.New("factstore: io error")
