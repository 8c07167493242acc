package audit

import "errors"

// ErrBufferFull reports a dropped event on a saturated publisher buffer.
var ErrBufferFull = errors.New("audit buffer full, event dropped")
