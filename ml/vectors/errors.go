package vectors

import "errors"

var ErrIndexOutOfRange = errors.New("index out of range")
