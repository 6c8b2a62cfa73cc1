package channel

import "errors"

var (
	errDisjointness  = errors.New("channel: active/pending sets are not disjoint")
	errIndexMismatch = errors.New("channel: pending index does not match pending set")
)
