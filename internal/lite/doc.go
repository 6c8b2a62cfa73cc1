// Package lite is the thin, typed façade over a session.Session: functions
// that build the right wire.Request, register a plainly-typed callback, and
// forward to Session.Subscribe/Unsubscribe. It adds no dispatch logic of its
// own — session.Session already is the dispatcher — only type safety so
// callers never handle a raw wire.Kind/any pair themselves.
package lite
