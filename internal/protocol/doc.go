// Package protocol defines the wire format spoken on the daemon socket.
//
// A connection carries newline-delimited JSON. The client writes one
// [Request] per line and reads exactly one [Response] line back before
// sending the next request. A request with Stop set asks the daemon to shut
// down; the daemon answers with [Stopped] and closes the session.
//
// Unknown request fields are ignored. Every response field is always
// present, even when empty.
//
// Example usage:
//
//	enc := protocol.NewEncoder(conn)
//	dec := protocol.NewDecoder(conn, protocol.MaxResponseSize)
//
//	if err := enc.Encode(protocol.Request{Lang: "py", Script: "/tmp/a.py"}); err != nil {
//	    return err
//	}
//
//	var resp protocol.Response
//	if err := dec.Decode(&resp); err != nil {
//	    return err
//	}
package protocol
