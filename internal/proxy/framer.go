package proxy

import (
	"bytes"
	"strconv"
)

// headerTerminator marks the end of an HTTP header block, per spec.md §4.7.1.
const headerTerminator = "\r\n\r\n"

// contentLengthKey is the header field this proxy reads to determine body
// length; no other form of framing (chunked transfer, etc.) is supported,
// per spec.md §1's Non-goals.
const contentLengthKey = "Content-Length: "

// headerContentLength reads the Content-Length value out of header (which
// must include the trailing "\r\n\r\n"), returning 0 if the field is absent
// — spec.md §4.7.1's "body_length = 0 if no Content-Length: line occurs".
// Grounded on first_body_length / extract_data_from_header in
// original_source/src/proxy/parse.c: the field must be found before the
// header terminator, which passing only the header slice enforces.
func headerContentLength(header []byte) int {
	idx := bytes.Index(header, []byte(contentLengthKey))
	if idx < 0 {
		return 0
	}
	start := idx + len(contentLengthKey)
	end := bytes.Index(header[start:], []byte("\r\n"))
	if end < 0 {
		return 0
	}
	n, err := strconv.Atoi(string(header[start : start+end]))
	if err != nil {
		return 0
	}
	return n
}

// messageLength returns the length of the first complete HTTP message in
// buf and true, or (0, false) if buf does not yet hold one — spec.md
// §4.7.1's completeness test, grounded on complete_header_received /
// complete_body_received / first_message_length in
// original_source/src/proxy/parse.c.
func messageLength(buf []byte) (int, bool) {
	idx := bytes.Index(buf, []byte(headerTerminator))
	if idx < 0 {
		return 0, false
	}
	headerLen := idx + len(headerTerminator)
	bodyLen := headerContentLength(buf[:headerLen])
	total := headerLen + bodyLen
	if len(buf) < total {
		return 0, false
	}
	return total, true
}

// frameOne extracts the first complete message from sb's receive buffer, if
// one is present, shifting any remaining bytes forward and reporting the
// extracted message. At most one message is framed per call, per spec.md
// §4.7.2; any further pipelined messages wait for the next call (the next
// readiness-loop append).
func frameOne(sb *streamBuffer) ([]byte, bool) {
	n, ok := messageLength(sb.recv.Bytes())
	if !ok {
		return nil, false
	}
	msg := make([]byte, n)
	copy(msg, sb.recv.Bytes()[:n])
	sb.recv.Consume(n)
	return msg, true
}
