package proxy

import (
	"bytes"
	"strconv"
)

const (
	keepAliveToken  = "keep-alive"
	closeToken      = "close"
	acceptToken     = "Accept:"
	connectionClose = "Connection: close\r\n"
	manifestExt     = ".f4m"
	nolistSuffix    = "_nolist"
	vodPrefix       = "vod/"
	segToken        = "Seg"
	fragToken       = "Frag"
)

// downgradeConnection implements spec.md §4.7.3 step 1 / connection_alive_to_close
// in original_source/src/proxy/bitrate.c: replace a "keep-alive" occurrence
// with "close", or failing that insert "Connection: close\r\n" before
// "Accept:". If neither anchor is present the request is returned
// unchanged, preserving pipelining for requests this proxy cannot
// recognize rather than guessing.
func downgradeConnection(req []byte) []byte {
	if idx := bytes.Index(req, []byte(keepAliveToken)); idx >= 0 {
		out := make([]byte, 0, len(req)-len(keepAliveToken)+len(closeToken))
		out = append(out, req[:idx]...)
		out = append(out, closeToken...)
		out = append(out, req[idx+len(keepAliveToken):]...)
		return out
	}
	if idx := bytes.Index(req, []byte(acceptToken)); idx >= 0 {
		out := make([]byte, 0, len(req)+len(connectionClose))
		out = append(out, req[:idx]...)
		out = append(out, connectionClose...)
		out = append(out, req[idx:]...)
		return out
	}
	return req
}

// extractDigitsAfter returns the decimal integer immediately following key
// in buf, up to (exclusive of) the next byte equal to terminator. It
// reports false if key is absent or the digits cannot be parsed, per
// extract_data_from_header's NULL-returning failure paths in
// original_source/src/proxy/parse.c.
func extractDigitsAfter(buf []byte, key string, terminator byte) (int, bool) {
	idx := bytes.Index(buf, []byte(key))
	if idx < 0 {
		return 0, false
	}
	start := idx + len(key)
	end := bytes.IndexByte(buf[start:], terminator)
	if end < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(buf[start : start+end]))
	if err != nil {
		return 0, false
	}
	return n, true
}

// duplicateManifest implements spec.md §4.7.3 step 3 /
// normal_plus_nolist_manifest in original_source/src/proxy/bitrate.c:
// concatenate the original request, a CRLF-CRLF separator, and a copy with
// "_nolist" inserted immediately before the first ".f4m".
func duplicateManifest(req []byte) []byte {
	idx := bytes.Index(req, []byte(manifestExt))
	if idx < 0 {
		return req
	}
	nolist := make([]byte, 0, len(req)+len(nolistSuffix))
	nolist = append(nolist, req[:idx]...)
	nolist = append(nolist, nolistSuffix...)
	nolist = append(nolist, req[idx:]...)

	out := make([]byte, 0, len(req)+4+len(nolist))
	out = append(out, req...)
	out = append(out, headerTerminator...)
	out = append(out, nolist...)
	return out
}

// substituteBitrate implements spec.md §4.7.3 step 4 / modfiy_bitrate in
// original_source/src/proxy/bitrate.c: replace the bitrate tag between
// "vod/" (exclusive of the literal itself, inclusive of its trailing
// slash) and "Seg" with newBitrate's decimal form. Reports false (leaving
// req unchanged) if either anchor is missing, which the C source does not
// guard against.
func substituteBitrate(req []byte, newBitrate int) ([]byte, bool) {
	vodIdx := bytes.Index(req, []byte(vodPrefix))
	if vodIdx < 0 {
		return req, false
	}
	begin := vodIdx + len(vodPrefix)
	segIdx := bytes.Index(req[begin:], []byte(segToken))
	if segIdx < 0 {
		return req, false
	}
	end := begin + segIdx

	out := make([]byte, 0, len(req))
	out = append(out, req[:begin]...)
	out = append(out, strconv.Itoa(newBitrate)...)
	out = append(out, req[end:]...)
	return out, true
}

// rewriteRequest applies spec.md §4.7.3 to a freshly-framed browser request
// in order: connection downgrade, fragment detection, then either manifest
// duplication or bitrate substitution. It mutates conn's
// ExpectingVideoResponse and svc's segment/fragment/bitrate bookkeeping as
// a side effect of recognizing a fragment request, mirroring parse_request
// in original_source/src/proxy/parse.c.
func (svc *Service) rewriteRequest(conn *Connection, req []byte) []byte {
	req = downgradeConnection(req)

	seg, hasSeg := extractDigitsAfter(req, segToken, '-')
	frag, hasFrag := extractDigitsAfter(req, fragToken, ' ')
	isFragment := hasSeg && hasFrag

	if bytes.Contains(req, []byte(manifestExt)) && !isFragment {
		return duplicateManifest(req)
	}

	if isFragment {
		svc.segNum = seg
		svc.fragNum = frag
		bitrate := svc.chooseBitrate()
		if rewritten, ok := substituteBitrate(req, bitrate); ok {
			req = rewritten
		}
		svc.modifiedBitrate = bitrate
		conn.ExpectingVideoResponse = true
	}

	return req
}
