package proxy

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Limits bounds the preamble parser. Zero fields fall back to the
// package defaults (DefaultMaxPreambleBytes, DefaultMaxHeaderLineBytes,
// DefaultMaxHeaderCount).
type Limits struct {
	MaxPreambleBytes   int
	MaxHeaderLineBytes int
	MaxHeaderCount     int
}

// Package defaults per the wire-protocol limits: preamble <= 64KiB,
// individual header line <= 8KiB, header count <= 100.
const (
	DefaultMaxPreambleBytes   = 65536
	DefaultMaxHeaderLineBytes = 8192
	DefaultMaxHeaderCount     = 100
	DefaultChunkSize          = 65536
)

func (l Limits) orDefaults() Limits {
	if l.MaxPreambleBytes <= 0 {
		l.MaxPreambleBytes = DefaultMaxPreambleBytes
	}
	if l.MaxHeaderLineBytes <= 0 {
		l.MaxHeaderLineBytes = DefaultMaxHeaderLineBytes
	}
	if l.MaxHeaderCount <= 0 {
		l.MaxHeaderCount = DefaultMaxHeaderCount
	}
	return l
}

// BodyKind classifies how (or whether) a request body should be read
// off the client socket.
type BodyKind int

const (
	// BodyNone means no body is expected: neither Content-Length nor
	// Transfer-Encoding was present, whatever the method.
	BodyNone BodyKind = iota
	// BodyLength means exactly N bytes follow, per Content-Length.
	BodyLength
	// BodyUntilClose means the body is opaque bytes forwarded verbatim
	// until the client closes (Transfer-Encoding present; chunked
	// framing is not re-parsed, only passed through).
	BodyUntilClose
)

// Body describes how many (if any) body bytes follow the preamble.
type Body struct {
	Kind   BodyKind
	Length int64 // valid when Kind == BodyLength
}

// Preamble is a parsed HTTP/1.x request line plus header block. It is
// immutable after ParsePreamble returns.
type Preamble struct {
	Method  string
	Path    string
	Version string
	Headers *Headers
	Body    Body
}

var methodsWithoutImpliedBody = map[string]bool{
	"GET": true, "HEAD": true, "DELETE": true, "OPTIONS": true,
}

// ParsePreamble reads a request line and header block terminated by
// CRLFCRLF from r, enforcing the given limits. It never reads past the
// terminating blank line, so the caller's reader is left positioned at
// the first body byte (if any).
//
// Failure to find CRLFCRLF within MaxPreambleBytes, a malformed request
// line, an unsupported version, a header line exceeding
// MaxHeaderLineBytes, more than MaxHeaderCount headers, or an
// unparseable Content-Length all fail with a *Error of KindMalformedRequest.
func ParsePreamble(r *bufio.Reader, limits Limits) (*Preamble, error) {
	limits = limits.orDefaults()

	budget := limits.MaxPreambleBytes
	readLine := func() (string, error) {
		line, err := readLimitedLine(r, limits.MaxHeaderLineBytes)
		if err != nil {
			return "", NewError(KindMalformedRequest, "read preamble line", err)
		}
		budget -= len(line) + 2
		if budget < 0 {
			return "", NewError(KindMalformedRequest, "read preamble",
				fmt.Errorf("preamble exceeds %d bytes", limits.MaxPreambleBytes))
		}
		return line, nil
	}

	requestLine, err := readLine()
	if err != nil {
		return nil, err
	}
	method, path, version, err := parseRequestLine(requestLine)
	if err != nil {
		return nil, NewError(KindMalformedRequest, "parse request line", err)
	}

	headers := NewHeaders()
	for {
		line, err := readLine()
		if err != nil {
			return nil, err
		}
		if line == "" {
			break // blank line terminates the header block
		}
		name, value, err := parseHeaderLine(line)
		if err != nil {
			return nil, NewError(KindMalformedRequest, "parse header line", err)
		}
		headers.Add(name, value)
		if headers.Len() > limits.MaxHeaderCount {
			return nil, NewError(KindMalformedRequest, "parse headers",
				fmt.Errorf("more than %d headers", limits.MaxHeaderCount))
		}
	}

	body, err := classifyBody(method, headers)
	if err != nil {
		return nil, err
	}

	return &Preamble{
		Method:  method,
		Path:    path,
		Version: version,
		Headers: headers,
		Body:    body,
	}, nil
}

// readLimitedLine reads up to the next CRLF, stripping it, and fails if
// more than maxLen bytes are read before the terminator is found.
func readLimitedLine(r *bufio.Reader, maxLen int) (string, error) {
	var sb strings.Builder
	for {
		chunk, err := r.ReadString('\n')
		sb.WriteString(chunk)
		if sb.Len() > maxLen {
			return "", fmt.Errorf("line exceeds %d bytes", maxLen)
		}
		if err != nil {
			return "", err
		}
		if strings.HasSuffix(chunk, "\n") {
			break
		}
	}
	line := strings.TrimRight(sb.String(), "\r\n")
	return line, nil
}

func parseRequestLine(line string) (method, path, version string, err error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("malformed request line %q", line)
	}
	method, path, version = parts[0], parts[1], parts[2]
	if !isToken(method) {
		return "", "", "", fmt.Errorf("malformed method %q", method)
	}
	if version != "HTTP/1.0" && version != "HTTP/1.1" {
		return "", "", "", fmt.Errorf("unsupported version %q", version)
	}
	return method, path, version, nil
}

func parseHeaderLine(line string) (name, value string, err error) {
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", "", fmt.Errorf("malformed header line %q", line)
	}
	name = line[:colon]
	if !isToken(name) {
		return "", "", fmt.Errorf("malformed header name %q", name)
	}
	value = strings.Trim(line[colon+1:], " \t")
	return name, value, nil
}

func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x20 || c == 0x7f {
			return false
		}
	}
	return true
}

// classifyBody implements the §4.1 body classification rule: when both
// Content-Length and Transfer-Encoding are present, Transfer-Encoding
// wins and the body is treated as opaque until-close pass-through.
func classifyBody(method string, headers *Headers) (Body, error) {
	_, hasTE := headers.Get("Transfer-Encoding")
	if hasTE {
		return Body{Kind: BodyUntilClose}, nil
	}

	if cl, ok := headers.Get("Content-Length"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			return Body{}, NewError(KindMalformedRequest, "parse Content-Length",
				fmt.Errorf("invalid Content-Length %q", cl))
		}
		return Body{Kind: BodyLength, Length: n}, nil
	}

	if methodsWithoutImpliedBody[strings.ToUpper(method)] {
		return Body{Kind: BodyNone}, nil
	}
	// No length, no chunked marker: per RFC 7230 the request has no
	// body. Reading would block on a socket the client has no reason
	// to close, so we do not attempt it.
	return Body{Kind: BodyNone}, nil
}
