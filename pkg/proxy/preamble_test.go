package proxy

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func parse(t *testing.T, raw string, limits Limits) (*Preamble, error) {
	t.Helper()
	return ParsePreamble(bufio.NewReader(strings.NewReader(raw)), limits)
}

func TestParsePreamble_GETNoBody(t *testing.T) {
	p, err := parse(t, "GET /foo HTTP/1.1\r\nHost: example.com\r\n\r\n", Limits{})
	if err != nil {
		t.Fatalf("ParsePreamble: %v", err)
	}
	if p.Method != "GET" || p.Path != "/foo" || p.Version != "HTTP/1.1" {
		t.Errorf("request line = %q %q %q, want GET /foo HTTP/1.1", p.Method, p.Path, p.Version)
	}
	if host, ok := p.Headers.Get("Host"); !ok || host != "example.com" {
		t.Errorf("Host header = %q, %v, want example.com, true", host, ok)
	}
	if p.Body.Kind != BodyNone {
		t.Errorf("Body.Kind = %v, want BodyNone", p.Body.Kind)
	}
}

func TestParsePreamble_ContentLengthBody(t *testing.T) {
	p, err := parse(t, "POST /e HTTP/1.1\r\nContent-Length: 11\r\n\r\nhello world", Limits{})
	if err != nil {
		t.Fatalf("ParsePreamble: %v", err)
	}
	if p.Body.Kind != BodyLength || p.Body.Length != 11 {
		t.Errorf("Body = %+v, want Kind=BodyLength Length=11", p.Body)
	}
}

func TestParsePreamble_TransferEncodingWinsOverContentLength(t *testing.T) {
	raw := "POST /e HTTP/1.1\r\nContent-Length: 11\r\nTransfer-Encoding: chunked\r\n\r\n"
	p, err := parse(t, raw, Limits{})
	if err != nil {
		t.Fatalf("ParsePreamble: %v", err)
	}
	if p.Body.Kind != BodyUntilClose {
		t.Errorf("Body.Kind = %v, want BodyUntilClose when Transfer-Encoding is present", p.Body.Kind)
	}
}

func TestParsePreamble_DuplicateHeadersPreserveOrder(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nX-A: 1\r\nX-B: x\r\nX-A: 2\r\n\r\n"
	p, err := parse(t, raw, Limits{})
	if err != nil {
		t.Fatalf("ParsePreamble: %v", err)
	}
	var got []string
	for _, h := range p.Headers.All() {
		got = append(got, h.Name+"="+h.Value)
	}
	want := []string{"X-A=1", "X-B=x", "X-A=2"}
	if len(got) != len(want) {
		t.Fatalf("headers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("headers[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParsePreamble_MissingTerminatingCRLFCRLF(t *testing.T) {
	// The stream ends mid-headers, with no blank line ever arriving.
	_, err := parse(t, "GET / HTTP/1.1\r\nHost: example.com\r\n", Limits{})
	if err == nil {
		t.Fatal("expected an error for a preamble with no terminating blank line")
	}
	if kind, ok := KindOf(err); !ok || kind != KindMalformedRequest {
		t.Errorf("KindOf(err) = %v, %v, want KindMalformedRequest, true", kind, ok)
	}
}

func TestParsePreamble_MalformedRequestLine(t *testing.T) {
	_, err := parse(t, "GET /foo\r\n\r\n", Limits{})
	if err == nil {
		t.Fatal("expected an error for a two-token request line")
	}
	if kind, ok := KindOf(err); !ok || kind != KindMalformedRequest {
		t.Errorf("KindOf(err) = %v, %v, want KindMalformedRequest, true", kind, ok)
	}
}

func TestParsePreamble_UnsupportedVersion(t *testing.T) {
	_, err := parse(t, "GET / HTTP/2.0\r\n\r\n", Limits{})
	if err == nil {
		t.Fatal("expected an error for an unsupported HTTP version")
	}
	if kind, ok := KindOf(err); !ok || kind != KindMalformedRequest {
		t.Errorf("KindOf(err) = %v, %v, want KindMalformedRequest, true", kind, ok)
	}
}

func TestParsePreamble_MalformedHeaderLine(t *testing.T) {
	_, err := parse(t, "GET / HTTP/1.1\r\nNotAHeader\r\n\r\n", Limits{})
	if err == nil {
		t.Fatal("expected an error for a header line with no colon")
	}
	if kind, ok := KindOf(err); !ok || kind != KindMalformedRequest {
		t.Errorf("KindOf(err) = %v, %v, want KindMalformedRequest, true", kind, ok)
	}
}

func TestParsePreamble_InvalidContentLength(t *testing.T) {
	_, err := parse(t, "POST / HTTP/1.1\r\nContent-Length: not-a-number\r\n\r\n", Limits{})
	if err == nil {
		t.Fatal("expected an error for an unparseable Content-Length")
	}
	if kind, ok := KindOf(err); !ok || kind != KindMalformedRequest {
		t.Errorf("KindOf(err) = %v, %v, want KindMalformedRequest, true", kind, ok)
	}
}

func TestParsePreamble_PreambleExceedsMaxBytes(t *testing.T) {
	big := strings.Repeat("a", 100)
	raw := "GET / HTTP/1.1\r\nX-Big: " + big + "\r\n\r\n"
	_, err := parse(t, raw, Limits{MaxPreambleBytes: 40})
	if err == nil {
		t.Fatal("expected an error once the preamble exceeds MaxPreambleBytes")
	}
	if kind, ok := KindOf(err); !ok || kind != KindMalformedRequest {
		t.Errorf("KindOf(err) = %v, %v, want KindMalformedRequest, true", kind, ok)
	}
}

func TestParsePreamble_HeaderLineExceedsMaxLineBytes(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nX-Big: " + strings.Repeat("a", 100) + "\r\n\r\n"
	_, err := parse(t, raw, Limits{MaxHeaderLineBytes: 16})
	if err == nil {
		t.Fatal("expected an error once a header line exceeds MaxHeaderLineBytes")
	}
	if kind, ok := KindOf(err); !ok || kind != KindMalformedRequest {
		t.Errorf("KindOf(err) = %v, %v, want KindMalformedRequest, true", kind, ok)
	}
}

func TestParsePreamble_TooManyHeaders(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("GET / HTTP/1.1\r\n")
	for i := 0; i < 5; i++ {
		sb.WriteString("X-N: v\r\n")
	}
	sb.WriteString("\r\n")

	_, err := parse(t, sb.String(), Limits{MaxHeaderCount: 3})
	if err == nil {
		t.Fatal("expected an error once header count exceeds MaxHeaderCount")
	}
	if kind, ok := KindOf(err); !ok || kind != KindMalformedRequest {
		t.Errorf("KindOf(err) = %v, %v, want KindMalformedRequest, true", kind, ok)
	}
}

// Round trip: re-emitting a parsed preamble reproduces every header
// unchanged (name, value, order, duplicates) except for the forced
// Connection: close and the appended trace id.
func TestParsePreamble_RoundTripThroughWritePreamble(t *testing.T) {
	raw := "POST /widgets?x=1 HTTP/1.1\r\nHost: example.com\r\nX-A: 1\r\nX-A: 2\r\nContent-Length: 5\r\n\r\nhello"
	p, err := parse(t, raw, Limits{})
	if err != nil {
		t.Fatalf("ParsePreamble: %v", err)
	}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := WritePreamble(w, p, "trace123"); err != nil {
		t.Fatalf("WritePreamble: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "POST /widgets?x=1 HTTP/1.1\r\n") {
		t.Errorf("output request line = %q", out)
	}
	for _, want := range []string{"Host: example.com\r\n", "X-A: 1\r\n", "X-A: 2\r\n", "Content-Length: 5\r\n", "Connection: close\r\n", "X-Trace-ID: trace123\r\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q, got %q", want, out)
		}
	}
	if strings.Count(out, "Connection:") != 1 {
		t.Errorf("output has %d Connection headers, want exactly 1 (the forced one)", strings.Count(out, "Connection:"))
	}
	if !strings.HasSuffix(out, "\r\n\r\n") {
		t.Errorf("output does not end with a terminating CRLFCRLF, got %q", out)
	}
}
