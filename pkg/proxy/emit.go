package proxy

import (
	"bufio"
	"fmt"
	"io"
)

// WritePreamble serializes the request line and headers unchanged from
// the parsed preamble, then appends a forced "Connection: close" (any
// existing Connection header is dropped) and the trace id header, and
// terminates with CRLFCRLF. It never writes body bytes; callers stream
// the body separately with CopyBody.
func WritePreamble(w *bufio.Writer, p *Preamble, traceID string) error {
	if _, err := fmt.Fprintf(w, "%s %s %s\r\n", p.Method, p.Path, p.Version); err != nil {
		return err
	}
	for _, h := range p.Headers.All() {
		if equalFoldASCII(h.Name, "Connection") {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", h.Name, h.Value); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Connection: close\r\n"); err != nil {
		return err
	}
	if traceID != "" {
		if _, err := fmt.Fprintf(w, "X-Trace-ID: %s\r\n", traceID); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// CopyBody streams exactly body's declared length (BodyLength) or until
// EOF (BodyUntilClose; BodyNone is a no-op) from src to dst in chunks no
// larger than chunkSize, flushing dst after every chunk. Flushing after
// each write is the drain barrier: it suspends the producer until the
// chunk has actually left the local buffer, coupling producer throughput
// to the consumer without materializing the whole body in memory.
//
// It returns the number of bytes copied and an error wrapping io.EOF /
// io.ErrUnexpectedEOF as KindPeerClosed when the source closes before
// the declared length is satisfied.
func CopyBody(dst *bufio.Writer, src io.Reader, body Body, chunkSize int) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	switch body.Kind {
	case BodyNone:
		return 0, nil
	case BodyLength:
		n, err := copyN(dst, src, body.Length, chunkSize)
		if err != nil {
			return n, NewError(KindPeerClosed, "copy request body", err)
		}
		return n, nil
	case BodyUntilClose:
		return copyUntilEOF(dst, src, chunkSize)
	default:
		return 0, nil
	}
}

func copyN(dst *bufio.Writer, src io.Reader, n int64, chunkSize int) (int64, error) {
	buf := make([]byte, chunkSize)
	var copied int64
	for copied < n {
		want := int64(chunkSize)
		if remaining := n - copied; remaining < want {
			want = remaining
		}
		read, err := io.ReadFull(src, buf[:want])
		copied += int64(read)
		if read > 0 {
			if _, werr := dst.Write(buf[:read]); werr != nil {
				return copied, werr
			}
			if ferr := dst.Flush(); ferr != nil {
				return copied, ferr
			}
		}
		if err != nil {
			return copied, err
		}
	}
	return copied, nil
}

func copyUntilEOF(dst *bufio.Writer, src io.Reader, chunkSize int) (int64, error) {
	buf := make([]byte, chunkSize)
	var copied int64
	for {
		read, err := src.Read(buf)
		if read > 0 {
			if _, werr := dst.Write(buf[:read]); werr != nil {
				return copied, werr
			}
			if ferr := dst.Flush(); ferr != nil {
				return copied, ferr
			}
			copied += int64(read)
		}
		if err != nil {
			if err == io.EOF {
				return copied, nil
			}
			return copied, err
		}
	}
}
