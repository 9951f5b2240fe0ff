package download

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

var getHeader = http.Header{
	"User-Agent":      []string{"imgfetch/1.0 (single-user image fetch tool)"},
	"Accept":          []string{"image/*,*/*;q=0.8"},
	"Accept-Encoding": []string{"gzip, deflate"},
	"Connection":      []string{"keep-alive"},
}

// get performs an http GET with url=u using the fetcher's client, bounded
// by the fetcher's timeout. It checks status and response headers before
// reading the body, then returns the full body and its content type. The
// read is capped at MaxImageBytes+1 so an undeclared oversize body is
// caught without materializing all of it.
func (f *Fetcher) get(ctx context.Context, u string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	log.Debugf("get: %s", u)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %v", err)
	}
	for k, vs := range getHeader {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	rsp, err := f.hc.Do(req)
	if err != nil {
		return nil, "", classifyNetErr(err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return nil, "", &StatusError{Code: rsp.StatusCode, Status: rsp.Status}
	}

	contentType := rsp.Header.Get("Content-Type")
	err = validateHeaders(contentType, rsp.ContentLength)
	if err != nil {
		return nil, "", err
	}

	// Sending Accept-Encoding by hand turns off the client's transparent
	// decompression, so undo any encoding the server applied before the
	// body reaches signature validation.
	body, err := decodeBody(rsp.Body, rsp.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, "", err
	}

	lr := io.LimitReader(body, MaxImageBytes+1)
	b, err := io.ReadAll(newContextReader(ctx, lr))
	if err != nil {
		return nil, "", classifyNetErr(err)
	}
	if int64(len(b)) > MaxImageBytes {
		return nil, "", &ValidationError{
			Reason: fmt.Sprintf("image too large: body exceeds %d byte cap", int64(MaxImageBytes)),
		}
	}

	return b, contentType, nil
}

// decodeBody wraps a response body in the decoder matching its
// content-encoding. An unencoded body passes through unchanged.
func decodeBody(body io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, nil

	case "gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode gzip response: %v", err)
		}
		return zr, nil

	case "deflate":
		return flate.NewReader(body), nil

	default:
		return nil, fmt.Errorf("unsupported content-encoding: %s", encoding)
	}
}

// classifyNetErr sorts a transport-level error into the fetcher's taxonomy:
// timeout, connection failure, or generic request failure.
func classifyNetErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var operr *net.OpError
	var dnserr *net.DNSError
	if errors.As(err, &operr) || errors.As(err, &dnserr) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return fmt.Errorf("failed to send request: %v", err)
}

// contextReader wraps a reader such that reads respect context
// cancellation. An in-flight read is orphaned in its goroutine if the
// context finishes first.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func newContextReader(ctx context.Context, r io.Reader) *contextReader {
	return &contextReader{
		ctx: ctx,
		r:   r,
	}
}

// Read implements io.Reader#Read(), respecting the embedded context.
func (cr *contextReader) Read(p []byte) (int, error) {
	type result struct {
		n   int
		err error
	}

	resultChan := make(chan result, 1)

	go func() {
		n, err := cr.r.Read(p)
		resultChan <- result{n, err}
	}()

	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	case res := <-resultChan:
		return res.n, res.err
	}
}
