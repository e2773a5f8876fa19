package nextcloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aitormendez/nextcloud-mcp-server/internal/davxml"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBody caps how many bytes of a response are read.
const DefaultMaxBody int64 = 16 << 20

// NewHTTPClient returns the default transport for remote calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

type request struct {
	op     string
	method string
	url    string
	header http.Header
	body   []byte
	// limit overrides the transport's body cap. A response longer than
	// limit is truncated instead of failing.
	limit int64
}

type reply struct {
	status int
	header http.Header
	body   []byte
}

type transport struct {
	doer    Doer
	rc      RemoteContext
	logger  *zap.Logger
	maxBody int64
}

func (t *transport) do(ctx context.Context, req request) (*reply, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", req.op, err)
	}
	for k, vs := range req.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.SetBasicAuth(t.rc.User, t.rc.Password)
	httpReq.Header.Set("OCS-APIRequest", "true")
	id := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", id)

	start := time.Now()
	resp, err := t.doer.Do(httpReq)
	if err != nil {
		t.logger.Debug("remote call failed",
			zap.String("op", req.op),
			zap.String("method", req.method),
			zap.String("url", req.url),
			zap.String("request_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", req.op, err)
	}
	defer resp.Body.Close()

	limit, truncate := t.maxBody, false
	if req.limit > 0 {
		limit, truncate = req.limit, true
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", req.op, err)
	}
	if int64(len(data)) > limit {
		if !truncate {
			return nil, &ProtocolError{Op: req.op, Err: fmt.Errorf("response body exceeds %d bytes", limit)}
		}
		data = data[:limit]
	}

	t.logger.Debug("remote call",
		zap.String("op", req.op),
		zap.String("method", req.method),
		zap.String("url", req.url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("request_id", id))

	return &reply{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// propfind issues a PROPFIND and requires a 207 Multi-Status reply.
func (t *transport) propfind(ctx context.Context, op, url string, depth int, props ...davxml.Property) (*reply, error) {
	r, err := t.do(ctx, request{
		op:     op,
		method: "PROPFIND",
		url:    url,
		header: http.Header{
			"Depth":        {strconv.Itoa(depth)},
			"Content-Type": {"application/xml; charset=utf-8"},
		},
		body: davxml.EncodePropfind(props...),
	})
	if err != nil {
		return nil, err
	}
	if r.status != http.StatusMultiStatus {
		return nil, newRemoteError(op, r)
	}
	return r, nil
}

// decode parses a multistatus body, reporting malformed documents as
// *ProtocolError.
func decode[T any](op string, body []byte, extract func(davxml.Response) (T, bool)) ([]T, error) {
	out, err := davxml.DecodeMultiStatus(body, extract)
	if err != nil {
		if errors.Is(err, davxml.ErrMalformed) {
			return nil, &ProtocolError{Op: op, Err: err}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
