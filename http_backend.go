package restcall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"google.golang.org/protobuf/proto"

	"github.com/starius/restcall/errors"
)

// HttpClient is the interface of *http.Client used by HTTPBackend.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
}

// HTTPBackend is a Backend running requests over real HTTP.
// Paths from request descriptions are appended to baseURL. Bodies are
// encoded according to the description's BodyEncoding; results are
// decoded from JSON, or from binary protobuf if the result implements
// proto.Message and the server responded with a protobuf content type.
type HTTPBackend struct {
	client        HttpClient
	baseURL       string
	errorf        func(format string, args ...interface{})
	authorization string
	maxBody       int64
	validate      *validator.Validate
}

// NewHTTPBackend creates a backend sending requests to baseURL.
func NewHTTPBackend(baseURL string, opts ...Option) *HTTPBackend {
	config := NewDefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	client := config.client
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &HTTPBackend{
		client:        client,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		errorf:        config.errorf,
		authorization: config.authorization,
		maxBody:       config.maxBody,
		validate:      config.validate,
	}
}

// Close closes idle connections and the underlying client, if it is
// an io.Closer.
func (b *HTTPBackend) Close() error {
	b.client.CloseIdleConnections()
	if closer, ok := b.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (b *HTTPBackend) encodeBody(call *Call) (body []byte, contentType string, err error) {
	switch call.BodyEncoding {
	case BodyJSON:
		body, err = json.Marshal(call.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal body to JSON: %w", err)
		}
		return body, "application/json", nil
	case BodyProto:
		message, ok := call.Body.(proto.Message)
		if !ok {
			return nil, "", fmt.Errorf("body of encoding proto must implement proto.Message, got %T", call.Body)
		}
		body, err = proto.Marshal(message)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal body to protobuf: %w", err)
		}
		return body, "application/x-protobuf", nil
	case BodyRaw:
		switch value := call.Body.(type) {
		case []byte:
			return value, "application/octet-stream", nil
		case string:
			return []byte(value), "application/octet-stream", nil
		case io.Reader:
			body, err = io.ReadAll(value)
			if err != nil {
				return nil, "", fmt.Errorf("failed to read raw body: %w", err)
			}
			return body, "application/octet-stream", nil
		default:
			return nil, "", fmt.Errorf("body of encoding raw must be []byte, string or io.Reader, got %T", call.Body)
		}
	default:
		return nil, "", fmt.Errorf("unknown body encoding %q", call.BodyEncoding)
	}
}

func (b *HTTPBackend) encodeRequest(ctx context.Context, call *Call) (*http.Request, error) {
	if b.validate != nil && call.HasBody && isStructValue(call.Body) {
		if err := b.validate.StructCtx(ctx, call.Body); err != nil {
			return nil, fmt.Errorf("request validation failed: %w", err)
		}
	}

	path, err := buildPath(call.Path, call.PathParams)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL path: %w", err)
	}

	var bodyReader io.Reader
	var contentType string
	var bodyBytes []byte
	if call.HasBody {
		bodyBytes, contentType, err = b.encodeBody(call)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	request, err := http.NewRequestWithContext(ctx, call.Method, b.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if call.HasBody {
		request.ContentLength = int64(len(bodyBytes))
		request.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(bodyBytes)), nil
		}
		request.Header.Set("Content-Type", contentType)
	}

	// The query string is built from the ordered list directly, not
	// through url.Values, whose Encode sorts keys.
	var query strings.Builder
	query.WriteString(request.URL.RawQuery)
	for _, p := range call.QueryParams {
		if query.Len() > 0 {
			query.WriteByte('&')
		}
		query.WriteString(url.QueryEscape(p.Name))
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(p.Value))
	}
	request.URL.RawQuery = query.String()

	for _, p := range call.ClassHeaders {
		request.Header.Add(p.Name, p.Value)
	}
	for _, p := range call.MethodHeaders {
		request.Header.Add(p.Name, p.Value)
	}
	for _, p := range call.HeaderParams {
		request.Header.Add(p.Name, p.Value)
	}
	if b.authorization != "" && request.Header.Get("Authorization") == "" {
		request.Header.Set("Authorization", b.authorization)
	}
	return request, nil
}

func isStructValue(obj interface{}) bool {
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct
}

func (b *HTTPBackend) do(ctx context.Context, call *Call) (*http.Response, error) {
	req, err := b.encodeRequest(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	res, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	res.Body = http.MaxBytesReader(nil, res.Body, b.maxBody)
	return res, nil
}

func (b *HTTPBackend) closeBody(res *http.Response) {
	if err := res.Body.Close(); err != nil {
		b.errorf("failed to close response body: %v", err)
	}
}

// ExecVoid implements Backend.
func (b *HTTPBackend) ExecVoid(ctx context.Context, call *Call) error {
	res, err := b.do(ctx, call)
	if err != nil {
		return err
	}
	defer b.closeBody(res)
	if !is2xx(res.StatusCode) {
		return b.decodeError(res)
	}
	// Drain so that the connection can be reused.
	if _, err := io.Copy(io.Discard, res.Body); err != nil {
		b.errorf("failed to drain response body: %v", err)
	}
	return nil
}

// ExecTyped implements Backend.
func (b *HTTPBackend) ExecTyped(ctx context.Context, call *Call, result interface{}) error {
	res, err := b.do(ctx, call)
	if err != nil {
		return err
	}
	defer b.closeBody(res)
	if !is2xx(res.StatusCode) {
		return b.decodeError(res)
	}
	return b.decodeResult(res.Body, res.Header, result)
}

// ExecRaw implements Backend. The response is returned as received,
// regardless of its status code; the caller owns it and must close
// its body.
func (b *HTTPBackend) ExecRaw(ctx context.Context, call *Call) (*http.Response, error) {
	return b.do(ctx, call)
}

// ExecEnvelope implements Backend. The response body is read fully
// and replayed, so the response can be inspected after decoding.
func (b *HTTPBackend) ExecEnvelope(ctx context.Context, call *Call, result interface{}) (*http.Response, error) {
	res, err := b.do(ctx, call)
	if err != nil {
		return nil, err
	}
	buf, err := io.ReadAll(res.Body)
	b.closeBody(res)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	res.Body = io.NopCloser(bytes.NewReader(buf))
	if !is2xx(res.StatusCode) {
		return res, b.decodeErrorBytes(res.Status, res.StatusCode, buf)
	}
	if err := b.decodeResult(bytes.NewReader(buf), res.Header, result); err != nil {
		return res, err
	}
	return res, nil
}

func is2xx(code int) bool {
	return 200 <= code && code < 300
}

func (b *HTTPBackend) decodeResult(body io.Reader, header http.Header, result interface{}) error {
	if strings.Contains(header.Get("Content-Type"), "protobuf") {
		if message, ok := asProtoMessage(result); ok {
			buf, err := io.ReadAll(body)
			if err != nil {
				return fmt.Errorf("failed to read response body: %w", err)
			}
			return proto.Unmarshal(buf, message)
		}
	}
	return json.NewDecoder(body).Decode(result)
}

// asProtoMessage unwraps the result pointer passed by the dispatcher.
// For a method returning (*M, error) the result is of type **M, so
// the inner pointer is allocated here if needed.
func asProtoMessage(result interface{}) (proto.Message, bool) {
	if message, ok := result.(proto.Message); ok {
		return message, true
	}
	v := reflect.ValueOf(result)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Ptr {
		return nil, false
	}
	if v.Elem().IsNil() {
		v.Elem().Set(reflect.New(v.Elem().Type().Elem()))
	}
	message, ok := v.Elem().Interface().(proto.Message)
	return message, ok
}

type errorMessage struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail,omitempty"`
	Code   string          `json:"code,omitempty"`
}

func (b *HTTPBackend) decodeError(res *http.Response) error {
	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response, HTTP status %s: %w", res.Status, err)
	}
	return b.decodeErrorBytes(res.Status, res.StatusCode, buf)
}

func (b *HTTPBackend) decodeErrorBytes(status string, statusCode int, buf []byte) error {
	var msg errorMessage
	if err := json.Unmarshal(buf, &msg); err != nil || msg.Error == "" {
		return errors.FromHTTPStatus(statusCode, "API returned error with HTTP status %s: %s", status, strings.TrimSpace(string(buf)))
	}
	return errors.FromHTTPStatus(statusCode, "API returned error with HTTP status %s: %v", status, msg.Error)
}
