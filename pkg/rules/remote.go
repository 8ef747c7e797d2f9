package rules

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/formcheck-go/formcheck/pkg/logger"
)

// VerdictFunc inspects a completed remote exchange and decides the outcome:
// nil is a pass, a *Violation is the expected rule failure, any other error
// is an infrastructure fault. When nil, any 2xx status is a pass.
type VerdictFunc func(status int, body map[string]any) error

// RemoteSpec describes a network-backed rule.
type RemoteSpec struct {
	Endpoint string
	Method   string // GET unless overridden
	// DataKey names the payload key carrying the value. Empty means
	// "value"; "*" means the rule's own name.
	DataKey  string
	Verdict  VerdictFunc
	Priority int // defaults to PriorityRemote
	Message  string
}

// RemoteResult is the decoded outcome of one remote round-trip. The body may
// carry successMessage/errorMessage, which take precedence over catalog
// defaults.
type RemoteResult struct {
	StatusCode     int
	Body           map[string]any
	SuccessMessage string
	ErrorMessage   string
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *Transport) {
		if client != nil {
			t.client = client
		}
	}
}

func WithTransportLogger(log *slog.Logger) TransportOption {
	return func(t *Transport) {
		if log != nil {
			t.log = log
		}
	}
}

// Transport executes remote checks over a pooled HTTP client shared by every
// remote rule of a registry.
type Transport struct {
	client *http.Client
	log    *slog.Logger
}

// NewTransport creates a transport with connection pooling sized for bursts
// of concurrent remote checks against a handful of endpoints.
func NewTransport(opts ...TransportOption) *Transport {
	t := &Transport{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: logger.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Do performs one remote check exchange. GET requests carry the payload as
// query parameters, POST as a JSON body. The error is non-nil only for
// request construction and network faults; a completed exchange with any
// status code returns a result so the verdict function can inspect it.
func (t *Transport) Do(ctx context.Context, method, endpoint string, payload map[string]any) (*RemoteResult, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrBadRequirement)
	}
	if method == "" {
		method = http.MethodGet
	}

	var req *http.Request
	var err error

	if method == http.MethodGet {
		target := endpoint
		if len(payload) > 0 {
			query := url.Values{}
			for key, value := range payload {
				query.Set(key, fmt.Sprint(value))
			}
			sep := "?"
			if strings.Contains(endpoint, "?") {
				sep = "&"
			}
			target = endpoint + sep + query.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	} else {
		body, merr := json.Marshal(payload)
		if merr != nil {
			return nil, fmt.Errorf("%w: marshal payload: %w", ErrRemoteTransport, merr)
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrRemoteTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.log.ErrorContext(ctx, "remote check transport failure", "endpoint", endpoint, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrRemoteTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	result := &RemoteResult{StatusCode: resp.StatusCode}

	// 64KB cap keeps a misbehaving endpoint from exhausting memory.
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if len(raw) > 0 {
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err == nil {
			result.Body = body
			if s, ok := body["successMessage"].(string); ok {
				result.SuccessMessage = s
			}
			if s, ok := body["errorMessage"].(string); ok {
				result.ErrorMessage = s
			}
		}
	}

	return result, nil
}

// Requirement object keys reserved for overriding the remote spec; all other
// keys become extra payload fields.
const (
	remoteKeyURL    = "url"
	remoteKeyMethod = "method"
	remoteKeyData   = "key"
)

// remoteValidator binds a RemoteSpec to the shared transport. The declared
// requirement may override the endpoint (scalar shorthand or object "url"),
// the method and the data key, and contributes extra payload fields.
func remoteValidator(name string, spec RemoteSpec, transport *Transport) Validator {
	priority := spec.Priority
	if priority == 0 {
		priority = PriorityRemote
	}

	return Validator{
		Name:            name,
		Priority:        priority,
		GroupOriented:   false,
		RequirementType: "object|string",
		Message:         spec.Message,
		Check: func(ctx context.Context, value Value, req Requirement, fctx FieldContext) (string, error) {
			endpoint := spec.Endpoint
			method := spec.Method
			dataKey := spec.DataKey

			var extras map[string]any
			switch req.Kind() {
			case ReqScalar:
				if req.Scalar() != "" {
					endpoint = req.Scalar()
				}
			case ReqObject:
				extras = req.Object()
				if s, ok := extras[remoteKeyURL].(string); ok && s != "" {
					endpoint = s
				}
				if s, ok := extras[remoteKeyMethod].(string); ok && s != "" {
					method = strings.ToUpper(s)
				}
				if s, ok := extras[remoteKeyData].(string); ok && s != "" {
					dataKey = s
				}
			}

			switch dataKey {
			case "":
				dataKey = "value"
			case "*":
				dataKey = name
			}

			payload := map[string]any{}
			if fctx.Group && fctx.Children != nil {
				for childID, childValue := range fctx.Children() {
					payload[childID] = childValue.String()
				}
			} else if value.Kind() == KindList {
				payload[dataKey] = value.List()
			} else {
				payload[dataKey] = value.Scalar()
			}
			for key, extra := range extras {
				if key == remoteKeyURL || key == remoteKeyMethod || key == remoteKeyData {
					continue
				}
				payload[key] = extra
			}

			result, err := transport.Do(ctx, method, endpoint, payload)
			if err != nil {
				return "", err
			}

			if spec.Verdict == nil {
				if result.StatusCode >= 200 && result.StatusCode < 300 {
					return result.SuccessMessage, nil
				}
				return "", fmt.Errorf("%w: %s", ErrRemoteTransport, http.StatusText(result.StatusCode))
			}

			if err := spec.Verdict(result.StatusCode, result.Body); err != nil {
				if v, ok := AsViolation(err); ok {
					if v.Rule == "" {
						v.Rule = name
					}
					// Server-declared message wins over local templates.
					if result.ErrorMessage != "" {
						v.Message = result.ErrorMessage
					}
					return "", v
				}
				return "", err
			}
			return result.SuccessMessage, nil
		},
	}
}
