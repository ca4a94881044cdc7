package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/samvad-hq/samvad-api-probe/internal/domain"
	"github.com/samvad-hq/samvad-api-probe/pkg/httpclient"
)

// Handler receives the terminal result of a probe. Exactly one method is called per run.
type Handler interface {
	OnSuccess(res domain.Result)
	OnError(err error)
}

// Prober issues the configured GET and validates the JSON response.
// It holds no mutable state, so it can be reused across runs.
type Prober struct {
	client httpclient.Client
	req    domain.Request
	now    func() time.Time
}

// New builds a prober for req. A nil client falls back to a resty client without timeout.
func New(client httpclient.Client, req domain.Request) *Prober {
	if client == nil {
		client = httpclient.NewRestyClient(0)
	}
	return &Prober{client: client, req: req, now: time.Now}
}

// Request returns the request descriptor this prober sends.
func (p *Prober) Request() domain.Request { return p.req }

// Do performs a single request/response cycle.
func (p *Prober) Do(ctx context.Context) (domain.Result, error) {
	if p == nil || p.client == nil {
		return domain.Result{}, errors.New("prober is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := p.now()
	resp, err := p.client.Get(ctx, p.req.URL, p.req.Headers)
	if err != nil {
		return domain.Result{}, &TransportError{URL: p.req.URL, Err: err}
	}

	code := resp.StatusCode()
	if code < 200 || code > 299 {
		return domain.Result{}, &NetworkResponseError{StatusCode: code, Status: resp.Status()}
	}

	data, err := decodeJSON(resp.Body())
	if err != nil {
		return domain.Result{}, err
	}

	end := p.now()
	return domain.Result{
		URL:         p.req.URL,
		StatusCode:  code,
		Status:      resp.Status(),
		Data:        data,
		Elapsed:     end.Sub(start),
		CompletedAt: end.UTC(),
	}, nil
}

// Run performs Do and routes the result to h.
func (p *Prober) Run(ctx context.Context, h Handler) (domain.Result, error) {
	res, err := p.Do(ctx)
	if h != nil {
		if err != nil {
			h.OnError(err)
		} else {
			h.OnSuccess(res)
		}
	}
	return res, err
}

// decodeJSON requires the whole body to be exactly one JSON value.
func decodeJSON(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &JSONParseError{Hint: bodyHint(body), Err: errors.New("unexpected end of JSON input")}
	}

	// Unmarshal validates the whole input, so stray brackets after the value fail too.
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &JSONParseError{Hint: bodyHint(body), Err: err}
	}
	return data, nil
}
