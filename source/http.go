package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/objstream/transfer/errors"
)

// HTTP streams a remote object over a plain GET request.
type HTTP struct {
	client *http.Client
	url    string
}

// NewHTTP creates an HTTP source for the given URL. A nil client uses
// http.DefaultClient.
func NewHTTP(client *http.Client, url string) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{client: client, url: url}
}

// Open issues the GET request. The size comes from Content-Length and is -1
// for chunked responses.
func (h *HTTP) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, 0, errors.NewError("source", err).WithMessage("cannot build request")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, 0, errors.NewError("source", errors.ErrSourceRead).WithMessage(err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, errors.NewError("source", errors.ErrSourceRead).
			WithMessage(fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	return resp.Body, resp.ContentLength, nil
}

// Name returns the source URL.
func (h *HTTP) Name() string {
	return h.url
}
