// Package api binds the community backend's REST resources to typed Go
// calls. Every function issues exactly one request, checks the response's
// ok flag and parses the body through an explicit wire struct, so callers
// only ever see fully populated models or an error.
//
// Nothing is cached or batched here; state lives in the packages that
// consume the API.
package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/atinyakov/DigitalHouse/internal/client/transport"
)

// API is the set of resource calls available to the client.
type API struct {
	c *transport.Client
}

// New returns an API issuing requests through c.
func New(c *transport.Client) *API {
	return &API{c: c}
}

// envelope is the success flag every JSON response carries.
type envelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func (e envelope) ack() envelope { return e }

type acker interface {
	ack() envelope
}

// call issues one request and rejects responses whose ok flag is not true.
// fallback becomes the error text whenever the server supplies none.
func (a *API) call(ctx context.Context, method, path string, query url.Values, body any, out acker, fallback string) error {
	if err := a.c.Do(ctx, method, path, query, body, out); err != nil {
		return transport.WithFallback(err, fallback)
	}
	if env := out.ack(); !env.OK {
		return &transport.APIError{
			Kind:     transport.KindRefused,
			Message:  env.Message,
			Fallback: fallback,
			Op:       method + " " + path,
		}
	}
	return nil
}

// decodeError reports a response that passed the ok check but lacks a
// field the model cannot do without.
func decodeError(method, path, fallback, format string, args ...any) error {
	return &transport.APIError{
		Kind:     transport.KindDecode,
		Fallback: fallback,
		Op:       method + " " + path,
		Err:      fmt.Errorf(format, args...),
	}
}

func pageQuery(page, limit int) url.Values {
	return url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func postPath(id int64, suffix string) string {
	return "/posts/" + strconv.FormatInt(id, 10) + suffix
}
