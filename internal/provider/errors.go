package provider

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/everstacklabs/relay/internal/httpclient"
)

// FromUpstream translates a transport error into the typed failures the
// dispatcher understands. Non-HTTP errors (timeouts, connection failures)
// pass through unchanged.
func FromUpstream(err error) error {
	var se *httpclient.StatusError
	if !errors.As(err, &se) {
		return err
	}

	switch se.StatusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrUpstreamRateLimited, se.URL)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, se.URL)
	}
	return err
}
