package telegram

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type scriptedTransport struct {
	errs  []error
	calls int
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}")), Request: req}, nil
}

func TestRetryTransport(t *testing.T) {
	dial := &net.OpError{Op: "dial", Err: errors.New("refused")}

	base := &scriptedTransport{errs: []error{dial, dial}}
	rt := &retryTransport{base: base, retries: 2}
	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/getMe", strings.NewReader("a=b"))
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 3, base.calls)

	streamed := &scriptedTransport{errs: []error{dial}}
	req, err = http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendVideo", io.NopCloser(strings.NewReader("video")))
	require.NoError(t, err)
	_, err = (&retryTransport{base: streamed, retries: 2}).RoundTrip(req)
	require.Error(t, err)
	require.Equal(t, 1, streamed.calls)

	permanent := &scriptedTransport{errs: []error{errors.New("malformed")}}
	req, err = http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getMe", nil)
	require.NoError(t, err)
	_, err = (&retryTransport{base: permanent, retries: 2}).RoundTrip(req)
	require.Error(t, err)
	require.Equal(t, 1, permanent.calls)
}
