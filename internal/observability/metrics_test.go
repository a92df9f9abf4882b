package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(callbacksTotal.WithLabelValues("day", "not_found"))
	RecordCallback("day", "not_found")
	require.Equal(t, before+1, testutil.ToFloat64(callbacksTotal.WithLabelValues("day", "not_found")))

	RecordRegistration("new", 12)
	require.Equal(t, float64(12), testutil.ToFloat64(knownUsers))

	before = testutil.ToFloat64(gateChecksTotal.WithLabelValues("timeout"))
	RecordGateCheck("timeout", 5*time.Second)
	require.Equal(t, before+1, testutil.ToFloat64(gateChecksTotal.WithLabelValues("timeout")))

	before = testutil.ToFloat64(sendsTotal.WithLabelValues("send.video", "fail"))
	RecordSend("send.video", errors.New("x"))
	require.Equal(t, before+1, testutil.ToFloat64(sendsTotal.WithLabelValues("send.video", "fail")))

	before = testutil.ToFloat64(deliveriesTotal.WithLabelValues("document", "unavailable"))
	RecordDelivery("document", "unavailable")
	require.Equal(t, before+1, testutil.ToFloat64(deliveriesTotal.WithLabelValues("document", "unavailable")))
}

func TestNilServer(t *testing.T) {
	s := StartServer("")
	require.Nil(t, s)
	require.NoError(t, s.Shutdown(context.Background()))
}
