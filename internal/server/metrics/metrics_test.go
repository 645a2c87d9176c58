package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUpload(10)
	c.RecordUpload(5)
	c.RecordTransferCreated()
	c.RecordTransferCreated()
	c.RecordTransferCancelled()
	c.RecordTransfersCompleted(3)
	c.RecordAuthFailure()
	c.RecordRateLimited()

	assert.Equal(t, 2.0, counterValue(t, c.uploads))
	assert.Equal(t, 15.0, counterValue(t, c.bytesStored))
	assert.Equal(t, 2.0, counterValue(t, c.transfers.WithLabelValues("created")))
	assert.Equal(t, 1.0, counterValue(t, c.transfers.WithLabelValues("cancelled")))
	assert.Equal(t, 3.0, counterValue(t, c.transfers.WithLabelValues("completed")))
	assert.Equal(t, 1.0, counterValue(t, c.authFailures))
	assert.Equal(t, 1.0, counterValue(t, c.rateLimitedRequest))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestNewCollector_PanicsOnDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordUpload(1)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "datamarket_uploads_total 1")
}

func TestNop_SatisfiesRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordUpload(1)
	r.RecordTransfersCompleted(2)
}
