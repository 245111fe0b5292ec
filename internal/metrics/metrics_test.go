package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSettlement(t *testing.T) {
	before := testutil.ToFloat64(settlementEvents.WithLabelValues("EVENT_GAIN", "confirmed"))
	RecordSettlement("EVENT_GAIN", "confirmed")
	assert.Equal(t, before+1, testutil.ToFloat64(settlementEvents.WithLabelValues("EVENT_GAIN", "confirmed")))
}

func TestHandlerExposesArcadeMetrics(t *testing.T) {
	RecordEntry("snake", "ok")
	RecordGameOutcome("snake", "game_over")

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "arcade_workflow_entries_total")
	assert.Contains(t, string(body), "arcade_game_outcomes_total")
}
