package optionchain

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faopulse/internal/config"
)

// chainJSON builds an upstream response with three expiries and a per-call
// adjustable call OI at the 24500 strike of the first expiry.
func chainJSON(atmCallOI int64) string {
	return fmt.Sprintf(`{
	  "records": {
	    "expiryDates": ["03-Jul-2025", "10-Jul-2025", "31-Jul-2025"],
	    "underlyingValue": 24512.35,
	    "data": [
	      {"strikePrice": 24500, "expiryDate": "10-Jul-2025",
	       "CE": {"openInterest": 900, "changeinOpenInterest": 90},
	       "PE": {"openInterest": 800, "changeinOpenInterest": -80}},
	      {"strikePrice": 24500, "expiryDate": "31-Jul-2025",
	       "CE": {"openInterest": 1, "changeinOpenInterest": 1}},
	      {"strikePrice": 24600, "expiryDate": "03-Jul-2025",
	       "CE": {"openInterest": 500, "changeinOpenInterest": 50}},
	      {"strikePrice": 24500, "expiryDate": "03-Jul-2025",
	       "CE": {"openInterest": %d, "changeinOpenInterest": 100},
	       "PE": {"openInterest": 1200, "changeinOpenInterest": -20}}
	    ]
	  }
	}`, atmCallOI)
}

// newTestClient points a client with a fresh memory store at a test server
// that requires the warm-up cookie before serving the API.
func newTestClient(t *testing.T, callOI *int64) (*Client, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "nseappid", Value: "session"})
	})
	mux.HandleFunc("/api/option-chain-indices", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("nseappid"); err != nil {
			http.Error(w, "missing session cookie", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, chainJSON(*callOI))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.SourceConfig{
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
	}
	client, err := NewClient(cfg, NewMemoryStore(), nil)
	require.NoError(t, err)
	client.homeURL = srv.URL + "/"
	client.apiURL = srv.URL + "/api/option-chain-indices?symbol=NIFTY"
	return client, srv
}

func TestSnapshotKeepsFirstTwoExpiriesSorted(t *testing.T) {
	callOI := int64(1000)
	client, _ := newTestClient(t, &callOI)

	chain, err := client.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"03-Jul-2025", "10-Jul-2025"}, chain.Expiries)
	require.Len(t, chain.Rows, 3, "third expiry filtered out")

	// Expiry order first, strike order within.
	assert.Equal(t, "03-Jul-2025", chain.Rows[0].Expiry)
	assert.Equal(t, float64(24500), chain.Rows[0].Strike)
	assert.Equal(t, "03-Jul-2025", chain.Rows[1].Expiry)
	assert.Equal(t, float64(24600), chain.Rows[1].Strike)
	assert.Equal(t, "10-Jul-2025", chain.Rows[2].Expiry)

	assert.Equal(t, int64(1000), chain.Rows[0].CallOI)
	assert.Equal(t, int64(1200), chain.Rows[0].PutOI)
}

func TestSnapshotATMStrike(t *testing.T) {
	callOI := int64(1000)
	client, _ := newTestClient(t, &callOI)

	chain, err := client.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 24512.35, chain.SpotPrice)
	assert.Equal(t, float64(24500), chain.ATMStrike)
}

func TestSnapshotPollDeltas(t *testing.T) {
	callOI := int64(1000)
	client, _ := newTestClient(t, &callOI)

	first, err := client.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Zero(t, first.Rows[0].CallPollDelta, "first poll has no prior state")

	callOI = 1150
	second, err := client.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(150), second.Rows[0].CallPollDelta)
	assert.Zero(t, second.Rows[0].PutPollDelta)
}

func TestSnapshotUpstreamDown(t *testing.T) {
	cfg := config.SourceConfig{UserAgent: "test-agent", Timeout: time.Second}
	client, err := NewClient(cfg, NewMemoryStore(), nil)
	require.NoError(t, err)
	client.homeURL = "http://127.0.0.1:1/"
	client.apiURL = "http://127.0.0.1:1/api"

	_, err = client.Snapshot(context.Background())
	assert.Error(t, err)
}

func TestProcessEmptyResponse(t *testing.T) {
	_, err := process(&chainResponse{}, time.Now())
	assert.Error(t, err)
}
