package dimension

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dimValue(t *testing.T, p Provider, name string) string {
	t.Helper()
	for _, d := range p.GlobalDimensions() {
		if *d.Name == name {
			return *d.Value
		}
	}
	t.Fatalf("no dimension named %q", name)
	return ""
}

func TestInstanceIDResolvesFromMetadataService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("i-0abc123\n"))
	}))
	defer srv.Close()

	old := instanceMetadataURL
	instanceMetadataURL = srv.URL
	defer func() { instanceMetadataURL = old }()

	p := NewInstanceID(nil)
	assert.Equal(t, "i-0abc123", dimValue(t, p, "InstanceId"))
}

func TestInstanceIDSendsUnknownWhileUnresolved(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	old := instanceMetadataURL
	instanceMetadataURL = srv.URL
	defer func() { instanceMetadataURL = old }()

	p := NewInstanceID(nil)
	assert.Equal(t, UnknownInstanceID, dimValue(t, p, "InstanceId"))
	assert.True(t, p.everFailed)

	// Inside the cool-down window no further attempt is made.
	assert.Equal(t, UnknownInstanceID, dimValue(t, p, "InstanceId"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestInstanceIDRetriesAfterCooldown(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("i-0abc123"))
	}))
	defer srv.Close()

	old := instanceMetadataURL
	instanceMetadataURL = srv.URL
	defer func() { instanceMetadataURL = old }()

	now := time.Now()
	p := NewInstanceID(nil)
	p.now = func() time.Time { return now }

	assert.Equal(t, UnknownInstanceID, dimValue(t, p, "InstanceId"))

	// Advance past the cool-down; the retry succeeds and the resolved id
	// sticks without further lookups.
	now = now.Add(instanceIDRetryInterval + time.Second)
	assert.Equal(t, "i-0abc123", dimValue(t, p, "InstanceId"))
	assert.Equal(t, "i-0abc123", dimValue(t, p, "InstanceId"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestFixedInstanceIDSkipsLookup(t *testing.T) {
	// No server behind the URL; a lookup attempt would fail.
	old := instanceMetadataURL
	instanceMetadataURL = "http://127.0.0.1:1/latest/meta-data/instance-id"
	defer func() { instanceMetadataURL = old }()

	p := NewFixedInstanceID("flask", nil)
	assert.Equal(t, "flask", dimValue(t, p, "InstanceId"))
	assert.False(t, p.everFailed)
}

func TestInstanceIDFilter(t *testing.T) {
	p := NewFixedInstanceID("flask", func(name string) bool {
		return name == "api.requests"
	})

	require.Len(t, p.Dimensions("api.requests"), 1)
	assert.Nil(t, p.Dimensions("internal.requests"))

	// Process-wide points are not subject to the per-metric filter.
	require.Len(t, p.GlobalDimensions(), 1)
}
