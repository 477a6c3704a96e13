package dimension

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsulTestClient(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(&api.Config{Address: srv.URL})
	require.NoError(t, err)
	return client
}

func TestConsulNodeResolvesIdentity(t *testing.T) {
	client := newConsulTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/agent/self", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Config":{"NodeName":"node1","Datacenter":"dc1"}}`))
	})

	p, err := NewConsulNode(client, nil)
	require.NoError(t, err)

	assert.Equal(t, "node1", dimValue(t, p, "Node"))
	assert.Equal(t, "dc1", dimValue(t, p, "Datacenter"))
}

func TestConsulNodeSendsUnknownWhileUnreachable(t *testing.T) {
	client := newConsulTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	p, err := NewConsulNode(client, nil)
	require.NoError(t, err)

	assert.Equal(t, UnknownInstanceID, dimValue(t, p, "Node"))
	assert.Equal(t, UnknownInstanceID, dimValue(t, p, "Datacenter"))
	assert.True(t, p.everFailed)
}
