package consul

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"topmovies/pkg/discovery"

	consul "github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAgent struct {
	mu           sync.Mutex
	registered   *consul.AgentServiceRegistration
	deregistered string
	ttlUpdates   []string
	entries      []*consul.ServiceEntry
}

func (f *fakeAgent) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case req.URL.Path == "/v1/agent/service/register":
		var reg consul.AgentServiceRegistration
		if err := json.NewDecoder(req.Body).Decode(&reg); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.registered = &reg
	case strings.HasPrefix(req.URL.Path, "/v1/agent/service/deregister/"):
		f.deregistered = strings.TrimPrefix(req.URL.Path, "/v1/agent/service/deregister/")
	case strings.HasPrefix(req.URL.Path, "/v1/agent/check/"):
		f.ttlUpdates = append(f.ttlUpdates, req.URL.Path)
	case strings.HasPrefix(req.URL.Path, "/v1/health/service/"):
		_ = json.NewEncoder(w).Encode(f.entries)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestRegistry(t *testing.T, agent *fakeAgent, opts ...Option) *Registry {
	t.Helper()
	srv := httptest.NewServer(agent)
	t.Cleanup(srv.Close)
	r, err := NewRegistry(strings.TrimPrefix(srv.URL, "http://"), zap.NewNop(), opts...)
	require.NoError(t, err)
	return r
}

func TestRegister(t *testing.T) {
	agent := &fakeAgent{}
	r := newTestRegistry(t, agent, WithHTTPCheck("/healthz"), WithTags("v1"))

	require.NoError(t, r.Register(context.Background(), "movie-1", "movie", "10.0.0.7:8083"))

	agent.mu.Lock()
	reg := agent.registered
	agent.mu.Unlock()
	require.NotNil(t, reg)
	assert.Equal(t, "movie-1", reg.ID)
	assert.Equal(t, "movie", reg.Name)
	assert.Equal(t, "10.0.0.7", reg.Address)
	assert.Equal(t, 8083, reg.Port)
	assert.Equal(t, []string{"v1"}, reg.Tags)
	require.Len(t, reg.Checks, 2)
	assert.Equal(t, "movie-1", reg.Checks[0].CheckID)
	assert.Equal(t, "5s", reg.Checks[0].TTL)
	assert.Equal(t, "http://10.0.0.7:8083/healthz", reg.Checks[1].HTTP)
}

func TestRegisterRejectsBadAddress(t *testing.T) {
	r := newTestRegistry(t, &fakeAgent{})
	assert.Error(t, r.Register(context.Background(), "movie-1", "movie", "no-port"))
	assert.Error(t, r.Register(context.Background(), "movie-1", "movie", "host:http"))
}

func TestServiceAddresses(t *testing.T) {
	agent := &fakeAgent{}
	r := newTestRegistry(t, agent)

	_, err := r.ServiceAddresses(context.Background(), "catalog")
	assert.ErrorIs(t, err, discovery.ErrNotFound)

	agent.mu.Lock()
	agent.entries = []*consul.ServiceEntry{
		{Service: &consul.AgentService{Address: "10.0.0.1", Port: 80}},
		{Service: &consul.AgentService{Address: "::1", Port: 81}},
	}
	agent.mu.Unlock()
	addrs, err := r.ServiceAddresses(context.Background(), "catalog")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1:80", "[::1]:81"}, addrs)
}

func TestDeregisterAndHeartbeat(t *testing.T) {
	agent := &fakeAgent{}
	r := newTestRegistry(t, agent)

	require.NoError(t, r.ReportHealthyState("movie-1", "movie"))
	require.NoError(t, r.Deregister(context.Background(), "movie-1", "movie"))

	agent.mu.Lock()
	defer agent.mu.Unlock()
	require.Len(t, agent.ttlUpdates, 1)
	assert.Contains(t, agent.ttlUpdates[0], "movie-1")
	assert.Equal(t, "movie-1", agent.deregistered)
}
