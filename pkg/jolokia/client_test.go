package jolokia_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amiskov/jmx-check/internal/testutil"
	"github.com/amiskov/jmx-check/pkg/jolokia"
	"github.com/amiskov/jmx-check/pkg/models"
)

const underReplicated = "kafka.server:type=ReplicaManager,name=UnderReplicatedPartitions"

func TestFetchSingleMBean(t *testing.T) {
	agent := testutil.NewAgent()
	defer agent.Close()
	agent.Respond("foo:type=Bar", http.StatusOK, `{"value": {"Value": 7}, "request": {"mbean": "foo:type=Bar"}}`)

	results, err := jolokia.New(time.Second).Fetch(context.Background(), agent.MBean("foo:type=Bar"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "foo:type=Bar", results[0].Name)
	assert.Equal(t, `{"Value":7}`, results[0].Content.String())

	v, err := results[0].ValueOf("Value", "")
	require.NoError(t, err)
	assert.Equal(t, "7", v.String())
}

func TestFetchPattern(t *testing.T) {
	agent := testutil.NewAgent()
	defer agent.Close()
	agent.Respond("kafka.server:type=*", http.StatusOK, `{
		"value": {
			"bean2": {"Value": 2},
			"bean1": {"Value": 1},
			"bean3": {"Value": 3.0}
		},
		"request": {"type": "read"}
	}`)

	results, err := jolokia.New(time.Second).Fetch(context.Background(), agent.MBean("kafka.server:type=*"))
	require.NoError(t, err)
	require.Len(t, results, 3)

	names := []string{}
	for _, r := range results {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"bean2", "bean1", "bean3"}, names)

	v, err := results[2].ValueOf("Value", "")
	require.NoError(t, err)
	assert.Equal(t, "3.0", v.String())
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{
			name:   "missing value",
			status: http.StatusOK,
			body:   `{"request": {"mbean": "foo:type=Bar"}, "status": 200}`,
			want:   models.ErrorInvalidResponse,
		},
		{
			name:   "not JSON",
			status: http.StatusOK,
			body:   `<html>proxy error</html>`,
			want:   models.ErrorInvalidResponse,
		},
		{
			name:   "pattern value is not an object",
			status: http.StatusOK,
			body:   `{"value": 7, "request": {}}`,
			want:   models.ErrorInvalidResponse,
		},
		{
			name:   "unexpected status",
			status: http.StatusInternalServerError,
			body:   `oops`,
			want:   models.ErrorUnexpectedStatus,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := testutil.NewAgent()
			defer agent.Close()
			agent.Respond("foo:type=Bar", tt.status, tt.body)

			_, err := jolokia.New(time.Second).Fetch(context.Background(), agent.MBean("foo:type=Bar"))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.body)
		})
	}
}

func TestFetchUnexpectedStatusIsInvalidResponse(t *testing.T) {
	agent := testutil.NewAgent()
	defer agent.Close()
	agent.Respond("foo:type=Bar", http.StatusForbidden, "")

	_, err := jolokia.New(time.Second).Fetch(context.Background(), agent.MBean("foo:type=Bar"))
	assert.ErrorIs(t, err, models.ErrorInvalidResponse)
	assert.Contains(t, err.Error(), "403")
}

func TestFetchAgentError(t *testing.T) {
	agent := testutil.NewAgent()
	defer agent.Close()

	_, err := jolokia.New(time.Second).Fetch(context.Background(), agent.MBean(underReplicated))
	assert.ErrorIs(t, err, models.ErrorInvalidResponse)
	assert.Contains(t, err.Error(), "InstanceNotFoundException")
}

func TestFetchBasicAuth(t *testing.T) {
	agent := testutil.NewAgent()
	defer agent.Close()
	agent.RequireAuth("monitor", "secret")
	agent.Single(underReplicated, map[string]any{"Value": 0})

	mbean := agent.MBean(underReplicated)
	_, err := jolokia.New(time.Second).Fetch(context.Background(), mbean)
	assert.ErrorIs(t, err, models.ErrorUnexpectedStatus)

	mbean.Agent.User = "monitor"
	mbean.Agent.Password = "secret"
	results, err := jolokia.New(time.Second).Fetch(context.Background(), mbean)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, underReplicated, results[0].Name)
}

func TestFetchConnectionError(t *testing.T) {
	agent := testutil.NewAgent()
	mbean := agent.MBean(underReplicated)
	agent.Close()

	_, err := jolokia.New(time.Second).Fetch(context.Background(), mbean)
	assert.ErrorIs(t, err, models.ErrorConnection)
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	mbean := models.NewMBean(underReplicated, models.Agent{Host: u.Hostname(), Port: port, Context: "jolokia"})

	_, err = jolokia.New(50*time.Millisecond).Fetch(context.Background(), mbean)
	assert.ErrorIs(t, err, models.ErrorConnection)
}

func TestFetchRequestPath(t *testing.T) {
	agent := testutil.NewAgent()
	defer agent.Close()
	agent.Single(underReplicated, map[string]any{"Value": 0})

	_, err := jolokia.New(time.Second).Fetch(context.Background(), agent.MBean(underReplicated))
	require.NoError(t, err)
	assert.Equal(t, []string{underReplicated}, agent.Requests())
}
