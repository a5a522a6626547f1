package check_test

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/amiskov/jmx-check/internal/testutil"
	"github.com/amiskov/jmx-check/pkg/check"
	"github.com/amiskov/jmx-check/pkg/exporter"
	"github.com/amiskov/jmx-check/pkg/jolokia"
	"github.com/amiskov/jmx-check/pkg/models"
	"github.com/amiskov/jmx-check/pkg/reporter"
	"github.com/amiskov/jmx-check/pkg/threshold"
)

const underReplicated = "kafka.server:type=ReplicaManager,name=UnderReplicatedPartitions"

type recorder struct {
	recorded []models.Severity
	failed   []string
}

func (r *recorder) Record(_ models.MBean, ev models.Evaluation) {
	r.recorded = append(r.recorded, ev.Severity)
}

func (r *recorder) RecordError(m models.MBean) {
	r.failed = append(r.failed, m.Agent.Host)
}

func newChecker(out *bytes.Buffer, recorders ...check.Recorder) *check.Checker {
	evaluator := threshold.NewEvaluator(jolokia.New(time.Second))
	rep := reporter.New(out, "Please contact DBA team by mail.", "Please contact DBA team by phone.")
	return check.New(evaluator, rep, recorders...)
}

func TestCheckMetric(t *testing.T) {
	agent := testutil.NewAgent()
	defer agent.Close()
	agent.Single(underReplicated, map[string]any{"Value": 1})

	out := new(bytes.Buffer)
	rec := &recorder{}
	severity, err := newChecker(out, rec).CheckMetric(context.Background(), check.Request{
		MBean:    agent.MBean(underReplicated),
		Warning:  threshold.Literal("1"),
		Critical: threshold.Literal("1"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.Critical, severity)
	assert.Equal(t, "CRITICAL - "+underReplicated+" A:Value : 1\nPlease contact DBA team by phone.\n", out.String())
	assert.Equal(t, []models.Severity{models.Critical}, rec.recorded)
}

func TestCheckMetricError(t *testing.T) {
	agent := testutil.NewAgent()
	defer agent.Close()
	agent.Respond(underReplicated, http.StatusOK, `{"request": {"mbean": "x"}}`)

	out := new(bytes.Buffer)
	rec := &recorder{}
	severity, err := newChecker(out, rec).CheckMetric(context.Background(), check.Request{
		MBean:    agent.MBean(underReplicated),
		Warning:  threshold.Literal("1"),
		Critical: threshold.Literal("2"),
	})
	assert.ErrorIs(t, err, models.ErrorInvalidResponse)
	assert.Equal(t, models.Critical, severity)
	assert.Empty(t, out.String())
	assert.Equal(t, []string{agent.Connection().Host}, rec.failed)
}

func TestCheckAllTakesMaxSeverity(t *testing.T) {
	kafka1 := testutil.NewAgent()
	defer kafka1.Close()
	kafka1.Single(underReplicated, map[string]any{"Value": 0})

	kafka2 := testutil.NewAgent()
	defer kafka2.Close()
	kafka2.Single(underReplicated, map[string]any{"Value": 1})

	req := func(a *testutil.Agent) check.Request {
		return check.Request{
			MBean:    a.MBean(underReplicated),
			Warning:  threshold.Literal("1"),
			Critical: threshold.Literal("5"),
		}
	}

	out := new(bytes.Buffer)
	severity, err := newChecker(out).CheckAll(context.Background(), []check.Request{req(kafka1), req(kafka2)})
	require.NoError(t, err)
	assert.Equal(t, models.Warning, severity)
	assert.Equal(t,
		"OK - "+underReplicated+" A:Value : 0\n"+
			"WARNING - "+underReplicated+" A:Value : 1\nPlease contact DBA team by mail.\n",
		out.String())
}

func TestCheckAllContinuesAfterFailure(t *testing.T) {
	down := testutil.NewAgent()
	downReq := check.Request{
		MBean:    down.MBean(underReplicated),
		Warning:  threshold.Literal("1"),
		Critical: threshold.Literal("5"),
	}
	down.Close()

	up := testutil.NewAgent()
	defer up.Close()
	up.Single(underReplicated, map[string]any{"Value": 0})
	upReq := check.Request{
		MBean:    up.MBean(underReplicated),
		Warning:  threshold.Literal("1"),
		Critical: threshold.Literal("5"),
	}

	out := new(bytes.Buffer)
	tf := exporter.NewTextfile(filepath.Join(t.TempDir(), "jmx.prom"))
	severity, err := newChecker(out, tf).CheckAll(context.Background(), []check.Request{downReq, upReq})

	assert.Equal(t, models.Critical, severity)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrorConnection)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Contains(t, out.String(), "can't connect to Jolokia")
	assert.Contains(t, out.String(), "OK - "+underReplicated+" A:Value : 0\n")
	assert.NoError(t, tf.Write())
}

func TestCheckAllStopsOnCancel(t *testing.T) {
	agent := testutil.NewAgent()
	defer agent.Close()
	agent.Single(underReplicated, map[string]any{"Value": 0})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := new(bytes.Buffer)
	severity, err := newChecker(out).CheckAll(ctx, []check.Request{{
		MBean:    agent.MBean(underReplicated),
		Warning:  threshold.Literal("1"),
		Critical: threshold.Literal("5"),
	}})
	assert.Equal(t, models.Critical, severity)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "context canceled\n", out.String())
	assert.Empty(t, agent.Requests())
}

func TestCheckPercentageOfSecondMBean(t *testing.T) {
	agent := testutil.NewAgent()
	defer agent.Close()
	agent.Single("java.lang:type=Memory", map[string]any{
		"HeapMemoryUsage": map[string]any{"used": 50, "max": 200},
	})

	heap := agent.MBean("java.lang:type=Memory").WithAttribute("HeapMemoryUsage")
	used := heap.WithKey("used")
	maxHeap := heap.WithKey("max")

	out := new(bytes.Buffer)
	severity, err := newChecker(out).CheckMetric(context.Background(), check.Request{
		MBean:    used,
		Warning:  threshold.Literal("80"),
		Critical: threshold.Literal("90"),
		Options:  threshold.Options{Second: &maxHeap},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OK, severity)
	assert.Equal(t, "OK - java.lang:type=Memory A:HeapMemoryUsage K:used : 25% (50/200)\n", out.String())
	assert.Len(t, agent.Requests(), 2)
}
