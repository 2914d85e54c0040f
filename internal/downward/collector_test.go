package downward_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/HerbHall/podscope/internal/downward"
	"github.com/HerbHall/podscope/internal/testutil"
)

func TestCollect_EndToEnd(t *testing.T) {
	env := testutil.NewEnv(
		testutil.WithoutEnv(),
		testutil.WithNodeName("node-7"),
	)
	fsys := testutil.LabelsFs(t, downward.DefaultLabelsPath, "tier=frontend\nbadline\nversion=\"2\"")
	clock := testutil.NewClock()

	c := downward.NewCollector(
		downward.WithEnv(env),
		downward.WithFs(fsys),
		downward.WithClock(clock.Now),
	)
	snap := c.Collect()

	want := downward.RuntimeContext{
		{Name: downward.FactNodeName, Value: "node-7", Present: true},
		{Name: downward.FactPodName, Value: downward.NotAvailable},
		{Name: downward.FactPodNamespace, Value: downward.NotAvailable},
		{Name: downward.FactPodIP, Value: downward.NotAvailable},
		{Name: downward.FactServiceAccount, Value: downward.NotAvailable},
	}
	assert.Equal(t, want, snap.Runtime)

	require.True(t, snap.Labels.OK())
	assert.Equal(t, []downward.Label{
		{Key: "tier", Value: "frontend"},
		{Key: "version", Value: "2"},
	}, snap.Labels.Labels)

	assert.Equal(t, clock.Now(), snap.CollectedAt)
	assert.False(t, snap.Complete())
}

func TestCollect_Complete(t *testing.T) {
	c := downward.NewCollector(
		downward.WithEnv(testutil.NewEnv()),
		downward.WithFs(testutil.LabelsFs(t, downward.DefaultLabelsPath, "app=web")),
	)

	assert.True(t, c.Collect().Complete())
}

func TestCollect_MissingLabelsIsPartial(t *testing.T) {
	c := downward.NewCollector(
		downward.WithEnv(testutil.NewEnv()),
		downward.WithFs(afero.NewMemMapFs()),
	)
	snap := c.Collect()

	assert.Zero(t, snap.Runtime.Missing())
	require.False(t, snap.Labels.OK())
	assert.Equal(t, "Labels file not found at /etc/podinfo/labels", snap.Labels.Err.Error())
	assert.False(t, snap.Complete())
}

func TestCollect_WorstCase(t *testing.T) {
	c := downward.NewCollector(
		downward.WithEnv(downward.MapEnv{}),
		downward.WithFs(afero.NewMemMapFs()),
	)
	snap := c.Collect()

	assert.Equal(t, len(downward.DefaultFacts()), snap.Runtime.Missing())
	assert.False(t, snap.Labels.OK())
}

func TestCollect_FreshPerPass(t *testing.T) {
	fsys := testutil.LabelsFs(t, downward.DefaultLabelsPath, "a=1")
	c := downward.NewCollector(downward.WithEnv(testutil.NewEnv()), downward.WithFs(fsys))

	first := c.Collect()
	require.NoError(t, afero.WriteFile(fsys, downward.DefaultLabelsPath, []byte("a=2"), 0o644))
	second := c.Collect()

	v, _ := first.Labels.Get("a")
	assert.Equal(t, "1", v)
	v, _ = second.Labels.Get("a")
	assert.Equal(t, "2", v)
}

func TestWithLabelsPath(t *testing.T) {
	fsys := testutil.LabelsFs(t, "/tmp/labels", "a=1")

	c := downward.NewCollector(
		downward.WithFs(fsys),
		downward.WithLabelsPath("/tmp/labels"),
	)
	assert.Equal(t, "/tmp/labels", c.LabelsPath())
	assert.True(t, c.Collect().Labels.OK())

	assert.Equal(t, downward.DefaultLabelsPath, downward.NewCollector(downward.WithLabelsPath("")).LabelsPath())
}

func TestReport_Success(t *testing.T) {
	c := downward.NewCollector(
		downward.WithEnv(testutil.NewEnv()),
		downward.WithFs(testutil.LabelsFs(t, downward.DefaultLabelsPath, "app=web")),
		downward.WithClock(testutil.NewClock().Now),
	)
	rep := c.Collect().Report()

	assert.True(t, rep.Complete)
	assert.Len(t, rep.Runtime, 5)
	assert.Equal(t, []downward.Label{{Key: "app", Value: "web"}}, rep.Labels)
	assert.Empty(t, rep.LabelsError)
}

func TestReport_EncodeJSON(t *testing.T) {
	c := downward.NewCollector(
		downward.WithEnv(downward.MapEnv{"NODE_NAME": "node-7"}),
		downward.WithFs(afero.NewMemMapFs()),
		downward.WithClock(testutil.NewClock().Now),
	)

	var buf bytes.Buffer
	require.NoError(t, c.Collect().Report().Encode(&buf, downward.FormatJSON))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, false, raw["complete"])
	assert.Nil(t, raw["labels"])
	assert.Equal(t, "Labels file not found at /etc/podinfo/labels", raw["labels_error"])
	assert.Equal(t, "2025-01-01T00:00:00Z", raw["collected_at"])

	runtime, ok := raw["runtime"].([]any)
	require.True(t, ok)
	first := runtime[0].(map[string]any)
	assert.Equal(t, "Node Name", first["name"])
	assert.Equal(t, "node-7", first["value"])
	assert.Equal(t, true, first["present"])
}

func TestReport_EncodeYAML(t *testing.T) {
	c := downward.NewCollector(
		downward.WithEnv(testutil.NewEnv()),
		downward.WithFs(testutil.LabelsFs(t, downward.DefaultLabelsPath, "app=web")),
	)

	var buf bytes.Buffer
	require.NoError(t, c.Collect().Report().Encode(&buf, downward.FormatYAML))

	var got struct {
		Complete bool `yaml:"complete"`
		Labels   []struct {
			Key   string `yaml:"key"`
			Value string `yaml:"value"`
		} `yaml:"labels"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.True(t, got.Complete)
	require.Len(t, got.Labels, 1)
	assert.Equal(t, "app", got.Labels[0].Key)
	assert.NotContains(t, buf.String(), "labels_error")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    downward.Format
		wantErr bool
	}{
		{"", downward.FormatJSON, false},
		{"json", downward.FormatJSON, false},
		{"YAML", downward.FormatYAML, false},
		{"yml", downward.FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := downward.ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tt.in))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatContentType(t *testing.T) {
	assert.Equal(t, "application/json", downward.FormatJSON.ContentType())
	assert.Equal(t, "application/yaml", downward.FormatYAML.ContentType())
}

func TestEncode_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := downward.Snapshot{CollectedAt: time.Unix(0, 0)}.Report().Encode(&buf, downward.Format("xml"))
	assert.Error(t, err)
}
