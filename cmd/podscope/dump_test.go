package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbHall/podscope/internal/downward"
	"github.com/HerbHall/podscope/internal/testutil"
)

func TestDump_JSON(t *testing.T) {
	fsys := testutil.LabelsFs(t, downward.DefaultLabelsPath, "app=\"web\"\n")
	var stdout, stderr bytes.Buffer

	code := dumpWith(fsys, testutil.NewEnv(), "", "json", &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	var rep downward.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rep))
	assert.True(t, rep.Complete)
	assert.Equal(t, []downward.Label{{Key: "app", Value: "web"}}, rep.Labels)
	assert.Empty(t, stderr.String())
}

func TestDump_YAMLWithMissingSources(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := dumpWith(afero.NewMemMapFs(), downward.MapEnv{}, "", "yaml", &stdout, &stderr)

	require.Equal(t, exitOK, code)
	out := stdout.String()
	assert.Contains(t, out, "complete: false")
	assert.Contains(t, out, "labels_error: Labels file not found at /etc/podinfo/labels")
	assert.Equal(t, 5, strings.Count(out, "value: N/A"))
}

func TestDump_ConfiguredLabelsPath(t *testing.T) {
	fsys := testutil.LabelsFs(t, "/work/labels", "tier=backend")
	require.NoError(t, afero.WriteFile(fsys, "/work/podscope.yaml", []byte("labels:\n  path: /work/labels\n"), 0o644))
	var stdout, stderr bytes.Buffer

	code := dumpWith(fsys, testutil.NewEnv(), "/work/podscope.yaml", "json", &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	var rep downward.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rep))
	assert.Equal(t, []downward.Label{{Key: "tier", Value: "backend"}}, rep.Labels)
}

func TestDump_BadOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := dumpWith(afero.NewMemMapFs(), downward.MapEnv{}, "", "xml", &stdout, &stderr)

	assert.Equal(t, exitUsage, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "unsupported format")
}

func TestDump_MissingConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := dumpWith(afero.NewMemMapFs(), downward.MapEnv{}, "/nope.yaml", "json", &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr.String(), "read config /nope.yaml")
}

func TestDump_EnvOverridesLabelsPath(t *testing.T) {
	fsys := testutil.LabelsFs(t, "/run/labels", "team=core")
	t.Setenv("PODSCOPE_LABELS_PATH", "/run/labels")
	var stdout, stderr bytes.Buffer

	code := dumpWith(fsys, testutil.NewEnv(), "", "json", &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	var rep downward.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rep))
	assert.Equal(t, []downward.Label{{Key: "team", Value: "core"}}, rep.Labels)
}

func TestDump_UndecodableConfig(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/podscope.yaml", []byte("server:\n  read_timeout: soon\n"), 0o644))
	var stdout, stderr bytes.Buffer

	code := dumpWith(fsys, downward.MapEnv{}, "/podscope.yaml", "json", &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "unmarshal config")
}
