package testutil

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/HerbHall/podscope/internal/downward"
)

// EnvOption mutates an environment fixture.
type EnvOption func(downward.MapEnv)

// NewEnv returns an environment with every Downward API variable set to a
// sensible default, suitable for test fixtures. Options apply in order.
func NewEnv(opts ...EnvOption) downward.MapEnv {
	env := downward.MapEnv{
		"NODE_NAME":           "test-node",
		"POD_NAME":            "test-pod",
		"POD_NAMESPACE":       "default",
		"POD_IP":              "10.0.0.10",
		"POD_SERVICE_ACCOUNT": "default",
	}
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// WithoutEnv removes the given keys, or every key when none are given.
func WithoutEnv(keys ...string) EnvOption {
	return func(env downward.MapEnv) {
		if len(keys) == 0 {
			for k := range env {
				delete(env, k)
			}
			return
		}
		for _, k := range keys {
			delete(env, k)
		}
	}
}

// WithVar sets an arbitrary variable.
func WithVar(key, value string) EnvOption {
	return func(env downward.MapEnv) { env[key] = value }
}

// WithNodeName sets NODE_NAME.
func WithNodeName(name string) EnvOption { return WithVar("NODE_NAME", name) }

// WithPodName sets POD_NAME.
func WithPodName(name string) EnvOption { return WithVar("POD_NAME", name) }

// WithNamespace sets POD_NAMESPACE.
func WithNamespace(ns string) EnvOption { return WithVar("POD_NAMESPACE", ns) }

// LabelsFs returns an in-memory file system holding content at path.
func LabelsFs(t *testing.T, path, content string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("testutil.LabelsFs: %v", err)
	}
	return fsys
}
