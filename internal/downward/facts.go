// Package downward reads the metadata Kubernetes hands a pod through the
// Downward API: a fixed set of environment variables and a projected labels
// file. Both channels may be partially or wholly absent; neither absence is
// an error for the caller.
package downward

import "os"

// NotAvailable is reported as the value of a fact whose backing environment
// variable is unset or empty.
const NotAvailable = "N/A"

// FactName identifies one runtime fact.
type FactName string

// The closed set of runtime facts, in display order.
const (
	FactNodeName       FactName = "Node Name"
	FactPodName        FactName = "Pod Name"
	FactPodNamespace   FactName = "Pod Namespace"
	FactPodIP          FactName = "Pod IP"
	FactServiceAccount FactName = "Service Account"
)

// FactSource binds a fact to the environment variable that carries it.
type FactSource struct {
	Name   FactName
	EnvKey string
}

// DefaultFacts returns the fact table populated by the pod manifest's
// fieldRef env entries. A fresh slice is returned on every call.
func DefaultFacts() []FactSource {
	return []FactSource{
		{Name: FactNodeName, EnvKey: "NODE_NAME"},
		{Name: FactPodName, EnvKey: "POD_NAME"},
		{Name: FactPodNamespace, EnvKey: "POD_NAMESPACE"},
		{Name: FactPodIP, EnvKey: "POD_IP"},
		{Name: FactServiceAccount, EnvKey: "POD_SERVICE_ACCOUNT"},
	}
}

// Fact is one named runtime value.
type Fact struct {
	Name    FactName `json:"name" yaml:"name"`
	Value   string   `json:"value" yaml:"value"`
	Present bool     `json:"present" yaml:"present"`
}

// RuntimeContext holds one Fact per entry of the fact table, in table order.
type RuntimeContext []Fact

// Get returns the fact with the given name.
func (rc RuntimeContext) Get(name FactName) (Fact, bool) {
	for _, f := range rc {
		if f.Name == name {
			return f, true
		}
	}
	return Fact{}, false
}

// Missing returns the number of facts that are not present.
func (rc RuntimeContext) Missing() int {
	n := 0
	for _, f := range rc {
		if !f.Present {
			n++
		}
	}
	return n
}

// Env is a read-only key/value lookup with os.LookupEnv semantics.
type Env interface {
	LookupEnv(key string) (string, bool)
}

// OSEnv reads the process environment.
type OSEnv struct{}

// LookupEnv implements Env.
func (OSEnv) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnv is a fixed environment snapshot.
type MapEnv map[string]string

// LookupEnv implements Env.
func (m MapEnv) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// ReadFacts resolves every entry of table against env. Values are taken
// verbatim; an unset or empty variable yields NotAvailable with Present
// false. A name that appears more than once in table is resolved only for
// its first entry.
func ReadFacts(env Env, table []FactSource) RuntimeContext {
	rc := make(RuntimeContext, 0, len(table))
	seen := make(map[FactName]struct{}, len(table))
	for _, src := range table {
		if _, dup := seen[src.Name]; dup {
			continue
		}
		seen[src.Name] = struct{}{}

		f := Fact{Name: src.Name, Value: NotAvailable}
		if v, ok := env.LookupEnv(src.EnvKey); ok && v != "" {
			f.Value = v
			f.Present = true
		}
		rc = append(rc, f)
	}
	return rc
}
