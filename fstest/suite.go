// Package fstest provides a conformance test suite for validating storage
// backends against the core.Storage contract.
//
// The suite checks contract properties, not provider specifics. Backends
// differ in documented ways (flat stores treat a missing tree as already
// removed, the marker backend may not support moves) and Config tells the
// suite which variant to expect.
//
// Example usage:
//
//	func TestConformance(t *testing.T) {
//	    fstest.TestSuite(t, func(t *testing.T) fstest.Harness {
//	        store := memory.New()
//	        return fstest.ObjectStoreHarness(s3.New(store), store, "")
//	    }, fstest.FlatListingConfig())
//	}
package fstest

import (
	"slices"
	"testing"

	"github.com/jmgilman/go/storage/core"
)

// Harness pairs a backend with raw access to the data underneath it, so the
// suite can seed fixtures and inspect results without going through the
// contract under test.
type Harness struct {
	// Storage is the backend under test. It must start empty.
	Storage core.Storage

	// WriteFile stores data at name, creating parents where the backend needs them.
	WriteFile func(t *testing.T, name string, data []byte)

	// ReadFile returns the contents at name and whether it exists.
	ReadFile func(t *testing.T, name string) ([]byte, bool)
}

// Config configures the suite to match backend behavior.
type Config struct {
	// MarkerName is the marker file created by MakeDirectories on marker
	// backends. Empty for backends without markers.
	MarkerName string

	// TreeOpsUnsupported indicates Move and RemoveTree return core.ErrUnsupported.
	TreeOpsUnsupported bool

	// SkipTests lists test names to skip, e.g. "Move/RoundTrip".
	SkipTests []string
}

// HierarchicalConfig returns the configuration for real filesystems.
func HierarchicalConfig() Config {
	return Config{}
}

// FlatListingConfig returns the configuration for prefix-listing stores.
func FlatListingConfig() Config {
	return Config{}
}

// FlatMarkerConfig returns the configuration for marker stores with the
// given marker name. Tree operations are expected to be unsupported unless
// the backend was built with them enabled.
func FlatMarkerConfig(markerName string, treeOps bool) Config {
	return Config{
		MarkerName:         markerName,
		TreeOpsUnsupported: !treeOps,
	}
}

func (c Config) skip(t *testing.T, name string) {
	t.Helper()
	if slices.Contains(c.SkipTests, name) {
		t.Skip("Skipped by backend configuration")
	}
}

// TestSuite runs every conformance group. newHarness must return a fresh,
// empty backend each time it is called.
func TestSuite(t *testing.T, newHarness func(t *testing.T) Harness, config Config) {
	groups := []struct {
		name string
		run  func(*testing.T, Harness, Config)
	}{
		{"Exists", TestExists},
		{"MakeDirectories", TestMakeDirectories},
		{"Move", TestMove},
		{"RemoveTree", TestRemoveTree},
		{"SetPermissions", TestSetPermissions},
		{"ListDirectory", TestListDirectory},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			config.skip(t, g.name)
			g.run(t, newHarness(t), config)
		})
	}
}

// subtest runs fn as a named subtest unless the configuration skips it.
func subtest(t *testing.T, config Config, group, name string, fn func(t *testing.T)) {
	t.Run(name, func(t *testing.T) {
		config.skip(t, group+"/"+name)
		fn(t)
	})
}
