package core_test

import (
	"testing"

	"github.com/jmgilman/go/storage/core"
)

// TestStorageType_String verifies StorageType.String() returns correct string representations.
func TestStorageType_String(t *testing.T) {
	tests := []struct {
		name        string
		storageType core.StorageType
		expected    string
	}{
		{"Unknown", core.TypeUnknown, "unknown"},
		{"Hierarchical", core.TypeHierarchical, "hierarchical"},
		{"FlatListing", core.TypeFlatListing, "flat-listing"},
		{"FlatMarker", core.TypeFlatMarker, "flat-marker"},
		{"Invalid", core.StorageType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.storageType.String()
			if result != tt.expected {
				t.Errorf("StorageType(%d).String() = %q, want %q", tt.storageType, result, tt.expected)
			}
		})
	}
}

// TestStorageType_ZeroValue verifies the zero value is TypeUnknown.
func TestStorageType_ZeroValue(t *testing.T) {
	var st core.StorageType
	if st != core.TypeUnknown {
		t.Errorf("zero StorageType = %v, want %v", st, core.TypeUnknown)
	}
}
