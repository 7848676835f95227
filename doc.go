// Package storage runs directory-tree operations against a hierarchical
// filesystem or a flat object store through one contract, core.Storage.
//
// Open builds the backend selected by a config.Config:
//
//	cfg, err := config.Load("storage.yaml")
//	if err != nil {
//	    return err
//	}
//	s, err := storage.Open(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if !s.IsDirectory(ctx, "uploads") {
//	    err = s.MakeDirectories(ctx, "uploads")
//	}
//
// Backends:
//
//   - local, memory: billy (hierarchical, go-billy osfs or memfs)
//   - s3: s3 (flat, prefix listing) over MinIO or an in-memory store
//   - azure: azure (flat, marker objects) over Azure Blob, MinIO or an in-memory store
//
// The backends can also be built directly from their packages.
package storage
