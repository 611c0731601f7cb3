// Package storage abstracts where extract files live.
//
// Partition resolution and table loads read through FS, so the same code
// path serves a local directory, an S3 bucket prefix, or an in-memory tree
// in tests. Missing paths are reported with fs.ErrNotExist in the chain.
//
// Implementations:
//   - OSFileSystem: local directories
//   - MemoryFileSystem: in-memory tree for tests
//   - S3FileSystem: objects under a bucket prefix, common prefixes act as directories
package storage
