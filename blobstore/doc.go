// Package blobstore provides the storage abstraction segbench reads preset
// assets from and saves exported documents to.
//
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, used as the default staging area of the save sink
//   - LocalStore: local directory with atomic writes and mmap reads
//   - minio.Store: MinIO and other S3-compatible services
//   - s3.Store: Amazon S3 with multipart uploads
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data, PutOptions) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Remote blobs keep the context passed to Open for their reads.
package blobstore
