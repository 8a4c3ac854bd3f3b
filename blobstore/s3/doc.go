// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "exports/")
//
// Uploads go through the SDK transfer manager and switch to multipart above
// UploadConfig.PartSize. Blob reads are ranged GETs.
package s3
