// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("regions/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	client := hexzone.New(store)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large cell maps
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
