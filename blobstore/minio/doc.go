// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is an S3-compatible object storage system. The store works against
// MinIO and other S3-compatible services such as Ceph, SeaweedFS and Garage,
// without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minio.Connect(ctx, minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	}, "hexzone", "regions/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client := hexzone.New(store)
package minio
