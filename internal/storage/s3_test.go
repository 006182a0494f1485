package storage

import "testing"

func TestPublicURL(t *testing.T) {
	withEndpoint := &S3Uploader{cfg: Config{
		Endpoint: "https://minio.internal:9000/",
		Bucket:   "photos",
	}}
	got := withEndpoint.PublicURL("properties/abc.jpg")
	if got != "https://minio.internal:9000/photos/properties/abc.jpg" {
		t.Errorf("endpoint URL = %q", got)
	}

	plain := &S3Uploader{cfg: Config{Region: "us-east-2", Bucket: "photos"}}
	got = plain.PublicURL("properties/abc.jpg")
	if got != "https://photos.s3.us-east-2.amazonaws.com/properties/abc.jpg" {
		t.Errorf("aws URL = %q", got)
	}
}
