package storage

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestDiskStorePut(t *testing.T) {
	d := NewDiskStore(t.TempDir())
	loc, err := d.Put(context.Background(), "aadhar/u1/card.png", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := os.ReadFile(loc)
	if err != nil || string(got) != "png-bytes" {
		t.Fatalf("read back %q, %v", got, err)
	}
}

func TestDiskStoreStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	d := NewDiskStore(dir)
	loc, err := d.Put(context.Background(), "../../escape.txt", "text/plain", []byte("x"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(loc) < len(dir) || loc[:len(dir)] != dir {
		t.Fatalf("file written outside %s: %s", dir, loc)
	}
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorePut(t *testing.T) {
	fp := &fakePutter{}
	s := &S3Store{client: fp, bucket: "docs"}
	loc, err := s.Put(context.Background(), "aadhar/u1.pdf", "application/pdf", []byte("pdf"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if loc != "s3://docs/aadhar/u1.pdf" {
		t.Fatalf("location = %q", loc)
	}
	if *fp.input.Bucket != "docs" || *fp.input.ContentType != "application/pdf" || string(fp.body) != "pdf" {
		t.Fatalf("unexpected input %+v body %q", fp.input, fp.body)
	}
}
