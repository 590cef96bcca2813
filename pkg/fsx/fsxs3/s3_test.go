package fsxs3_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Abraxas-365/saenggibu/pkg/fsx"
	"github.com/Abraxas-365/saenggibu/pkg/fsx/fsxs3"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// memS3 is an in-memory bucket.
type memS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemS3() *memS3 {
	return &memS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(in.Key)] = data
	m.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *memS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	key := aws.ToString(in.Key)
	data, ok := m.objects[key]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(m.types[key]),
	}, nil
}

func (m *memS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(m.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3FileSystem_PrefixesKeys(t *testing.T) {
	ctx := context.Background()
	bucket := newMemS3()
	fs := fsxs3.NewS3FileSystem(bucket, "records", "/uploads/")

	path := fs.Join("abc", "source.pdf")
	if err := fs.WriteFile(ctx, path, []byte("pdf")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, ok := bucket.objects["uploads/abc/source.pdf"]; !ok {
		t.Fatalf("unexpected keys %v", bucket.objects)
	}
	if ct := bucket.types["uploads/abc/source.pdf"]; ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}

	data, err := fs.ReadFile(ctx, path)
	if err != nil || string(data) != "pdf" {
		t.Fatalf("ReadFile = %q, %v", data, err)
	}

	info, err := fs.Stat(ctx, path)
	if err != nil || info.Size != 3 || info.Name != "source.pdf" {
		t.Fatalf("Stat = %+v, %v", info, err)
	}
}

func TestS3FileSystem_NotFound(t *testing.T) {
	ctx := context.Background()
	fs := fsxs3.NewS3FileSystem(newMemS3(), "records", "")

	if _, err := fs.ReadFile(ctx, "missing.pdf"); !errors.Is(err, fsx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	ok, err := fs.Exists(ctx, "missing.pdf")
	if err != nil || ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if err := fs.DeleteFile(ctx, "missing.pdf"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
}
