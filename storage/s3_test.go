package storage_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"paper-sorts/storage"
)

type fakeObjects struct {
	objects map[string]time.Time
	bodies  map[string][]byte
	failDel map[string]bool
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string]time.Time{}, bodies: map[string][]byte{}, failDel: map[string]bool{}}
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	f.bodies[key] = data
	f.objects[key] = time.Now()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for key, ts := range f.objects {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key), LastModified: aws.Time(ts)})
	}
	return out, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	key := aws.ToString(in.Key)
	if f.failDel[key] {
		return nil, errors.New("access denied")
	}
	delete(f.objects, key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestUploadFile(t *testing.T) {
	f := newFakeObjects()
	link, err := storage.UploadFile(context.Background(), f, "https://s3.example.org", "papers", "bib.gz", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.org/papers/bib.gz", link)
	assert.Equal(t, []byte("data"), f.bodies["bib.gz"])

	f.putErr = errors.New("boom")
	_, err = storage.UploadFile(context.Background(), f, "e", "papers", "x", nil)
	assert.True(t, storage.IsStorageError(err))
}

func TestRotateObjects(t *testing.T) {
	f := newFakeObjects()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, key := range []string{"b-1", "b-2", "b-3", "b-4", "b-5"} {
		f.objects[key] = base.Add(time.Duration(i) * time.Hour)
	}
	f.failDel["b-1"] = true

	deleted, err := storage.RotateObjects(context.Background(), f, "papers", "b-", 2, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b-3", "b-2"}, deleted)
	assert.Len(t, f.objects, 3)
	assert.Contains(t, f.objects, "b-5")
	assert.Contains(t, f.objects, "b-4")
	assert.Contains(t, f.objects, "b-1")
}

func TestRotateObjects_NothingToDo(t *testing.T) {
	f := newFakeObjects()
	f.objects["only"] = time.Now()
	deleted, err := storage.RotateObjects(context.Background(), f, "papers", "", 4, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Empty(t, deleted)
}
