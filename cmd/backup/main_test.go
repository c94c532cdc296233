package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"paper-sorts/config"
	"paper-sorts/services"
	"paper-sorts/storage/storagetest"
)

type memBucket struct {
	objects map[string][]byte
	times   map[string]time.Time
}

func (m *memBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *memBucket) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for key := range m.objects {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key), LastModified: aws.Time(m.times[key])})
	}
	return out, nil
}

func (m *memBucket) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(m.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestRunBackup(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	conn := services.NewConnector(storagetest.Open(t), logger, nil)
	require.NoError(t, conn.CreateTables(ctx))
	_, err := conn.AddPaper(ctx, services.NewPaper{BibtexID: "b", Bibtex: "@misc{b}", Title: "B"})
	require.NoError(t, err)
	_, err = conn.AddPaper(ctx, services.NewPaper{BibtexID: "a", Bibtex: "@misc{a}", Title: "A"})
	require.NoError(t, err)

	bucket := &memBucket{objects: map[string][]byte{}, times: map[string]time.Time{}}
	cfg := &config.Config{BackupBucket: "papers", BackupEndpoint: "https://s3.example.org", KeepBackups: 1}

	first := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, runBackup(ctx, cfg, conn, bucket, logger, first))
	key := "bibliography-2024-05-01T12-00-00Z.bib.gz"
	require.Contains(t, bucket.objects, key)
	bucket.times[key] = first

	zr, err := gzip.NewReader(bytes.NewReader(bucket.objects[key]))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "@misc{a}\n\n@misc{b}\n", string(plain))

	second := first.Add(24 * time.Hour)
	bucket.times["bibliography-2024-05-02T12-00-00Z.bib.gz"] = second
	require.NoError(t, runBackup(ctx, cfg, conn, bucket, logger, second))
	assert.Len(t, bucket.objects, 1)
	assert.Contains(t, bucket.objects, "bibliography-2024-05-02T12-00-00Z.bib.gz")
}
