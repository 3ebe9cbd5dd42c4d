// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/irifrance/hwbench/internal/config"
)

type fakeStore struct {
	exists  bool
	made    []string
	objects []string
	fail    error
}

func (s *fakeStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return s.exists, nil
}

func (s *fakeStore) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	s.made = append(s.made, bucket)
	return nil
}

func (s *fakeStore) FPutObject(ctx context.Context, bucket, object, file string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if s.fail != nil {
		return minio.UploadInfo{}, s.fail
	}
	s.objects = append(s.objects, bucket+"/"+object)
	return minio.UploadInfo{Bucket: bucket, Key: object}, nil
}

func tree(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "graphs"), 0755))
	for _, f := range []string{"recap.json", "graphs/cactus.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0644))
	}
	return dir
}

func TestDir(t *testing.T) {
	s := &fakeStore{}
	p := &Publisher{Store: s, Bucket: "b", Log: zap.NewNop()}
	n, e := p.Dir(context.Background(), tree(t), "2026_01_02_03_04_05")
	require.NoError(t, e)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"b"}, s.made)
	sort.Strings(s.objects)
	assert.Equal(t, []string{
		"b/2026_01_02_03_04_05/graphs/cactus.txt",
		"b/2026_01_02_03_04_05/recap.json"}, s.objects)
}

func TestDirExistingBucketAndFailure(t *testing.T) {
	boom := errors.New("boom")
	s := &fakeStore{exists: true, fail: boom}
	p := &Publisher{Store: s, Bucket: "b", Log: zap.NewNop()}
	_, e := p.Dir(context.Background(), tree(t), "r")
	assert.ErrorIs(t, e, boom)
	assert.Empty(t, s.made)
}

func TestNewClient(t *testing.T) {
	c, e := NewClient(config.Publish{Endpoint: "localhost:9000", Bucket: "b"})
	require.NoError(t, e)
	assert.Equal(t, "localhost:9000", c.EndpointURL().Host)
}
