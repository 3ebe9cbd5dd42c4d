// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package publish uploads analysis results to S3 compatible object
// storage.
package publish

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/irifrance/hwbench/internal/config"
)

// Type Store is the part of an object store client used to publish.
type Store interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucket, object, file string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// NewClient creates a minio client for target p.
func NewClient(p config.Publish) (*minio.Client, error) {
	return minio.New(p.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(p.AccessKey, p.SecretKey, ""),
		Secure: p.Secure,
		Region: p.Region})
}

// Type Publisher uploads directories under a prefix of a bucket.
type Publisher struct {
	Store  Store
	Bucket string
	Region string
	Log    *zap.Logger
}

// New creates a publisher for target p.
func New(p config.Publish, lg *zap.Logger) (*Publisher, error) {
	c, e := NewClient(p)
	if e != nil {
		return nil, e
	}
	return &Publisher{Store: c, Bucket: p.Bucket, Region: p.Region, Log: lg}, nil
}

func (p *Publisher) ensureBucket(ctx context.Context) error {
	ok, e := p.Store.BucketExists(ctx, p.Bucket)
	if e != nil {
		return fmt.Errorf("bucket %s exists: %w", p.Bucket, e)
	}
	if ok {
		return nil
	}
	return p.Store.MakeBucket(ctx, p.Bucket, minio.MakeBucketOptions{Region: p.Region})
}

// Dir uploads every regular file under dir as prefix/<relative path>,
// creating the bucket if needed.  It returns the number of uploaded
// files.
func (p *Publisher) Dir(ctx context.Context, dir, prefix string) (int, error) {
	if e := p.ensureBucket(ctx); e != nil {
		return 0, e
	}
	n := 0
	e := filepath.WalkDir(dir, func(fp string, d fs.DirEntry, e error) error {
		if e != nil {
			return e
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, e := filepath.Rel(dir, fp)
		if e != nil {
			return e
		}
		obj := path.Join(prefix, filepath.ToSlash(rel))
		opts := minio.PutObjectOptions{ContentType: mime.TypeByExtension(filepath.Ext(fp))}
		info, e := p.Store.FPutObject(ctx, p.Bucket, obj, fp, opts)
		if e != nil {
			return fmt.Errorf("uploading %s: %w", obj, e)
		}
		p.Log.Debug("uploaded", zap.String("object", obj), zap.Int64("size", info.Size))
		n++
		return nil
	})
	return n, e
}
