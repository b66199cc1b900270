// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tfctl/rowsync/internal/aws"
	"github.com/tfctl/rowsync/internal/cacheutil"
	"github.com/tfctl/rowsync/internal/log"
)

// Stdin is the source name that reads standard input.
const Stdin = "-"

// cacheDir is where fetched documents are cached beneath the cache base.
var cacheDir = []string{"documents"}

// Loader reads and parses documents from local paths, stdin or S3.
type Loader struct {
	Options

	// S3 is the client for s3:// sources. When nil one is built on first use
	// from the shell's AWS setup plus Profile, Region and Endpoint.
	S3       aws.GetObjectAPI
	Profile  string
	Region   string
	Endpoint string

	// Cache enables the on-disk cache for version pinned S3 objects.
	Cache bool

	// Stdin overrides os.Stdin for the "-" source.
	Stdin io.Reader

	once  sync.Once
	s3err error
}

// Load reads src and parses it.
func (l *Loader) Load(ctx context.Context, src string) (*Document, error) {
	name, data, err := l.read(ctx, src)
	if err != nil {
		return nil, err
	}
	return Parse(name, data, l.Options)
}

// LoadAll loads every source in order and stops at the first error.
func (l *Loader) LoadAll(ctx context.Context, srcs []string) ([]*Document, error) {
	docs := make([]*Document, 0, len(srcs))
	for _, src := range srcs {
		doc, err := l.Load(ctx, src)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// read returns the bytes behind src and the name used for format detection.
func (l *Loader) read(ctx context.Context, src string) (string, []byte, error) {
	switch {
	case src == Stdin:
		r := l.Stdin
		if r == nil {
			r = os.Stdin
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return "stdin", data, nil

	case aws.IsS3URL(src):
		ref, err := aws.ParseS3URL(src)
		if err != nil {
			return "", nil, err
		}
		fetch := func() ([]byte, error) {
			client, err := l.client(ctx)
			if err != nil {
				return nil, err
			}
			return aws.Fetch(ctx, client, ref)
		}

		// Only a pinned version is immutable, so only those are cached.
		var data []byte
		if l.Cache && ref.VersionID != "" {
			data, err = cacheutil.Remember(cacheDir, ref.String(), fetch)
		} else {
			data, err = fetch()
		}
		if err != nil {
			return "", nil, err
		}
		return ref.Key, data, nil

	default:
		data, err := os.ReadFile(src)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read document: %w", err)
		}
		return src, data, nil
	}
}

func (l *Loader) client(ctx context.Context) (aws.GetObjectAPI, error) {
	l.once.Do(func() {
		if l.S3 != nil {
			return
		}
		var opts []aws.Option
		if l.Profile != "" {
			opts = append(opts, aws.WithProfile(l.Profile))
		}
		if l.Region != "" {
			opts = append(opts, aws.WithRegion(l.Region))
		}
		cfg, err := aws.LoadAWSConfig(ctx, opts...)
		if err != nil {
			l.s3err = fmt.Errorf("failed to load aws config: %w", err)
			return
		}
		log.Debugf("s3 client: endpoint=%s", l.Endpoint)
		l.S3 = aws.NewS3(cfg, aws.WithBaseEndpoint(l.Endpoint))
	})
	return l.S3, l.s3err
}
