// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tfctl/rowsync/internal/log"
)

// Scheme prefixes every S3 document reference.
const Scheme = "s3://"

// ObjectRef identifies an S3 object, optionally at a specific version.
type ObjectRef struct {
	Bucket    string
	Key       string
	VersionID string
}

// String renders the reference back in s3://bucket/key form.
func (r ObjectRef) String() string {
	s := Scheme + r.Bucket + "/" + r.Key
	if r.VersionID != "" {
		s += "?versionId=" + url.QueryEscape(r.VersionID)
	}
	return s
}

// IsS3URL reports whether raw looks like an S3 reference.
func IsS3URL(raw string) bool {
	return strings.HasPrefix(raw, Scheme)
}

// ParseS3URL parses s3://bucket/key[?versionId=...].
func ParseS3URL(raw string) (ObjectRef, error) {
	if !IsS3URL(raw) {
		return ObjectRef{}, fmt.Errorf("not an s3 url: %s", raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ObjectRef{}, fmt.Errorf("invalid s3 url %s: %w", raw, err)
	}

	ref := ObjectRef{
		Bucket:    u.Host,
		Key:       strings.TrimPrefix(u.Path, "/"),
		VersionID: u.Query().Get("versionId"),
	}
	if ref.Bucket == "" || ref.Key == "" {
		return ObjectRef{}, fmt.Errorf("s3 url needs a bucket and a key: %s", raw)
	}

	return ref, nil
}

// GetObjectAPI is the slice of the S3 client Fetch needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// Fetch downloads the object ref points at.
func Fetch(ctx context.Context, client GetObjectAPI, ref ObjectRef) ([]byte, error) {
	input := &s3v2.GetObjectInput{
		Bucket: awsv2.String(ref.Bucket),
		Key:    awsv2.String(ref.Key),
	}
	if ref.VersionID != "" {
		input.VersionId = awsv2.String(ref.VersionID)
	}

	out, err := client.GetObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", ref, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}

	log.Debugf("fetched %s: %d bytes", ref, len(data))
	return data, nil
}
