// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package aws loads AWS SDK v2 configuration and fetches snapshot documents
// stored in S3. Objects are addressed as s3://bucket/key, optionally pinned
// with a versionId query parameter.
package aws
