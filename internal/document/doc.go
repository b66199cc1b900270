// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package document loads snapshot documents. A document lists sections, each
// with an id, an optional title and its rows, plus a top level editing flag:
//
//	editing: false
//	sections:
//	  - id: inbox
//	    title: Inbox
//	    rows:
//	      - {key: inv-1, text: Pay rent}
//	      - Call mom
//
// YAML, JSON and HCL are accepted. Every format is first normalized to the
// same JSON shape, which is then read with gjson. A scalar row is shorthand
// for a row whose key and text are both the scalar. Row objects are mapped
// onto Row through an attrs list and may be narrowed by filters.
//
// Sources are local paths, "-" for stdin, or s3://bucket/key[?versionId=v]
// objects. Version pinned S3 objects are cached on disk.
package document
