// Package exporter writes vault snapshots to their destination: a local file
// or an S3-compatible bucket.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sink stores one named document and reports where it ended up.
type Sink interface {
	Write(ctx context.Context, name string, data []byte) (location string, err error)
}

// Options carry the settings needed to open any sink.
type Options struct {
	// Dir is the local directory used when no destination is given.
	Dir string
	S3  S3Config
}

// Open resolves dest into a sink and the name to write under.
//
//	""                      -> <Dir>/<defaultName>
//	"s3://"                 -> configured bucket, <defaultName>
//	"s3://bucket/prefix/"   -> bucket, prefix/<defaultName>
//	"s3://bucket/a/b.json"  -> bucket, a/b.json
//	"/some/dir/"            -> /some/dir/<defaultName>
//	"backup.json"           -> ./backup.json
func Open(ctx context.Context, dest, defaultName string, opts Options) (Sink, string, error) {
	dest = strings.TrimSpace(dest)

	if dest == "" {
		return FileSink{Dir: opts.Dir}, defaultName, nil
	}

	if strings.HasPrefix(dest, s3Scheme) {
		bucket, key, err := ParseS3URL(dest)
		if errors.Is(err, ErrBadS3URL) && opts.S3.Bucket != "" && dest == s3Scheme {
			bucket, key, err = opts.S3.Bucket, "", nil
		}
		if err != nil {
			return nil, "", err
		}
		if key == "" || strings.HasSuffix(key, "/") {
			key += defaultName
		}
		client, err := NewS3Client(ctx, opts.S3)
		if err != nil {
			return nil, "", err
		}
		return &S3Sink{Client: client, Bucket: bucket}, key, nil
	}

	if strings.HasSuffix(dest, string(os.PathSeparator)) || isDir(dest) {
		return FileSink{Dir: dest}, defaultName, nil
	}
	return FileSink{Dir: filepath.Dir(dest)}, filepath.Base(dest), nil
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

// FileSink writes documents into Dir, creating it when needed.
type FileSink struct {
	Dir string
}

func (f FileSink) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := name
	if !filepath.IsAbs(name) {
		path = filepath.Join(f.Dir, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := atomicWriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// atomicWriteFile writes to a temp file in the same directory and renames it
// over path, so readers never observe a partial export.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".pwvault-export-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if err := tmpFile.Chmod(perm); err != nil {
		return err
	}
	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
