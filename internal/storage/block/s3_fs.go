package block

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3FS is an S3-backed Storage backend, one object per file under an
// optional key prefix. Each handle downloads its object into a local
// buffer on Open and uploads it whole on Sync/Close, the same
// download-once/upload-on-sync shape MemFS uses for its shared map — S3 has
// no partial-write primitive, so every Sync is a full PutObject.
type S3FS struct {
	client *s3.Client
	bucket string
	prefix string

	mu    sync.Mutex
	locks map[string]bool
}

// S3FSConfig configures an S3FS.
type S3FSConfig struct {
	Bucket string
	Region string
	Prefix string
}

// NewS3FS loads the default AWS configuration for region and constructs an
// S3FS. It does not verify the bucket exists.
func NewS3FS(ctx context.Context, cfg S3FSConfig) (*S3FS, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, &Error{Op: "open", Path: cfg.Bucket, Kind: KindOther, Err: err}
	}
	return &S3FS{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		locks:  make(map[string]bool),
	}, nil
}

func (s *S3FS) key(p string) string {
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if s.prefix == "" {
		return clean
	}
	return s.prefix + "/" + clean
}

// isNoSuchKey matches S3's not-found error text rather than type-switching
// on the SDK's error types, which vary across S3-compatible providers — the
// same approach internal/remote's S3Store uses.
func isNoSuchKey(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound") || strings.Contains(msg, "404")
}

func (s *S3FS) download(p string) ([]byte, time.Time, error) {
	ctx := context.Background()
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, time.Time{}, &Error{Op: "open", Path: p, Kind: KindNotFound, Err: err}
		}
		return nil, time.Time{}, &Error{Op: "open", Path: p, Kind: KindOther, Err: err}
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, time.Time{}, &Error{Op: "open", Path: p, Kind: KindOther, Err: err}
	}
	modTime := time.Now()
	if out.LastModified != nil {
		modTime = *out.LastModified
	}
	return data, modTime, nil
}

func (s *S3FS) Open(p string) (File, error) {
	data, _, err := s.download(p)
	if err != nil {
		return nil, err
	}
	return &s3Handle{fs: s, key: p, buf: data}, nil
}

func (s *S3FS) Create(p string) (File, error) {
	return &s3Handle{fs: s, key: p}, nil
}

func (s *S3FS) WriteAtomic(p string, data []byte) error {
	_, err := s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return &Error{Op: "write", Path: p, Kind: KindOther, Err: err}
	}
	return nil
}

func (s *S3FS) Remove(p string) error {
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err != nil && !isNoSuchKey(err) {
		return &Error{Op: "remove", Path: p, Kind: KindOther, Err: err}
	}
	return nil
}

func (s *S3FS) Rename(oldPath, newPath string) error {
	ctx := context.Background()
	source := s.bucket + "/" + s.key(oldPath)
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(s.key(newPath)),
		CopySource: aws.String(source),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return &Error{Op: "rename", Path: oldPath, Kind: KindNotFound, Err: err}
		}
		return &Error{Op: "rename", Path: oldPath, Kind: KindOther, Err: err}
	}
	return s.Remove(oldPath)
}

func (s *S3FS) Exists(p string) (bool, error) {
	_, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, &Error{Op: "exists", Path: p, Kind: KindOther, Err: err}
	}
	return true, nil
}

// MkdirAll is a no-op: S3 has no directories, only key prefixes.
func (s *S3FS) MkdirAll(p string) error {
	return nil
}

func (s *S3FS) ListDir(p string) ([]FileInfo, error) {
	prefix := s.key(p)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	ctx := context.Background()
	var out []FileInfo
	var token *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, &Error{Op: "list_dir", Path: p, Kind: KindOther, Err: err}
		}
		for _, obj := range page.Contents {
			full := aws.ToString(obj.Key)
			rel := strings.TrimPrefix(full, prefix)
			if rel == "" || strings.Contains(rel, "/") {
				continue
			}
			modTime := time.Now()
			if obj.LastModified != nil {
				modTime = *obj.LastModified
			}
			out = append(out, FileInfo{
				Path:    rel,
				ModTime: modTime,
				Size:    aws.ToInt64(obj.Size),
			})
		}
		if page.IsTruncated == nil || !*page.IsTruncated {
			break
		}
		token = page.NextContinuationToken
	}
	return out, nil
}

// Lock and TryLock are advisory within this process only: S3 has no native
// exclusive-lock primitive, so cross-process mutual exclusion is not
// provided. This mirrors MemFS's presence-of-lock-entry check rather than
// attempting a conditional-put locking protocol.
func (s *S3FS) Lock(p string) (Lock, error) {
	for {
		l, err := s.TryLock(p)
		if err == nil {
			return l, nil
		}
		var be *Error
		if errors.As(err, &be) && be.Kind == KindWouldBlock {
			time.Sleep(time.Millisecond)
			continue
		}
		return nil, err
	}
}

func (s *S3FS) TryLock(p string) (Lock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.key(p)
	if s.locks[key] {
		return nil, &Error{Op: "lock", Path: p, Kind: KindWouldBlock, Err: errWouldBlock}
	}
	s.locks[key] = true
	return &s3Lock{fs: s, key: key}, nil
}

type s3Lock struct {
	fs  *S3FS
	key string
}

func (l *s3Lock) Close() error {
	l.fs.mu.Lock()
	defer l.fs.mu.Unlock()
	delete(l.fs.locks, l.key)
	return nil
}

// s3Handle is a File over a local buffer; reads/writes/seeks never touch
// the network. Sync uploads the whole buffer as one object.
type s3Handle struct {
	fs  *S3FS
	key string
	buf []byte
	pos int64
}

func (h *s3Handle) Read(p []byte) (int, error) {
	if h.pos >= int64(len(h.buf)) {
		return 0, io.EOF
	}
	n := copy(p, h.buf[h.pos:])
	h.pos += int64(n)
	return n, nil
}

func (h *s3Handle) Write(p []byte) (int, error) {
	end := h.pos + int64(len(p))
	if end > int64(len(h.buf)) {
		grown := make([]byte, end)
		copy(grown, h.buf)
		h.buf = grown
	}
	copy(h.buf[h.pos:end], p)
	h.pos = end
	return len(p), nil
}

func (h *s3Handle) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = h.pos + offset
	case io.SeekEnd:
		newPos = int64(len(h.buf)) + offset
	}
	if newPos < 0 {
		return 0, &Error{Op: "seek", Path: h.key, Kind: KindInvalidData, Err: errNegativeSeek}
	}
	h.pos = newPos
	return h.pos, nil
}

func (h *s3Handle) Truncate(size int64) error {
	if size < int64(len(h.buf)) {
		h.buf = h.buf[:size]
	} else if size > int64(len(h.buf)) {
		grown := make([]byte, size)
		copy(grown, h.buf)
		h.buf = grown
	}
	return nil
}

func (h *s3Handle) Sync() error {
	return h.fs.WriteAtomic(h.key, h.buf)
}

func (h *s3Handle) Close() error {
	return h.Sync()
}
