package fleet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cenkalti/backoff/v4"

	"github.com/manifoldpm/manifold/internal/store"
)

// s3PutObjectAPI is the single S3 method the Archiver needs, narrowed
// from *s3.Client so tests can substitute a stub instead of reaching the
// network.
type s3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver drains terminal task rows older than a retention window into
// newline-delimited JSON objects uploaded to S3, then prunes the
// confirmed-uploaded rows from local storage. Grounded on
// controlplane/s3-uploader/internal/uploader/uploader.go's
// awsconfig.LoadDefaultConfig + s3.NewFromConfig + PutObjectInput shape;
// only ever reads already-terminal rows, never one still Queued or
// Running.
type Archiver struct {
	client    s3PutObjectAPI
	bucket    string
	prefix    string
	retention time.Duration
	store     *store.Store
	log       *slog.Logger
}

// NewArchiver builds an Archiver uploading to bucket/prefix in region,
// pruning rows older than retention.
func NewArchiver(ctx context.Context, region, bucket, prefix string, retention time.Duration, s *store.Store, log *slog.Logger) (*Archiver, error) {
	if log == nil {
		log = slog.Default()
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("fleet: load aws config: %w", err)
	}
	return &Archiver{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    bucket,
		prefix:    prefix,
		retention: retention,
		store:     s,
		log:       log,
	}, nil
}

// newArchiverWithClient builds an Archiver against an arbitrary
// s3PutObjectAPI, used by tests to avoid a real S3 endpoint.
func newArchiverWithClient(client s3PutObjectAPI, bucket, prefix string, retention time.Duration, s *store.Store, log *slog.Logger) *Archiver {
	if log == nil {
		log = slog.Default()
	}
	return &Archiver{client: client, bucket: bucket, prefix: prefix, retention: retention, store: s, log: log}
}

// archivedTask is the newline-delimited JSON record shape uploaded to S3;
// it intentionally drops label/error args since those are debugging aids
// of only local interest.
type archivedTask struct {
	ID        int64     `json:"id"`
	ManagerID string    `json:"manager_id"`
	Kind      string    `json:"kind"`
	Target    string    `json:"target"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	EndedAt   time.Time `json:"ended_at"`
	ErrorKey  string    `json:"error_key,omitempty"`
}

// Run fires RunOnce on every tick until ctx is canceled.
func (a *Archiver) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.RunOnce(ctx); err != nil {
				a.log.Warn("fleet: archiver run failed", "err", err)
			}
		}
	}
}

// RunOnce drains and uploads one batch of terminal tasks older than the
// retention window, then deletes the rows whose upload succeeded.
func (a *Archiver) RunOnce(ctx context.Context) error {
	cutoff := time.Now().Add(-a.retention)
	tasks, err := a.store.ListTerminalTasksOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("fleet: list terminal tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	var buf bytes.Buffer
	ids := make([]int64, 0, len(tasks))
	enc := json.NewEncoder(&buf)
	for _, t := range tasks {
		rec := archivedTask{
			ID: t.ID, ManagerID: t.ManagerID, Kind: string(t.Kind), Target: t.Target,
			State: string(t.State), CreatedAt: t.CreatedAt, ErrorKey: t.ErrorKey,
		}
		if t.EndedAt != nil {
			rec.EndedAt = *t.EndedAt
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("fleet: encode archived task %d: %w", t.ID, err)
		}
		ids = append(ids, t.ID)
	}

	key := fmt.Sprintf("%s/%s-%d.ndjson", a.prefix, cutoff.UTC().Format("20060102T150405Z"), tasks[0].ID)
	if err := a.uploadWithRetry(ctx, key, buf.Bytes()); err != nil {
		return fmt.Errorf("fleet: upload archive batch: %w", err)
	}

	if err := a.store.DeleteTasks(ctx, ids); err != nil {
		return fmt.Errorf("fleet: prune archived tasks: %w", err)
	}
	a.log.Info("fleet: archived terminal tasks", "count", len(ids), "key", key)
	return nil
}

func (a *Archiver) uploadWithRetry(ctx context.Context, key string, data []byte) error {
	op := func() error {
		_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(data),
		})
		return err
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(op, bo)
}
