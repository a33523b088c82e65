package processor

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/isometry/wsgi-lambda/internal/helpers"
	"github.com/isometry/wsgi-lambda/internal/models"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ArchiveKey is the top-level key holding the archive metadata in stored documents.
const ArchiveKey = "__archive__"

// ObjectPutter stores a document under bucket/key.
type ObjectPutter interface {
	PutS3Object(bucket, key string, body []byte) error
}

type s3ArchiverPostProcessor struct {
	logger *slog.Logger
	putter ObjectPutter
	bucket string
	prefix string
}

// NewS3ArchiverPostProcessor returns a Processor storing every record's
// payload, annotated with its outcome, in bucket under prefix.
func NewS3ArchiverPostProcessor(putter ObjectPutter, bucket, prefix string, opts ...Option) Processor {
	_inst := &s3ArchiverPostProcessor{
		putter: putter,
		bucket: bucket,
		prefix: prefix,
		logger: helpers.NewNoopLogger(),
	}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *s3ArchiverPostProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("post-processor:s3-archiver")
}

func (p *s3ArchiverPostProcessor) Process(rec *models.Record) error {
	if rec == nil {
		return errors.New("missing invocation record")
	}
	doc, err := Annotate(rec)
	if err != nil {
		return err
	}

	key := ObjectKey(p.prefix, rec)
	if err = p.putter.PutS3Object(p.bucket, key, doc); err != nil {
		p.logger.Warn("failed to archive invocation", slog.String("key", key), slog.Any("error", err))
		return errors.Wrap(err, "failed to archive invocation")
	}
	p.logger.Debug("archived invocation", slog.String("key", key))
	return nil
}

// ObjectKey returns the object key of rec under prefix.
func ObjectKey(prefix string, rec *models.Record) string {
	return fmt.Sprintf("%s%s.%s.json", prefix, rec.Time.UTC().Format(time.RFC3339Nano), rec.ID)
}

type archiveField struct {
	path  string
	value any
}

// Annotate returns the record payload with an ArchiveKey block describing the
// invocation outcome. Payloads that are not JSON objects are replaced by an
// empty object.
func Annotate(rec *models.Record) ([]byte, error) {
	doc := rec.Payload
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		doc = []byte("{}")
	}

	fields := []archiveField{
		{ArchiveKey + ".id", rec.ID},
		{ArchiveKey + ".time", rec.Time.UTC().Format(time.RFC3339Nano)},
		{ArchiveKey + ".mode", rec.Mode},
		{ArchiveKey + ".statusCode", rec.StatusCode},
	}
	if rec.Err != nil {
		fields = append(fields, archiveField{ArchiveKey + ".error", rec.Err.Error()})
	}

	var err error
	for _, f := range fields {
		if doc, err = sjson.SetBytes(doc, f.path, f.value); err != nil {
			return nil, errors.Wrapf(err, "failed to set %s", f.path)
		}
	}
	return doc, nil
}
