// Package worker archives contact leads to object storage. The same Archiver
// runs behind the asynq worker and the in-process fallback pool.
package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/pqui/archstudio/internal/model"
	"github.com/pqui/archstudio/internal/queue"
)

// LeadStore is where archived leads are written; *s3storage.Storage.
type LeadStore interface {
	UploadLead(ctx context.Context, sub model.ContactSubmission) (string, error)
}

// Archiver writes submissions to the leads bucket.
type Archiver struct {
	store LeadStore
	log   logrus.FieldLogger
}

// NewArchiver constructs an Archiver. A nil store turns archiving into a
// logged no-op, for setups without object storage.
func NewArchiver(store LeadStore, log logrus.FieldLogger) *Archiver {
	return &Archiver{store: store, log: log}
}

// Archive uploads one submission.
func (a *Archiver) Archive(ctx context.Context, sub model.ContactSubmission) error {
	log := a.log.WithField("submission", sub.ID)
	if a.store == nil {
		log.Debug("object storage not configured, lead not archived")
		return nil
	}
	key, err := a.store.UploadLead(ctx, sub)
	if err != nil {
		log.WithError(err).Error("archive lead failed")
		return err
	}
	log.WithField("key", key).Info("lead archived")
	return nil
}

// Handler registers the archive job handler.
func (a *Archiver) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.ArchiveLeadTask, a.handleArchive)
	return mux
}

func (a *Archiver) handleArchive(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.DecodeArchive(task)
	if err != nil {
		// Retrying a payload that cannot be decoded never helps.
		return errors.Join(err, asynq.SkipRetry)
	}
	return a.Archive(ctx, payload.Submission)
}
