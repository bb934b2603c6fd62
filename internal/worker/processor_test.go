package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pqui/archstudio/internal/logging"
	"github.com/pqui/archstudio/internal/model"
	"github.com/pqui/archstudio/internal/queue"
)

type fakeLeadStore struct {
	got []model.ContactSubmission
	err error
}

func (f *fakeLeadStore) UploadLead(_ context.Context, sub model.ContactSubmission) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.got = append(f.got, sub)
	return "leads/" + sub.ID + ".json", nil
}

func TestHandlerArchivesLead(t *testing.T) {
	t.Parallel()

	store := &fakeLeadStore{}
	a := NewArchiver(store, logging.Discard())
	sub := model.ContactSubmission{ID: "s1", Name: "Jane", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	task, err := queue.NewArchiveTask(sub)
	require.NoError(t, err)
	require.NoError(t, a.Handler().ProcessTask(context.Background(), task))

	assert.Equal(t, []model.ContactSubmission{sub}, store.got)
}

func TestHandlerSkipsRetryOnBadPayload(t *testing.T) {
	t.Parallel()

	a := NewArchiver(&fakeLeadStore{}, logging.Discard())
	err := a.Handler().ProcessTask(context.Background(), asynq.NewTask(queue.ArchiveLeadTask, []byte("nope")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestArchivePropagatesUploadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("bucket missing")
	a := NewArchiver(&fakeLeadStore{err: boom}, logging.Discard())
	assert.ErrorIs(t, a.Archive(context.Background(), model.ContactSubmission{ID: "s1"}), boom)
}

func TestArchiveWithoutStorageIsNoop(t *testing.T) {
	t.Parallel()

	a := NewArchiver(nil, logging.Discard())
	assert.NoError(t, a.Archive(context.Background(), model.ContactSubmission{ID: "s1"}))
}
