package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsearch/src/core/indexing"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int
	jobs   map[int]*Job
	// history records every status a job passed through
	history map[int][]JobStatus
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{jobs: map[int]*Job{}, history: map[int][]JobStatus{}}
}

func (r *memoryRepo) Create(_ context.Context, taskType string, payload json.RawMessage) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	job := &Job{ID: r.nextID, TaskType: taskType, Payload: payload, Status: JobStatusPending, CreatedAt: time.Now()}
	r.jobs[job.ID] = job
	r.history[job.ID] = []JobStatus{JobStatusPending}
	return job, nil
}

func (r *memoryRepo) Get(_ context.Context, id int) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrJobNotFound, id)
	}
	cp := *job
	return &cp, nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, id int, status JobStatus, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrJobNotFound, id)
	}
	job.Status = status
	job.Error = errMsg
	r.history[id] = append(r.history[id], status)
	return nil
}

type memoryArchive map[string][]byte

func (a memoryArchive) Put(_ context.Context, key string, data []byte) error {
	a[key] = data
	return nil
}

func (a memoryArchive) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := a[key]
	if !ok {
		return nil, errors.New("not archived")
	}
	return data, nil
}

type recordingIndexer struct {
	files []string
	err   error
}

func (r *recordingIndexer) IndexBytes(_ context.Context, filename string, data []byte) (indexing.Report, error) {
	r.files = append(r.files, filename)
	if r.err != nil {
		return indexing.Report{}, r.err
	}
	return indexing.Report{Filename: filename, Documents: 1, Chunks: len(data)}, nil
}

func newTestService(t *testing.T, indexer *recordingIndexer, archive memoryArchive) (*JobService, *memoryRepo, <-chan *message.Message) {
	t.Helper()
	logger := watermill.NopLogger{}
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 10}, logger)
	t.Cleanup(func() { _ = pubSub.Close() })

	messages, err := pubSub.Subscribe(context.Background(), Topic)
	require.NoError(t, err)

	repo := newMemoryRepo()
	return NewJobService(pubSub, repo, logger, NewIndexTask(archive, indexer)), repo, messages
}

func receive(t *testing.T, messages <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-messages:
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
		return nil
	}
}

func TestEnqueueAndProcessIndexJob(t *testing.T) {
	archive := memoryArchive{"42_notes.txt": []byte("hello")}
	indexer := &recordingIndexer{}
	svc, repo, messages := newTestService(t, indexer, archive)

	job, err := svc.EnqueueIndex(context.Background(), IndexPayload{Filename: "notes.txt", ArchiveKey: "42_notes.txt"})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeIndexDocument, job.TaskType)
	assert.Equal(t, JobStatusPending, job.Status)

	msg := receive(t, messages)
	require.NoError(t, svc.ProcessJobMessage(msg))

	assert.Equal(t, []string{"notes.txt"}, indexer.files)
	got, err := svc.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, got.Status)
	assert.Equal(t, []JobStatus{JobStatusPending, JobStatusRunning, JobStatusCompleted}, repo.history[job.ID])
}

func TestProcessIndexJobFailure(t *testing.T) {
	indexer := &recordingIndexer{err: errors.New("embedder down")}
	svc, _, messages := newTestService(t, indexer, memoryArchive{"1_a.md": []byte("# a")})

	job, err := svc.EnqueueIndex(context.Background(), IndexPayload{ArchiveKey: "1_a.md"})
	require.NoError(t, err)

	err = svc.ProcessJobMessage(receive(t, messages))
	require.Error(t, err)

	// filename falls back to the archive key's original name
	assert.Equal(t, []string{"a.md"}, indexer.files)

	got, err := svc.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Contains(t, *got.Error, "embedder down")
}

func TestProcessUnknownTaskType(t *testing.T) {
	svc, _, messages := newTestService(t, &recordingIndexer{}, memoryArchive{})

	job, err := svc.EnqueueJob(context.Background(), "translate", json.RawMessage(`{}`))
	require.NoError(t, err)

	err = svc.ProcessJobMessage(receive(t, messages))
	assert.ErrorContains(t, err, "unknown task type")

	got, _ := svc.Get(context.Background(), job.ID)
	assert.Equal(t, JobStatusFailed, got.Status)
}

func TestGetMissingJob(t *testing.T) {
	svc, _, _ := newTestService(t, &recordingIndexer{}, memoryArchive{})
	_, err := svc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrJobNotFound)
}
