package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDocumentRender renders the PDF of one quote into the archive.
	TaskDocumentRender = "document:render"
	// TaskStoreResync pushes the local cache back to the remote store.
	TaskStoreResync = "store:resync"
)

// DocumentRenderPayload names the quote to render.
type DocumentRenderPayload struct {
	QuoteID string `json:"quote_id"`
}

// StoreResyncPayload carries no arguments.
type StoreResyncPayload struct{}

// NewDocumentRenderTask constructs a document:render task.
func NewDocumentRenderTask(payload DocumentRenderPayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.QuoteID) == "" {
		return nil, errors.New("jobs: quote id required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDocumentRender, data, asynq.MaxRetry(5)), nil
}

// NewStoreResyncTask constructs a store:resync task. Only one may be queued
// at a time.
func NewStoreResyncTask() (*asynq.Task, error) {
	data, err := json.Marshal(StoreResyncPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStoreResync, data, asynq.MaxRetry(3)), nil
}

// NewTask builds a task by name. args are only used by tasks that need them.
func NewTask(name string, args ...string) (*asynq.Task, error) {
	switch name {
	case TaskDocumentRender:
		if len(args) == 0 {
			return nil, fmt.Errorf("jobs: %s needs a quote id", name)
		}
		return NewDocumentRenderTask(DocumentRenderPayload{QuoteID: args[0]})
	case TaskStoreResync:
		return NewStoreResyncTask()
	default:
		return nil, fmt.Errorf("jobs: unknown task %q", name)
	}
}
