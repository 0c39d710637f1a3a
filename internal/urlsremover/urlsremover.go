// Package urlsremover implements the background worker that removes
// batches of a user's URL mappings. Jobs are queued per request and
// drained on a ticker so many removals collapse into one storage call.
package urlsremover

import (
	"context"
	"time"

	"github.com/patric-chuzhbe/tinylinks/internal/logger"
	"github.com/patric-chuzhbe/tinylinks/internal/models"
)

type task struct {
	userID      string
	urlToDelete string
}

type urlsBatchRemover interface {
	RemoveUsersUrls(ctx context.Context, usersURLs map[string][]string) error
}

// URLsRemover owns the deletion queue. The store drops short keys the user
// does not own, so an enqueued job can never remove another user's mapping.
type URLsRemover struct {
	queue                    chan *task
	db                       urlsBatchRemover
	delayBetweenQueueFetches time.Duration
	errorChannel             chan error
}

func New(
	db urlsBatchRemover,
	channelCapacity int,
	delayBetweenQueueFetches time.Duration,
) *URLsRemover {
	return &URLsRemover{
		db:                       db,
		queue:                    make(chan *task, channelCapacity),
		delayBetweenQueueFetches: delayBetweenQueueFetches,
		errorChannel:             make(chan error, channelCapacity),
	}
}

// EnqueueJob splits the job into per-URL tasks and queues them.
func (r *URLsRemover) EnqueueJob(job *models.URLDeleteJob) {
	for _, urlID := range job.URLsToDelete {
		r.queue <- &task{
			userID:      job.UserID,
			urlToDelete: urlID,
		}
	}
}

// ListenErrors passes every error produced by the worker to the callback.
func (r *URLsRemover) ListenErrors(callback func(error)) {
	go func() {
		for err := range r.errorChannel {
			callback(err)
		}
	}()
}

// Run starts the worker goroutine. It accumulates tasks and flushes them
// on every tick until the context is canceled; a final flush runs on the
// way out so accepted jobs are not lost on shutdown.
func (r *URLsRemover) Run(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.delayBetweenQueueFetches)
		defer ticker.Stop()

		var tasks []task

		flush := func() {
			if len(tasks) == 0 {
				return
			}
			err := r.db.RemoveUsersUrls(ctx, collectUrlsByUser(tasks))
			if err != nil {
				r.errorChannel <- err
				return
			}
			logger.Log.Infof("processed removing of %d URLs", len(tasks))
			tasks = nil
		}

		for {
			select {
			case t := <-r.queue:
				tasks = append(tasks, *t)
			case <-ticker.C:
				flush()
			case <-ctx.Done():
				for {
					select {
					case t := <-r.queue:
						tasks = append(tasks, *t)
						continue
					default:
					}
					break
				}
				flush()
				close(r.errorChannel)
				return
			}
		}
	}()
}

func collectUrlsByUser(tasks []task) map[string][]string {
	result := map[string][]string{}
	for _, t := range tasks {
		result[t.userID] = append(result[t.userID], t.urlToDelete)
	}

	return result
}
