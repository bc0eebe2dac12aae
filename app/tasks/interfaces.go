package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling. The scheduler owns a worker pool fed from a buffered queue;
// scrape and maintenance work runs there so the HTTP request path is
// never blocked by scraper activity.
// Example usage:
//
//	scheduler := NewScheduler(sources, scraper, extractor, validator, repo, cache, httpClient)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewScrapeSourceTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
