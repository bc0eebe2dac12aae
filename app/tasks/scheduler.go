package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/metabolical/healthnews/app/articles"
	"github.com/metabolical/healthnews/app/cfg"
	"github.com/metabolical/healthnews/app/database"
	"github.com/metabolical/healthnews/app/scraper"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	sources          []scraper.Source
	articleScraper   *scraper.Scraper
	contentExtractor *scraper.ContentExtractor
	validator        *articles.URLValidator
	articleRepo      database.ArticleRepository
	metaCache        *articles.MetaCache
	httpClient       *http.Client
	userAgent        string
	scrapeInterval   time.Duration
	purgeInterval    time.Duration
	extractContent   bool
	workerCount      int
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	taskQueue        chan TaskInterface
}

func NewScheduler(sources []scraper.Source, articleScraper *scraper.Scraper,
	contentExtractor *scraper.ContentExtractor, validator *articles.URLValidator,
	articleRepo database.ArticleRepository, metaCache *articles.MetaCache,
	httpClient *http.Client) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		sources:          sources,
		articleScraper:   articleScraper,
		contentExtractor: contentExtractor,
		validator:        validator,
		articleRepo:      articleRepo,
		metaCache:        metaCache,
		httpClient:       httpClient,
		userAgent:        cfg.UserAgent,
		scrapeInterval:   time.Duration(cfg.ScrapeInterval) * time.Second,
		purgeInterval:    time.Duration(cfg.PurgeInterval) * time.Second,
		extractContent:   cfg.ExtractContent,
		workerCount:      cfg.WorkerCount,
		ctx:              ctx,
		cancel:           cancel,
		taskQueue:        make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		scrapeTicker := time.NewTicker(s.scrapeInterval)
		defer scrapeTicker.Stop()

		purgeTicker := time.NewTicker(s.purgeInterval)
		defer purgeTicker.Stop()

		s.enqueueScrapeTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-scrapeTicker.C:
				s.enqueueScrapeTasks()
			case <-purgeTicker.C:
				s.enqueuePurgeTask()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueScrapeTasks() {
	if len(s.sources) == 0 {
		slog.Debug("No sources configured")
		return
	}

	slog.Debug("Scheduling scrape tasks", "count", len(s.sources))

	for _, source := range s.sources {
		scrapeTask := NewScrapeSourceTask(source, s.articleScraper, s.articleRepo, s.metaCache)
		if err := s.EnqueueTask(scrapeTask); err != nil {
			slog.Warn("Failed to enqueue ScrapeSourceTask", "source", source.Name, "error", err)
		}
	}

	if s.extractContent {
		extractTask := NewExtractContentTask(s.httpClient, s.contentExtractor, s.articleRepo, s.userAgent)
		if err := s.EnqueueTask(extractTask); err != nil {
			slog.Warn("Failed to enqueue ExtractContentTask", "error", err)
		}
	}
}

func (s *Scheduler) enqueuePurgeTask() {
	purgeTask := NewPurgeURLsTask(s.validator, s.articleRepo, s.metaCache)
	if err := s.EnqueueTask(purgeTask); err != nil {
		slog.Warn("Failed to enqueue PurgeURLsTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "subject", task.GetSubject(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
