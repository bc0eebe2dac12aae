package tasks

import (
	"testing"
	"time"
)

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeScrapeSource, "WHO")

	if task.ID == "" {
		t.Error("Task should have an ID")
	}
	if task.Type != TaskTypeScrapeSource {
		t.Errorf("Expected type %s, got %s", TaskTypeScrapeSource, task.Type)
	}
	if task.Subject != "WHO" {
		t.Errorf("Expected subject WHO, got %s", task.Subject)
	}
	if task.RetryCount != 0 {
		t.Errorf("New task should have zero retries, got %d", task.RetryCount)
	}
	if task.MaxRetries != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, task.MaxRetries)
	}

	other := NewTask(TaskTypeScrapeSource, "WHO")
	if other.ID == task.ID {
		t.Error("Task IDs should be unique")
	}
}

func TestTask_RetryAccounting(t *testing.T) {
	task := NewTask(TaskTypePurgeURLs, "")

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Task should be retryable at count %d", task.GetRetryCount())
		}
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Errorf("Task should not be retryable after %d retries", DefaultMaxRetries)
	}
	if task.GetRetryCount() != DefaultMaxRetries {
		t.Errorf("Expected retry count %d, got %d", DefaultMaxRetries, task.GetRetryCount())
	}
}

func TestTask_Duration(t *testing.T) {
	task := NewTask(TaskTypeExtractContent, "")

	if task.GetDuration() != 0 {
		t.Error("Unstarted task should report zero duration")
	}

	task.Start()
	time.Sleep(5 * time.Millisecond)

	if task.GetDuration() <= 0 {
		t.Error("Started task should report positive duration")
	}
}
