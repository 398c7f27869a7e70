package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := NewMockClient().On(OpFetchQuiz, MockResult{Value: &Quiz{Completed: true}})
	c := WithRetry(mock, retryConfig())

	quiz, err := c.FetchQuiz(context.Background(), testRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quiz.Completed {
		t.Fatal("expected completed quiz")
	}
	if mock.CallCount(OpFetchQuiz) != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount(OpFetchQuiz))
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockClient().On(OpMarkTopicComplete,
		MockResult{Err: &ErrUnavailable{Err: errors.New("down")}},
		MockResult{Value: &CompletionAck{CourseCompleted: true}},
	)
	c := WithRetry(mock, retryConfig())

	ack, err := c.MarkTopicComplete(context.Background(), testRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ack.CourseCompleted {
		t.Fatal("expected course completed")
	}
	if mock.CallCount(OpMarkTopicComplete) != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount(OpMarkTopicComplete))
	}
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	down := MockResult{Err: &ErrUnavailable{Err: errors.New("down")}}
	mock := NewMockClient().On(OpCourses, down, down, down, MockResult{Value: []Course{}})
	c := WithRetry(mock, retryConfig())

	_, err := c.Courses(context.Background(), "U1")
	var unavail *ErrUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrUnavailable, got: %T (%v)", err, err)
	}
	if mock.CallCount(OpCourses) != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount(OpCourses))
	}
}

func TestRetry_SubmitNeverRetried(t *testing.T) {
	mock := NewMockClient().On(OpSubmitAnswers,
		MockResult{Err: &ErrUnavailable{Err: errors.New("down")}},
		MockResult{Value: &Score{Total: 1}},
	)
	c := WithRetry(mock, retryConfig())

	_, err := c.SubmitAnswers(context.Background(), testRef, []Answer{{QuestionID: "q1", Label: LabelA}})
	if err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount(OpSubmitAnswers) != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount(OpSubmitAnswers))
	}
}

func TestRetry_NonIdempotentWritesNotRetried(t *testing.T) {
	down := MockResult{Err: &ErrUnavailable{Err: errors.New("down")}}
	mock := NewMockClient().
		On(OpEnroll, down, MockResult{}).
		On(OpUpdateProfile, down, MockResult{}).
		On(OpChangePassword, down, MockResult{}).
		On(OpCertificate, down, MockResult{Value: &Certificate{}})
	c := WithRetry(mock, retryConfig())
	ctx := context.Background()

	_ = c.Enroll(ctx, "C1", "U1")
	_ = c.UpdateProfile(ctx, Profile{UserID: "U1"})
	_ = c.ChangePassword(ctx, "U1", "old", "new")
	_, _ = c.Certificate(ctx, "C1", "U1")

	if mock.CallCount("") != 4 {
		t.Fatalf("expected 4 calls, got %d", mock.CallCount(""))
	}
}

func TestRetry_BackendRejectionNotRetried(t *testing.T) {
	mock := NewMockClient().On(OpProfile,
		MockResult{Err: &ErrBackend{Action: OpProfile, Message: "User not found"}},
		MockResult{Value: &Profile{}},
	)
	c := WithRetry(mock, retryConfig())

	_, err := c.Profile(context.Background(), "U1")
	var be *ErrBackend
	if !errors.As(err, &be) {
		t.Fatalf("expected ErrBackend, got: %T (%v)", err, err)
	}
	if mock.CallCount(OpProfile) != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount(OpProfile))
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	bad := MockResult{Err: &ErrInvalidResponse{Action: OpTopicDetail, Content: json.RawMessage(`bad`), Err: errors.New("bad")}}
	mock := NewMockClient().On(OpTopicDetail, bad, bad, MockResult{Value: &TopicDetail{}})
	c := WithRetry(mock, retryConfig())

	_, err := c.TopicDetail(context.Background(), "C1", 1, "U1")
	if err == nil {
		t.Fatal("expected error")
	}
	// Should have retried once (2 calls total), then stopped.
	if mock.CallCount(OpTopicDetail) != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount(OpTopicDetail))
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	down := MockResult{Err: &ErrUnavailable{Err: errors.New("down")}}
	mock := NewMockClient().On(OpCourseTopics, down, down, MockResult{Value: []TopicSummary{}})
	c := WithRetry(mock, RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Hour,
		MaxWait:     time.Hour,
		Multiplier:  1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CourseTopics(ctx, "C1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
	if mock.CallCount(OpCourseTopics) != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount(OpCourseTopics))
	}
}

func TestRetry_RateLimitRespectsRetryAfter(t *testing.T) {
	mock := NewMockClient().On(OpFetchQuiz,
		MockResult{Err: &ErrRateLimit{RetryAfter: 1 * time.Millisecond, Err: errors.New("429")}},
		MockResult{Value: &Quiz{}},
	)
	c := WithRetry(mock, retryConfig())

	if _, err := c.FetchQuiz(context.Background(), testRef); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount(OpFetchQuiz) != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount(OpFetchQuiz))
	}
}

func TestRetry_SharesRequestIDAcrossAttempts(t *testing.T) {
	var mu sync.Mutex
	var ids []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get("X-Request-ID"))
		n := len(ids)
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	base, err := NewHTTPClient(cfg)
	if err != nil {
		t.Fatal(err)
	}
	c := WithRetry(base, retryConfig())

	if _, err := c.MarkTopicComplete(context.Background(), testRef); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(ids))
	}
	if ids[0] == "" || ids[0] != ids[1] {
		t.Fatalf("request ids differ: %q vs %q", ids[0], ids[1])
	}
}

func TestBackoffCapped(t *testing.T) {
	r := &RetryClient{config: RetryConfig{
		MaxAttempts: 5,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     200 * time.Millisecond,
		Multiplier:  10,
	}}
	for attempt := range 4 {
		d := r.backoff(attempt, errors.New("x"))
		if d > 240*time.Millisecond {
			t.Errorf("attempt %d: backoff %v exceeds cap plus jitter", attempt, d)
		}
	}
}
