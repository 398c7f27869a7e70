package backend

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryClient is a decorator that retries transient failures of idempotent
// operations with exponential backoff and jitter. Non-idempotent operations
// (submission, enrollment, profile writes, certificates) pass straight through.
type RetryClient struct {
	inner  Client
	config RetryConfig
}

var _ Client = (*RetryClient)(nil)

// WithRetry wraps a Client with retry logic.
func WithRetry(c Client, cfg RetryConfig) Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryClient{inner: c, config: cfg}
}

func retry[T any](ctx context.Context, r *RetryClient, op string, fn func(context.Context) (T, error)) (T, error) {
	// All attempts share one request id.
	ctx = WithRequestID(ctx, RequestIDFrom(ctx))

	if !Idempotent(op) {
		return fn(ctx)
	}

	var zero T
	var lastErr error
	invalidRetried := false

	for attempt := range r.config.MaxAttempts {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !shouldRetry(err, &invalidRetried) {
			return zero, err
		}
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(r.backoff(attempt, err)):
		}
	}
	return zero, lastErr
}

// shouldRetry determines if an error is transient.
func shouldRetry(err error, invalidRetried *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// The backend answered; repeating the question gets the same answer.
	var be *ErrBackend
	if errors.As(err, &be) {
		return false
	}

	// A malformed body may be a truncated transfer; allow one more try.
	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
		return true
	}

	return true
}

// backoff computes the wait duration for the given attempt.
func (r *RetryClient) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

func (r *RetryClient) FetchQuiz(ctx context.Context, ref TopicRef) (*Quiz, error) {
	return retry(ctx, r, OpFetchQuiz, func(ctx context.Context) (*Quiz, error) {
		return r.inner.FetchQuiz(ctx, ref)
	})
}

func (r *RetryClient) SubmitAnswers(ctx context.Context, ref TopicRef, answers []Answer) (*Score, error) {
	return retry(ctx, r, OpSubmitAnswers, func(ctx context.Context) (*Score, error) {
		return r.inner.SubmitAnswers(ctx, ref, answers)
	})
}

func (r *RetryClient) MarkTopicComplete(ctx context.Context, ref TopicRef) (*CompletionAck, error) {
	return retry(ctx, r, OpMarkTopicComplete, func(ctx context.Context) (*CompletionAck, error) {
		return r.inner.MarkTopicComplete(ctx, ref)
	})
}

func (r *RetryClient) TopicDetail(ctx context.Context, courseID string, index int, userID string) (*TopicDetail, error) {
	return retry(ctx, r, OpTopicDetail, func(ctx context.Context) (*TopicDetail, error) {
		return r.inner.TopicDetail(ctx, courseID, index, userID)
	})
}

func (r *RetryClient) CourseTopics(ctx context.Context, courseID string) ([]TopicSummary, error) {
	return retry(ctx, r, OpCourseTopics, func(ctx context.Context) ([]TopicSummary, error) {
		return r.inner.CourseTopics(ctx, courseID)
	})
}

func (r *RetryClient) Courses(ctx context.Context, userID string) ([]Course, error) {
	return retry(ctx, r, OpCourses, func(ctx context.Context) ([]Course, error) {
		return r.inner.Courses(ctx, userID)
	})
}

func (r *RetryClient) Enroll(ctx context.Context, courseID, userID string) error {
	_, err := retry(ctx, r, OpEnroll, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.inner.Enroll(ctx, courseID, userID)
	})
	return err
}

func (r *RetryClient) Profile(ctx context.Context, userID string) (*Profile, error) {
	return retry(ctx, r, OpProfile, func(ctx context.Context) (*Profile, error) {
		return r.inner.Profile(ctx, userID)
	})
}

func (r *RetryClient) UpdateProfile(ctx context.Context, p Profile) error {
	_, err := retry(ctx, r, OpUpdateProfile, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.inner.UpdateProfile(ctx, p)
	})
	return err
}

func (r *RetryClient) ChangePassword(ctx context.Context, userID, current, next string) error {
	_, err := retry(ctx, r, OpChangePassword, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.inner.ChangePassword(ctx, userID, current, next)
	})
	return err
}

func (r *RetryClient) Certificate(ctx context.Context, courseID, userID string) (*Certificate, error) {
	return retry(ctx, r, OpCertificate, func(ctx context.Context) (*Certificate, error) {
		return r.inner.Certificate(ctx, courseID, userID)
	})
}
