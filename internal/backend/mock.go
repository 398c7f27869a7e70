package backend

import (
	"context"
	"fmt"
	"sync"
)

// MockResult is a canned result for the MockClient. Value must match the
// return type of the operation it is queued for (e.g. *Quiz for FetchQuiz);
// it is ignored for operations that only return an error.
type MockResult struct {
	Value any
	Err   error
}

// MockCall records one call made to the MockClient.
type MockCall struct {
	Op      string
	Ref     TopicRef
	Answers []Answer
	Args    []string
}

// MockClient is a deterministic Client for testing.
// It returns canned results per operation in FIFO order and records all calls.
type MockClient struct {
	mu      sync.Mutex
	results map[string][]MockResult
	Calls   []MockCall
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates an empty MockClient.
func NewMockClient() *MockClient {
	return &MockClient{results: make(map[string][]MockResult)}
}

// On appends canned results for an operation.
func (m *MockClient) On(op string, results ...MockResult) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[op] = append(m.results[op], results...)
	return m
}

// CallCount returns the number of calls made for an operation, or all calls
// when op is empty.
func (m *MockClient) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op == "" {
		return len(m.Calls)
	}
	n := 0
	for _, c := range m.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// next records the call and pops the next canned result, or returns
// ErrUnavailable when the queue for the operation is empty.
func (m *MockClient) next(call MockCall) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, call)

	queue := m.results[call.Op]
	if len(queue) == 0 {
		return nil, &ErrUnavailable{Err: fmt.Errorf("mock: no result queued for %s", call.Op)}
	}
	res := queue[0]
	m.results[call.Op] = queue[1:]
	return res.Value, res.Err
}

func mockValue[T any](m *MockClient, call MockCall) (T, error) {
	var zero T
	v, err := m.next(call)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("mock: %s result is %T, want %T", call.Op, v, zero)
	}
	return typed, nil
}

func (m *MockClient) FetchQuiz(_ context.Context, ref TopicRef) (*Quiz, error) {
	return mockValue[*Quiz](m, MockCall{Op: OpFetchQuiz, Ref: ref})
}

func (m *MockClient) SubmitAnswers(_ context.Context, ref TopicRef, answers []Answer) (*Score, error) {
	return mockValue[*Score](m, MockCall{Op: OpSubmitAnswers, Ref: ref, Answers: append([]Answer(nil), answers...)})
}

func (m *MockClient) MarkTopicComplete(_ context.Context, ref TopicRef) (*CompletionAck, error) {
	return mockValue[*CompletionAck](m, MockCall{Op: OpMarkTopicComplete, Ref: ref})
}

func (m *MockClient) TopicDetail(_ context.Context, courseID string, index int, userID string) (*TopicDetail, error) {
	return mockValue[*TopicDetail](m, MockCall{
		Op:   OpTopicDetail,
		Ref:  TopicRef{CourseID: courseID, UserID: userID},
		Args: []string{fmt.Sprint(index)},
	})
}

func (m *MockClient) CourseTopics(_ context.Context, courseID string) ([]TopicSummary, error) {
	return mockValue[[]TopicSummary](m, MockCall{Op: OpCourseTopics, Ref: TopicRef{CourseID: courseID}})
}

func (m *MockClient) Courses(_ context.Context, userID string) ([]Course, error) {
	return mockValue[[]Course](m, MockCall{Op: OpCourses, Ref: TopicRef{UserID: userID}})
}

func (m *MockClient) Enroll(_ context.Context, courseID, userID string) error {
	_, err := m.next(MockCall{Op: OpEnroll, Ref: TopicRef{CourseID: courseID, UserID: userID}})
	return err
}

func (m *MockClient) Profile(_ context.Context, userID string) (*Profile, error) {
	return mockValue[*Profile](m, MockCall{Op: OpProfile, Ref: TopicRef{UserID: userID}})
}

func (m *MockClient) UpdateProfile(_ context.Context, p Profile) error {
	_, err := m.next(MockCall{Op: OpUpdateProfile, Ref: TopicRef{UserID: p.UserID}, Args: []string{p.Name, p.Phone}})
	return err
}

func (m *MockClient) ChangePassword(_ context.Context, userID, current, next string) error {
	_, err := m.next(MockCall{Op: OpChangePassword, Ref: TopicRef{UserID: userID}, Args: []string{current, next}})
	return err
}

func (m *MockClient) Certificate(_ context.Context, courseID, userID string) (*Certificate, error) {
	return mockValue[*Certificate](m, MockCall{Op: OpCertificate, Ref: TopicRef{CourseID: courseID, UserID: userID}})
}
