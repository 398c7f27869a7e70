package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/store"
)

var ref = backend.TopicRef{CourseID: "C1", TopicID: "T2", UserID: "u1"}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newService(t *testing.T, client backend.Client) (*Service, *store.Store) {
	t.Helper()
	st := openStore(t)
	return NewService(client, st.AttemptRepo(), st.CompletionRepo()), st
}

func TestRecordAttempt(t *testing.T) {
	svc, st := newService(t, backend.NewMockClient())
	ctx := context.Background()

	answers := []backend.Answer{{QuestionID: "q1", Label: backend.LabelB}, {QuestionID: "q3", Label: backend.LabelD}}
	score := &backend.Score{Total: 3, Attempted: 2, Correct: 1}

	id, err := svc.RecordAttempt(ctx, ref, answers, score)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := st.AttemptRepo().Attempts(ctx, store.AttemptQuery{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].AttemptID)
	assert.Equal(t, "T2", got[0].TopicID)
	assert.Equal(t, 1, got[0].Correct)
	assert.Equal(t, []store.AnswerData{{QuestionID: "q1", Label: "B"}, {QuestionID: "q3", Label: "D"}}, got[0].Answers)
}

func TestRecordAttempt_NilRepo(t *testing.T) {
	svc := NewService(backend.NewMockClient(), nil, nil)
	id, err := svc.RecordAttempt(context.Background(), ref, nil, &backend.Score{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestMarkComplete_Success(t *testing.T) {
	client := backend.NewMockClient().On(backend.OpMarkTopicComplete,
		backend.MockResult{Value: &backend.CompletionAck{CourseCompleted: true}})
	svc, st := newService(t, client)

	ack, err := svc.MarkComplete(context.Background(), ref)
	require.NoError(t, err)
	assert.True(t, ack.CourseCompleted)

	pending, err := st.CompletionRepo().Pending(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMarkComplete_FailureIsQueued(t *testing.T) {
	client := backend.NewMockClient().On(backend.OpMarkTopicComplete,
		backend.MockResult{Err: &backend.ErrUnavailable{Err: errors.New("offline")}},
		backend.MockResult{Value: &backend.CompletionAck{}})
	svc, st := newService(t, client)
	ctx := context.Background()

	_, err := svc.MarkComplete(ctx, ref)
	var unavailable *backend.ErrUnavailable
	require.ErrorAs(t, err, &unavailable)

	pending, err := st.CompletionRepo().Pending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "T2", pending[0].TopicID)
	assert.Contains(t, pending[0].LastError, "offline")

	// A later success from the topic view clears the queued entry.
	_, err = svc.MarkComplete(ctx, ref)
	require.NoError(t, err)
	pending, err = st.CompletionRepo().Pending(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMarkComplete_CanceledIsNotQueued(t *testing.T) {
	client := backend.NewMockClient().On(backend.OpMarkTopicComplete,
		backend.MockResult{Err: context.Canceled})
	svc, st := newService(t, client)

	_, err := svc.MarkComplete(context.Background(), ref)
	require.ErrorIs(t, err, context.Canceled)

	pending, err := st.CompletionRepo().Pending(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSync(t *testing.T) {
	client := backend.NewMockClient()
	svc, st := newService(t, client)
	ctx := context.Background()
	outbox := st.CompletionRepo()

	require.NoError(t, outbox.Enqueue(ctx, store.TopicKey{UserID: "u1", CourseID: "C1", TopicID: "T1"}, "offline"))
	require.NoError(t, outbox.Enqueue(ctx, store.TopicKey{UserID: "u1", CourseID: "C2", TopicID: "T9"}, "offline"))
	require.NoError(t, outbox.Enqueue(ctx, store.TopicKey{UserID: "u2", CourseID: "C1", TopicID: "T1"}, "offline"))

	client.On(backend.OpMarkTopicComplete,
		backend.MockResult{Value: &backend.CompletionAck{}},
		backend.MockResult{Err: &backend.ErrBackend{Action: backend.OpMarkTopicComplete, Message: "nope"}},
	)

	res, err := svc.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Delivered)
	assert.Equal(t, 1, res.Failed)
	assert.Empty(t, res.CompletedCourses)

	pending, err := svc.Pending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "T9", pending[0].TopicID)
	assert.Equal(t, 2, pending[0].Attempts)
	assert.Contains(t, pending[0].LastError, "nope")

	// Other learners' entries are untouched.
	others, err := svc.Pending(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, others, 1)

	client.On(backend.OpMarkTopicComplete, backend.MockResult{Value: &backend.CompletionAck{CourseCompleted: true}})
	res, err = svc.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Delivered)
	assert.Equal(t, []string{"C2"}, res.CompletedCourses)
}

func TestSync_CanceledContext(t *testing.T) {
	client := backend.NewMockClient()
	svc, st := newService(t, client)
	require.NoError(t, st.CompletionRepo().Enqueue(context.Background(), store.TopicKey{UserID: "u1", CourseID: "C1", TopicID: "T1"}, "x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Sync(ctx, "u1")
	require.Error(t, err)
	assert.Zero(t, client.CallCount(backend.OpMarkTopicComplete))
}
