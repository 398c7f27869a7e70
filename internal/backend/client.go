package backend

import "context"

// Client is the typed contract with the course backend. Each method maps to
// exactly one backend action.
type Client interface {
	// FetchQuiz returns the ordered questions of a topic and whether the
	// learner already completed its quiz.
	FetchQuiz(ctx context.Context, ref TopicRef) (*Quiz, error)

	// SubmitAnswers sends every attempted question and returns the score.
	SubmitAnswers(ctx context.Context, ref TopicRef, answers []Answer) (*Score, error)

	// MarkTopicComplete records the topic itself as complete.
	MarkTopicComplete(ctx context.Context, ref TopicRef) (*CompletionAck, error)

	// TopicDetail returns the topic at a 1-based index within a course.
	TopicDetail(ctx context.Context, courseID string, index int, userID string) (*TopicDetail, error)

	// CourseTopics returns a course's topics in curriculum order.
	CourseTopics(ctx context.Context, courseID string) ([]TopicSummary, error)

	// Courses returns the catalog annotated with the learner's progress.
	Courses(ctx context.Context, userID string) ([]Course, error)

	// Enroll enrolls the learner in a course.
	Enroll(ctx context.Context, courseID, userID string) error

	Profile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, p Profile) error
	ChangePassword(ctx context.Context, userID, current, next string) error

	// Certificate requests the completion certificate for a course.
	Certificate(ctx context.Context, courseID, userID string) (*Certificate, error)
}

// Operation names, as sent in the action parameter.
const (
	OpFetchQuiz         = "getTopicMCQs"
	OpSubmitAnswers     = "submitMCQAssignment"
	OpMarkTopicComplete = "markTopicComplete"
	OpTopicDetail       = "getTopicDetail"
	OpCourseTopics      = "getCourseTopicsList"
	OpCourses           = "getAllCourses"
	OpEnroll            = "enrollCourse"
	OpProfile           = "getProfile"
	OpUpdateProfile     = "updateProfile"
	OpChangePassword    = "changePassword"
	OpCertificate       = "generateCertificate"
)

// Idempotent reports whether an operation may be safely repeated.
func Idempotent(op string) bool {
	switch op {
	case OpFetchQuiz, OpMarkTopicComplete, OpTopicDetail, OpCourseTopics, OpCourses, OpProfile:
		return true
	}
	return false
}
