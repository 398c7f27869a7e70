package screen

import (
	"context"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/selfupdate"
	"github.com/abhisek/coursely/internal/store"
	"github.com/abhisek/coursely/internal/tracker"
)

// Deps carries the services and learner identity shared by all screens.
type Deps struct {
	Client   backend.Client
	Tracker  *tracker.Service
	Attempts store.AttemptRepo

	UserID   string
	UserName string

	// DownloadDir is where certificates are written.
	DownloadDir string

	// Version is the running build. Updates, when set, is asked once per
	// session whether a newer release exists.
	Version string
	Updates UpdateChecker
}

// UpdateChecker looks for a newer coursely release.
type UpdateChecker interface {
	Check(ctx context.Context, current string) (*selfupdate.Notice, error)
}

// Context returns the context for a backend call made from the TUI.
func (d Deps) Context() context.Context {
	return backend.WithOrigin(context.Background(), "tui")
}

// Ref addresses a topic of a course for the signed-in learner.
func (d Deps) Ref(courseID, topicID string) backend.TopicRef {
	return backend.TopicRef{CourseID: courseID, TopicID: topicID, UserID: d.UserID}
}

// Learner returns the name shown in the header.
func (d Deps) Learner() string {
	if d.UserName != "" {
		return d.UserName
	}
	return d.UserID
}
