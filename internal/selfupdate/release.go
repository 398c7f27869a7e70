// Package selfupdate finds newer coursely releases and installs them over the
// running binary.
package selfupdate

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// DefaultRepo is the release repository used when none is configured.
const DefaultRepo = "abhisek/coursely"

// Source locates published releases. APIURL serves release metadata and
// DownloadURL serves release assets; both default to GitHub.
type Source struct {
	Repo        string
	APIURL      string
	DownloadURL string
}

// DefaultSource returns the GitHub source for DefaultRepo.
func DefaultSource() Source {
	return Source{
		Repo:        DefaultRepo,
		APIURL:      "https://api.github.com",
		DownloadURL: "https://github.com",
	}
}

// withDefaults fills empty fields from DefaultSource and checks that Repo
// has the owner/name form.
func (s Source) withDefaults() (Source, error) {
	def := DefaultSource()
	if s.Repo == "" {
		s.Repo = def.Repo
	}
	if s.APIURL == "" {
		s.APIURL = def.APIURL
	}
	if s.DownloadURL == "" {
		s.DownloadURL = def.DownloadURL
	}
	owner, name, ok := strings.Cut(s.Repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return s, fmt.Errorf("release repo must be owner/name, got %q", s.Repo)
	}
	s.APIURL = strings.TrimRight(s.APIURL, "/")
	s.DownloadURL = strings.TrimRight(s.DownloadURL, "/")
	return s, nil
}

func (s Source) latestURL() string {
	return fmt.Sprintf("%s/repos/%s/releases/latest", s.APIURL, s.Repo)
}

func (s Source) assetURL(tag, file string) string {
	return fmt.Sprintf("%s/%s/releases/download/%s/%s", s.DownloadURL, s.Repo, tag, file)
}

// Release is a published coursely build.
type Release struct {
	Tag string `json:"tag_name"`
	URL string `json:"html_url"`
}

// Notice compares the running build with the latest release.
type Notice struct {
	Current string
	Latest  Release
}

// Available reports whether Latest is newer than Current. Development builds
// and unparseable versions never have an update available.
func (n Notice) Available() bool {
	cur, latest := canonical(n.Current), canonical(n.Latest.Tag)
	return cur != "" && latest != "" && semver.Compare(latest, cur) > 0
}

// String is the one-line message shown to the learner.
func (n Notice) String() string {
	if !n.Available() {
		return "coursely " + n.Current + " is up to date"
	}
	return fmt.Sprintf("coursely %s is available (you have %s). Run: coursely update", n.Latest.Tag, n.Current)
}

// canonical normalizes "1.2.3" and "v1.2.3" to semver form, or "" if invalid.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}
