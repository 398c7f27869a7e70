package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxResponseBytes bounds response bodies; certificates are the largest.
const maxResponseBytes = 32 << 20

// HTTPClient talks to the single action-dispatched backend endpoint.
type HTTPClient struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient for the configured endpoint.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse backend URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	return &HTTPClient{
		endpoint:  cfg.BaseURL,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) FetchQuiz(ctx context.Context, ref TopicRef) (*Quiz, error) {
	env, err := c.call(ctx, http.MethodGet, OpFetchQuiz, url.Values{
		"courseId": {ref.CourseID},
		"topicId":  {ref.TopicID},
		"userId":   {ref.UserID},
	}, nil, QuizSchema)
	if err != nil {
		return nil, err
	}

	var rows []questionDTO
	if err := decodeData(OpFetchQuiz, env.Data, &rows); err != nil {
		return nil, err
	}
	quiz := &Quiz{Completed: env.IsAssignmentCompleted != nil && *env.IsAssignmentCompleted}
	for _, r := range rows {
		quiz.Questions = append(quiz.Questions, r.toQuestion())
	}
	return quiz, nil
}

func (c *HTTPClient) SubmitAnswers(ctx context.Context, ref TopicRef, answers []Answer) (*Score, error) {
	payload, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	env, err := c.call(ctx, http.MethodPost, OpSubmitAnswers, url.Values{
		"courseId": {ref.CourseID},
		"topicId":  {ref.TopicID},
		"userId":   {ref.UserID},
		"answers":  {string(payload)},
	}, nil, ScoreSchema)
	if err != nil {
		return nil, err
	}

	var dto scoreDTO
	if err := decodeData(OpSubmitAnswers, env.Data, &dto); err != nil {
		return nil, err
	}
	return dto.toScore(), nil
}

func (c *HTTPClient) MarkTopicComplete(ctx context.Context, ref TopicRef) (*CompletionAck, error) {
	env, err := c.call(ctx, http.MethodPost, OpMarkTopicComplete, url.Values{
		"courseId": {ref.CourseID},
		"topicId":  {ref.TopicID},
		"userId":   {ref.UserID},
	}, nil, CompletionSchema)
	if err != nil {
		return nil, err
	}
	return &CompletionAck{
		CourseCompleted: env.IsCourseCompleted != nil && *env.IsCourseCompleted,
	}, nil
}

func (c *HTTPClient) TopicDetail(ctx context.Context, courseID string, index int, userID string) (*TopicDetail, error) {
	if index < 1 {
		index = 1
	}
	env, err := c.call(ctx, http.MethodGet, OpTopicDetail, url.Values{
		"courseId":   {courseID},
		"topicIndex": {strconv.Itoa(index)},
		"userId":     {userID},
	}, nil, TopicDetailSchema)
	if err != nil {
		return nil, err
	}

	var dto topicDetailDTO
	if err := decodeData(OpTopicDetail, env.Data, &dto); err != nil {
		return nil, err
	}
	detail := &TopicDetail{
		ID:            dto.TopicID.String(),
		Index:         dto.TopicIndex.Int(),
		Total:         dto.TotalTopics.Int(),
		Title:         dto.Title,
		CourseTitle:   dto.CourseTitle,
		Description:   dto.Description,
		Duration:      dto.Duration.String(),
		Level:         dto.Level,
		Objectives:    dto.Objectives,
		Status:        dto.Status,
		NotesURL:      strings.TrimSpace(dto.NotesURL),
		VideoURL:      strings.TrimSpace(dto.VideoURL),
		Completed:     env.IsCompleted != nil && *env.IsCompleted,
		QuizCompleted: env.IsAssignmentCompleted != nil && *env.IsAssignmentCompleted,
	}
	if detail.Index < 1 {
		detail.Index = index
	}
	return detail, nil
}

func (c *HTTPClient) CourseTopics(ctx context.Context, courseID string) ([]TopicSummary, error) {
	env, err := c.call(ctx, http.MethodGet, OpCourseTopics, url.Values{
		"courseId": {courseID},
	}, nil, CourseTopicsSchema)
	if err != nil {
		return nil, err
	}

	var rows []topicSummaryDTO
	if err := decodeData(OpCourseTopics, env.Data, &rows); err != nil {
		return nil, err
	}
	topics := make([]TopicSummary, 0, len(rows))
	for _, r := range rows {
		topics = append(topics, TopicSummary{
			ID:    r.TopicID.String(),
			Index: r.TopicIndex.Int(),
			Title: r.Title,
			Order: r.Order.Int(),
		})
	}
	SortTopics(topics)
	return topics, nil
}

func (c *HTTPClient) Courses(ctx context.Context, userID string) ([]Course, error) {
	env, err := c.call(ctx, http.MethodGet, OpCourses, url.Values{
		"userId": {userID},
	}, nil, CoursesSchema)
	if err != nil {
		return nil, err
	}

	var rows []courseDTO
	if err := decodeData(OpCourses, env.Data, &rows); err != nil {
		return nil, err
	}
	courses := make([]Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.toCourse())
	}
	return courses, nil
}

func (c *HTTPClient) Enroll(ctx context.Context, courseID, userID string) error {
	_, err := c.call(ctx, http.MethodPost, OpEnroll, url.Values{
		"courseId": {courseID},
		"userId":   {userID},
	}, nil, AckSchema)
	return err
}

func (c *HTTPClient) Profile(ctx context.Context, userID string) (*Profile, error) {
	env, err := c.call(ctx, http.MethodGet, OpProfile, url.Values{
		"userId": {userID},
	}, nil, ProfileSchema)
	if err != nil {
		return nil, err
	}

	var dto profileDTO
	if err := decodeData(OpProfile, env.Data, &dto); err != nil {
		return nil, err
	}
	p := &Profile{
		UserID: dto.UserID.String(),
		Name:   dto.Name,
		Email:  dto.Email.String(),
		Phone:  dto.Phone.String(),
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	return p, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, p Profile) error {
	_, err := c.call(ctx, http.MethodPost, OpUpdateProfile, url.Values{
		"userId": {p.UserID},
		"name":   {p.Name},
		"phone":  {p.Phone},
	}, nil, AckSchema)
	return err
}

func (c *HTTPClient) ChangePassword(ctx context.Context, userID, current, next string) error {
	_, err := c.call(ctx, http.MethodPost, OpChangePassword, url.Values{
		"userId":          {userID},
		"currentPassword": {current},
		"newPassword":     {next},
	}, nil, AckSchema)
	return err
}

func (c *HTTPClient) Certificate(ctx context.Context, courseID, userID string) (*Certificate, error) {
	env, err := c.call(ctx, http.MethodPost, OpCertificate, nil, map[string]string{
		"action":   OpCertificate,
		"userId":   userID,
		"courseId": courseID,
	}, CertificateSchema)
	if err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(env.Base64)
	if err != nil {
		return nil, &ErrInvalidResponse{Action: OpCertificate, Err: fmt.Errorf("decode certificate: %w", err)}
	}
	name := env.FileName
	if name == "" {
		name = "Certificate.pdf"
	}
	return &Certificate{FileName: name, Data: data}, nil
}

// call performs one request and returns the decoded, validated envelope.
// When body is non-nil it is sent as a JSON document instead of query
// parameters.
func (c *HTTPClient) call(ctx context.Context, method, action string, params url.Values, body any, schema *Schema) (*envelopeDTO, error) {
	req, err := c.newRequest(ctx, method, action, params, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ErrUnavailable{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ErrUnavailable{Err: fmt.Errorf("read response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &ErrRateLimit{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	case resp.StatusCode >= 500:
		return nil, &ErrUnavailable{Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return nil, &ErrBackend{Action: action, Message: fmt.Sprintf("HTTP %d", resp.StatusCode), StatusCode: resp.StatusCode}
	}

	var env envelopeDTO
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ErrInvalidResponse{Action: action, Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if !env.success() {
		return nil, &ErrBackend{Action: action, Message: env.Message}
	}
	if err := validateResponse(action, schema, raw); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, action string, params url.Values, body any) (*http.Request, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse backend URL: %w", err)
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", action, err)
		}
		reader = bytes.NewReader(buf)
	} else {
		q := u.Query()
		q.Set("action", action)
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", action, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", RequestIDFrom(ctx))
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func decodeData(action string, data json.RawMessage, v any) error {
	if len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ErrInvalidResponse{Action: action, Content: data, Err: err}
	}
	return nil
}

func parseRetryAfter(h string) time.Duration {
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
