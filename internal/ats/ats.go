// Package ats pushes finished interviews to an applicant tracking system webhook.
package ats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/summary"

	"go.uber.org/zap"
)

const (
	contentType = "application/json"
	userAgent   = "spigell/hh-interviewer (spigelly@gmail.com)"
	eventName   = "interview.finished"
	// Error bodies are only read this far for the log.
	maxErrorBody = 512
)

type Config struct {
	URL       string        `mapstructure:"url"`
	Token     string        `mapstructure:"token"`
	TokenFile string        `mapstructure:"token-file"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	URL        string
}

func New(logger *zap.Logger, url, token string, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		token:  token,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: userAgent,
		URL:       url,
	}
}

type Exchange struct {
	Number     int              `json:"number"`
	Topic      string           `json:"topic"`
	Question   string           `json:"question"`
	Answer     string           `json:"answer"`
	Score      float64          `json:"score"`
	Flags      []interview.Flag `json:"flags,omitempty"`
	AnsweredAt time.Time        `json:"answered_at"`
}

type Payload struct {
	Event       string          `json:"event"`
	InterviewID string          `json:"interview_id"`
	Candidate   string          `json:"candidate,omitempty"`
	JobID       string          `json:"job_id,omitempty"`
	Report      *summary.Report `json:"report"`
	Transcript  []Exchange      `json:"transcript"`
}

// NewPayload builds the webhook body from a terminated interview.
func NewPayload(s *interview.State, r *summary.Report) *Payload {
	transcript := make([]Exchange, 0, len(s.History))
	for _, t := range s.History {
		transcript = append(transcript, Exchange{
			Number:     t.Number,
			Topic:      t.Topic.String(),
			Question:   t.Question,
			Answer:     t.Answer,
			Score:      t.Score,
			Flags:      t.Flags,
			AnsweredAt: t.Timestamp,
		})
	}
	return &Payload{
		Event:       eventName,
		InterviewID: s.ID,
		Candidate:   s.Candidate,
		JobID:       s.Job.ID,
		Report:      r,
		Transcript:  transcript,
	}
}

// Sync posts the interview outcome. Any non-2xx answer is an error.
func (c *Client) Sync(ctx context.Context, s *interview.State, r *summary.Report) error {
	if c.URL == "" {
		return errors.New("ats url is not configured")
	}

	body, err := json.Marshal(NewPayload(s, r))
	if err != nil {
		return fmt.Errorf("encode ats payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Idempotency-Key", s.ID)

	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("bad status: %s: %s", resp.Status, bytes.TrimSpace(data))
	}

	c.logger.Info("interview synced to ats",
		zap.String("interview_id", s.ID),
		zap.String("recommendation", string(r.Recommendation)),
	)
	return nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)

	return req
}
