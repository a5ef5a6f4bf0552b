package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	otlpModel "github.com/dash-tools/otel-loadgen/pkg/otlp/model"
)

// TraceSender delivers one assembled batch to the collector.
type TraceSender interface {
	// Send posts the payload and returns the HTTP status the collector
	// answered with, or 0 when the request never reached it.
	Send(ctx context.Context, payload otlpModel.TracePayload) (int, error)
}

type HttpTraceSenderImpl struct {
	client *http.Client
	target string
}

func NewHttpTraceSenderImpl(target string, timeout time.Duration) *HttpTraceSenderImpl {
	return &HttpTraceSenderImpl{
		client: &http.Client{Timeout: timeout},
		target: target,
	}
}

func (ts *HttpTraceSenderImpl) Send(ctx context.Context, payload otlpModel.TracePayload) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal trace payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.target, bytes.NewBuffer(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create collector request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to post traces to %s: %w", ts.target, err)
	}
	defer resp.Body.Close()

	responseBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf(
			"collector rejected batch with status %d: %s",
			resp.StatusCode,
			string(responseBody),
		)
	}
	return resp.StatusCode, nil
}
