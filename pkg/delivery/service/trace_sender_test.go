package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	otlpModel "github.com/dash-tools/otel-loadgen/pkg/otlp/model"
	"github.com/stretchr/testify/assert"
)

func TestHttpTraceSender(t *testing.T) {
	t.Run("Posts the payload to the target as JSON", func(t *testing.T) {
		var receivedMethod string
		var receivedPath string
		var receivedContentType string
		var receivedPayload otlpModel.TracePayload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			receivedMethod = r.Method
			receivedPath = r.URL.Path
			receivedContentType = r.Header.Get("Content-Type")
			err := json.NewDecoder(r.Body).Decode(&receivedPayload)
			assert.NoError(t, err)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		sender := NewHttpTraceSenderImpl(server.URL+"/v1/traces", 5*time.Second)
		payload := otlpModel.TracePayload{
			ResourceSpans: []otlpModel.ResourceSpans{
				{
					Resource: otlpModel.Resource{
						Attributes: []otlpModel.KeyValue{
							otlpModel.NewAttribute("service.name", "loadgen-service-1"),
						},
					},
					ScopeSpans: []otlpModel.ScopeSpans{
						{
							Scope: otlpModel.Scope{Name: "dash-otel-loadgen", Version: "1.0.0"},
							Spans: []otlpModel.Span{
								{
									TraceID:           "0123456789abcdef0123456789abcdef",
									SpanID:            "0123456789abcdef",
									Name:              "http.request",
									Kind:              otlpModel.KindServer,
									StartTimeUnixNano: 1700000000000000000,
									EndTimeUnixNano:   1700000000050000000,
								},
							},
						},
					},
				},
			},
		}

		status, err := sender.Send(context.Background(), payload)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, http.MethodPost, receivedMethod)
		assert.Equal(t, "/v1/traces", receivedPath)
		assert.Equal(t, "application/json", receivedContentType)
		assert.Equal(t, payload, receivedPayload)
	})

	t.Run("Returns the status and an error when the collector rejects the batch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("malformed resource spans"))
		}))
		defer server.Close()

		sender := NewHttpTraceSenderImpl(server.URL+"/v1/traces", 5*time.Second)
		status, err := sender.Send(context.Background(), otlpModel.TracePayload{})

		assert.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, err.Error(), "400")
		assert.Contains(t, err.Error(), "malformed resource spans")
	})

	t.Run("Returns a zero status when the collector is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		target := server.URL + "/v1/traces"
		server.Close()

		sender := NewHttpTraceSenderImpl(target, time.Second)
		status, err := sender.Send(context.Background(), otlpModel.TracePayload{})

		assert.Error(t, err)
		assert.Equal(t, 0, status)
	})

	t.Run("Aborts when the context is already cancelled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		sender := NewHttpTraceSenderImpl(server.URL+"/v1/traces", time.Second)
		status, err := sender.Send(ctx, otlpModel.TracePayload{})

		assert.Error(t, err)
		assert.Equal(t, 0, status)
	})
}
