package sendgrid

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
)

func TestClientSendRequest(t *testing.T) {
	const expectedURL = "http://sendgrid.test/v3/mail/send"

	var capturedURL string
	var capturedHeaders http.Header

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()

		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		if payload["subject"] != "Your order ORD-TEST123" {
			t.Fatalf("unexpected subject %q", payload["subject"])
		}
		from, _ := payload["from"].(map[string]any)
		if from["email"] != "orders@attarhouse.pk" {
			t.Fatalf("unexpected from address %v", from)
		}

		return &http.Response{
			StatusCode: http.StatusAccepted,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", "orders@attarhouse.pk",
		WithBaseURL("http://sendgrid.test/v3"),
		WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	err = client.Send(context.Background(), Mail{
		ToEmail:   "sara@example.com",
		ToName:    "Sara Khan",
		Subject:   "Your order ORD-TEST123",
		PlainText: "thank you",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedHeaders.Get("Authorization") != "Bearer test-key" {
		t.Fatalf("authorization header missing")
	}
}

func TestClientSendMapsFailureStatus(t *testing.T) {
	cases := []struct {
		name          string
		status        int
		wantCode      pkgerrors.Code
		wantRetryable bool
	}{
		{"bad request is permanent", http.StatusBadRequest, pkgerrors.CodeValidation, false},
		{"unauthorized is permanent", http.StatusUnauthorized, pkgerrors.CodeValidation, false},
		{"rate limit is retryable", http.StatusTooManyRequests, pkgerrors.CodeDependency, true},
		{"server error is retryable", http.StatusInternalServerError, pkgerrors.CodeDependency, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: tc.status,
					Body:       io.NopCloser(strings.NewReader(`{"errors":[{"message":"rejected"}]}`)),
					Header:     http.Header{},
				}, nil
			})

			client, err := NewClient("test-key", "orders@attarhouse.pk",
				WithBaseURL("http://sendgrid.test/v3"),
				WithHTTPClient(&http.Client{Transport: rt}))
			if err != nil {
				t.Fatalf("new client: %v", err)
			}

			err = client.Send(context.Background(), Mail{
				ToEmail:   "sara@example.com",
				Subject:   "Your order",
				PlainText: "thank you",
			})
			if err == nil {
				t.Fatalf("expected error for rejected send")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tc.wantCode {
				t.Fatalf("expected code %s, got %v", tc.wantCode, err)
			}
			if got := pkgerrors.MetadataFor(typed.Code()).Retryable; got != tc.wantRetryable {
				t.Fatalf("expected retryable=%v for status %d", tc.wantRetryable, tc.status)
			}
		})
	}
}

func TestClientSendValidatesMail(t *testing.T) {
	client, err := NewClient("test-key", "orders@attarhouse.pk")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	cases := []struct {
		name string
		mail Mail
	}{
		{"missing recipient", Mail{Subject: "s", PlainText: "b"}},
		{"missing subject", Mail{ToEmail: "a@b.c", PlainText: "b"}},
		{"missing body", Mail{ToEmail: "a@b.c", Subject: "s"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := client.Send(context.Background(), tc.mail)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient("", "orders@attarhouse.pk"); err == nil {
		t.Fatalf("expected error for missing api key")
	}
	if _, err := NewClient("test-key", ""); err == nil {
		t.Fatalf("expected error for missing from address")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
