package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func TestDecodeMessage(t *testing.T) {
	got, err := DecodeMessage([]byte(`{"reportId":"r1","ownerId":"u1","status":"error","stage":"storage","occurredAt":"2026-01-30T22:00:00Z","version":1}`))
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if got.ReportID != "r1" || got.Status != "error" || got.Stage != "storage" || got.Version != 1 {
		t.Fatalf("unexpected message: %+v", got)
	}
	if _, err := DecodeMessage([]byte("{")); err == nil {
		t.Fatalf("expected error for truncated payload")
	}
}

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = in
	return &sqs.SendMessageOutput{}, f.err
}

func TestSQSClientSend(t *testing.T) {
	fake := &fakeSQS{}
	c := &SQSClient{client: fake, queueURL: "https://sqs.us-east-1.amazonaws.com/123/reports"}

	err := c.Send(context.Background(), Message{ReportID: "r1", OwnerID: "u1", Status: "done", Version: MessageVersion})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if *fake.input.QueueUrl != c.queueURL {
		t.Fatalf("unexpected queue url: %s", *fake.input.QueueUrl)
	}
	msg, err := DecodeMessage([]byte(*fake.input.MessageBody))
	if err != nil || msg.ReportID != "r1" {
		t.Fatalf("unexpected body: %s (%v)", *fake.input.MessageBody, err)
	}
	if got := *fake.input.MessageAttributes["status"].StringValue; got != "done" {
		t.Fatalf("unexpected status attribute: %s", got)
	}

	fake.err = errors.New("throttled")
	if err := c.Send(context.Background(), Message{ReportID: "r2"}); err == nil {
		t.Fatalf("expected send error")
	}
}
