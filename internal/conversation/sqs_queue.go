package conversation

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQS caps one receive call at ten messages.
const sqsMaxReceiveBatch = 10

// sqsAPI is the slice of the SQS client the queue uses. *sqs.Client
// satisfies it; tests substitute a stub.
type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSQueue carries turn jobs over SQS so API pods and orchestrator workers
// can scale independently. LocalStack answers the same wire in development.
type SQSQueue struct {
	api      sqsAPI
	queueURL string
}

// NewSQSQueue wraps an SQS client for one queue URL.
func NewSQSQueue(api sqsAPI, queueURL string) *SQSQueue {
	if api == nil {
		panic("conversation: sqs client cannot be nil")
	}
	if queueURL == "" {
		panic("conversation: sqs queue url cannot be empty")
	}
	return &SQSQueue{api: api, queueURL: queueURL}
}

// Send enqueues one serialized turn job.
func (q *SQSQueue) Send(ctx context.Context, body string) error {
	if _, err := q.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(body),
	}); err != nil {
		return fmt.Errorf("conversation: sqs send: %w", err)
	}
	return nil
}

// Receive long-polls for up to maxMessages jobs. Requests beyond the SQS
// per-call limit are clamped rather than rejected.
func (q *SQSQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error) {
	if maxMessages < 1 {
		maxMessages = 1
	}
	if maxMessages > sqsMaxReceiveBatch {
		maxMessages = sqsMaxReceiveBatch
	}

	out, err := q.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(maxMessages),
		WaitTimeSeconds:     int32(waitSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("conversation: sqs receive: %w", err)
	}

	jobs := make([]queueMessage, 0, len(out.Messages))
	for _, msg := range out.Messages {
		jobs = append(jobs, queueMessage{
			ID:            aws.ToString(msg.MessageId),
			Body:          aws.ToString(msg.Body),
			ReceiptHandle: aws.ToString(msg.ReceiptHandle),
		})
	}
	return jobs, nil
}

// Delete acknowledges a processed job. An empty receipt handle (a job that
// came from the memory queue) is a no-op.
func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	if receiptHandle == "" {
		return nil
	}
	if _, err := q.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	}); err != nil {
		return fmt.Errorf("conversation: sqs delete: %w", err)
	}
	return nil
}

var _ queueClient = (*SQSQueue)(nil)
