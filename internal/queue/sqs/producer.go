package sqsqueue

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type Producer struct {
	SQS      *sqs.Client
	QueueURL string
}

// SMSJob carries one outbound message through the queue. The body travels in
// the job so the worker needs no template machinery.
type SMSJob struct {
	MessageID string `json:"messageId"`
	To        string `json:"to"`
	Body      string `json:"body"`
}

func (p *Producer) EnqueueSMS(ctx context.Context, messageID, to, body string) error {
	job := SMSJob{MessageID: messageID, To: to, Body: body}
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}

	_, err = p.SQS.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:               &p.QueueURL,
		MessageBody:            str(string(b)),
		MessageGroupId:         str(messageGroupID(to)), // FIFO ordering per phone
		MessageDeduplicationId: str(messageID),
	})
	return err
}

func messageGroupID(to string) string {
	if to == "" {
		return "sms"
	}
	return "sms:" + to
}

func str(s string) *string { return &s }
