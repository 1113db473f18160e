package callevents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSSink exports call-ended records to an SQS queue for downstream follow-up.
type SQSSink struct {
	client   sqsSender
	queueURL string
}

// NewSQSSink creates a sink around the provided SQS client.
func NewSQSSink(client sqsSender, queueURL string) (*SQSSink, error) {
	if client == nil {
		return nil, errors.New("callevents: SQS client cannot be nil")
	}
	if strings.TrimSpace(queueURL) == "" {
		return nil, errors.New("callevents: SQS queueURL cannot be empty")
	}
	return &SQSSink{client: client, queueURL: queueURL}, nil
}

func (s *SQSSink) Record(ctx context.Context, event CallEnded) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("callevents: marshal call ended: %w", err)
	}
	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event": {DataType: aws.String("String"), StringValue: aws.String("call_ended")},
		},
	}
	if event.TenantID != "" {
		input.MessageAttributes["tenant_id"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(event.TenantID),
		}
	}
	if _, err := s.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("callevents: failed to send SQS message: %w", err)
	}
	return nil
}
