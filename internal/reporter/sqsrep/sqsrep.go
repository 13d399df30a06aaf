// Package sqsrep sends tournament events as JSON messages to an SQS queue.
package sqsrep

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/dilemma/internal/reporter"
)

const DefaultRegion = "eu-central-1"

// SendMessageAPI is the part of *sqs.Client the sink uses.
type SendMessageAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

var _ SendMessageAPI = (*sqs.Client)(nil)

type Sink struct {
	client   SendMessageAPI
	queueUrl string
	// groupId is set for FIFO queues so that events keep their order.
	groupId *string
}

func NewSink(client SendMessageAPI, queueUrl string, groupId string) *Sink {
	s := &Sink{client: client, queueUrl: queueUrl}
	if groupId != "" {
		s.groupId = aws.String(groupId)
	}
	return s
}

func (s *Sink) Send(msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	_, err = s.client.SendMessage(context.TODO(), &sqs.SendMessageInput{
		QueueUrl:       aws.String(s.queueUrl),
		MessageBody:    aws.String(string(b)),
		MessageGroupId: s.groupId,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// New loads the default AWS configuration for region and returns a
// reporter sending to queueUrl.
func New(ctx context.Context, region, queueUrl, groupId string, logger *slog.Logger) (*reporter.Streamer, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return reporter.NewStreamer(NewSink(sqs.NewFromConfig(cfg), queueUrl, groupId), logger), nil
}
