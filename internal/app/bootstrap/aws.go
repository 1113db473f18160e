package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/wolfman30/retell-calcom-bridge/internal/callevents"
	appconfig "github.com/wolfman30/retell-calcom-bridge/internal/config"
	"github.com/wolfman30/retell-calcom-bridge/pkg/logging"
)

// LoadAWSConfig centralizes AWS SDK initialization so both binaries share the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				if service == sqs.ServiceID {
					return aws.Endpoint{
						URL:           endpoint,
						PartitionID:   "aws",
						SigningRegion: cfg.AWSRegion,
					}, nil
				}
				return aws.Endpoint{}, &aws.EndpointNotFoundError{}
			},
		)
	}

	return awsCfg, nil
}

// BuildCallEventSink always logs call-ended events and also exports them to
// SQS when CALL_EVENTS_QUEUE_URL is set.
func BuildCallEventSink(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (callevents.Sink, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logSink := callevents.NewLogSink(logger)
	if cfg == nil || strings.TrimSpace(cfg.CallEventsQueueURL) == "" {
		return logSink, nil
	}

	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	sqsSink, err := callevents.NewSQSSink(sqs.NewFromConfig(awsCfg), cfg.CallEventsQueueURL)
	if err != nil {
		return nil, err
	}
	logger.Info("call-ended export enabled", "queue_url", cfg.CallEventsQueueURL)
	return callevents.Fanout{logSink, sqsSink}, nil
}
