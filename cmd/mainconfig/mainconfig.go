package mainconfig

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/wolfman30/medspa-booking-wizard/internal/config"
)

// AWS holds the shared SDK config used by the DynamoDB draft store, SES
// email and the SQS event queue. Endpoint, when set, points every client at
// LocalStack.
type AWS struct {
	Config   aws.Config
	Endpoint string
}

func LoadAWS(ctx context.Context, cfg *appconfig.Config) (*AWS, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, err
	}
	return &AWS{Config: awsCfg, Endpoint: strings.TrimSpace(cfg.AWSEndpointOverride)}, nil
}

func (a *AWS) baseEndpoint() *string {
	if a.Endpoint == "" {
		return nil
	}
	return aws.String(a.Endpoint)
}

func (a *AWS) DynamoDB() *dynamodb.Client {
	return dynamodb.NewFromConfig(a.Config, func(o *dynamodb.Options) {
		o.BaseEndpoint = a.baseEndpoint()
	})
}

func (a *AWS) SQS() *sqs.Client {
	return sqs.NewFromConfig(a.Config, func(o *sqs.Options) {
		o.BaseEndpoint = a.baseEndpoint()
	})
}

func (a *AWS) SESv2() *sesv2.Client {
	return sesv2.NewFromConfig(a.Config, func(o *sesv2.Options) {
		o.BaseEndpoint = a.baseEndpoint()
	})
}
