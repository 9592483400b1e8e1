package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/aada-api/internal/config"
	"github.com/aada-api/internal/infrastructure/awsx"
)

// Sender delivers mobile push notifications through an SNS platform
// application. Each device token is registered as a platform endpoint.
type Sender struct {
	client         *sns.Client
	platformAppARN string
}

func NewSender(ctx context.Context, cfg *config.Config) (*Sender, error) {
	awsCfg, err := awsx.Load(ctx, cfg, cfg.SNSRegion)
	if err != nil {
		return nil, err
	}
	opts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &Sender{
		client:         sns.NewFromConfig(awsCfg, opts...),
		platformAppARN: cfg.SNSPlatformApplicationARN,
	}, nil
}

func (s *Sender) Send(ctx context.Context, token, title, body string) error {
	// CreatePlatformEndpoint returns the existing ARN when the token is already registered.
	ep, err := s.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(s.platformAppARN),
		Token:                  aws.String(token),
	})
	if err != nil {
		return fmt.Errorf("sns create endpoint: %w", err)
	}
	msg, err := payload(title, body)
	if err != nil {
		return err
	}
	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        ep.EndpointArn,
		Message:          aws.String(msg),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// payload builds the per-platform JSON envelope SNS expects with MessageStructure=json.
func payload(title, body string) (string, error) {
	gcm, err := json.Marshal(map[string]any{
		"notification": map[string]string{"title": title, "body": body},
	})
	if err != nil {
		return "", err
	}
	apns, err := json.Marshal(map[string]any{
		"aps": map[string]any{
			"alert": map[string]string{"title": title, "body": body},
			"sound": "default",
		},
	})
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(map[string]string{
		"default":      body,
		"GCM":          string(gcm),
		"APNS":         string(apns),
		"APNS_SANDBOX": string(apns),
	})
	if err != nil {
		return "", fmt.Errorf("encode sns payload: %w", err)
	}
	return string(out), nil
}
