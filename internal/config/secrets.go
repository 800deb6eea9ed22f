package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ServiceSecret is the JSON document stored in AWS Secrets Manager. Empty fields leave
// the YAML value in place.
type ServiceSecret struct {
	JWTSecret     string `json:"jwt_secret"`
	EncryptionKey string `json:"encryption_key"`
	RedisPassword string `json:"redis_password"`
	DatabaseURL   string `json:"database_url"`
	AccountToken  string `json:"account_token"`
}

// SecretGetter is the slice of the Secrets Manager client we use.
type SecretGetter interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// NewSecretsManagerClient builds a client from the default AWS credential chain.
func NewSecretsManagerClient(ctx context.Context) (*secretsmanager.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// ApplySecrets overlays the configured secret onto cfg and re-validates it.
// It is a no-op when secrets.aws_secret_name is empty.
func ApplySecrets(ctx context.Context, cfg *Config, sm SecretGetter) error {
	name := cfg.Secrets.AWSSecretName
	if name == "" {
		return nil
	}
	out, err := sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("fetch secret %q from secrets manager: %w", name, err)
	}
	if out.SecretString == nil {
		return fmt.Errorf("secret %q has no string value (binary secrets not supported)", name)
	}

	var s ServiceSecret
	if err := json.Unmarshal([]byte(*out.SecretString), &s); err != nil {
		return fmt.Errorf("parse secret %q as JSON: %w", name, err)
	}
	if s.JWTSecret != "" {
		cfg.Auth.JWTSecret = s.JWTSecret
	}
	if s.EncryptionKey != "" {
		cfg.Security.EncryptionKey = s.EncryptionKey
	}
	if s.RedisPassword != "" {
		cfg.Redis.Password = s.RedisPassword
	}
	if s.DatabaseURL != "" {
		cfg.Database.URL = s.DatabaseURL
	}
	if s.AccountToken != "" {
		cfg.Account.Token = s.AccountToken
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("secret %q missing required field: jwt_secret", name)
	}
	return cfg.Validate()
}
