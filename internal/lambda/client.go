package lambda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/cameronsjo/lambdo/internal/artifact"
	"github.com/cameronsjo/lambdo/internal/manifest"
)

// DefaultWaitTimeout bounds how long the client waits for a function to
// settle after a create or update.
const DefaultWaitTimeout = 2 * time.Minute

// Client wraps the Lambda SDK client.
type Client struct {
	api         LambdaAPI
	waitTimeout time.Duration
}

// LoadConfig loads the AWS default configuration chain, optionally pinned to
// a region and shared config profile.
func LoadConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// NewClient creates a Lambda client from an AWS configuration.
func NewClient(cfg aws.Config) *Client {
	return &Client{
		api:         awslambda.NewFromConfig(cfg),
		waitTimeout: DefaultWaitTimeout,
	}
}

// NewClientWithAPI creates a client with a custom API implementation.
// This is primarily used for testing with mock implementations. Waiting for
// function state is disabled.
func NewClientWithAPI(api LambdaAPI) *Client {
	return &Client{api: api}
}

// SetWaitTimeout changes how long to wait for a function to settle.
// Zero disables waiting.
func (c *Client) SetWaitTimeout(d time.Duration) {
	c.waitTimeout = d
}

// Exists reports whether a function with the given name exists.
func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	_, err := c.api.GetFunction(ctx, &awslambda.GetFunctionInput{FunctionName: aws.String(name)})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("get function %s: %w", name, err)
	}
	return true, nil
}

// Create creates a function from spec with the given code.
func (c *Client) Create(ctx context.Context, name string, spec *manifest.UnitSpec, code artifact.Code) error {
	_, err := c.api.CreateFunction(ctx, &awslambda.CreateFunctionInput{
		FunctionName:  aws.String(name),
		Role:          aws.String(spec.Role),
		Runtime:       types.Runtime(spec.Runtime),
		Handler:       aws.String(spec.Handler),
		Code:          functionCode(code),
		Environment:   environment(spec.Env),
		Layers:        layers(spec.Layers),
		Timeout:       aws.Int32(spec.EffectiveTimeout()),
		MemorySize:    aws.Int32(spec.EffectiveMemory()),
		Description:   aws.String(spec.Description),
		Architectures: architectures(spec.Architectures),
	})
	if err != nil {
		return fmt.Errorf("create function %s: %w", name, err)
	}

	if c.waitTimeout > 0 {
		waiter := awslambda.NewFunctionActiveV2Waiter(c.api)
		if err := waiter.Wait(ctx, &awslambda.GetFunctionInput{FunctionName: aws.String(name)}, c.waitTimeout); err != nil {
			return fmt.Errorf("wait for %s to become active: %w", name, err)
		}
	}
	return nil
}

// UpdateConfig replaces a function's settings with those of spec.
// Unset env and layers clear the remote values.
func (c *Client) UpdateConfig(ctx context.Context, name string, spec *manifest.UnitSpec) error {
	_, err := c.api.UpdateFunctionConfiguration(ctx, &awslambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(name),
		Role:         aws.String(spec.Role),
		Runtime:      types.Runtime(spec.Runtime),
		Handler:      aws.String(spec.Handler),
		Environment:  environment(spec.Env),
		Layers:       layers(spec.Layers),
		Timeout:      aws.Int32(spec.EffectiveTimeout()),
		MemorySize:   aws.Int32(spec.EffectiveMemory()),
		Description:  aws.String(spec.Description),
	})
	if err != nil {
		return fmt.Errorf("update configuration of %s: %w", name, err)
	}
	return c.waitUpdated(ctx, name)
}

// UpdateCode replaces a function's archive.
func (c *Client) UpdateCode(ctx context.Context, name string, code artifact.Code) error {
	input := &awslambda.UpdateFunctionCodeInput{FunctionName: aws.String(name)}
	if code.Location != nil {
		input.S3Bucket = aws.String(code.Location.Bucket)
		input.S3Key = aws.String(code.Location.Key)
	} else {
		input.ZipFile = code.ZipFile
	}

	if _, err := c.api.UpdateFunctionCode(ctx, input); err != nil {
		return fmt.Errorf("update code of %s: %w", name, err)
	}
	return c.waitUpdated(ctx, name)
}

// PublishVersion publishes $LATEST and returns the new version number.
func (c *Client) PublishVersion(ctx context.Context, name, description string) (string, error) {
	out, err := c.api.PublishVersion(ctx, &awslambda.PublishVersionInput{
		FunctionName: aws.String(name),
		Description:  aws.String(description),
	})
	if err != nil {
		return "", fmt.Errorf("publish version of %s: %w", name, err)
	}
	return aws.ToString(out.Version), nil
}

// ListVersions returns every version of a function, including $LATEST.
func (c *Client) ListVersions(ctx context.Context, name string) ([]string, error) {
	var versions []string
	paginator := awslambda.NewListVersionsByFunctionPaginator(c.api, &awslambda.ListVersionsByFunctionInput{
		FunctionName: aws.String(name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list versions of %s: %w", name, err)
		}
		for _, v := range page.Versions {
			versions = append(versions, aws.ToString(v.Version))
		}
	}
	return versions, nil
}

// ListAliases returns the alias names of a function.
func (c *Client) ListAliases(ctx context.Context, name string) ([]string, error) {
	var aliases []string
	paginator := awslambda.NewListAliasesPaginator(c.api, &awslambda.ListAliasesInput{
		FunctionName: aws.String(name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list aliases of %s: %w", name, err)
		}
		for _, a := range page.Aliases {
			aliases = append(aliases, aws.ToString(a.Name))
		}
	}
	return aliases, nil
}

// CreateAlias points a new alias at version.
func (c *Client) CreateAlias(ctx context.Context, name, alias, version string) error {
	_, err := c.api.CreateAlias(ctx, &awslambda.CreateAliasInput{
		FunctionName:    aws.String(name),
		Name:            aws.String(alias),
		FunctionVersion: aws.String(version),
	})
	if err != nil {
		return fmt.Errorf("create alias %s:%s: %w", name, alias, err)
	}
	return nil
}

// UpdateAlias points an existing alias at version.
func (c *Client) UpdateAlias(ctx context.Context, name, alias, version string) error {
	_, err := c.api.UpdateAlias(ctx, &awslambda.UpdateAliasInput{
		FunctionName:    aws.String(name),
		Name:            aws.String(alias),
		FunctionVersion: aws.String(version),
	})
	if err != nil {
		return fmt.Errorf("update alias %s:%s: %w", name, alias, err)
	}
	return nil
}

// waitUpdated blocks until the last update of a function has finished, so
// the next update is not rejected as a conflict.
func (c *Client) waitUpdated(ctx context.Context, name string) error {
	if c.waitTimeout <= 0 {
		return nil
	}
	waiter := awslambda.NewFunctionUpdatedV2Waiter(c.api)
	if err := waiter.Wait(ctx, &awslambda.GetFunctionInput{FunctionName: aws.String(name)}, c.waitTimeout); err != nil {
		return fmt.Errorf("wait for %s update: %w", name, err)
	}
	return nil
}

func functionCode(code artifact.Code) *types.FunctionCode {
	if code.Location != nil {
		return &types.FunctionCode{
			S3Bucket: aws.String(code.Location.Bucket),
			S3Key:    aws.String(code.Location.Key),
		}
	}
	return &types.FunctionCode{ZipFile: code.ZipFile}
}

func environment(env map[string]string) *types.Environment {
	if env == nil {
		env = map[string]string{}
	}
	return &types.Environment{Variables: env}
}

func layers(arns []string) []string {
	if arns == nil {
		return []string{}
	}
	return arns
}

func architectures(names []string) []types.Architecture {
	if len(names) == 0 {
		return nil
	}
	archs := make([]types.Architecture, len(names))
	for i, n := range names {
		archs[i] = types.Architecture(n)
	}
	return archs
}
