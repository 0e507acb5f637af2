// Package lambda deploys packaged units to AWS Lambda.
package lambda

import (
	"context"

	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
)

// LambdaAPI defines the Lambda SDK operations lambdo uses.
// This interface enables mocking for unit tests without an AWS account.
type LambdaAPI interface {
	// GetFunction returns a function's configuration and code location.
	GetFunction(ctx context.Context, params *awslambda.GetFunctionInput, optFns ...func(*awslambda.Options)) (*awslambda.GetFunctionOutput, error)

	// CreateFunction creates a function from an archive.
	CreateFunction(ctx context.Context, params *awslambda.CreateFunctionInput, optFns ...func(*awslambda.Options)) (*awslambda.CreateFunctionOutput, error)

	// UpdateFunctionConfiguration replaces a function's settings.
	UpdateFunctionConfiguration(ctx context.Context, params *awslambda.UpdateFunctionConfigurationInput, optFns ...func(*awslambda.Options)) (*awslambda.UpdateFunctionConfigurationOutput, error)

	// UpdateFunctionCode replaces a function's archive.
	UpdateFunctionCode(ctx context.Context, params *awslambda.UpdateFunctionCodeInput, optFns ...func(*awslambda.Options)) (*awslambda.UpdateFunctionCodeOutput, error)

	// PublishVersion snapshots $LATEST as a numbered version.
	PublishVersion(ctx context.Context, params *awslambda.PublishVersionInput, optFns ...func(*awslambda.Options)) (*awslambda.PublishVersionOutput, error)

	// ListVersionsByFunction lists published versions.
	ListVersionsByFunction(ctx context.Context, params *awslambda.ListVersionsByFunctionInput, optFns ...func(*awslambda.Options)) (*awslambda.ListVersionsByFunctionOutput, error)

	// ListAliases lists a function's aliases.
	ListAliases(ctx context.Context, params *awslambda.ListAliasesInput, optFns ...func(*awslambda.Options)) (*awslambda.ListAliasesOutput, error)

	// CreateAlias points a new alias at a version.
	CreateAlias(ctx context.Context, params *awslambda.CreateAliasInput, optFns ...func(*awslambda.Options)) (*awslambda.CreateAliasOutput, error)

	// UpdateAlias repoints an existing alias.
	UpdateAlias(ctx context.Context, params *awslambda.UpdateAliasInput, optFns ...func(*awslambda.Options)) (*awslambda.UpdateAliasOutput, error)
}

// Ensure the SDK client satisfies the interface.
var _ LambdaAPI = (*awslambda.Client)(nil)
