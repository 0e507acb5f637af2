package lambda

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
)

// Common test errors.
var (
	errMockGet      = errors.New("mock: get function failed")
	errMockCreate   = errors.New("mock: create function failed")
	errMockConfig   = errors.New("mock: update configuration failed")
	errMockCode     = errors.New("mock: update code failed")
	errMockPublish  = errors.New("mock: publish version failed")
	errMockVersions = errors.New("mock: list versions failed")
	errMockAliases  = errors.New("mock: list aliases failed")
	errMockAlias    = errors.New("mock: alias failed")
)

// MockLambdaAPI is a mock implementation of LambdaAPI for testing.
type MockLambdaAPI struct {
	// Function overrides for each method
	GetFunctionFunc                 func(ctx context.Context, params *awslambda.GetFunctionInput) (*awslambda.GetFunctionOutput, error)
	CreateFunctionFunc              func(ctx context.Context, params *awslambda.CreateFunctionInput) (*awslambda.CreateFunctionOutput, error)
	UpdateFunctionConfigurationFunc func(ctx context.Context, params *awslambda.UpdateFunctionConfigurationInput) (*awslambda.UpdateFunctionConfigurationOutput, error)
	UpdateFunctionCodeFunc          func(ctx context.Context, params *awslambda.UpdateFunctionCodeInput) (*awslambda.UpdateFunctionCodeOutput, error)
	PublishVersionFunc              func(ctx context.Context, params *awslambda.PublishVersionInput) (*awslambda.PublishVersionOutput, error)
	ListVersionsByFunctionFunc      func(ctx context.Context, params *awslambda.ListVersionsByFunctionInput) (*awslambda.ListVersionsByFunctionOutput, error)
	ListAliasesFunc                 func(ctx context.Context, params *awslambda.ListAliasesInput) (*awslambda.ListAliasesOutput, error)
	CreateAliasFunc                 func(ctx context.Context, params *awslambda.CreateAliasInput) (*awslambda.CreateAliasOutput, error)
	UpdateAliasFunc                 func(ctx context.Context, params *awslambda.UpdateAliasInput) (*awslambda.UpdateAliasOutput, error)

	// Call tracking
	GetFunctionCalls                 int
	CreateFunctionCalls              int
	UpdateFunctionConfigurationCalls int
	UpdateFunctionCodeCalls          int
	PublishVersionCalls              int
	ListVersionsByFunctionCalls      int
	ListAliasesCalls                 int
	CreateAliasCalls                 int
	UpdateAliasCalls                 int
}

// NewMockLambdaAPI creates a new mock with default no-op implementations.
func NewMockLambdaAPI() *MockLambdaAPI {
	return &MockLambdaAPI{}
}

// GetFunction implements LambdaAPI.
func (m *MockLambdaAPI) GetFunction(ctx context.Context, params *awslambda.GetFunctionInput, _ ...func(*awslambda.Options)) (*awslambda.GetFunctionOutput, error) {
	m.GetFunctionCalls++
	if m.GetFunctionFunc != nil {
		return m.GetFunctionFunc(ctx, params)
	}
	return &awslambda.GetFunctionOutput{}, nil
}

// CreateFunction implements LambdaAPI.
func (m *MockLambdaAPI) CreateFunction(ctx context.Context, params *awslambda.CreateFunctionInput, _ ...func(*awslambda.Options)) (*awslambda.CreateFunctionOutput, error) {
	m.CreateFunctionCalls++
	if m.CreateFunctionFunc != nil {
		return m.CreateFunctionFunc(ctx, params)
	}
	return &awslambda.CreateFunctionOutput{}, nil
}

// UpdateFunctionConfiguration implements LambdaAPI.
func (m *MockLambdaAPI) UpdateFunctionConfiguration(ctx context.Context, params *awslambda.UpdateFunctionConfigurationInput, _ ...func(*awslambda.Options)) (*awslambda.UpdateFunctionConfigurationOutput, error) {
	m.UpdateFunctionConfigurationCalls++
	if m.UpdateFunctionConfigurationFunc != nil {
		return m.UpdateFunctionConfigurationFunc(ctx, params)
	}
	return &awslambda.UpdateFunctionConfigurationOutput{}, nil
}

// UpdateFunctionCode implements LambdaAPI.
func (m *MockLambdaAPI) UpdateFunctionCode(ctx context.Context, params *awslambda.UpdateFunctionCodeInput, _ ...func(*awslambda.Options)) (*awslambda.UpdateFunctionCodeOutput, error) {
	m.UpdateFunctionCodeCalls++
	if m.UpdateFunctionCodeFunc != nil {
		return m.UpdateFunctionCodeFunc(ctx, params)
	}
	return &awslambda.UpdateFunctionCodeOutput{}, nil
}

// PublishVersion implements LambdaAPI.
func (m *MockLambdaAPI) PublishVersion(ctx context.Context, params *awslambda.PublishVersionInput, _ ...func(*awslambda.Options)) (*awslambda.PublishVersionOutput, error) {
	m.PublishVersionCalls++
	if m.PublishVersionFunc != nil {
		return m.PublishVersionFunc(ctx, params)
	}
	return &awslambda.PublishVersionOutput{Version: aws.String("1")}, nil
}

// ListVersionsByFunction implements LambdaAPI.
func (m *MockLambdaAPI) ListVersionsByFunction(ctx context.Context, params *awslambda.ListVersionsByFunctionInput, _ ...func(*awslambda.Options)) (*awslambda.ListVersionsByFunctionOutput, error) {
	m.ListVersionsByFunctionCalls++
	if m.ListVersionsByFunctionFunc != nil {
		return m.ListVersionsByFunctionFunc(ctx, params)
	}
	return &awslambda.ListVersionsByFunctionOutput{}, nil
}

// ListAliases implements LambdaAPI.
func (m *MockLambdaAPI) ListAliases(ctx context.Context, params *awslambda.ListAliasesInput, _ ...func(*awslambda.Options)) (*awslambda.ListAliasesOutput, error) {
	m.ListAliasesCalls++
	if m.ListAliasesFunc != nil {
		return m.ListAliasesFunc(ctx, params)
	}
	return &awslambda.ListAliasesOutput{}, nil
}

// CreateAlias implements LambdaAPI.
func (m *MockLambdaAPI) CreateAlias(ctx context.Context, params *awslambda.CreateAliasInput, _ ...func(*awslambda.Options)) (*awslambda.CreateAliasOutput, error) {
	m.CreateAliasCalls++
	if m.CreateAliasFunc != nil {
		return m.CreateAliasFunc(ctx, params)
	}
	return &awslambda.CreateAliasOutput{}, nil
}

// UpdateAlias implements LambdaAPI.
func (m *MockLambdaAPI) UpdateAlias(ctx context.Context, params *awslambda.UpdateAliasInput, _ ...func(*awslambda.Options)) (*awslambda.UpdateAliasOutput, error) {
	m.UpdateAliasCalls++
	if m.UpdateAliasFunc != nil {
		return m.UpdateAliasFunc(ctx, params)
	}
	return &awslambda.UpdateAliasOutput{}, nil
}

// Ensure MockLambdaAPI implements LambdaAPI.
var _ LambdaAPI = (*MockLambdaAPI)(nil)
