package lambda

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/lambdo/internal/artifact"
	"github.com/cameronsjo/lambdo/internal/manifest"
)

func testSpec() *manifest.UnitSpec {
	return &manifest.UnitSpec{
		Includes:      map[string][]string{"src": {"**"}},
		Role:          "arn:aws:iam::123456789012:role/api",
		Runtime:       "python3.12",
		Handler:       "app.handler",
		Env:           map[string]string{"STAGE": "prod"},
		Description:   "api handler",
		Architectures: []string{"arm64"},
	}
}

func TestNewClientWithAPI(t *testing.T) {
	mock := NewMockLambdaAPI()
	client := NewClientWithAPI(mock)

	assert.NotNil(t, client)
	assert.Equal(t, mock, client.api)
	assert.Zero(t, client.waitTimeout)
}

func TestClient_Exists(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    bool
		wantErr bool
	}{
		{name: "found", want: true},
		{name: "not found", err: &types.ResourceNotFoundException{Message: aws.String("Function not found")}, want: false},
		{name: "wrapped not found", err: fmt.Errorf("operation error: %w", &types.ResourceNotFoundException{}), want: false},
		{name: "other failure", err: errMockGet, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockLambdaAPI()
			mock.GetFunctionFunc = func(ctx context.Context, params *awslambda.GetFunctionInput) (*awslambda.GetFunctionOutput, error) {
				assert.Equal(t, "api", aws.ToString(params.FunctionName))
				if tt.err != nil {
					return nil, tt.err
				}
				return &awslambda.GetFunctionOutput{}, nil
			}
			client := NewClientWithAPI(mock)

			got, err := client.Exists(context.Background(), "api")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "get function api")
				assert.ErrorIs(t, err, errMockGet)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, mock.GetFunctionCalls)
		})
	}
}

func TestClient_Create(t *testing.T) {
	t.Run("maps the unit spec", func(t *testing.T) {
		var got *awslambda.CreateFunctionInput
		mock := NewMockLambdaAPI()
		mock.CreateFunctionFunc = func(ctx context.Context, params *awslambda.CreateFunctionInput) (*awslambda.CreateFunctionOutput, error) {
			got = params
			return &awslambda.CreateFunctionOutput{}, nil
		}
		client := NewClientWithAPI(mock)

		err := client.Create(context.Background(), "api", testSpec(), artifact.Inline([]byte("zip")))
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.Equal(t, "api", aws.ToString(got.FunctionName))
		assert.Equal(t, "arn:aws:iam::123456789012:role/api", aws.ToString(got.Role))
		assert.Equal(t, types.Runtime("python3.12"), got.Runtime)
		assert.Equal(t, "app.handler", aws.ToString(got.Handler))
		assert.Equal(t, []byte("zip"), got.Code.ZipFile)
		assert.Nil(t, got.Code.S3Bucket)
		assert.Equal(t, map[string]string{"STAGE": "prod"}, got.Environment.Variables)
		assert.Equal(t, []string{}, got.Layers)
		assert.Equal(t, manifest.DefaultTimeout, aws.ToInt32(got.Timeout))
		assert.Equal(t, manifest.DefaultMemory, aws.ToInt32(got.MemorySize))
		assert.Equal(t, "api handler", aws.ToString(got.Description))
		assert.Equal(t, []types.Architecture{types.ArchitectureArm64}, got.Architectures)
	})

	t.Run("stored code", func(t *testing.T) {
		var got *awslambda.CreateFunctionInput
		mock := NewMockLambdaAPI()
		mock.CreateFunctionFunc = func(ctx context.Context, params *awslambda.CreateFunctionInput) (*awslambda.CreateFunctionOutput, error) {
			got = params
			return &awslambda.CreateFunctionOutput{}, nil
		}
		client := NewClientWithAPI(mock)

		code := artifact.Stored(artifact.Location{Bucket: "artifacts", Key: "api/abc.zip"})
		require.NoError(t, client.Create(context.Background(), "api", testSpec(), code))

		assert.Nil(t, got.Code.ZipFile)
		assert.Equal(t, "artifacts", aws.ToString(got.Code.S3Bucket))
		assert.Equal(t, "api/abc.zip", aws.ToString(got.Code.S3Key))
	})

	t.Run("failure", func(t *testing.T) {
		mock := NewMockLambdaAPI()
		mock.CreateFunctionFunc = func(ctx context.Context, params *awslambda.CreateFunctionInput) (*awslambda.CreateFunctionOutput, error) {
			return nil, errMockCreate
		}
		client := NewClientWithAPI(mock)

		err := client.Create(context.Background(), "api", testSpec(), artifact.Inline(nil))
		require.Error(t, err)
		assert.ErrorIs(t, err, errMockCreate)
		assert.Contains(t, err.Error(), "create function api")
		assert.Equal(t, 0, mock.GetFunctionCalls)
	})
}

func TestClient_UpdateConfig(t *testing.T) {
	t.Run("unset env and layers clear remote values", func(t *testing.T) {
		var got *awslambda.UpdateFunctionConfigurationInput
		mock := NewMockLambdaAPI()
		mock.UpdateFunctionConfigurationFunc = func(ctx context.Context, params *awslambda.UpdateFunctionConfigurationInput) (*awslambda.UpdateFunctionConfigurationOutput, error) {
			got = params
			return &awslambda.UpdateFunctionConfigurationOutput{}, nil
		}
		client := NewClientWithAPI(mock)

		spec := &manifest.UnitSpec{Role: "r", Runtime: "nodejs20.x", Handler: "index.handler", Timeout: 30, Memory: 512}
		require.NoError(t, client.UpdateConfig(context.Background(), "worker", spec))

		assert.Equal(t, "worker", aws.ToString(got.FunctionName))
		assert.Equal(t, map[string]string{}, got.Environment.Variables)
		assert.Equal(t, []string{}, got.Layers)
		assert.Equal(t, int32(30), aws.ToInt32(got.Timeout))
		assert.Equal(t, int32(512), aws.ToInt32(got.MemorySize))
		assert.Equal(t, "", aws.ToString(got.Description))
	})

	t.Run("failure", func(t *testing.T) {
		mock := NewMockLambdaAPI()
		mock.UpdateFunctionConfigurationFunc = func(ctx context.Context, params *awslambda.UpdateFunctionConfigurationInput) (*awslambda.UpdateFunctionConfigurationOutput, error) {
			return nil, errMockConfig
		}
		client := NewClientWithAPI(mock)

		err := client.UpdateConfig(context.Background(), "worker", testSpec())
		require.Error(t, err)
		assert.ErrorIs(t, err, errMockConfig)
		assert.Contains(t, err.Error(), "update configuration of worker")
	})
}

func TestClient_UpdateCode(t *testing.T) {
	tests := []struct {
		name       string
		code       artifact.Code
		wantZip    []byte
		wantBucket string
		wantKey    string
	}{
		{name: "inline", code: artifact.Inline([]byte("zip")), wantZip: []byte("zip")},
		{
			name:       "stored",
			code:       artifact.Stored(artifact.Location{Bucket: "b", Key: "k.zip"}),
			wantBucket: "b",
			wantKey:    "k.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *awslambda.UpdateFunctionCodeInput
			mock := NewMockLambdaAPI()
			mock.UpdateFunctionCodeFunc = func(ctx context.Context, params *awslambda.UpdateFunctionCodeInput) (*awslambda.UpdateFunctionCodeOutput, error) {
				got = params
				return &awslambda.UpdateFunctionCodeOutput{}, nil
			}
			client := NewClientWithAPI(mock)

			require.NoError(t, client.UpdateCode(context.Background(), "api", tt.code))
			assert.Equal(t, tt.wantZip, got.ZipFile)
			assert.Equal(t, tt.wantBucket, aws.ToString(got.S3Bucket))
			assert.Equal(t, tt.wantKey, aws.ToString(got.S3Key))
		})
	}

	t.Run("failure", func(t *testing.T) {
		mock := NewMockLambdaAPI()
		mock.UpdateFunctionCodeFunc = func(ctx context.Context, params *awslambda.UpdateFunctionCodeInput) (*awslambda.UpdateFunctionCodeOutput, error) {
			return nil, errMockCode
		}
		client := NewClientWithAPI(mock)

		err := client.UpdateCode(context.Background(), "api", artifact.Inline(nil))
		require.Error(t, err)
		assert.ErrorIs(t, err, errMockCode)
	})
}

func TestClient_PublishVersion(t *testing.T) {
	t.Run("returns the version", func(t *testing.T) {
		mock := NewMockLambdaAPI()
		mock.PublishVersionFunc = func(ctx context.Context, params *awslambda.PublishVersionInput) (*awslambda.PublishVersionOutput, error) {
			assert.Equal(t, "release abc", aws.ToString(params.Description))
			return &awslambda.PublishVersionOutput{Version: aws.String("7")}, nil
		}
		client := NewClientWithAPI(mock)

		got, err := client.PublishVersion(context.Background(), "api", "release abc")
		require.NoError(t, err)
		assert.Equal(t, "7", got)
	})

	t.Run("failure", func(t *testing.T) {
		mock := NewMockLambdaAPI()
		mock.PublishVersionFunc = func(ctx context.Context, params *awslambda.PublishVersionInput) (*awslambda.PublishVersionOutput, error) {
			return nil, errMockPublish
		}
		client := NewClientWithAPI(mock)

		_, err := client.PublishVersion(context.Background(), "api", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, errMockPublish)
	})
}

func TestClient_ListVersions(t *testing.T) {
	t.Run("follows pagination", func(t *testing.T) {
		mock := NewMockLambdaAPI()
		mock.ListVersionsByFunctionFunc = func(ctx context.Context, params *awslambda.ListVersionsByFunctionInput) (*awslambda.ListVersionsByFunctionOutput, error) {
			if params.Marker == nil {
				return &awslambda.ListVersionsByFunctionOutput{
					Versions: []types.FunctionConfiguration{
						{Version: aws.String("$LATEST")},
						{Version: aws.String("1")},
					},
					NextMarker: aws.String("page-2"),
				}, nil
			}
			return &awslambda.ListVersionsByFunctionOutput{
				Versions: []types.FunctionConfiguration{{Version: aws.String("2")}},
			}, nil
		}
		client := NewClientWithAPI(mock)

		got, err := client.ListVersions(context.Background(), "api")
		require.NoError(t, err)
		assert.Equal(t, []string{"$LATEST", "1", "2"}, got)
		assert.Equal(t, 2, mock.ListVersionsByFunctionCalls)
	})

	t.Run("failure", func(t *testing.T) {
		mock := NewMockLambdaAPI()
		mock.ListVersionsByFunctionFunc = func(ctx context.Context, params *awslambda.ListVersionsByFunctionInput) (*awslambda.ListVersionsByFunctionOutput, error) {
			return nil, errMockVersions
		}
		client := NewClientWithAPI(mock)

		_, err := client.ListVersions(context.Background(), "api")
		require.Error(t, err)
		assert.ErrorIs(t, err, errMockVersions)
	})
}

func TestClient_ListAliases(t *testing.T) {
	t.Run("returns names", func(t *testing.T) {
		mock := NewMockLambdaAPI()
		mock.ListAliasesFunc = func(ctx context.Context, params *awslambda.ListAliasesInput) (*awslambda.ListAliasesOutput, error) {
			return &awslambda.ListAliasesOutput{
				Aliases: []types.AliasConfiguration{{Name: aws.String("live")}, {Name: aws.String("canary")}},
			}, nil
		}
		client := NewClientWithAPI(mock)

		got, err := client.ListAliases(context.Background(), "api")
		require.NoError(t, err)
		assert.Equal(t, []string{"live", "canary"}, got)
	})

	t.Run("failure", func(t *testing.T) {
		mock := NewMockLambdaAPI()
		mock.ListAliasesFunc = func(ctx context.Context, params *awslambda.ListAliasesInput) (*awslambda.ListAliasesOutput, error) {
			return nil, errMockAliases
		}
		client := NewClientWithAPI(mock)

		_, err := client.ListAliases(context.Background(), "api")
		require.Error(t, err)
		assert.ErrorIs(t, err, errMockAliases)
	})
}

func TestClient_Aliases(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		mock := NewMockLambdaAPI()
		mock.CreateAliasFunc = func(ctx context.Context, params *awslambda.CreateAliasInput) (*awslambda.CreateAliasOutput, error) {
			assert.Equal(t, "live", aws.ToString(params.Name))
			assert.Equal(t, "3", aws.ToString(params.FunctionVersion))
			return &awslambda.CreateAliasOutput{}, nil
		}
		client := NewClientWithAPI(mock)

		require.NoError(t, client.CreateAlias(context.Background(), "api", "live", "3"))
		assert.Equal(t, 1, mock.CreateAliasCalls)
	})

	t.Run("update", func(t *testing.T) {
		mock := NewMockLambdaAPI()
		mock.UpdateAliasFunc = func(ctx context.Context, params *awslambda.UpdateAliasInput) (*awslambda.UpdateAliasOutput, error) {
			assert.Equal(t, "$LATEST", aws.ToString(params.FunctionVersion))
			return &awslambda.UpdateAliasOutput{}, nil
		}
		client := NewClientWithAPI(mock)

		require.NoError(t, client.UpdateAlias(context.Background(), "api", "live", "$LATEST"))
		assert.Equal(t, 1, mock.UpdateAliasCalls)
	})

	t.Run("failures name the alias", func(t *testing.T) {
		mock := NewMockLambdaAPI()
		mock.CreateAliasFunc = func(ctx context.Context, params *awslambda.CreateAliasInput) (*awslambda.CreateAliasOutput, error) {
			return nil, errMockAlias
		}
		mock.UpdateAliasFunc = func(ctx context.Context, params *awslambda.UpdateAliasInput) (*awslambda.UpdateAliasOutput, error) {
			return nil, errMockAlias
		}
		client := NewClientWithAPI(mock)

		err := client.CreateAlias(context.Background(), "api", "live", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create alias api:live")

		err = client.UpdateAlias(context.Background(), "api", "live", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "update alias api:live")
	})
}
