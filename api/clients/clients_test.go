package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/ruteri/cfn-random-string/api"
	"github.com/ruteri/cfn-random-string/generator"
	"github.com/ruteri/cfn-random-string/httpserver"
	"github.com/ruteri/cfn-random-string/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProviderClient(t *testing.T) {
	logger := testLogger()
	gen := generator.NewGenerator()
	p := provider.NewProvider(logger)
	p.Register("Custom::RandomString", gen)

	srv, err := httpserver.New(&api.HTTPServerConfig{
		Log:                      logger,
		GracefulShutdownDuration: time.Second,
	}, httpserver.NewHandler(p.Handle, gen, logger))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	client := &ProviderClient{ServerAddr: ts.URL}
	ctx := context.Background()

	secret, err := client.Generate(ctx, 8)
	require.NoError(t, err)
	require.Len(t, secret, 16)

	secret, err = client.Generate(ctx, 0)
	require.NoError(t, err)
	require.Len(t, secret, 256)

	_, err = client.Generate(ctx, -2)
	require.Error(t, err)

	resp, err := client.SendEvent(ctx, cfn.Event{
		RequestType:        cfn.RequestCreate,
		RequestID:          "req-1",
		ResourceType:       "Custom::RandomString",
		LogicalResourceID:  "Secret",
		ResourceProperties: map[string]interface{}{"Length": "256"},
	})
	require.NoError(t, err)
	require.Equal(t, cfn.StatusSuccess, resp.Status)
	require.Len(t, resp.Data["String"], 512)

	resp, err = client.SendEvent(ctx, cfn.Event{
		RequestType:  cfn.RequestCreate,
		RequestID:    "req-2",
		ResourceType: "Custom::Unknown",
	})
	require.NoError(t, err)
	require.Equal(t, cfn.StatusFailed, resp.Status)
	require.NotEmpty(t, resp.Reason)
}

type mockLambda struct {
	lambdaiface.LambdaAPI
	mock.Mock
}

func (m *mockLambda) InvokeWithContext(ctx aws.Context, input *lambda.InvokeInput, opts ...request.Option) (*lambda.InvokeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lambda.InvokeOutput), args.Error(1)
}

type mockS3 struct {
	s3iface.S3API
	mock.Mock
}

func (m *mockS3) GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *mockS3) DeleteObjectWithContext(ctx aws.Context, input *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func newTestInvoker(l *mockLambda, s *mockS3) *LambdaInvoker {
	invoker := NewLambdaInvokerWithClients(l, s, "random-string-provider", "responses", "smoke", testLogger())
	invoker.presign = func(bucket, key string) (string, error) {
		return "https://" + bucket + ".s3.amazonaws.com/" + key + "?X-Amz-Signature=test", nil
	}
	return invoker
}

func TestLambdaInvoker_Invoke(t *testing.T) {
	l := new(mockLambda)
	s := new(mockS3)
	invoker := newTestInvoker(l, s)

	document, err := json.Marshal(map[string]interface{}{
		"Status":             "SUCCESS",
		"RequestId":          "req-1",
		"LogicalResourceId":  "Secret",
		"PhysicalResourceId": "Secret-1",
		"Data":               map[string]interface{}{"String": strings.Repeat("ab", 4)},
	})
	require.NoError(t, err)

	l.On("InvokeWithContext", mock.Anything, mock.MatchedBy(func(in *lambda.InvokeInput) bool {
		var event cfn.Event
		if err := json.Unmarshal(in.Payload, &event); err != nil {
			return false
		}
		return aws.StringValue(in.FunctionName) == "random-string-provider" &&
			aws.StringValue(in.InvocationType) == lambda.InvocationTypeRequestResponse &&
			event.RequestID == "req-1" &&
			strings.Contains(event.ResponseURL, "responses.s3.amazonaws.com/smoke/req-1.json")
	})).Return(&lambda.InvokeOutput{StatusCode: aws.Int64(200), Payload: []byte(`""`)}, nil)

	s.On("GetObjectWithContext", mock.Anything, &s3.GetObjectInput{
		Bucket: aws.String("responses"),
		Key:    aws.String("smoke/req-1.json"),
	}).Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(document))}, nil)
	s.On("DeleteObjectWithContext", mock.Anything, mock.Anything).Return(&s3.DeleteObjectOutput{}, nil)

	resp, err := invoker.Invoke(context.Background(), cfn.Event{
		RequestType:       cfn.RequestCreate,
		RequestID:         "req-1",
		ResourceType:      "Custom::RandomString",
		LogicalResourceID: "Secret",
	})
	require.NoError(t, err)
	assert.Equal(t, cfn.StatusSuccess, resp.Status)
	assert.Equal(t, "Secret-1", resp.PhysicalResourceID)
	assert.Equal(t, "abababab", resp.Data["String"])

	l.AssertExpectations(t)
	s.AssertExpectations(t)
}

func TestLambdaInvoker_FunctionError(t *testing.T) {
	l := new(mockLambda)
	s := new(mockS3)
	invoker := newTestInvoker(l, s)

	l.On("InvokeWithContext", mock.Anything, mock.Anything).Return(&lambda.InvokeOutput{
		StatusCode:    aws.Int64(200),
		FunctionError: aws.String("Unhandled"),
		Payload:       []byte(`{"errorMessage":"boom"}`),
	}, nil)

	_, err := invoker.Invoke(context.Background(), cfn.Event{RequestType: cfn.RequestCreate})
	require.ErrorIs(t, err, ErrFunctionError)
	s.AssertNotCalled(t, "GetObjectWithContext", mock.Anything, mock.Anything)
}

func TestLambdaInvoker_InvokeFailure(t *testing.T) {
	l := new(mockLambda)
	s := new(mockS3)
	invoker := newTestInvoker(l, s)

	invokeErr := errors.New("AccessDeniedException")
	l.On("InvokeWithContext", mock.Anything, mock.Anything).Return(nil, invokeErr)

	_, err := invoker.Invoke(context.Background(), cfn.Event{RequestType: cfn.RequestDelete})
	require.ErrorIs(t, err, invokeErr)
}

func TestLambdaInvoker_DeleteFailureIsNotFatal(t *testing.T) {
	l := new(mockLambda)
	s := new(mockS3)
	invoker := newTestInvoker(l, s)

	l.On("InvokeWithContext", mock.Anything, mock.Anything).Return(&lambda.InvokeOutput{StatusCode: aws.Int64(200)}, nil)
	s.On("GetObjectWithContext", mock.Anything, mock.Anything).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(`{"Status":"SUCCESS","PhysicalResourceId":"x"}`)),
	}, nil)
	s.On("DeleteObjectWithContext", mock.Anything, mock.Anything).Return(nil, errors.New("AccessDenied"))

	resp, err := invoker.Invoke(context.Background(), cfn.Event{RequestType: cfn.RequestDelete, PhysicalResourceID: "x"})
	require.NoError(t, err)
	require.Equal(t, cfn.StatusSuccess, resp.Status)
}

func TestLambdaInvoker_PresignRequired(t *testing.T) {
	invoker := NewLambdaInvokerWithClients(new(mockLambda), new(mockS3), "fn", "bucket", "", testLogger())

	_, err := invoker.Invoke(context.Background(), cfn.Event{RequestType: cfn.RequestCreate})
	require.Error(t, err)
}
