package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
)

// ErrFunctionError is returned when the Lambda runtime reports an unhandled function error.
var ErrFunctionError = errors.New("lambda function error")

// presignTTL bounds how long the provider may take to deliver its response.
const presignTTL = 15 * time.Minute

// LambdaInvoker drives a deployed provider function the way CloudFormation
// does: it presigns an S3 PUT URL as the ResponseURL, invokes the function
// synchronously and reads the response document back from the bucket.
type LambdaInvoker struct {
	lambda       lambdaiface.LambdaAPI
	s3           s3iface.S3API
	presign      func(bucket, key string) (string, error)
	functionName string
	bucket       string
	prefix       string
	log          *slog.Logger
}

// NewLambdaInvoker creates an invoker using the default AWS credential chain.
// endpoint may be empty; it is meant for local stacks.
func NewLambdaInvoker(region, endpoint, functionName, bucket, prefix string, log *slog.Logger) (*LambdaInvoker, error) {
	cfg := aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	s3Client := s3.New(sess)
	invoker := NewLambdaInvokerWithClients(lambda.New(sess), s3Client, functionName, bucket, prefix, log)
	invoker.presign = func(bucket, key string) (string, error) {
		req, _ := s3Client.PutObjectRequest(&s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		return req.Presign(presignTTL)
	}
	return invoker, nil
}

// NewLambdaInvokerWithClients wires explicit clients. The presigner defaults
// to one that fails; NewLambdaInvoker installs the real one.
func NewLambdaInvokerWithClients(lambdaClient lambdaiface.LambdaAPI, s3Client s3iface.S3API, functionName, bucket, prefix string, log *slog.Logger) *LambdaInvoker {
	return &LambdaInvoker{
		lambda: lambdaClient,
		s3:     s3Client,
		presign: func(string, string) (string, error) {
			return "", errors.New("no presigner configured")
		},
		functionName: functionName,
		bucket:       bucket,
		prefix:       prefix,
		log:          log,
	}
}

// Invoke sends event to the function and returns the response document it
// delivered. RequestID and ResponseURL are filled in when empty.
func (c *LambdaInvoker) Invoke(ctx context.Context, event cfn.Event) (*cfn.Response, error) {
	start := time.Now()
	if event.RequestID == "" {
		event.RequestID = uuid.NewString()
	}
	key := path.Join(c.prefix, event.RequestID+".json")

	if event.ResponseURL == "" {
		responseURL, err := c.presign(c.bucket, key)
		if err != nil {
			return nil, fmt.Errorf("failed to presign response URL: %w", err)
		}
		event.ResponseURL = responseURL
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}

	out, err := c.lambda.InvokeWithContext(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(c.functionName),
		InvocationType: aws.String(lambda.InvocationTypeRequestResponse),
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", c.functionName, err)
	}
	if out.FunctionError != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrFunctionError, aws.StringValue(out.FunctionError), string(out.Payload))
	}

	c.log.Debug("Function invoked",
		slog.String("function", c.functionName),
		slog.String("requestId", event.RequestID),
		slog.Int64("statusCode", aws.Int64Value(out.StatusCode)),
		slog.Duration("duration", time.Since(start)))

	return c.fetchResponse(ctx, key)
}

func (c *LambdaInvoker) fetchResponse(ctx context.Context, key string) (*cfn.Response, error) {
	obj, err := c.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch response document s3://%s/%s: %w", c.bucket, key, err)
	}
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response document: %w", err)
	}

	var response cfn.Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode response document: %w", err)
	}

	// The document holds the secret; do not leave it in the bucket.
	if _, err := c.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}); err != nil {
		c.log.Warn("Failed to delete response document",
			slog.String("bucket", c.bucket),
			slog.String("key", key),
			"err", err)
	}

	return &response, nil
}
