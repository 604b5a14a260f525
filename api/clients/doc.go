/*
Package clients provides client libraries for the random string provider.

# Client Types

  - ProviderClient - HTTP client for the provider server (see package httpserver)
  - LambdaInvoker - Smoke-test client for a provider deployed as a Lambda function

# LambdaInvoker

CloudFormation never reads a custom resource's Lambda return value; the
function PUTs its response document to the pre-signed ResponseURL carried in
the event. LambdaInvoker reproduces that: it presigns an S3 PUT URL, invokes
the function synchronously, then reads and deletes the document.

# Example Usage

	invoker, err := clients.NewLambdaInvoker("eu-west-1", "", "random-string-provider",
	    "my-smoke-bucket", "random-string", logger)
	if err != nil {
	    return err
	}

	resp, err := invoker.Invoke(ctx, cfn.Event{
	    RequestType:        cfn.RequestCreate,
	    ResourceType:       "Custom::RandomString",
	    LogicalResourceID:  "SmokeTest",
	    ResourceProperties: map[string]interface{}{"Length": "32"},
	})
*/
package clients
