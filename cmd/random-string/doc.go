// Package main (cmd/random-string) is the entry point of the random string
// custom resource provider.
//
// Commands:
//
//   - lambda: run under the AWS Lambda runtime. Responses are delivered to the
//     event's ResponseURL by cfn.LambdaWrap.
//   - serve: expose the same handler over HTTP, see package httpserver.
//   - generate: print one secret, e.g. `random-string generate --length 32`.
//   - invoke: smoke-test a deployed function. The response document is
//     captured through a presigned S3 URL, so the caller needs s3:PutObject,
//     s3:GetObject and s3:DeleteObject on --response-bucket plus
//     lambda:InvokeFunction.
package main
