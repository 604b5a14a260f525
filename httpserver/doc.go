/*
Package httpserver serves the random string custom resource provider over HTTP.

# Endpoints

  - POST /api/resource - Handle a CloudFormation custom resource event
  - GET /api/generate?length=N - Generate a secret without the event envelope
  - GET /livez - Liveness check
  - GET /readyz - Readiness check
  - GET /drain - Gracefully mark server as not ready
  - GET /undrain - Mark server as ready

Responses to /api/resource always use status 200 once the event decodes; the
outcome is carried in the Status field ("SUCCESS" or "FAILED") with the error
text in Reason, mirroring what CloudFormation receives from a Lambda-backed
provider. Malformed events are rejected with 400.

Metrics are served on a separate listener when MetricsAddr is set.
*/
package httpserver
