/*
Package api holds configuration and wire types shared by the random string
provider's HTTP server and its clients.

The provider is normally invoked by CloudFormation through Lambda. The HTTP
server exposes the same event handling for local testing and for deployments
that front the provider with something other than Lambda:

  - POST /api/resource accepts a CloudFormation custom resource event and
    returns the response document CloudFormation would receive.
  - GET /api/generate?length=N returns {"String": "<2N hex chars>"}.
*/
package api
