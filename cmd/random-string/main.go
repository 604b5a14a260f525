package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/ruteri/cfn-random-string/api/clients"
	"github.com/ruteri/cfn-random-string/cmd/flags"
	"github.com/ruteri/cfn-random-string/common"
	"github.com/ruteri/cfn-random-string/generator"
	"github.com/ruteri/cfn-random-string/httpserver"
	"github.com/ruteri/cfn-random-string/interfaces"
	"github.com/ruteri/cfn-random-string/provider"
	"github.com/urfave/cli/v2"
)

var flagLength = &cli.StringFlag{
	Name:  "length",
	Value: "",
	Usage: "number of random bytes; the output has twice as many hex characters (default 128)",
}

var invokeFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "function-name",
		Required: true,
		EnvVars:  []string{"FUNCTION_NAME"},
		Usage:    "name or ARN of the deployed provider function",
	},
	&cli.StringFlag{
		Name:     "response-bucket",
		Required: true,
		Usage:    "S3 bucket receiving the response document through a presigned URL",
	},
	&cli.StringFlag{
		Name:  "response-prefix",
		Value: "random-string-smoke",
		Usage: "key prefix for response documents",
	},
	&cli.StringFlag{
		Name:    "region",
		Value:   "us-east-1",
		EnvVars: []string{"AWS_REGION"},
		Usage:   "AWS region",
	},
	&cli.StringFlag{
		Name:  "endpoint",
		Usage: "custom AWS endpoint, e.g. for a local stack",
	},
	&cli.StringFlag{
		Name:  "request-type",
		Value: string(cfn.RequestCreate),
		Usage: "Create, Update or Delete",
	},
	&cli.StringFlag{
		Name:  "physical-resource-id",
		Usage: "physical resource id for Update and Delete",
	},
	&cli.BoolFlag{
		Name:  "show-secret",
		Value: false,
		Usage: "print the generated secret instead of only its length",
	},
	flagLength,
}

func main() {
	app := &cli.App{
		Name:    "random-string",
		Usage:   "CloudFormation custom resource that generates random hex secrets",
		Version: common.Version,
		Flags:   append(append([]cli.Flag{}, flags.LogFlags...), flags.ResourceTypeFlag, flags.AcceptAnyTypeFlag),
		Commands: []*cli.Command{
			{
				Name:   "lambda",
				Usage:  "run as an AWS Lambda custom resource handler",
				Action: runLambda,
			},
			{
				Name:   "serve",
				Usage:  "serve custom resource events over HTTP",
				Flags:  flags.ServerFlags,
				Action: runServer,
			},
			{
				Name:   "generate",
				Usage:  "print a single secret to stdout",
				Flags:  []cli.Flag{flagLength},
				Action: runGenerate,
			},
			{
				Name:   "invoke",
				Usage:  "send a synthetic event to a deployed provider function and report the response",
				Flags:  invokeFlags,
				Action: runInvoke,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newProvider(cCtx *cli.Context, logger *slog.Logger, gen *generator.Generator) *provider.Provider {
	p := provider.NewProvider(logger)
	p.Register(cCtx.String(flags.ResourceTypeFlag.Name), gen)
	if cCtx.Bool(flags.AcceptAnyTypeFlag.Name) {
		p.SetDefault(gen)
	}
	return p
}

func runLambda(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)
	p := newProvider(cCtx, logger, generator.NewGenerator())

	logger.Info("Starting Lambda handler", "resourceType", cCtx.String(flags.ResourceTypeFlag.Name))
	lambda.Start(cfn.LambdaWrap(p.Handle))
	return nil
}

func runServer(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)
	gen := generator.NewGenerator()
	p := newProvider(cCtx, logger, gen)

	cfg := flags.ConfigureServer(cCtx, logger)
	server, err := httpserver.New(cfg, httpserver.NewHandler(p.Handle, gen, logger))
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	logger.Info("Starting server")
	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	logger.Info("Server shutdown complete")
	return nil
}

func parseLength(raw string) (interfaces.Length, error) {
	var length interfaces.Length
	if raw == "" {
		return length, nil
	}
	err := length.UnmarshalJSON([]byte(strconv.Quote(raw)))
	return length, err
}

func runGenerate(cCtx *cli.Context) error {
	length, err := parseLength(cCtx.String(flagLength.Name))
	if err != nil {
		return err
	}

	secret, err := generator.NewGenerator().Generate(length.Resolve())
	if err != nil {
		return err
	}
	fmt.Fprintln(cCtx.App.Writer, secret)
	return nil
}

func runInvoke(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	length, err := parseLength(cCtx.String(flagLength.Name))
	if err != nil {
		return err
	}

	invoker, err := clients.NewLambdaInvoker(
		cCtx.String("region"),
		cCtx.String("endpoint"),
		cCtx.String("function-name"),
		cCtx.String("response-bucket"),
		cCtx.String("response-prefix"),
		logger)
	if err != nil {
		return err
	}

	props := map[string]interface{}{}
	if length != 0 {
		props["Length"] = strconv.Itoa(int(length))
	}

	event := cfn.Event{
		RequestType:        cfn.RequestType(cCtx.String("request-type")),
		ResourceType:       cCtx.String(flags.ResourceTypeFlag.Name),
		LogicalResourceID:  "SmokeTest",
		StackID:            "smoke-test",
		PhysicalResourceID: cCtx.String("physical-resource-id"),
		ResourceProperties: props,
	}
	if event.RequestType == cfn.RequestUpdate {
		event.OldResourceProperties = props
	}

	ctx, cancel := context.WithTimeout(cCtx.Context, 5*time.Minute)
	defer cancel()

	resp, err := invoker.Invoke(ctx, event)
	if err != nil {
		logger.Error("Invocation failed", "err", err)
		return err
	}

	out := cCtx.App.Writer
	fmt.Fprintf(out, "Status: %s\n", resp.Status)
	fmt.Fprintf(out, "PhysicalResourceId: %s\n", resp.PhysicalResourceID)
	if resp.Reason != "" {
		fmt.Fprintf(out, "Reason: %s\n", resp.Reason)
	}
	if secret, ok := resp.Data["String"].(string); ok {
		if cCtx.Bool("show-secret") {
			fmt.Fprintf(out, "String: %s\n", secret)
		} else {
			fmt.Fprintf(out, "String: <%d hex characters>\n", len(secret))
		}
	}

	if resp.Status != cfn.StatusSuccess {
		return fmt.Errorf("provider reported %s: %s", resp.Status, resp.Reason)
	}
	return nil
}
