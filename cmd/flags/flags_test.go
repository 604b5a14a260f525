package flags

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestConfigureServer(t *testing.T) {
	var cfgDrain time.Duration
	var listenAddr, metricsAddr string

	app := &cli.App{
		Flags: append(append([]cli.Flag{}, LogFlags...), ServerFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := SetupLogger(cCtx)
			cfg := ConfigureServer(cCtx, logger)
			require.NotNil(t, cfg.Log)
			cfgDrain = cfg.DrainDuration
			listenAddr = cfg.ListenAddr
			metricsAddr = cfg.MetricsAddr
			return nil
		},
	}

	err := app.Run([]string{"test", "--listen-addr", "0.0.0.0:9000", "--drain-seconds", "3", "--metrics-addr", "", "--log-uid"})
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, cfgDrain)
	require.Equal(t, "0.0.0.0:9000", listenAddr)
	require.Empty(t, metricsAddr)
}
