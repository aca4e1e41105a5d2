package main

import (
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prosimlab/prosim/datarecording"
	"github.com/prosimlab/prosim/plant"
	"github.com/prosimlab/prosim/sim"
	"github.com/prosimlab/prosim/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the demo plant simulation in real time.",
	Long: "`run` builds the demo water-tank plant and paces it to " +
		"wall-clock time until interrupted. The monitoring dashboard " +
		"serves live signals and editable parameters.",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		defer logger.Sync()

		// A .env file may provide PROSIM_MONITOR_PORT and the
		// PROSIM_CLICKHOUSE_* connection settings.
		_ = godotenv.Load()

		step, _ := cmd.Flags().GetFloat64("step")
		sample, _ := cmd.Flags().GetUint64("sample-interval")
		output, _ := cmd.Flags().GetString("output")
		configPath, _ := cmd.Flags().GetString("config")
		noMonitor, _ := cmd.Flags().GetBool("no-monitor")
		openBrowser, _ := cmd.Flags().GetBool("open-browser")
		useClickHouse, _ := cmd.Flags().GetBool("clickhouse")

		cfg := plant.DefaultConfig()
		if configPath != "" {
			if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
				logger.Fatal("failed to read config",
					zap.String("path", configPath), zap.Error(err))
			}
		}

		builder := simulation.MakeBuilder().
			WithStepSize(sim.VTimeInSec(step)).
			WithSampleInterval(sample).
			WithLogger(logger)

		if useClickHouse {
			builder = builder.WithDataRecorder(clickHouseRecorderFromEnv())
		} else if output != "" {
			builder = builder.WithOutputFileName(output)
		}

		if noMonitor {
			builder = builder.WithoutMonitoring()
		} else if port := monitorPort(cmd); port > 0 {
			builder = builder.WithMonitorPort(port)
		}

		s := builder.Build()
		defer s.Terminate()

		if err := plant.Setup(s, cfg); err != nil {
			logger.Fatal("failed to set up plant", zap.Error(err))
		}

		if !noMonitor && openBrowser {
			s.GetMonitor().WithBrowserOpen()
		}

		if err := s.Start(); err != nil {
			logger.Fatal("failed to start simulation", zap.Error(err))
		}

		ctx, stop := signal.NotifyContext(
			cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("simulation running",
			zap.Float64("step_seconds", step),
			zap.String("id", s.ID()))

		if err := s.Run(ctx); err != nil {
			logger.Fatal("simulation failed", zap.Error(err))
		}

		status := s.Runner().Status()
		logger.Info("simulation stopped",
			zap.Uint64("ticks", status.TickCount),
			zap.Float64("elapsed_seconds", float64(status.ElapsedSeconds)),
			zap.Uint64("late_ticks", status.LateTicks),
			zap.Float64("max_behind_seconds", status.MaxBehindSeconds))
	},
}

// clickHouseRecorderFromEnv builds the ClickHouse telemetry backend from the
// PROSIM_CLICKHOUSE_* environment variables.
func clickHouseRecorderFromEnv() datarecording.DataRecorder {
	host := "localhost"
	port := 9000

	if addr := os.Getenv("PROSIM_CLICKHOUSE_ADDR"); addr != "" {
		h, p, ok := strings.Cut(addr, ":")
		host = h
		if ok {
			if parsed, err := strconv.Atoi(p); err == nil {
				port = parsed
			}
		}
	}

	return datarecording.NewClickHouseRecorder(
		host, port,
		envOr("PROSIM_CLICKHOUSE_DB", "default"),
		envOr("PROSIM_CLICKHOUSE_USER", "default"),
		os.Getenv("PROSIM_CLICKHOUSE_PASSWORD"),
		0,
	)
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}

	return fallback
}

// monitorPort resolves the monitoring port from the flag, falling back to
// the PROSIM_MONITOR_PORT environment variable.
func monitorPort(cmd *cobra.Command) int {
	port, _ := cmd.Flags().GetInt("monitor-port")
	if port != 0 {
		return port
	}

	if env := os.Getenv("PROSIM_MONITOR_PORT"); env != "" {
		if p, err := strconv.Atoi(env); err == nil {
			return p
		}
	}

	return 0
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Float64("step", 0.01,
		"Fixed simulation step, in seconds")
	runCmd.Flags().Uint64("sample-interval", 10,
		"Ticks between recorded signal snapshots")
	runCmd.Flags().String("output", "",
		"Telemetry output file name (default prosim_<id>)")
	runCmd.Flags().String("config", "",
		"Path to a TOML file with plant constants")
	runCmd.Flags().Int("monitor-port", 0,
		"Port for the monitoring server (default random)")
	runCmd.Flags().Bool("no-monitor", false,
		"Disable the monitoring server")
	runCmd.Flags().Bool("open-browser", false,
		"Open the monitoring dashboard in the default browser")
	runCmd.Flags().Bool("clickhouse", false,
		"Record telemetry to ClickHouse (see PROSIM_CLICKHOUSE_* env vars)")
}
