// Command bp12 loads BIOPERIANT12 model output into processed datasets.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go.ngs.io/periant/internal/adapter/store/files"
	"go.ngs.io/periant/internal/adapter/store/nemo"
	"go.ngs.io/periant/internal/app"
	"go.ngs.io/periant/internal/config"
	"go.ngs.io/periant/internal/domain"
	"go.ngs.io/periant/internal/usecase"
)

const version = "0.1.0"

var (
	configPath string
	logLevel   string
	timeStep   string
	yearStart  int
	yearEnd    int
	outPath    string
	variables  []string

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "bp12",
	Short: "Load BIOPERIANT12 NEMO output.",
	Long: `bp12 finds the daily or 5-daily BIOPERIANT12 output files of a period,
opens them as one dataset, masks land, sorts the grid axes, rescales with
the NEMO output coefficients and writes the result as NetCDF.

Configuration is read from the TOML file given with --config. The
PERIANT_INPUT_ROOT, PERIANT_MASK_PATH and PERIANT_COEFFS_PATH environment
variables override the file; flags override both.`,
	SilenceUsage: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("bp12 v%s\n", version)
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print the time axis and file date tokens of a period.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		step, err := domain.ParseTimeStep(cfg.TimeStep)
		if err != nil {
			return err
		}
		axis, err := domain.TimeAxis(cfg.YearStart, cfg.YearEnd, step)
		if err != nil {
			return err
		}
		i := 0
		for year := cfg.YearStart; year <= cfg.YearEnd; year++ {
			tokens, err := domain.FileDateTokens(year, step)
			if err != nil {
				return err
			}
			for _, token := range tokens {
				cmd.Printf("%s\t%s\n", axis[i].Format(time.RFC3339), token)
				i++
			}
		}
		return nil
	},
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List present and missing output files of a period.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		conv, err := cfg.Convention()
		if err != nil {
			return err
		}
		present, missing, err := files.NewLocator(log).FindFiles(conv, cfg.Suffix, cfg.YearStart, cfg.YearEnd)
		if err != nil {
			return err
		}
		for _, p := range present {
			cmd.Printf("present\t%s\n", p)
		}
		for _, p := range missing {
			cmd.Printf("missing\t%s\n", p)
		}
		return nil
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the full pipeline and write the processed dataset.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		c, err := app.New(cfg, log)
		if err != nil {
			return err
		}
		dl, err := c.DataLoader()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		start := time.Now()
		res, err := dl.Load(ctx)
		if err != nil {
			return err
		}
		ds, err := c.Processor.Process(res, cfg.Variables)
		if err != nil {
			return err
		}
		if err := nemo.WriteDataset(outPath, ds); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"path":    outPath,
			"elapsed": time.Since(start).Round(time.Millisecond),
		}).Info("Wrote processed dataset")

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(usecase.Summarize(ds, len(res.Missing)))
	},
}

// loadConfig reads the configuration and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("time-step") {
		cfg.TimeStep = timeStep
	}
	if flags.Changed("year-start") {
		cfg.YearStart = yearStart
	}
	if flags.Changed("year-end") {
		cfg.YearEnd = yearEnd
	}
	if flags.Changed("variables") {
		cfg.Variables = variables
	}
	if err := cfg.ValidatePeriod(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", os.Getenv("PERIANT_CONFIG"), "TOML configuration file")
	pf.StringVar(&logLevel, "log-level", "info", "logrus level")
	pf.StringVar(&timeStep, "time-step", string(domain.FiveDaily), "output cadence: 1-daily or 5-daily")
	pf.IntVar(&yearStart, "year-start", 0, "first year of the period")
	pf.IntVar(&yearEnd, "year-end", 0, "last year of the period (inclusive)")

	processCmd.Flags().StringVarP(&outPath, "out", "o", "", "output NetCDF path")
	processCmd.Flags().StringSliceVar(&variables, "variables", nil, "variables to process (default: all)")
	_ = processCmd.MarkFlagRequired("out")
	_ = processCmd.MarkFlagFilename("out", "nc")

	rootCmd.AddCommand(versionCmd, calendarCmd, filesCmd, processCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
