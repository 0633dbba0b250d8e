package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/compliancehq/kyc-verifier/internal/analysis/openai"
	"github.com/compliancehq/kyc-verifier/internal/common"
	"github.com/compliancehq/kyc-verifier/internal/content"
	"github.com/compliancehq/kyc-verifier/internal/export"
	"github.com/compliancehq/kyc-verifier/internal/metadata"
	"github.com/compliancehq/kyc-verifier/internal/output"
	"github.com/compliancehq/kyc-verifier/internal/pipeline"
	"github.com/compliancehq/kyc-verifier/internal/prepare"
)

const defaultInput = "documents/sample_kyc_document.txt"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		outputPath string
		xlsxPath   string
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "kycflow [files...]",
		Short: "Run the KYC verification pipeline over customer documents",
		Long: `kycflow categorizes the given files, extracts their content, runs the
five-stage KYC verification pipeline, and writes a verification package
as JSON. Without arguments it processes ` + defaultInput + `.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args, outputPath, xlsxPath, configPath, verbose)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "outputs/kyc_flow_results.json", "path for the JSON verification package")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write an XLSX summary to this path")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file overlaying environment settings")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")
	return cmd
}

func run(parent context.Context, args []string, outputPath, xlsxPath, configPath string, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()
	if configPath != "" {
		if err := cfg.ApplyFile(configPath); err != nil {
			return fmt.Errorf("loading config %s: %w", configPath, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	files := args
	if len(files) == 0 {
		if _, err := os.Stat(defaultInput); err != nil {
			return fmt.Errorf("no input files given and %s not found", defaultInput)
		}
		files = []string{defaultInput}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("input file %s: %w", f, err)
		}
	}

	preparer := prepare.NewPreparer(
		metadata.NewExtractor(logger),
		content.NewExtractor(content.Config{MaxTextLength: cfg.Extraction.MaxTextLength}, logger),
		logger,
	)
	prep := preparer.Prepare(files)
	if len(prep.Documents) == 0 {
		return fmt.Errorf("no readable document content in %d input file(s)", len(files))
	}

	engine := openai.NewClient(openai.Config{
		Model:        cfg.LLM.Model,
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		Temperature:  cfg.LLM.Temperature,
		Timeout:      cfg.LLM.Timeout,
		MaxRetries:   cfg.LLM.MaxRetries,
		RetryBackoff: cfg.LLM.RetryBackoff,
	}, logger)

	p := pipeline.New(engine, pipeline.Config{StageTimeout: cfg.Pipeline.StageTimeout}, logger)
	results := p.Run(ctx, prep.Documents)

	pkg := output.Build(prep, results, time.Now())
	if err := output.NewSink(logger).Write(pkg, outputPath); err != nil {
		return err
	}

	if xlsxPath != "" {
		data, err := export.NewService(logger).ExportVerificationXLSX(pkg)
		if err != nil {
			return fmt.Errorf("exporting xlsx: %w", err)
		}
		if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
			return fmt.Errorf("writing xlsx: %w", err)
		}
	}

	printSummary(pkg, outputPath)
	return nil
}

func printSummary(pkg output.Package, outputPath string) {
	v := pkg.FlowResults.Verification
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("KYC VERIFICATION COMPLETE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Package ID:        %s\n", pkg.PackageID)
	fmt.Printf("Files Processed:   %d\n", pkg.TotalFiles)
	fmt.Printf("Risk Level:        %s\n", v.RiskLevel)
	fmt.Printf("Compliance Status: %s\n", v.ComplianceStatus)
	fmt.Printf("Recommendation:    %s\n", v.Recommendation)
	if len(v.MissingFields) > 0 {
		fmt.Printf("Missing Fields:    %s\n", strings.Join(v.MissingFields, ", "))
	}
	fmt.Printf("Execution Time:    %.2fs\n", pkg.FlowResults.ExecutionTime)
	fmt.Printf("Results:           %s\n", outputPath)
}
