package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/config"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/engine"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/logging"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/metrics"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/output"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/policy"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/providers/aws/common"
	awssns "github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/providers/aws/sns"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/render"
	snspack "github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/rulepacks/sns"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/version"
)

// defaultPolicyPath is picked up automatically when --policy is not given.
const defaultPolicyPath = "./dp.yaml"

// deps are the collaborators the commands build on. Tests replace them with
// fakes; production uses defaultDeps.
type deps struct {
	provider  func(cfg *config.Config) common.AWSClientProvider
	collector func() awssns.TopicCollector
}

func defaultDeps() deps {
	return deps{
		provider: func(cfg *config.Config) common.AWSClientProvider {
			return common.NewDefaultAWSClientProvider().
				WithDefaultRegion(cfg.AWS.DefaultRegion).
				WithPartition(cfg.AWS.Partition).
				WithAppID(version.AppID())
		},
		collector: func() awssns.TopicCollector { return awssns.NewDefaultTopicCollector() },
	}
}

// cliState is filled by the root PersistentPreRunE and read by subcommands.
type cliState struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(defaultDeps())
}

func newRootCmdWith(d deps) *cobra.Command {
	state := &cliState{}

	root := &cobra.Command{
		Use:           "dp",
		Short:         "DevOps Proxy: SNS topic security auditor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(state.configPath)
			if err != nil {
				return err
			}
			state.cfg = cfg

			level := cfg.Log.Level
			if state.logLevel != "" {
				level = state.logLevel
			}
			logger, err := logging.New(cmd.ErrOrStderr(), level, cfg.Log.Format)
			if err != nil {
				return err
			}
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&state.configPath, "config", "", "Config file (default: ~/.config/devops-proxy/config.yaml)")
	root.PersistentFlags().StringVar(&state.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	root.AddCommand(newAWSCmd(state, d))
	root.AddCommand(newDoctorCmd(state, d))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
			return nil
		},
	}
}

func newAWSCmd(state *cliState, d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aws",
		Short: "AWS provider commands",
	}
	cmd.AddCommand(newAuditCmd(state, d))
	return cmd
}

func newAuditCmd(state *cliState, d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run an audit against an AWS account",
	}
	cmd.AddCommand(newSNSCmd(state, d))
	return cmd
}

// snsFlags holds the flag values of dp aws audit sns.
type snsFlags struct {
	profile     string
	allProfiles bool
	regions     []string
	reportFmt   string
	output      string
	policyPath  string
	summary     bool
	metricsFile string
	colored     bool
	failedOnly  bool
	explain     string
}

func newSNSCmd(state *cliState, d deps) *cobra.Command {
	var f snsFlags

	cmd := &cobra.Command{
		Use:   "sns",
		Short: "Audit SNS topics for encryption, transport and access policy issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := state.cfg
			if !cmd.Flags().Changed("report") {
				f.reportFmt = cfg.Audit.ReportFormat
			}
			if !cmd.Flags().Changed("profile") {
				f.profile = cfg.AWS.DefaultProfile
			}
			if f.metricsFile == "" {
				f.metricsFile = cfg.Metrics.Textfile
			}
			return runSNSAudit(cmd.Context(), cmd.OutOrStdout(), cfg, d, f)
		},
	}

	cmd.Flags().StringVar(&f.profile, "profile", "", "AWS profile name (default: uses environment / default profile)")
	cmd.Flags().BoolVar(&f.allProfiles, "all-profiles", false, "Audit all configured AWS profiles")
	cmd.Flags().StringSliceVar(&f.regions, "region", nil, "AWS region(s) to audit (default: all active regions)")
	cmd.Flags().StringVar(&f.reportFmt, "report", "table", "Output format: table, json, jsonl or asff")
	cmd.Flags().StringVar(&f.output, "output", "", "Write full JSON report to this file path (in addition to stdout output)")
	cmd.Flags().StringVar(&f.policyPath, "policy", "", "Policy file (default: ./dp.yaml when present)")
	cmd.Flags().BoolVar(&f.summary, "summary", false, "Print compact summary: totals, severity breakdown, top-5 failed findings")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format to this path")
	cmd.Flags().BoolVar(&f.colored, "color", false, "Colour severity and status cells in table output")
	cmd.Flags().BoolVar(&f.failedOnly, "failed-only", false, "Hide PASSED findings in table output")
	cmd.Flags().StringVar(&f.explain, "explain", "", "Explain one rule (e.g. SNS.3): remediation and failing topics")

	return cmd
}

// runSNSAudit builds the engine, runs the audit and renders the result.
// It returns an *exitError when the policy enforcement gate trips.
func runSNSAudit(ctx context.Context, w io.Writer, cfg *config.Config, d deps, f snsFlags) error {
	format := engine.ReportFormat(strings.ToLower(f.reportFmt))
	switch format {
	case engine.ReportFormatTable, engine.ReportFormatJSON, engine.ReportFormatJSONL, engine.ReportFormatASFF:
	default:
		return fmt.Errorf("unknown report format %q; valid values: table, json, jsonl, asff", f.reportFmt)
	}
	if format == engine.ReportFormatJSONL && (f.summary || f.output != "" || f.explain != "") {
		return errors.New("--summary, --output and --explain cannot be combined with --report jsonl")
	}

	registry := snspack.NewRegistry()
	policyCfg, err := loadPolicy(ctx, f.policyPath, registry.IDs())
	if err != nil {
		return err
	}

	m := metrics.New()
	eng := engine.NewSNSEngine(d.provider(cfg), d.collector(), registry, policyCfg, m)

	opts := engine.AuditOptions{
		AuditType:         engine.AuditTypeSNS,
		Profile:           f.profile,
		AllProfiles:       f.allProfiles,
		Regions:           f.regions,
		ReportFormat:      format,
		NormalizeSeverity: cfg.Audit.NormalizeSeverity,
	}

	// gated holds the findings the enforcement gate inspects.
	var gated []models.Finding
	if format == engine.ReportFormatJSONL {
		start := time.Now()
		gated, err = streamJSONL(ctx, eng, opts, w)
		m.ObserveDuration(time.Since(start))
		if err != nil {
			return err
		}
	} else {
		report, err := eng.RunAudit(ctx, opts)
		if err != nil {
			return fmt.Errorf("audit failed: %w", err)
		}
		if err := renderReport(w, report, f, format); err != nil {
			return err
		}
		gated = report.Findings
	}

	if f.metricsFile != "" {
		if err := m.WriteTextfile(f.metricsFile); err != nil {
			return err
		}
	}

	if policy.ShouldFail(policy.DomainSNS, gated, policyCfg) {
		return &exitError{code: 1, msg: "policy enforcement failed: findings at or above fail_on_severity"}
	}
	return nil
}

// renderReport writes report to w in the requested format, and to
// f.output as JSON when set.
func renderReport(w io.Writer, report *models.AuditReport, f snsFlags, format engine.ReportFormat) error {
	if f.output != "" {
		if err := output.WriteReportFile(f.output, report); err != nil {
			return err
		}
	}

	if f.explain != "" {
		exp := render.ExplainRule(f.explain, report.Findings)
		if format == engine.ReportFormatJSON {
			return render.WriteExplainJSON(w, exp, f.explain)
		}
		if exp == nil {
			return fmt.Errorf("no findings for rule %s", f.explain)
		}
		render.RenderRuleExplanation(w, exp)
		return nil
	}

	if f.summary {
		output.RenderSummary(w, report, f.colored)
		return nil
	}

	switch format {
	case engine.ReportFormatJSON:
		return output.WriteJSON(w, report)
	case engine.ReportFormatASFF:
		return output.WriteASFF(w, report.Findings)
	default:
		output.RenderHeader(w, report)
		fmt.Fprintln(w)
		output.RenderTable(w, report.Findings, output.TableOptions{
			Colored:        f.colored,
			IncludeProfile: f.allProfiles,
			FailedOnly:     f.failedOnly,
		})
		output.RenderErrors(w, report.Errors)
		return nil
	}
}

// streamJSONL writes findings and recoverable errors as they are produced and
// returns the failed findings for the enforcement gate.
func streamJSONL(ctx context.Context, eng *engine.SNSEngine, opts engine.AuditOptions, w io.Writer) ([]models.Finding, error) {
	jw := output.NewJSONLWriter(w)
	var failed []models.Finding
	for f, err := range eng.Stream(ctx, opts) {
		if err != nil {
			rec, ok := engine.ErrorRecord(err)
			if !ok {
				return failed, fmt.Errorf("audit failed: %w", err)
			}
			if err := jw.WriteError(rec); err != nil {
				return failed, err
			}
			continue
		}
		if !f.Passed() {
			failed = append(failed, f)
		}
		if err := jw.WriteFinding(f); err != nil {
			return failed, err
		}
	}
	return failed, nil
}

// loadPolicy loads and validates the policy at path. An empty path falls
// back to ./dp.yaml, and a missing default file means no policy.
func loadPolicy(ctx context.Context, path string, ruleIDs []string) (*policy.PolicyConfig, error) {
	if path == "" {
		if _, err := os.Stat(defaultPolicyPath); err != nil {
			return nil, nil
		}
		path = defaultPolicyPath
	}

	cfg, err := policy.LoadPolicy(path)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	if errs := policy.Validate(cfg, ruleIDs); len(errs) > 0 {
		return nil, fmt.Errorf("invalid policy %s: %w", path, errors.Join(errs...))
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("policy loaded")
	return cfg, nil
}
