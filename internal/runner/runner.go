// Package runner holds the command wiring shared by sase-networks and
// sase-tunnels: flags, settings, credential, client and audit log.
package runner

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/netops-tools/sasectl/pkg/audit"
	"github.com/netops-tools/sasectl/pkg/csvrow"
	"github.com/netops-tools/sasectl/pkg/provision"
	"github.com/netops-tools/sasectl/pkg/sase"
	"github.com/netops-tools/sasectl/pkg/settings"
	"github.com/netops-tools/sasectl/pkg/util"
	"github.com/netops-tools/sasectl/pkg/version"
)

// Driver applies every record through p.
type Driver func(ctx context.Context, p *provision.Processor, records []csvrow.Record) error

// auditRotation caps the audit log at 10 MiB with five old files kept.
var auditRotation = audit.RotationConfig{MaxSize: 10 << 20, MaxBackups: 5}

// Overridable in tests.
var (
	getenv = os.Getenv
	stdin  = os.Stdin
)

type flags struct {
	verbose    bool
	configPath string
	del        bool
	dryRun     bool
	baseURL    string
	auditLog   string
}

// NewCommand builds a root command that reads one CSV file and hands its
// records to drive.
func NewCommand(name, short, long string, drive Driver) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:               name + " <file.csv>",
		Short:             short,
		Long:              long,
		Args:              cobra.ExactArgs(1),
		Version:           version.Info(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args[0], drive)
		},
	}
	cmd.SetVersionTemplate(name + " {{.Version}}\n")

	fl := cmd.Flags()
	fl.BoolVar(&f.del, "delete", false, "Delete the objects named in the file instead of creating/updating them")
	fl.BoolVar(&f.dryRun, "dry-run", false, "Print the payloads without calling the API")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Verbose output (debug logging)")
	fl.StringVar(&f.configPath, "config", settings.DefaultPath(), "Settings file")
	fl.StringVar(&f.baseURL, "base-url", "", "API base URL (overrides settings and "+settings.EnvBaseURL+")")
	fl.StringVar(&f.auditLog, "audit-log", "", "Audit log file (overrides settings)")
	return cmd
}

func run(cmd *cobra.Command, f *flags, path string, drive Driver) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := settings.LoadFrom(f.configPath)
	if err != nil {
		return fmt.Errorf("loading settings %s: %w", f.configPath, err)
	}
	s.ApplyEnv(getenv)
	if f.baseURL != "" {
		s.BaseURL = f.baseURL
	}
	if f.auditLog != "" {
		s.AuditLog = f.auditLog
	}
	configureLogging(s, f.verbose)

	records, err := csvrow.ReadFile(path)
	if err != nil {
		return err
	}
	util.WithField("file", path).Debugf("read %d rows", len(records))

	opts := provision.Options{
		Out:    cmd.OutOrStdout(),
		Delete: f.del,
		DryRun: f.dryRun,
	}

	var client provision.Upserter
	if !f.dryRun {
		token, err := settings.ResolveToken(getenv, settings.TerminalPrompt(stdin, cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		c, err := sase.New(s.ClientConfig(token))
		if err != nil {
			return err
		}
		client = c

		auditLogger := openAudit(s.GetAuditLog())
		defer auditLogger.Close()
		opts.Audit = auditLogger
	}

	p := provision.NewProcessor(client, opts)
	err = drive(ctx, p, records)
	p.Summary().Print(cmd.OutOrStdout())
	return err
}

func configureLogging(s *settings.Settings, verbose bool) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	util.SetLogLevel(level)
	if s.LogFormat == "json" {
		util.SetJSONFormat()
	}
}

// openAudit falls back to audit.Discard when the log cannot be opened.
func openAudit(path string) audit.Logger {
	l, err := audit.NewFileLogger(path, auditRotation)
	if err != nil {
		util.Warnf("audit log disabled: %v", err)
		return audit.Discard{}
	}
	return l
}

// Main executes cmd and exits 1 on error.
func Main(cmd *cobra.Command) {
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.Name(), err)
		os.Exit(1)
	}
}
