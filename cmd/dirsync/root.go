package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mykhakos/DirSync/pkg/dirsync"
)

// newRootCommand builds the base command. The flag surface deliberately
// matches the defaults a periodic mirroring job wants: a short interval,
// FULL comparison, terse console logging and a verbose log file.
func newRootCommand() *cobra.Command {
	var (
		configFile      string
		interval        time.Duration
		mode            string
		syncMeta        bool
		forceCopy       bool
		logFile         string
		consoleLogLevel string
		fileLogLevel    string
	)

	cmd := &cobra.Command{
		Use:   "dirsync SRC_DIR DST_DIR",
		Short: "One-way directory tree mirroring",
		Long: `dirsync mirrors a source directory tree onto a destination tree: after
each pass the destination's directories, files and symlinks match the
source, and items absent from the source are removed. Passes repeat at a
fixed interval until interrupted.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if configFile != "" {
				cfg, err := loadFileConfig(configFile)
				if err != nil {
					return err
				}
				if !flags.Changed("sync-interval") && cfg.Sync.Interval != "" {
					interval, _ = time.ParseDuration(cfg.Sync.Interval)
				}
				if !flags.Changed("sync-mode") && cfg.Sync.Mode != "" {
					mode = cfg.Sync.Mode
				}
				if !flags.Changed("sync-meta") && cfg.Sync.SyncMeta != nil {
					syncMeta = *cfg.Sync.SyncMeta
				}
				if !flags.Changed("force-copy") && cfg.Sync.ForceCopy != nil {
					forceCopy = *cfg.Sync.ForceCopy
				}
				if !flags.Changed("log-file") && cfg.Log.File != "" {
					logFile = cfg.Log.File
				}
				if !flags.Changed("console-log-level") && cfg.Log.ConsoleLevel != "" {
					consoleLogLevel = cfg.Log.ConsoleLevel
				}
				if !flags.Changed("file-log-level") && cfg.Log.FileLevel != "" {
					fileLogLevel = cfg.Log.FileLevel
				}
			}

			srcDir, err := dirsync.ValidateSourceDir(args[0])
			if err != nil {
				return err
			}
			dstDir, err := dirsync.ValidateDestDir(args[1])
			if err != nil {
				return err
			}
			syncMode, err := dirsync.ParseSyncMode(mode)
			if err != nil {
				return err
			}
			consoleLevel, err := dirsync.LogLevelFromString(consoleLogLevel)
			if err != nil {
				return fmt.Errorf("invalid console log level: %w", err)
			}
			fileLevel, err := dirsync.LogLevelFromString(fileLogLevel)
			if err != nil {
				return fmt.Errorf("invalid file log level: %w", err)
			}

			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer func() { _ = f.Close() }()
			logger := dirsync.NewSplitLogger(os.Stderr, consoleLevel, f, fileLevel)

			settings := &dirsync.Settings{
				Mode:      syncMode,
				ForceCopy: forceCopy,
				SyncMeta:  syncMeta,
			}
			syncer := dirsync.New(srcDir, dstDir, settings, dirsync.WithLogger(logger))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return syncer.SyncForever(ctx, interval)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to an optional YAML configuration file")
	cmd.Flags().DurationVar(&interval, "sync-interval", 2*time.Second, "Synchronization interval")
	cmd.Flags().StringVar(&mode, "sync-mode", "FULL",
		"Synchronization mode: QUICK relies on item metadata (size, mtime); FULL additionally compares file contents")
	cmd.Flags().BoolVar(&syncMeta, "sync-meta", false,
		"Synchronize directories' and files' metadata even if their contents have not been modified")
	cmd.Flags().BoolVar(&forceCopy, "force-copy", false,
		"Allow temporarily modifying destination items' access rights when needed to synchronize")
	cmd.Flags().StringVar(&logFile, "log-file", "sync.log", "Name of the log file")
	cmd.Flags().StringVar(&consoleLogLevel, "console-log-level", "info", "Log level for console output")
	cmd.Flags().StringVar(&fileLogLevel, "file-log-level", "debug", "Log level for file output")

	cmd.AddCommand(versionCmd)
	return cmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dirsync version %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
