package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"registrygate/internal/core/version"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const serviceName = "registrygate-parser"

// runOptions are the command line inputs of one run
type runOptions struct {
	AccessList  string
	DiffPath    string
	RepoPath    string
	ListName    string
	Submitter   string
	RulesPath   string
	Concurrency int
	Timeout     time.Duration
}

func bindFlags(fs *pflag.FlagSet, o *runOptions) {
	fs.StringVar(&o.AccessList, "accesslist", "", "access control file path, relative to --repopath")
	fs.StringVar(&o.DiffPath, "diffpath", "", "path to the pull request diff")
	fs.StringVar(&o.RepoPath, "repopath", "", "path to the registry repository checkout")
	fs.StringVar(&o.ListName, "listname", "", "name of the list file, relative to --repopath")
	fs.StringVar(&o.Submitter, "submitter", "", "GitHub login of the pull request author")
	fs.StringVar(&o.RulesPath, "rules", "", "optional registry rules file (hosts, owner lists, logs base URL)")
	fs.IntVar(&o.Concurrency, "concurrency", 0, "concurrent submission resolutions (default from ADMISSION_CONCURRENCY)")
	fs.DurationVar(&o.Timeout, "timeout", 0, "per network operation timeout (default from ADMISSION_TIMEOUT)")
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Evaluate a library registry pull request",
		Long:          "Classifies the pull request diff of the registry list file, validates every submitted repository and prints the verdict as one JSON line.",
		Version:       version.Info(serviceName).String(),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), o, stdout)
		},
	}
	cmd.SetOut(stdout)
	bindFlags(cmd.Flags(), &o)
	return cmd
}

// execute runs the command and maps failures to the ERROR line and exit code 1
func execute(ctx context.Context, args []string, stdout io.Writer) int {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stdout, "ERROR: %s\n", err)
		return 1
	}
	return 0
}
