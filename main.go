// ABOUTME: CLI entry point for blogpush.
// ABOUTME: Wires config, authentication, and batch publishing, and renders the summary.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		opts Options
		ov   Overrides
	)

	cmd := &cobra.Command{
		Use:           "blogpush <csv-file>",
		Short:         "Publish blog posts to Blogger from a CSV file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], opts, ov)
		},
	}

	cmd.Flags().StringVar(&opts.TitleColumn, "title-column", "title", "Column name for post titles")
	cmd.Flags().StringVar(&opts.ContentColumn, "content-column", "content", "Column name for post content")
	cmd.Flags().StringVar(&opts.LabelsColumn, "labels-column", "labels", "Column name for comma-separated post labels")
	cmd.Flags().BoolVar(&opts.Draft, "draft", false, "Save posts as drafts instead of publishing")
	cmd.Flags().StringVar(&ov.CredentialsFile, "credentials-file", "", "Path to the OAuth client secrets file")
	cmd.Flags().StringVar(&ov.TokenFile, "token-file", "", "Path to the persisted token file")
	cmd.Flags().StringVar(&ov.BlogID, "blog-id", "", "ID of the blog to post to")

	return cmd
}

func run(ctx context.Context, csvPath string, opts Options, ov Overrides) error {
	// Values from a .env file act as environment fallback (ignore error if
	// the file does not exist).
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := LoadConfig(ov)
	if err != nil {
		return err
	}

	auth := NewAuthenticator(cfg, NewLocalServerProvider(logger), logger)
	client, err := auth.Authenticate(ctx)
	if err != nil {
		return err
	}

	publisher := NewPublisher(client, logger)
	posts, summary, err := publisher.BatchPublish(ctx, csvPath, opts)
	if err != nil {
		return err
	}

	printSummary(posts, summary)
	return nil
}

func printSummary(posts []Post, summary Summary) {
	fmt.Println()
	if summary.Failed == 0 {
		color.New(color.FgGreen, color.Bold).Printf("Posted %d of %d\n", summary.Posted, summary.Attempted)
	} else {
		color.New(color.FgYellow, color.Bold).Printf("Posted %d of %d (%d failed)\n", summary.Posted, summary.Attempted, summary.Failed)
	}

	if len(posts) > 0 {
		table := tablewriter.NewWriter(os.Stdout)
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Formatting.AutoWrap = tw.WrapTruncate
			cfg.Row.Alignment.PerColumn = []tw.Align{
				tw.AlignRight, // #
				tw.AlignLeft,  // Title
				tw.AlignLeft,  // URL
			}
		})
		table.Header("#", "Title", "URL")
		for i, p := range posts {
			table.Append(fmt.Sprintf("%d", i+1), p.Title, p.URL)
		}
		table.Render()
	}

	red := color.New(color.FgRed)
	for _, title := range summary.FailedTitles {
		red.Printf("  failed: %s\n", title)
	}
}
