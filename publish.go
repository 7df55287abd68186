// ABOUTME: Batch publishing of CSV rows as blog posts.
// ABOUTME: Reads the source file, validates columns, and publishes rows one at a time.

package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// PostCreator is the slice of the Blogger client the publisher needs.
type PostCreator interface {
	CreatePost(ctx context.Context, title, content string, labels []string, draft bool) (*Post, error)
}

// Record is one CSV row, keyed by column name.
type Record map[string]string

// Options configure how rows map onto posts.
type Options struct {
	TitleColumn   string
	ContentColumn string
	LabelsColumn  string
	Draft         bool
}

// Summary reports the outcome of a batch: rows attempted, posted, and
// failed, plus the failed titles for reporting.
type Summary struct {
	Attempted    int
	Posted       int
	Failed       int
	FailedTitles []string
}

// ValidationError reports a source whose first row is missing a required
// column, or a source with no rows at all.
type ValidationError struct {
	TitleColumn   string
	ContentColumn string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("CSV must contain %q and %q columns", e.TitleColumn, e.ContentColumn)
}

type Publisher struct {
	client PostCreator
	logger *logrus.Logger
}

func NewPublisher(client PostCreator, logger *logrus.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// ReadRecords loads the entire source file into ordered records. The first
// row is the header; short rows leave their trailing columns unset.
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("CSV file not found %s: %w", path, err)
		}
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

// BatchPublish reads the source and publishes every row in order, one
// request at a time. A row that fails is logged and skipped; the batch
// always runs to the end. Schema is assumed uniform across rows, so the
// required columns are checked once against the first record before any
// network call.
func (p *Publisher) BatchPublish(ctx context.Context, path string, opts Options) ([]Post, Summary, error) {
	records, err := ReadRecords(path)
	if err != nil {
		return nil, Summary{}, err
	}
	p.logger.WithFields(logrus.Fields{"file": path, "rows": len(records)}).Info("Read CSV source")

	if len(records) == 0 {
		return nil, Summary{}, &ValidationError{TitleColumn: opts.TitleColumn, ContentColumn: opts.ContentColumn}
	}
	if _, ok := records[0][opts.TitleColumn]; !ok {
		return nil, Summary{}, &ValidationError{TitleColumn: opts.TitleColumn, ContentColumn: opts.ContentColumn}
	}
	if _, ok := records[0][opts.ContentColumn]; !ok {
		return nil, Summary{}, &ValidationError{TitleColumn: opts.TitleColumn, ContentColumn: opts.ContentColumn}
	}

	s := newProgressSpinner()

	var posts []Post
	summary := Summary{Attempted: len(records)}

	for i, rec := range records {
		title := rec[opts.TitleColumn]
		content := rec[opts.ContentColumn]
		labels := parseLabels(rec, opts.LabelsColumn)

		if s != nil {
			s.Suffix = fmt.Sprintf("] posting %d/%d: %s", i+1, len(records), title)
		}

		post, err := p.client.CreatePost(ctx, title, content, labels, opts.Draft)
		if err != nil {
			summary.Failed++
			summary.FailedTitles = append(summary.FailedTitles, title)
			p.logger.WithError(err).WithField("title", title).Error("Failed to post, continuing")
			continue
		}

		summary.Posted++
		posts = append(posts, *post)
		p.logger.WithFields(logrus.Fields{"title": post.Title, "url": post.URL}).Info("Created post")
	}

	if s != nil {
		s.Stop()
	}

	p.logger.Infof("Completed batch posting: %d of %d posts created", summary.Posted, summary.Attempted)
	return posts, summary, nil
}

// parseLabels splits a comma-delimited cell into trimmed labels. An absent
// column, an absent cell, or a blank cell all mean no labels.
func parseLabels(rec Record, column string) []string {
	if column == "" {
		return nil
	}
	raw, ok := rec[column]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}

	var labels []string
	for _, part := range strings.Split(raw, ",") {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// Progress is written to stderr alongside the log lines, but only when
// stderr is a terminal.
func newProgressSpinner() *spinner.Spinner {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Prefix = "["
	s.Start()
	return s
}
