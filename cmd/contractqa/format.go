package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"contractqa/internal/domain"
	"contractqa/internal/qa"
	"contractqa/internal/service"
	"contractqa/internal/tui"
)

func formatIngest(w io.Writer, res service.IngestResult) {
	fmt.Fprintf(w, "Indexed %s: %d pages, %d chunks\n", res.Path, res.Pages, res.Chunks)
	if res.Overview != "" {
		fmt.Fprintf(w, "\nOverview:\n%s\n", res.Overview)
	}
	if res.Entities != nil {
		fmt.Fprintln(w)
		formatEntities(w, *res.Entities)
	} else if res.EntitiesErr != nil {
		fmt.Fprintf(w, "\nEntities unavailable: %v\n", res.EntitiesErr)
	}
}

func formatEntities(w io.Writer, e domain.Entities) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range tui.EntityRows(e) {
		fmt.Fprintf(tw, "%s\t%s\n", row.Label, row.Value)
	}
	tw.Flush()
}

func formatAnswer(w io.Writer, ans qa.Answer) {
	fmt.Fprintln(w, ans.Text)
	if ans.FeedbackUsed {
		fmt.Fprintln(w, "\n(answer improved using past feedback)")
	}
	for i, src := range ans.Sources {
		fmt.Fprintf(w, "\n--- Source %d - Page %d ---\n%s\n", i+1, src.Page, tui.Preview(src.Content, tui.SourcePreviewLength))
	}
}

func formatResults(w io.Writer, results []domain.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No matching passages.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPAGE\tSCORE\tTEXT")
	for i, r := range results {
		text := strings.Join(strings.Fields(r.Chunk.Text), " ")
		fmt.Fprintf(tw, "%d\t%d\t%.4f\t%s\n", i+1, r.Chunk.Page, r.Score, tui.Preview(text, 80))
	}
	tw.Flush()
}

func formatFeedback(w io.Writer, entries []domain.FeedbackEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No feedback yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRATING\tQUESTION\tANSWER\tCOMMENT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			tui.FormatTimestamp(e.Timestamp),
			tui.RatingIcon(e.Rating),
			oneLine(e.Question, 60),
			oneLine(e.Answer, tui.AnswerPreviewLength),
			oneLine(e.Comment, 60),
		)
	}
	tw.Flush()
}

func formatStats(w io.Writer, s domain.Stats) {
	fmt.Fprintf(w, "Total: %d\nPositive: %d\nNegative: %d\n", s.Total, s.Positive, s.Negative)
}

// oneLine keeps a table cell on a single row.
func oneLine(s string, n int) string {
	return tui.Preview(strings.Join(strings.Fields(s), " "), n)
}
