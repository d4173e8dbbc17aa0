package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/critics/internal/review"
)

var reviewsCmd = &cobra.Command{
	Use:   "reviews [review-id]",
	Short: "List stored reviews, or show one review's comments",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReviews,
}

func init() {
	reviewsCmd.Flags().String("document", "", "only list reviews of this document ID")
	rootCmd.AddCommand(reviewsCmd)
}

func runReviews(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	st := a.svc.Store()

	if len(args) == 1 {
		comments, err := st.Comments(ctx, args[0])
		if err != nil {
			return err
		}
		p := newPrinter(out)
		for _, c := range comments {
			p.Event(review.Event{Type: review.EventComment, Comment: &c})
		}
		p.Event(review.Event{Type: review.EventDone, TotalComments: len(comments), ReviewID: args[0]})
		return nil
	}

	docID, _ := cmd.Flags().GetString("document")
	reviews, err := st.ListReviews(ctx, docID)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		fmt.Fprintln(out, "No reviews found.")
		return nil
	}
	for _, r := range reviews {
		fmt.Fprintf(out, "%s  %-9s  %s  doc=%s\n", r.ID, r.Status, r.CreatedAt.Local().Format(time.DateTime), r.DocumentID)
	}
	return nil
}
