package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/critics/internal/review"
	"github.com/dusk-indust/critics/internal/service"
)

var reviewCmd = &cobra.Command{
	Use:   "review <file>",
	Short: "Review a markdown document with the persona panel",
	Long:  "Stores the document, runs every selected persona concurrently and streams their progress and comments. Use - to read the document from stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview,
}

func init() {
	reviewCmd.Flags().StringSlice("personas", nil, "persona IDs to run, in order (default: all)")
	reviewCmd.Flags().String("model", "", "model override for the persona calls")
	reviewCmd.Flags().String("title", "", "document title (default: first heading or file name)")
	reviewCmd.Flags().Bool("synthesize", false, "synthesize findings after the review completes")
	reviewCmd.Flags().Bool("json", false, "print events as JSON lines")

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	content, filename, err := readDocument(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireKey(); err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	doc, err := a.svc.CreateDocument(ctx, service.NewDocument{Title: title, Filename: filename, Content: content})
	if err != nil {
		return err
	}

	personaIDs, _ := cmd.Flags().GetStringSlice("personas")
	model, _ := cmd.Flags().GetString("model")
	asJSON, _ := cmd.Flags().GetBool("json")

	out := cmd.OutOrStdout()
	p := newPrinter(out)
	enc := json.NewEncoder(out)
	if !asJSON {
		fmt.Fprintf(out, "Reviewing %s\n\n", styleHeader.Render(doc.Title))
	}

	rec, _, err := a.svc.RunReview(ctx, doc.ID, service.ReviewOptions{PersonaIDs: personaIDs, Model: model}, func(ev review.Event) {
		if asJSON {
			_ = enc.Encode(ev)
			return
		}
		p.Event(ev)
	})
	if err != nil {
		return err
	}

	if synth, _ := cmd.Flags().GetBool("synthesize"); synth {
		metas, err := a.svc.Synthesize(ctx, rec.ID, false)
		if err != nil {
			return err
		}
		if asJSON {
			return enc.Encode(map[string]any{"review_id": rec.ID, "meta_comments": metas})
		}
		fmt.Fprintln(out)
		p.Findings(metas)
	}
	return nil
}

// readDocument reads the document at path, or stdin when path is "-".
func readDocument(stdin io.Reader, path string) (content, filename string, err error) {
	var data []byte
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
		filename = filepath.Base(path)
	}
	if err != nil {
		return "", "", fmt.Errorf("read document: %w", err)
	}
	return string(data), filename, nil
}
