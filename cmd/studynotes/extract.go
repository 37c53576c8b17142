package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/extract"
)

func newExtractCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Print the text extracted from a PDF without calling the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex := extract.NewPDFExtractor(extract.Config{MaxPages: cfg.Extract.MaxPages}, logger)
			res, err := ex.Extract(cmd.Context(), args[0])
			if err != nil {
				return errors.New(common.MessageOf(err))
			}
			console.Info("%d page(s), %d characters in %s", res.Pages, len(res.Text), res.Duration)
			for _, w := range res.Warnings {
				console.Warning("%s", w)
			}
			text := res.Preview(cfg.Extract.PreviewChars)
			if full {
				text = res.Text
			}
			console.Block("Extracted text", text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print all text instead of the preview")
	return cmd
}
