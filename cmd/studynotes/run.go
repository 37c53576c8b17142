package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/studynotes/constants"
	"github.com/joseph-ayodele/studynotes/internal/common"
)

func newRunCmd() *cobra.Command {
	var (
		xlsxOut string
		kinds   []string
	)
	cmd := &cobra.Command{
		Use:   "run <file.pdf>",
		Short: "Extract one PDF and generate study material in one go",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var want []constants.Kind
			for _, k := range kinds {
				kind, ok := constants.Canonicalize(k)
				if !ok {
					return common.NewInvalidInputError("unknown kind "+k+", expected one of summary, quiz, flashcards", nil)
				}
				want = append(want, kind)
			}

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()
			for _, w := range a.warnings {
				console.Warning("%s", w)
			}

			sess := a.newSession()
			defer sess.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			spin := console.Spinner("Extracting text...")
			spin.Start()
			snap, err := sess.Upload(ctx, filepath.Base(args[0]), f)
			spin.Stop()
			if err != nil {
				return errors.New(common.MessageOf(err))
			}
			showUpload(console, snap)

			// flashcards always run after the summary
			for _, kind := range constants.Kinds() {
				if len(want) > 0 && !containsKind(want, kind) {
					continue
				}
				generate(ctx, sess, kind)
			}

			if xlsxOut != "" {
				if err := writeStudyPack(a.exporter, xlsxOut, sess.Snapshot()); err != nil {
					return err
				}
				console.Success("Saved %s", xlsxOut)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "also write the results to this workbook")
	cmd.Flags().StringSliceVar(&kinds, "only", nil, "generate only these kinds (summary, quiz, flashcards)")
	return cmd
}

func containsKind(kinds []constants.Kind, k constants.Kind) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}
