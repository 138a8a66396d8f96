package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/resume-analyzer/internal/application"
	appdocs "github.com/bryanwahyu/resume-analyzer/internal/application/documents"
	"github.com/bryanwahyu/resume-analyzer/internal/infra/document"
)

var extractCmd = &cobra.Command{
	Use:   "extract <resume.pdf>",
	Short: "Print the text extracted from a PDF resume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		svc := &appdocs.Service{
			Extractor: document.NewPDFExtractor(),
			Clock:     application.SystemClock{},
		}
		text, err := svc.Extract(cmd.Context(), filepath.Base(args[0]), data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
