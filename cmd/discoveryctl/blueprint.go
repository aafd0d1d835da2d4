package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/ekaya-discovery/pkg/blueprint"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// blueprintOutput is what blueprint prints in json and yaml formats.
type blueprintOutput struct {
	Project   string                 `json:"project" yaml:"project"`
	Status    models.RecordStatus    `json:"status" yaml:"status"`
	Blueprint blueprint.Blueprint    `json:"blueprint" yaml:"blueprint"`
	Gaps      []models.ValidationGap `json:"gaps" yaml:"gaps"`
}

func newBlueprintCmd(_ *globalOptions) *cobra.Command {
	var (
		file   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "blueprint",
		Short: "Derive diagrams and the size estimate from a record file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := readRecord(cmd, file)
			if err != nil {
				return err
			}
			out := blueprintOutput{
				Project:   rec.DisplayName(),
				Status:    rec.Status,
				Blueprint: blueprint.Derive(rec),
				Gaps:      models.Gaps(rec),
			}
			return writeBlueprint(cmd.OutOrStdout(), out, format)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Record JSON file (- for stdin)")
	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text, json or yaml")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func writeBlueprint(w io.Writer, out blueprintOutput, format string) error {
	switch strings.ToLower(format) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		return writeBlueprintText(w, out)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func writeBlueprintText(w io.Writer, out blueprintOutput) error {
	est := out.Blueprint.Estimate

	var b strings.Builder
	fmt.Fprintf(&b, "Project:  %s (%s)\n", out.Project, out.Status)
	fmt.Fprintf(&b, "Estimate: %s, %d points, %s\n", est.Size, est.Points, est.Timeline)

	b.WriteString("\nEntity-relationship diagram:\n")
	writeDocument(&b, out.Blueprint.ERDiagram)
	b.WriteString("\nProcess flow:\n")
	writeDocument(&b, out.Blueprint.FlowChart)

	if len(out.Gaps) > 0 {
		fmt.Fprintf(&b, "\nGaps (%d):\n", len(out.Gaps))
		for _, g := range out.Gaps {
			fmt.Fprintf(&b, "  - [%s] %s: %s\n", g.Step.Title(), g.Field, g.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeDocument(b *strings.Builder, doc string) {
	if doc == "" {
		b.WriteString("  (empty)\n")
		return
	}
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}
