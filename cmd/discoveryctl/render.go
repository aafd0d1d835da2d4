package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/ekaya-discovery/pkg/blueprint"
	"github.com/ekaya-inc/ekaya-discovery/pkg/config"
	"github.com/ekaya-inc/ekaya-discovery/pkg/render"
)

func newRenderCmd(global *globalOptions) *cobra.Command {
	var (
		file    string
		kind    string
		output  string
		url     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a record's diagram through a Kroki server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k := blueprint.DiagramKind(kind)
			if !k.IsValid() {
				return fmt.Errorf("unknown diagram kind %q (want er or flow)", kind)
			}

			rec, err := readRecord(cmd, file)
			if err != nil {
				return err
			}
			doc := blueprint.Derive(rec).Document(k)
			if doc == "" {
				return errors.New("record has nothing to draw for this diagram")
			}

			client, err := render.NewKrokiClient(&config.RendererConfig{URL: url, Timeout: timeout}, global.logger())
			if err != nil {
				return err
			}
			graphic, err := client.Render(cmd.Context(), doc)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(graphic.Data)
				return err
			}
			if err := os.WriteFile(output, graphic.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			cmd.Printf("Wrote %s (%d bytes)\n", output, len(graphic.Data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Record JSON file (- for stdin)")
	cmd.Flags().StringVar(&kind, "kind", string(blueprint.DiagramER), "Diagram kind: er or flow")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&url, "url", "https://kroki.io", "Kroki server URL")
	cmd.Flags().DurationVar(&timeout, "timeout", render.DefaultTimeout, "Renderer timeout")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
