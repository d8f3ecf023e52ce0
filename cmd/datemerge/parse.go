package main

import (
	"strings"

	"github.com/spf13/cobra"

	"datemerge/internal/core/temporal"
)

type fragment struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
	Dim   string `json:"dim"`
	Value string `json:"value"`
}

func (a *app) parseCmd() *cobra.Command {
	var dim string
	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Print every fragment of one dimension",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := a.lang()
			if err != nil {
				return err
			}
			ref, err := a.reference()
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			frags, err := a.parser().Fragments(cmd.Context(), tag, temporal.Dimension(dim), ref, text)
			if err != nil {
				return err
			}
			out := make([]fragment, 0, len(frags))
			for _, f := range frags {
				out = append(out, fragment{Start: f.Start, End: f.End, Text: f.Text(text), Dim: string(f.Dim), Value: f.Value.String()})
			}
			return a.print(out)
		},
	}
	cmd.Flags().StringVar(&dim, "dim", string(temporal.DimTime), "dimension to extract")
	return cmd
}
