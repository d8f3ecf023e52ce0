package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"datemerge/internal/core/datesmerge"
	"datemerge/internal/core/intent"
	"datemerge/internal/core/temporal"
)

type mergeResult struct {
	Merged  bool   `json:"merged"`
	Branch  string `json:"branch"`
	Intent  string `json:"intent,omitempty"`
	Content string `json:"content,omitempty"`
	Value   string `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (a *app) mergeCmd() *cobra.Command {
	var initial string
	cmd := &cobra.Command{
		Use:   "merge --initial <previous text> <new text>",
		Short: "Merge the date of a previous turn with the dates of a new utterance",
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
			ctx := cmd.Context()
			p := a.parser()

			var ds []temporal.Descriptor
			if initial != "" {
				prev, err := p.Recognize(ctx, tag, ref, initial, nil)
				if err != nil {
					return err
				}
				if len(prev) == 0 {
					return errors.New("no date recognized in --initial")
				}
				ds = append(ds, prev[0].Carried())
			}
			fresh, err := p.Recognize(ctx, tag, ref, strings.Join(args, " "), nil)
			if err != nil {
				return err
			}
			ds = append(ds, fresh...)

			eng := datesmerge.New(p, a.rules, datesmerge.Options{Refine: a.v.GetBool("refine")})
			res := eng.Resolve(ctx, datesmerge.Context{
				EntityType: temporal.DatetimeEntityType,
				Language:   tag,
				Reference:  ref,
			}, ds)

			out := mergeResult{Merged: res.OK, Branch: string(res.Branch)}
			if res.Intent != intent.None {
				out.Intent = res.Intent.String()
			}
			if res.OK {
				out.Content = res.Value.Content
				out.Value = res.Value.Value.String()
			}
			if res.Err != nil {
				out.Error = res.Err.Error()
			}
			return a.print(out)
		},
	}
	cmd.Flags().StringVar(&initial, "initial", "", "text of the previous turn whose date is carried over")
	cmd.Flags().Bool("refine", false, "apply non additive refinement")
	_ = a.v.BindPFlag("refine", cmd.Flags().Lookup("refine"))
	return cmd
}
