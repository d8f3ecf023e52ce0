package main

import (
	"strings"

	"github.com/spf13/cobra"
)

type classification struct {
	Normalized string `json:"normalized"`
	Intent     string `json:"intent"`
	Rule       string `json:"rule,omitempty"`
	Day        int    `json:"day,omitempty"`
	Weekday    int    `json:"weekday,omitempty"`
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Show the merge intent a fragment expresses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			tag, err := a.lang()
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			out := classification{Intent: "none"}
			if rs, ok := a.rules.For(tag); ok {
				in := rs.Classify(text)
				out = classification{
					Normalized: rs.Normalize(text),
					Intent:     in.Kind.String(),
					Rule:       in.Rule,
					Day:        in.Day,
					Weekday:    in.Weekday,
				}
			}
			return a.print(out)
		},
	}
}

type ruleCount struct {
	Locale string         `json:"locale"`
	Rules  map[string]int `json:"rules"`
}

func (a *app) rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List rule counts per locale",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var out []ruleCount
			for _, rs := range a.rules.Locales() {
				rc := ruleCount{Locale: rs.Locale.String(), Rules: map[string]int{}}
				for k, n := range rs.Counts() {
					rc.Rules[k.String()] = n
				}
				out = append(out, rc)
			}
			return a.print(out)
		},
	}
}
