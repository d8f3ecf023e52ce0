package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"datemerge/internal/adapters/duckling"
	"datemerge/internal/core/intent"
)

// app carries settings shared by every subcommand
type app struct {
	v     *viper.Viper
	out   io.Writer
	rules *intent.Table
	now   func() time.Time
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, now: time.Now}

	root := &cobra.Command{
		Use:           "datemerge",
		Short:         "Recognize dates in text and merge them across dialogue turns",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default .datemerge.yaml)")
	pf.String("lang", "fr", "BCP 47 language of the text")
	pf.String("tz", "UTC", "IANA timezone dates are projected to")
	pf.String("ref", "", "RFC3339 reference time, now when empty")
	pf.String("duckling", "http://localhost:8000", "duckling base url")
	pf.Duration("timeout", 5*time.Second, "duckling request timeout")
	for _, k := range []string{"lang", "tz", "ref", "duckling", "timeout"} {
		_ = a.v.BindPFlag(k, pf.Lookup(k))
	}

	root.AddCommand(a.classifyCmd(), a.parseCmd(), a.mergeCmd(), a.rulesCmd())
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if f, _ := cmd.Flags().GetString("config"); f != "" {
		a.v.SetConfigFile(f)
	} else {
		a.v.SetConfigName(".datemerge")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}
	a.v.SetEnvPrefix("DATEMERGE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if a.rules == nil {
		t, err := intent.Load()
		if err != nil {
			return err
		}
		a.rules = t
	}
	return nil
}

func (a *app) lang() (language.Tag, error) {
	tag, err := language.Parse(a.v.GetString("lang"))
	if err != nil {
		return language.Und, fmt.Errorf("invalid --lang: %w", err)
	}
	return tag, nil
}

// reference resolves --ref in --tz
func (a *app) reference() (time.Time, error) {
	loc, err := time.LoadLocation(a.v.GetString("tz"))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --tz: %w", err)
	}
	raw := a.v.GetString("ref")
	if raw == "" {
		return a.now().In(loc), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --ref: %w", err)
	}
	return t.In(loc), nil
}

func (a *app) parser() *duckling.Parser {
	return duckling.NewParser(duckling.NewClient(duckling.Options{
		BaseURL:    a.v.GetString("duckling"),
		Timeout:    a.v.GetDuration("timeout"),
		UserAgent:  "datemerge-cli",
		MaxRetries: 1,
	}))
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
