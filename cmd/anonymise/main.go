/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/engine"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/extract"
)

type anonymiseConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	engine.Config  `mapstructure:",squash"`
}

type anonymizedPayload struct {
	AnonymizedText *string              `json:"anonymized_text"`
	EntityMapping  *[]entity.Occurrence `json:"entity_mapping"`
}

type cli struct {
	in         io.Reader
	out        io.Writer
	configPath string
	pretty     bool
	engine     *engine.Engine
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := newCLI(os.Stdin, os.Stdout).execute(nil); err != nil {
		os.Exit(1)
	}
}

func newCLI(in io.Reader, out io.Writer) *cli {
	return &cli{in: in, out: out}
}

// execute runs the command line in args (os.Args when nil) and releases the engine however the
// command ended.
func (c *cli) execute(args []string) error {
	cmd := c.command()
	if args != nil {
		cmd.SetArgs(args)
	}
	err := cmd.Execute()
	if closeErr := c.close(); err == nil {
		err = closeErr
	}
	return err
}

func (c *cli) command() *cobra.Command {

	rootCmd := &cobra.Command{
		Use:   "anonymise",
		Short: "Reversible PII anonymisation",
		Long: `anonymise replaces personal information in text with numbered placeholders
such as [PER_1] or [EMAIL_2], and restores the original text from the mapping.

Recognisers and the gazetteer are configured in the file given with --config.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.open,
	}
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "./config/anonymise.yml", "The config file path.")
	rootCmd.PersistentFlags().BoolVarP(&c.pretty, "pretty", "p", false, "Indent JSON output")

	textCmd := &cobra.Command{
		Use:   "text [TEXT]",
		Short: "Anonymise text given as an argument or on stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := c.input(args)
			if err != nil {
				return err
			}
			res, err := c.engine.Anonymize(cmd.Context(), text)
			if err != nil {
				return err
			}
			return c.write(res)
		},
	}

	fileCmd := &cobra.Command{
		Use:   "file PATH",
		Short: fmt.Sprintf("Anonymise the text of a document (%s)", strings.Join(extract.SupportedExtensions(), ", ")),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := extract.Extract(args[0])
			if err != nil {
				return err
			}
			res, err := c.engine.Anonymize(cmd.Context(), text)
			if err != nil {
				return err
			}
			return c.write(res)
		},
	}

	extractCmd := &cobra.Command{
		Use:   "extract [TEXT]",
		Short: "List the entities found in text, grouped by category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := c.input(args)
			if err != nil {
				return err
			}
			inventory, err := c.engine.Extract(cmd.Context(), text)
			if err != nil {
				return err
			}
			return c.write(inventory)
		},
	}

	restoreCmd := &cobra.Command{
		Use:   "restore [RESULT]",
		Short: "Restore the original text from the JSON written by text or file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := c.in
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var res anonymizedPayload
			if err := json.NewDecoder(r).Decode(&res); err != nil {
				return lib.NewInputFormatError("invalid anonymisation result", err)
			}
			if res.AnonymizedText == nil || res.EntityMapping == nil {
				return lib.NewInputFormatError("invalid anonymisation result: missing required fields 'anonymized_text' or 'entity_mapping'", nil)
			}
			restored := c.engine.Deanonymize(cmd.Context(), *res.AnonymizedText, *res.EntityMapping)
			_, err := fmt.Fprintln(c.out, restored)
			return err
		},
	}

	rootCmd.AddCommand(textCmd, fileCmd, extractCmd, restoreCmd)
	return rootCmd
}

func (c *cli) open(_ *cobra.Command, _ []string) error {
	var conf anonymiseConfig
	if err := lib.LoadConfig(c.configPath, engine.Defaults(), &conf); err != nil {
		return err
	}
	e, err := engine.New(conf.Config)
	if err != nil {
		return err
	}
	c.engine = e
	return nil
}

func (c *cli) close() error {
	if c.engine == nil {
		return nil
	}
	err := c.engine.Close()
	c.engine = nil
	return err
}

// input is the single argument if there is one, otherwise all of stdin.
func (c *cli) input(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	b, err := io.ReadAll(c.in)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *cli) write(v interface{}) error {
	enc := json.NewEncoder(c.out)
	if c.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
