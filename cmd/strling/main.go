// Command strling translates STRling patterns to PCRE2 from the
// command line, with subcommands exposing each pipeline stage.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	strling "github.com/TheCyberLocal/STRling-sub006"
	"github.com/TheCyberLocal/STRling-sub006/pkg/parser"
)

var rootCmd = &cobra.Command{
	Use:   "strling [command]",
	Short: "STRling to PCRE2 translator",
	Long: "STRling to PCRE2 translator.\n\n" +
		"Patterns are read from the first argument, or from stdin when no\n" +
		"argument is given.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var translateCmd = &cobra.Command{
	Use:   "translate [pattern]",
	Short: "Translate a STRling pattern to a PCRE2 string",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args)
		if err != nil {
			return err
		}
		pattern, err := strling.Translate(source)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pattern)
		return nil
	},
}

var astCmd = &cobra.Command{
	Use:   "ast [pattern]",
	Short: "Print the parsed AST as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args)
		if err != nil {
			return err
		}
		flags, tree, err := strling.Parse(source)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), struct {
			Flags interface{} `json:"flags"`
			AST   interface{} `json:"ast"`
		}{flags, tree})
	},
}

var irCmd = &cobra.Command{
	Use:   "ir [pattern]",
	Short: "Print the compiled IR as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args)
		if err != nil {
			return err
		}
		_, tree, err := strling.Parse(source)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), strling.Compile(tree))
	},
}

var featuresCmd = &cobra.Command{
	Use:   "features [pattern]",
	Short: "List the engine features a pattern requires",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args)
		if err != nil {
			return err
		}
		_, tree, err := strling.Parse(source)
		if err != nil {
			return err
		}
		_, features := strling.CompileFull(tree)
		for _, f := range features {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

var diagCmd = &cobra.Command{
	Use:   "diag [pattern]",
	Short: "Print parse errors as LSP diagnostics JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args)
		if err != nil {
			return err
		}
		_, _, err = strling.Parse(source)
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			return printJSON(cmd.OutOrStdout(), []parser.Diagnostic{perr.Diagnostic()})
		}
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), []parser.Diagnostic{})
	},
}

// readSource takes the pattern from the lone positional argument, or
// from stdin so patterns with shell metacharacters can be piped in.
func readSource(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	rootCmd.AddCommand(translateCmd, astCmd, irCmd, featuresCmd, diagCmd)
	if err := rootCmd.Execute(); err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintln(os.Stderr, perr.Format())
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
