package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/3lfar7/tripadvparser/htmltree"
	"github.com/3lfar7/tripadvparser/script"
	"github.com/3lfar7/tripadvparser/selector"
	"github.com/spf13/cobra"
)

var engine string

var scriptCmd = &cobra.Command{
	Use:   "script [FILE]",
	Short: "run a page script and print what it writes.",
	Long:  "run a page script (stdin without FILE) and print the document.write output.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, closeIn, err := input(cmd, args)
		if err != nil {
			return err
		}
		defer closeIn()

		return runScript(cmd.OutOrStdout(), in, engine)
	},
}

var selectorCmd = &cobra.Command{
	Use:   "selector SELECTOR [FILE]",
	Short: "check a selector, optionally against a page.",
	Long: `selector compiles SELECTOR and prints its canonical form. With a page
(FILE or stdin when FILE is "-") every matching element is listed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return runSelector(cmd.OutOrStdout(), args[0], nil)
		}

		in, closeIn, err := input(cmd, args[1:])
		if err != nil {
			return err
		}
		defer closeIn()

		return runSelector(cmd.OutOrStdout(), args[0], in)
	},
}

func init() {
	scriptCmd.Flags().StringVar(
		&engine, "engine", "builtin", "script engine: builtin or otto")
}

func input(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}

	return f, func() { f.Close() }, nil
}

func runScript(w io.Writer, r io.Reader, engine string) error {
	run, err := script.RunnerFor(engine)
	if err != nil {
		return err
	}

	src, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	out, err := run(string(src))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, out)

	return err
}

func runSelector(w io.Writer, text string, page io.Reader) error {
	sel, err := selector.Compile(text)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, sel.String())
	if page == nil {
		return nil
	}

	matches := 0
	b := htmltree.NewBuilder(func(stack []*htmltree.Element) error {
		i, ok := sel.Match(stack)
		if !ok {
			return nil
		}
		matches++

		names := make([]string, len(stack))
		for j, e := range stack {
			names[j] = e.Name
		}
		top := stack[len(stack)-1]
		_, err := fmt.Fprintf(w, "%d\t%s\t%q\n", i, strings.Join(names, " > "), strings.TrimSpace(strings.Join(top.Texts, " ")))

		return err
	})
	if err := htmltree.Feed(b, page); err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%d matches\n", matches)

	return err
}
