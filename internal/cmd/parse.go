package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/gdbmi/internal/export"
	"github.com/dshills/gdbmi/internal/mi"
)

type parseOptions struct {
	pretty bool
	strict bool
}

func newParseCommand(g *globalOptions) *cobra.Command {
	opts := &parseOptions{}

	parseCmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parses an MI transcript and prints each message as JSON",
		Long: `Parses gdb MI output read from file, or from standard input when no
file is given, and prints one JSON document per message.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			var popts []mi.ParserOption
			if opts.strict || g.cfg.Session.Strict {
				popts = append(popts, mi.WithStrict())
			}
			return parseTranscript(cmd.OutOrStdout(), in, opts.pretty, popts...)
		},
	}

	parseCmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent the JSON output")
	parseCmd.Flags().BoolVar(&opts.strict, "strict", false, "reject line breaks inside quoted strings")

	return parseCmd
}

func parseTranscript(out io.Writer, in io.Reader, pretty bool, opts ...mi.ParserOption) error {
	p := mi.NewParser(bufio.NewReader(in), opts...)
	for n := 1; ; n++ {
		msg, err := p.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("message %d: %w", n, err)
		}

		doc, err := export.Message(msg)
		if err != nil {
			return fmt.Errorf("message %d: %w", n, err)
		}
		if pretty {
			doc = export.Indent(doc)
		} else {
			doc += "\n"
		}
		if _, err := io.WriteString(out, doc); err != nil {
			return err
		}
	}
}
