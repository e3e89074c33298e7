/*
Copyright © 2023 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blacktop/imgsniff/internal/colors"
	"github.com/blacktop/imgsniff/internal/source"
	"github.com/blacktop/imgsniff/pkg/imgtype"
)

func init() {
	rootCmd.AddCommand(probeCmd)
}

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:           "probe <FILE>...",
	Aliases:       []string{"p"},
	Short:         "Detect the image type of files",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := setup()
		if err != nil {
			return err
		}
		parser, err := imgtype.ParserFor(conf.Decode.Prober)
		if err != nil {
			return err
		}

		var failed int
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, path := range args {
			typ, in, err := probe(parser, path)
			if err != nil {
				log.WithError(err).Errorf("failed to probe %s", path)
				failed++
				continue
			}
			alpha := "-"
			if typ.HasAlpha() {
				alpha = "alpha"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				colors.Name(in.Name), colors.Type(typ), alpha, colors.Faint(in.Compression), colors.Size(humanize.Bytes(uint64(in.Size))))
		}
		w.Flush()

		if failed > 0 {
			return fmt.Errorf("failed to probe %d of %d files", failed, len(args))
		}
		return nil
	},
}

func probe(parser imgtype.Parser, path string) (imgtype.ImageType, *source.Input, error) {
	in, err := source.Open(path)
	if err != nil {
		return imgtype.Unknown, nil, err
	}
	defer in.Close()
	typ, err := parser.Parse(in.Source().Stream)
	if err != nil {
		return imgtype.Unknown, nil, fmt.Errorf("failed to parse image type: %w", err)
	}
	return typ, in, nil
}
