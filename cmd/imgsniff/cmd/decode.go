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
	"image"
	"image/png"
	"os"
	"runtime"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/blacktop/imgsniff/internal/colors"
	"github.com/blacktop/imgsniff/internal/source"
	"github.com/blacktop/imgsniff/internal/utils"
	"github.com/blacktop/imgsniff/pkg/gifbitmap"
	"github.com/blacktop/imgsniff/pkg/gifdec"
)

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().IntP("width", "W", 0, "Downsample hint width (0 keeps the original size)")
	decodeCmd.Flags().IntP("height", "H", 0, "Downsample hint height (0 keeps the original size)")
	decodeCmd.Flags().IntP("concurrency", "j", 0, "Number of images decoded at once (default: number of CPUs)")
	decodeCmd.Flags().Bool("auto-orient", false, "Apply the EXIF orientation of JPEGs")
	decodeCmd.Flags().String("filter", "", "Downsampling filter (nearest, box, linear, catmullrom, lanczos)")
	decodeCmd.Flags().Int("max-frames", 0, "Ignore GIFs with more frames than this (0 for no limit)")
	decodeCmd.Flags().BoolP("preview", "p", false, "Display still images in the terminal")
	decodeCmd.Flags().StringP("output", "o", "", "Folder to write still images to as PNG")
	decodeCmd.MarkFlagDirname("output")
	viper.BindPFlag("decode.width", decodeCmd.Flags().Lookup("width"))
	viper.BindPFlag("decode.height", decodeCmd.Flags().Lookup("height"))
	viper.BindPFlag("decode.concurrency", decodeCmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("decode.auto-orient", decodeCmd.Flags().Lookup("auto-orient"))
	viper.BindPFlag("decode.filter", decodeCmd.Flags().Lookup("filter"))
	viper.BindPFlag("decode.max-frames", decodeCmd.Flags().Lookup("max-frames"))
	viper.BindPFlag("decode.preview", decodeCmd.Flags().Lookup("preview"))
	viper.BindPFlag("decode.output", decodeCmd.Flags().Lookup("output"))
}

type decoded struct {
	input *source.Input
	res   gifbitmap.Wrapper
	err   error
}

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:     "decode <FILE>...",
	Aliases: []string{"d"},
	Short:   "Decode images, animated GIFs included",
	Example: `  # Decode a compressed animation and a photo, downsampled to at least 320x240
  ❯ imgsniff decode anim.gif.zst photo.jpg -W 320 -H 240

  # Read from stdin and preview in the terminal
  ❯ cat photo.png | imgsniff decode - --preview`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := setup()
		if err != nil {
			return err
		}
		output := viper.GetString("decode.output")
		if output != "" {
			if err := os.MkdirAll(output, 0o750); err != nil {
				return fmt.Errorf("failed to create output folder %s: %w", output, err)
			}
		}

		dec, pool, err := newDecoder(conf)
		if err != nil {
			return err
		}
		log.WithField("id", dec.ID()).Debug("Created decoder")

		results := make([]decoded, len(args))
		var g errgroup.Group
		if conf.Decode.Concurrency > 0 {
			g.SetLimit(conf.Decode.Concurrency)
		} else {
			g.SetLimit(runtime.NumCPU())
		}
		var p *mpb.Progress
		var bar *mpb.Bar
		if len(args) > 1 && !viper.GetBool("verbose") && term.IsTerminal(int(os.Stderr.Fd())) {
			p = mpb.New(mpb.WithWidth(80), mpb.WithOutput(os.Stderr))
			bar = p.AddBar(int64(len(args)),
				mpb.PrependDecorators(
					decor.Name("decoding ", decor.WC{C: decor.DindentRight}),
					decor.CountersNoUnit("%d/%d"),
				),
				mpb.AppendDecorators(decor.Percentage()),
			)
		}
		for i, path := range args {
			g.Go(func() error {
				results[i] = decodeOne(dec, path, conf.Decode.Width, conf.Decode.Height)
				if bar != nil {
					bar.Increment()
				}
				return nil
			})
		}
		g.Wait()
		if p != nil {
			p.Wait()
		}

		var failed int
		for i, r := range results {
			if r.err != nil {
				log.WithError(r.err).Errorf("failed to decode %s", args[i])
				failed++
				continue
			}
			if err := report(r, output, conf.Decode.Preview); err != nil {
				log.WithError(err).Errorf("failed to export %s", args[i])
				failed++
			}
			if r.res != nil {
				r.res.Recycle()
			}
		}

		stats := pool.Stats()
		log.WithFields(log.Fields{
			"gets":   stats.Gets,
			"hits":   stats.Hits,
			"pooled": stats.Pooled,
		}).Debug("Scratch buffer pool")

		if failed > 0 {
			return fmt.Errorf("failed to decode %d of %d images", failed, len(args))
		}
		return nil
	},
}

func decodeOne(dec *gifbitmap.Decoder, path string, width, height int) decoded {
	in, err := source.Open(path)
	if err != nil {
		return decoded{err: err}
	}
	defer in.Close()
	res, err := dec.Decode(in.Source(), width, height)
	if err != nil {
		return decoded{input: in, err: err}
	}
	return decoded{input: in, res: res}
}

func report(r decoded, output string, preview bool) error {
	name := colors.Name(r.input.Name)
	if r.res == nil {
		fmt.Printf("%s: %s\n", name, colors.Error("not a decodable image"))
		return nil
	}
	switch w := r.res.(type) {
	case *gifbitmap.Animated:
		g := w.Gif().(*gifdec.Resource).GIF()
		fmt.Printf("%s: %s %s %d frames %s\n",
			name,
			colors.Type("animated gif"),
			colors.Dimensions(fmt.Sprintf("%dx%d", g.Config.Width, g.Config.Height)),
			len(g.Image),
			colors.Size(humanize.Bytes(uint64(w.Size()))),
		)
		utils.Indent(log.Debug, 2)(fmt.Sprintf("loop count %d, first delay %dms", g.LoopCount, g.Delay[0]*10))
	case *gifbitmap.Bitmap:
		img := w.Bitmap().Image()
		b := img.Bounds()
		fmt.Printf("%s: %s %s %s\n",
			name,
			colors.Type("bitmap"),
			colors.Dimensions(fmt.Sprintf("%dx%d", b.Dx(), b.Dy())),
			colors.Size(humanize.Bytes(uint64(w.Size()))),
		)
		if preview {
			if err := utils.DisplayImageInTerminal(img); err != nil {
				return err
			}
		}
		if output != "" {
			return writePNG(utils.OutputName(output, r.input.Name), img)
		}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	utils.Indent(log.Info, 2)(fmt.Sprintf("Created %s", path))
	return nil
}
