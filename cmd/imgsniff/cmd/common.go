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

	"github.com/apex/log"
	"github.com/spf13/viper"

	"github.com/blacktop/imgsniff/internal/colors"
	"github.com/blacktop/imgsniff/internal/config"
	"github.com/blacktop/imgsniff/pkg/bitmap"
	"github.com/blacktop/imgsniff/pkg/bytepool"
	"github.com/blacktop/imgsniff/pkg/gifbitmap"
	"github.com/blacktop/imgsniff/pkg/gifdec"
	"github.com/blacktop/imgsniff/pkg/imgtype"
)

// setup applies the global flags and loads the configuration
func setup() (*config.Config, error) {
	if viper.GetBool("verbose") {
		log.SetLevel(log.DebugLevel)
	}
	var forceColor *bool
	if viper.IsSet("color") {
		on := viper.GetBool("color")
		forceColor = &on
	}
	if viper.GetBool("no-color") {
		off := false
		forceColor = &off
	}
	colors.Init(forceColor)

	conf, err := config.Load()
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"prober":      conf.Decode.Prober,
		"filter":      conf.Decode.Filter,
		"concurrency": conf.Decode.Concurrency,
	}).Debug("Loaded config")
	return conf, nil
}

// newDecoder builds the dispatcher shared by every input of a command
func newDecoder(conf *config.Config) (*gifbitmap.Decoder, *bytepool.Pool, error) {
	parser, err := imgtype.ParserFor(conf.Decode.Prober)
	if err != nil {
		return nil, nil, err
	}
	bmp, err := bitmap.NewDecoder(&bitmap.Config{
		AutoOrient: conf.Decode.AutoOrient,
		Filter:     conf.Decode.Filter,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create bitmap decoder: %w", err)
	}
	pool := bytepool.New(conf.Pool.BufferSize, conf.Pool.MaxSize)
	dec := gifbitmap.NewDecoder(
		bmp,
		gifdec.NewDecoder(&gifdec.Config{MaxFrames: conf.Decode.MaxFrames}),
		gifbitmap.WithParser(parser),
		gifbitmap.WithPool(pool),
	)
	return dec, pool, nil
}
