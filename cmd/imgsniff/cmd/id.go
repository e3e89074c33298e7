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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/twmb/murmur3"
)

func init() {
	rootCmd.AddCommand(idCmd)
	idCmd.Flags().Bool("hash", false, "Print the murmur3 hash of the ID (for cache keys)")
	viper.BindPFlag("id.hash", idCmd.Flags().Lookup("hash"))
}

// idCmd represents the id command
var idCmd = &cobra.Command{
	Use:           "id",
	Short:         "Print the decoder ID for the configured backends",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := setup()
		if err != nil {
			return err
		}
		dec, _, err := newDecoder(conf)
		if err != nil {
			return err
		}
		if viper.GetBool("id.hash") {
			fmt.Printf("%016x\n", murmur3.Sum64([]byte(dec.ID())))
			return nil
		}
		fmt.Println(dec.ID())
		return nil
	},
}
