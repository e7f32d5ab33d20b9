// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/torchmodder/tlmc"
)

func main() {
	var toBinary, toText bool

	rootCmd := &cobra.Command{
		Use:   "tlmcconv <input> <output>",
		Short: "Converts a single ADM asset file between its text and binary forms",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if toBinary == toText {
				return fmt.Errorf("exactly one of --to-binary or --to-text must be set")
			}
			return convert(args[0], args[1], toBinary)
		},
	}
	rootCmd.Flags().BoolVar(&toBinary, "to-binary", false, "convert DAT text to binary .adm")
	rootCmd.Flags().BoolVar(&toText, "to-text", false, "convert binary .adm to DAT text")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func convert(inPath, outPath string, toBinary bool) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	opts := &tlmc.Options{}

	var tree *tlmc.Tree
	if toBinary {
		tree, _, err = tlmc.LoadText(data, opts)
	} else {
		tree, err = tlmc.LoadBinary(data, opts)
	}
	if err != nil {
		return err
	}

	var out []byte
	if toBinary {
		out = tlmc.DumpBinary(tree)
	} else {
		out = tlmc.DumpText(tree)
	}

	return os.WriteFile(outPath, out, 0640)
}
