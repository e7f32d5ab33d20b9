// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/torchmodder/tlmc"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "tlmc",
		Short: "Compiles a Torchlight 2 mod stack into a loadable asset tree",
		Long:  "tlmc merges the original game data with every enabled mod, in priority order, and compiles the result into an output directory ready to be packed into pak.zip.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "./tlmodder.cfg", "path to the configuration file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	opts := &tlmc.Options{}

	cfg := tlmc.DefaultConfig()
	if data, err := os.ReadFile(configPath); err != nil {
		fmt.Fprintln(os.Stderr, "WARNING: could not open configuration file, using defaults.")
	} else if loaded, err := tlmc.LoadConfig(data, opts); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: could not load configuration file: %s, using defaults.\n", err)
	} else {
		cfg = loaded
	}

	fmt.Fprintln(os.Stderr, "Loading original game data")
	files := tlmc.NewVirtualDir("")
	warnings := &tlmc.WarningList{}
	if err := files.LoadFromDir(cfg.OriginalGameData, warnings); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: could not load original game data: %s\n", err)
		return fmt.Errorf("%w: %v", tlmc.ErrOriginalDataDirFailed, err)
	}

	mods := cfg.Mods
	if cfg.LookForNew {
		mods = addUnlistedMods(cfg, mods)
		sort.Slice(mods, func(i, j int) bool {
			if mods[i].Priority != mods[j].Priority {
				return mods[i].Priority < mods[j].Priority
			}
			return mods[i].Name < mods[j].Name
		})
	}

	hadWarning := warnings.HadWarnings()

	for _, mod := range mods {
		if !mod.Enabled {
			continue
		}

		fmt.Fprintf(os.Stderr, "Loading mod %s\n", mod.Name)

		modDir := tlmc.NewVirtualDir(mod.Name)
		modWarnings := &tlmc.WarningList{}
		modPath := modDirPath(cfg.ModDir, mod.Name)

		if err := modDir.LoadFromDir(modPath, modWarnings); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: could not load mod %s: %s\n", mod.Name, err)
			fmt.Fprintf(os.Stderr, "WARNING: mod %s skipped.\n", mod.Name)
			hadWarning = true
			continue
		}
		if modWarnings.HadWarnings() {
			hadWarning = true
		}

		files.Merge(modDir)
	}

	if hadWarning {
		fmt.Fprint(os.Stderr, "There were some warnings while loading mods. Continue and risk possible game crashes and save data corruption? [y/N]: ")

		reader := bufio.NewReader(os.Stdin)
		c, _ := reader.ReadByte()
		fmt.Fprintln(os.Stderr)

		if c != 'y' && c != 'Y' {
			return tlmc.ErrConfirmationDeclined
		}
	}

	compiler := tlmc.NewCompiler(files, cfg.OutputDir, opts)
	compiler.MergeClasses = cfg.MergeClassMods

	if err := compiler.Compile(); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Done! Now pack the 'media' directory into a ZIP archive called 'pak.zip' and replace the one in the game directory.")
	fmt.Fprintln(os.Stderr, "Note that this program might contain bugs, don't forget to back up your save files!")

	return nil
}

func modDirPath(modDir, name string) string {
	return filepath.Join(modDir, name)
}

// addUnlistedMods scans cfg.ModDir for directories not already named in
// cfg.Mods and appends them, enabled, at the lowest possible priority, so
// a freshly dropped-in mod is picked up without editing the config file
// but never silently outranks a mod the operator deliberately ordered.
func addUnlistedMods(cfg *tlmc.Config, mods []tlmc.ModConfig) []tlmc.ModConfig {
	listed := make(map[string]bool, len(mods))
	for _, m := range mods {
		listed[m.Name] = true
	}

	entries, err := os.ReadDir(cfg.ModDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: cannot open mod directory: %s\n", err)
		return mods
	}

	for _, entry := range entries {
		if !entry.IsDir() || listed[entry.Name()] {
			continue
		}
		mods = append(mods, tlmc.ModConfig{
			Name:     entry.Name(),
			Priority: math.MinInt32,
			Enabled:  true,
		})
	}
	return mods
}
