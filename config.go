// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import "sort"

// ModConfig is one <MOD> entry of a configuration file: a mod's on-disk
// name under Config.ModDir, its load priority (lower loads first, higher
// wins any conflict), and whether it's active at all.
type ModConfig struct {
	Name     string
	Priority int
	Enabled  bool
}

// Config holds the settings loaded from a TLMODDER configuration file, plus
// the handful of defaults setDefaults in the original tool applied before
// any file was read.
type Config struct {
	ModDir           string
	OriginalGameData string
	OutputDir        string
	MergeClassMods   bool
	LookForNew       bool

	// Mods is sorted by (Priority, Name), matching the load order the
	// compiler applies its mods in (see the sort at the end of LoadConfig).
	Mods []ModConfig
}

// DefaultConfig returns a Config populated with the same defaults the
// original tool falls back to before a config file is loaded.
func DefaultConfig() *Config {
	return &Config{
		ModDir:           "./mods",
		OriginalGameData: "./original",
		OutputDir:        "./output",
		MergeClassMods:   false,
		LookForNew:       true,
	}
}

// LoadConfig parses a TLMODDER-rooted DAT text configuration file. Unknown
// attributes and subnodes are logged as warnings and ignored, matching the
// original tool's tolerant policy: a config written for a newer tlmodder
// version should still mostly work on an older one.
func LoadConfig(data []byte, opts *Options) (*Config, error) {
	helper := helperOrDefault(opts.logger())

	tree, _, err := LoadText(data, opts)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	if rootID, ok := tree.Interner.Find("TLMODDER"); !ok || tree.Root().Name() != rootID {
		helper.Warnf("config: root node should be called TLMODDER")
	}

	modDirID, _ := tree.Interner.Find("MOD_DIR")
	origDataID, _ := tree.Interner.Find("ORIGINAL_GAME_DATA")
	outputDirID, _ := tree.Interner.Find("OUTPUT_DIR")
	mergeClassModsID, _ := tree.Interner.Find("MERGE_CLASS_MODS")
	lookForNewID, _ := tree.Interner.Find("LOOK_FOR_NEW")

	for _, attr := range tree.Root().Attributes() {
		name := tree.Interner.Get(attr.Name)
		switch attr.Name {
		case modDirID:
			if attr.Value.Tag != TagString {
				helper.Warnf("config: attribute MOD_DIR should be of type STRING")
				continue
			}
			cfg.ModDir = tree.Interner.Get(attr.Value.StringID)
		case origDataID:
			if attr.Value.Tag != TagString {
				helper.Warnf("config: attribute ORIGINAL_GAME_DATA should be of type STRING")
				continue
			}
			cfg.OriginalGameData = tree.Interner.Get(attr.Value.StringID)
		case outputDirID:
			if attr.Value.Tag != TagString {
				helper.Warnf("config: attribute OUTPUT_DIR should be of type STRING")
				continue
			}
			cfg.OutputDir = tree.Interner.Get(attr.Value.StringID)
		case mergeClassModsID:
			if attr.Value.Tag != TagBool {
				helper.Warnf("config: attribute MERGE_CLASS_MODS should be of type BOOL")
				continue
			}
			cfg.MergeClassMods = attr.Value.BoolValue()
		case lookForNewID:
			if attr.Value.Tag != TagBool {
				helper.Warnf("config: attribute LOOK_FOR_NEW should be of type BOOL")
				continue
			}
			cfg.LookForNew = attr.Value.BoolValue()
		default:
			helper.Warnf("config: ignoring unknown attribute %s", name)
		}
	}

	modID, _ := tree.Interner.Find("MOD")
	priorityID, _ := tree.Interner.Find("PRIORITY")
	nameID, _ := tree.Interner.Find("NAME")
	enabledID, _ := tree.Interner.Find("ENABLED")

	seen := make(map[string]bool)

	for _, modNode := range tree.Root().Subnodes() {
		if modNode.Name() != modID {
			helper.Warnf("config: skipping unknown node %s", modNode.NameString())
			continue
		}

		mc := ModConfig{Priority: 0, Enabled: true}

		for _, attr := range modNode.Attributes() {
			switch attr.Name {
			case priorityID:
				if attr.Value.Tag != TagInt {
					helper.Warnf("config: attribute PRIORITY should be of type INTEGER")
					continue
				}
				mc.Priority = int(attr.Value.I32)
			case enabledID:
				if attr.Value.Tag != TagBool {
					helper.Warnf("config: attribute ENABLED should be of type BOOL")
					continue
				}
				mc.Enabled = attr.Value.BoolValue()
			case nameID:
				if attr.Value.Tag != TagString {
					helper.Warnf("config: attribute NAME should be of type STRING")
					continue
				}
				mc.Name = tree.Interner.Get(attr.Value.StringID)
			default:
				helper.Warnf("config: ignoring unknown MOD attribute %s", tree.Interner.Get(attr.Name))
			}
		}

		if mc.Name == "" {
			continue
		}
		if seen[mc.Name] {
			helper.Warnf("config: mod %s listed more than once, using first settings", mc.Name)
			continue
		}
		seen[mc.Name] = true
		cfg.Mods = append(cfg.Mods, mc)
	}

	sort.Slice(cfg.Mods, func(i, j int) bool {
		if cfg.Mods[i].Priority != cfg.Mods[j].Priority {
			return cfg.Mods[i].Priority < cfg.Mods[j].Priority
		}
		return cfg.Mods[i].Name < cfg.Mods[j].Name
	})

	return cfg, nil
}
