// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// These three fragments bracket the generated class/pet button windows:
// everything up to the class buttons, everything between the class and
// pet buttons, and everything after the pet buttons. Torchlight 2 reads
// this file as a CEGUI layout, so the two insertion points simply need to
// sit inside the same parent window as the buttons they're replacing.
const (
	characterCreateLayoutHeader = `<?xml version="1.0" ?>
<GUILayout>
    <Window Type="DefaultWindow" Name="Root/CharacterCreate">
        <Window Type="GuiLook/StaticImage" Name="Root/CharacterCreate/ClassList">
`
	characterCreateLayoutMiddle = `        </Window>
        <Window Type="GuiLook/StaticImage" Name="Root/CharacterCreate/PetList">
`
	characterCreateLayoutFooter = `        </Window>
    </Window>
</GUILayout>
`
)

// excludedFromCharacterCreate are classes the live game always special-cases
// outside the normal class-select button grid (bonus/pre-order classes).
var excludedFromCharacterCreate = map[string]bool{
	"DESTROYER":  true,
	"VANQUISHER": true,
	"ALCHEMIST":  true,
}

// createCharacterCreateLayout regenerates media/UI/charactercreate.layout
// from the class/pet registries built up during Compile, laying out one
// button per class (skipping the bonus classes) and one per discovered
// pet, each positioned below the last.
func (c *Compiler) createCharacterCreateLayout() error {
	uiDir := pathBuild(c.OutputDir, "media/UI")
	if err := os.MkdirAll(uiDir, 0750); err != nil {
		return ErrOutputDirFailed
	}

	var b strings.Builder
	b.WriteString(characterCreateLayoutHeader)

	names := make([]string, 0, len(c.classes))
	for name := range c.classes {
		names = append(names, name)
	}
	sort.Strings(names)

	id := 3
	toppos := 233
	for _, name := range names {
		if excludedFromCharacterCreate[upperFoldASCII(name)] {
			continue
		}
		displayName := c.classes[name]

		fmt.Fprintf(&b, "<Window Type=\"GuiLook/StandardButton\" Name=\"%s\">", name)
		fmt.Fprintf(&b, "<Property Name=\"UnifiedPosition\" Value=\"{{0,5},{0,%d}}\" />", toppos)
		b.WriteString(`<Property Name="UnifiedSize" Value="{{0,132},{0,28}}" />`)
		fmt.Fprintf(&b, "<Property Name=\"ID\" Value=\"%d\" />", id)
		fmt.Fprintf(&b, "<Property Name=\"Text\" Value=\"%s\" />", displayName)
		fmt.Fprintf(&b, "<Property Name=\"Tooltip\" Value=\"Select %s\" />", displayName)
		b.WriteString(`<Property Name="onClick" Value="guiSelect1"/>`)
		b.WriteString("</Window>\n")

		id++
		toppos += 30
	}

	b.WriteString(characterCreateLayoutMiddle)

	petNames := make([]string, 0, len(c.pets))
	for name := range c.pets {
		petNames = append(petNames, name)
	}
	sort.Strings(petNames)

	toppos = 45
	for _, name := range petNames {
		displayName := c.pets[name]

		fmt.Fprintf(&b, "<Window Type=\"GuiLook/StandardButton\" Name=\"%s\">", name)
		fmt.Fprintf(&b, "<Property Name=\"UnifiedPosition\" Value=\"{{0,0},{0,%d}}\" />", toppos)
		b.WriteString(`<Property Name="UnifiedSize" Value="{{0,140},{0,28}}" />`)
		fmt.Fprintf(&b, "<Property Name=\"Text\" Value=\"%s\"/>", displayName)
		b.WriteString(`<Property Name="onClick" Value="guiPet1"/>`)
		b.WriteString("</Window>\n")

		toppos += 30
	}

	b.WriteString(characterCreateLayoutFooter)

	layoutPath := pathBuild(uiDir, "charactercreate.layout")
	if existing, ok := c.Files.LookupFile("MEDIA/UI/charactercreate.layout"); ok && len(existing.Paths) > 0 {
		layoutPath = pathBuild(uiDir, existing.Name)
	}

	return os.WriteFile(layoutPath, []byte(b.String()), 0640)
}
