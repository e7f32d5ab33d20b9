// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import "strings"

// pathExtension returns the characters after the last '.' in fn, or "" if
// fn has no extension. A leading dot (a dotfile with no further '.') does
// not count as an extension, matching FileName::extension's dot_pos == 0
// guard.
func pathExtension(fn string) string {
	dot := strings.LastIndexByte(fn, '.')
	if dot <= 0 {
		return ""
	}
	return fn[dot+1:]
}

// pathStripExt removes the trailing extension (including the dot) from fn,
// if it has one.
func pathStripExt(fn string) string {
	dot := strings.LastIndexByte(fn, '.')
	if dot <= 0 {
		return fn
	}
	return fn[:dot]
}

// pathBaseName returns the final path component of fn.
func pathBaseName(fn string) string {
	slash := strings.LastIndexByte(fn, '/')
	if slash < 0 {
		return fn
	}
	return fn[slash+1:]
}

// pathBuild joins path and base with a single '/', stripping one leading
// '/' from base if path is non-empty (mirroring FileName::build, which
// treats a leading slash on the appended component as redundant rather
// than absolute).
func pathBuild(path, base string) string {
	if path == "" {
		return base
	}
	if base == "" {
		return path
	}
	if len(base) > 0 && base[0] == '/' {
		base = base[1:]
	}
	if path[len(path)-1] != '/' {
		path += "/"
	}
	return path + base
}

// pathBuildAll folds pathBuild left to right across parts.
func pathBuildAll(parts ...string) string {
	result := ""
	for _, p := range parts {
		result = pathBuild(result, p)
	}
	return result
}

// pathParent returns the parent directory of path, "" if path has no
// slash, or "/" if path is an absolute top-level entry.
func pathParent(path string) string {
	slash := strings.LastIndexByte(path, '/')
	switch {
	case slash < 0:
		return ""
	case slash == 0:
		return "/"
	default:
		return path[:slash]
	}
}

// pathIsParentOf reports whether child names a path inside (or equal to)
// the directory parent, by strict prefix-plus-boundary comparison: parent
// "a/b" is a parent of "a/b/c" but not of "a/bc".
func pathIsParentOf(parent, child string) bool {
	checkSize := len(parent)
	if checkSize == 0 {
		return len(child) == 0 || child[0] != '/'
	}
	if parent[checkSize-1] == '/' {
		checkSize--
	}
	if len(child) < checkSize {
		return false
	}
	if child[:checkSize] != parent[:checkSize] {
		return false
	}
	if len(child) > checkSize && child[checkSize] != '/' {
		return false
	}
	return true
}

// winSlashesToPosix rewrites every backslash in fn to a forward slash, the
// only path-separator normalization this compiler performs (mod archives
// built on Windows routinely use '\').
func winSlashesToPosix(fn string) string {
	return strings.ReplaceAll(fn, `\`, "/")
}
