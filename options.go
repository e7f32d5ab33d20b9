// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import "github.com/go-kratos/kratos/v2/log"

// Options configures the text and binary tree loaders. A nil *Options is
// always valid and behaves as the zero value, following the teacher's
// "New(name, opts)" convention of treating configuration as optional.
type Options struct {
	// Logger receives load-time diagnostics. Defaults to a stderr logger
	// filtered to warnings and above.
	Logger log.Logger

	// IgnoreWrongNodeClosed downgrades a `[/NAME]` line that disagrees
	// with the open section from a fatal error to a warning. Defaults to
	// false: a handful of mods out there open one section and close a
	// different one by mistake, and silently tolerating that has bitten
	// modders who expected a loud failure.
	IgnoreWrongNodeClosed bool
}

func (o *Options) ignoreWrongNodeClosed() bool {
	return o != nil && o.IgnoreWrongNodeClosed
}

func (o *Options) logger() log.Logger {
	if o == nil {
		return nil
	}
	return o.Logger
}
