// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import (
	"os"

	"github.com/go-kratos/kratos/v2/log"
)

// newDefaultLogger builds the stderr logger used whenever a caller does not
// inject one through Options.Logger, filtered to warnings and above so a
// compilation run over a few hundred mod files stays readable. This mirrors
// pe.New's fallback: log.NewStdLogger wrapped in log.NewFilter.
func newDefaultLogger() *log.Helper {
	base := log.NewStdLogger(os.Stderr)
	return log.NewHelper(log.NewFilter(base, log.FilterLevel(log.LevelWarn)))
}

// helperOrDefault returns l wrapped as a *log.Helper, or the package
// default logger if l is nil.
func helperOrDefault(l log.Logger) *log.Helper {
	if l == nil {
		return newDefaultLogger()
	}
	return log.NewHelper(l)
}
