// Package providers registers all built-in AI providers via side effects.
// Import it for its init side effects from binaries that construct clients.
package providers

import (
	_ "github.com/quorumlabs/peerpanel/src/ai/anthropic"
	_ "github.com/quorumlabs/peerpanel/src/ai/gemini"
	_ "github.com/quorumlabs/peerpanel/src/ai/openai"
)
