package domain

import "strings"

// builtinModules lists the runtime's core modules.
var builtinModules = map[string]bool{
	"assert": true, "async_hooks": true, "buffer": true, "child_process": true,
	"cluster": true, "console": true, "constants": true, "crypto": true,
	"dgram": true, "diagnostics_channel": true, "dns": true, "domain": true,
	"events": true, "fs": true, "http": true, "http2": true, "https": true,
	"inspector": true, "module": true, "net": true, "os": true, "path": true,
	"perf_hooks": true, "process": true, "punycode": true, "querystring": true,
	"readline": true, "repl": true, "stream": true, "string_decoder": true,
	"sys": true, "timers": true, "tls": true, "trace_events": true, "tty": true,
	"url": true, "util": true, "v8": true, "vm": true, "wasi": true,
	"worker_threads": true, "zlib": true,
}

// BuiltinPrefix marks an explicit core-module import.
const BuiltinPrefix = "node:"

// IsBuiltinModule reports whether key names a core module or one of its
// subpaths, such as "fs", "fs/promises" or "node:path".
func IsBuiltinModule(key string) bool {
	if rest, ok := strings.CutPrefix(key, BuiltinPrefix); ok {
		return rest != ""
	}
	name, _, _ := strings.Cut(key, "/")
	return builtinModules[name]
}
