package dispatch

// Returns the built-in language table.
func Defaults() []Entry {
	sub := func(lang, help string, command ...string) Entry {
		return Entry{Lang: lang, Kind: KindSubprocess, Help: help, Command: command}
	}

	return []Entry{
		{
			Lang:     "py",
			Kind:     KindEmbedded,
			Help:     "Python (hosted interpreter)",
			Bridge:   NewPythonBridge("python3"),
			Fallback: []string{"python3"},
		},
		sub("jl", "Julia", "julia"),
		sub("go", "Go (go run)", "go", "run"),
		sub("js", "JavaScript (node)", "node"),
		sub("ts", "TypeScript (deno run)", "deno", "run"),
		sub("lua", "Lua", "lua"),
		sub("r", "R (Rscript)", "Rscript"),
		sub("mojo", "Mojo", "mojo"),
		sub("zig", "Zig (zig run)", "zig", "run"),
		sub("wasm", "WebAssembly (wasmtime run)", "wasmtime", "run"),
		sub("hs", "Haskell (runghc)", "runghc"),
		sub("swift", "Swift", "swift"),
		sub("kt", "Kotlin script (kotlinc -script)", "kotlinc", "-script"),
		sub("nim", "Nim (nim r)", "nim", "r"),
		{
			Lang:  "fort",
			Kind:  KindCompile,
			Help:  "Fortran (gfortran, compiled and cached)",
			Build: []string{"gfortran", "{src}", "-o", "{out}"},
			Run:   []string{"{out}"},
		},
		{
			Lang:  "ktn",
			Kind:  KindCompile,
			Help:  "Kotlin (kotlinc to jar, java -jar)",
			Build: []string{"kotlinc", "{src}", "-include-runtime", "-d", "{out}"},
			Run:   []string{"java", "-jar", "{out}"},
			Ext:   ".jar",
		},
		{
			Lang:  "jlc",
			Kind:  KindCompile,
			Help:  "Julia ahead-of-time (juliac)",
			Build: []string{"juliac", "--output-exe", "{out}", "{src}"},
			Run:   []string{"{out}"},
		},
		{
			Lang:     "cpp",
			Kind:     KindEmbedded,
			Help:     "C/C++ shared library: cpp <lib> <symbol> [args...]",
			Bridge:   FFIBridge{},
			Fallback: []string{placeholderSelf, "cpp"},
		},
	}
}
