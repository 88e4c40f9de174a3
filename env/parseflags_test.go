package env

import "testing"

// TestParseFlags_Classify verifies that tokenized flags land under the
// construction variables a GNU-style toolchain reads them from.
func TestParseFlags_Classify(t *testing.T) {
	tests := []struct {
		name  string
		flags string
		want  map[string]string
	}{
		{
			name:  "include paths attached and detached",
			flags: "-I/inc -I /other",
			want:  map[string]string{"CPPPATH": "[/inc, /other]"},
		},
		{
			name:  "library paths and names",
			flags: "-L/lib -lm -l z",
			want: map[string]string{
				"LIBPATH": "[/lib]",
				"LIBS":    "[m, z]",
			},
		},
		{
			name:  "bare words become library file nodes",
			flags: "libfoo.a",
			want:  map[string]string{"LIBS": "[libfoo.a]"},
		},
		{
			name:  "dylib_file keeps its argument in the link line",
			flags: "-dylib_file a.dylib:b.dylib",
			want:  map[string]string{"LINKFLAGS": "[-dylib_file, a.dylib:b.dylib]"},
		},
		{
			name:  "assembler pass-through also reaches the compiler",
			flags: "-Wa,-alh",
			want: map[string]string{
				"ASFLAGS": "[-alh]",
				"CCFLAGS": "[-Wa,-alh]",
			},
		},
		{
			name:  "linker rpath spellings",
			flags: "-Wl,-rpath=/r1 -Wl,-R,/r2 -Wl,-R/r3 -Wl,-Map=out.map",
			want: map[string]string{
				"RPATH":     "[/r1, /r2, /r3]",
				"LINKFLAGS": "[-Wl,-Map=out.map]",
			},
		},
		{
			name:  "preprocessor pass-through",
			flags: "-Wp,-MD",
			want:  map[string]string{"CPPFLAGS": "[-Wp,-MD]"},
		},
		{
			name:  "definitions with and without values",
			flags: "-DNDEBUG -DFOO=2 -D BAR=3",
			want:  map[string]string{"CPPDEFINES": "[NDEBUG, (FOO, 2), (BAR, 3)]"},
		},
		{
			name:  "frameworks",
			flags: "-framework Cocoa -frameworkdir=/fw -F/fw2",
			want: map[string]string{
				"FRAMEWORKS":    "[Cocoa]",
				"FRAMEWORKPATH": "[/fw, /fw2]",
			},
		},
		{
			name:  "compile and link flags",
			flags: "-pthread -fsanitize=address",
			want: map[string]string{
				"CCFLAGS":   "[-pthread, -fsanitize=address]",
				"LINKFLAGS": "[-pthread, -fsanitize=address]",
			},
		},
		{
			name:  "link-only flags",
			flags: "-mwindows",
			want:  map[string]string{"LINKFLAGS": "[-mwindows]"},
		},
		{
			name:  "standard selection routes by language",
			flags: "-std=c++17 -std=c99",
			want: map[string]string{
				"CXXFLAGS": "[-std=c++17]",
				"CFLAGS":   "[-std=c99]",
			},
		},
		{
			name:  "plus options reach compiler and linker",
			flags: "+DD64",
			want: map[string]string{
				"CCFLAGS":   "[+DD64]",
				"LINKFLAGS": "[+DD64]",
			},
		},
		{
			name:  "include directive pairs with a file node",
			flags: "-include stdio.h",
			want:  map[string]string{"CCFLAGS": "[(-include, stdio.h)]"},
		},
		{
			name:  "sysroot pairs reach compiler and linker",
			flags: "-isysroot /sdk -arch arm64",
			want: map[string]string{
				"CCFLAGS":   "[(-isysroot, /sdk), (-arch, arm64)]",
				"LINKFLAGS": "[(-isysroot, /sdk), (-arch, arm64)]",
			},
		},
		{
			name:  "header search directives stay with the compiler",
			flags: "-isystem /sys --param max-inline-insns=5",
			want:  map[string]string{"CCFLAGS": "[(-isystem, /sys), (--param, max-inline-insns=5)]"},
		},
		{
			name:  "quoted arguments survive tokenizing",
			flags: `-DMSG='hello world'`,
			want:  map[string]string{"CPPDEFINES": "[(MSG, hello world)]"},
		},
		{
			name:  "unrecognized options default to CCFLAGS",
			flags: "-fno-exceptions",
			want:  map[string]string{"CCFLAGS": "[-fno-exceptions]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)

			got, err := e.ParseFlags(tt.flags)
			if err != nil {
				t.Fatalf("ParseFlags(%q) error: %v", tt.flags, err)
			}

			if len(got) != len(flagVars) {
				t.Fatalf("result has %d keys, want %d", len(got), len(flagVars))
			}

			for _, key := range flagVars {
				want, expected := tt.want[key]
				if !expected {
					want = "[]"
				}

				if s := got[key].String(); s != want {
					t.Errorf("%s = %s, want %s", key, s, want)
				}
			}
		})
	}
}

func TestParseFlags_Arguments(t *testing.T) {
	e := newTestEnv(t)

	got, err := e.ParseFlags("-I/a", []string{"-L/b"}, nil, "")
	if err != nil {
		t.Fatalf("ParseFlags() error: %v", err)
	}

	if s := got["CPPPATH"].String(); s != "[/a]" {
		t.Errorf("CPPPATH = %s, want [/a]", s)
	}

	if s := got["LIBPATH"].String(); s != "[/b]" {
		t.Errorf("LIBPATH = %s, want [/b]", s)
	}
}

func TestParseFlags_CommandSubstitution(t *testing.T) {
	e := newTestEnv(t)

	got, err := e.ParseFlags("!echo -I/gen -lgen")
	if err != nil {
		t.Fatalf("ParseFlags() error: %v", err)
	}

	if s := got["CPPPATH"].String(); s != "[/gen]" {
		t.Errorf("CPPPATH = %s, want [/gen]", s)
	}

	if s := got["LIBS"].String(); s != "[gen]" {
		t.Errorf("LIBS = %s, want [gen]", s)
	}
}
