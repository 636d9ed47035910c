package config

// Version is the current quackc version.
var Version = "0.1.0"

// SourceFileExt is the canonical Quack source extension.
const SourceFileExt = ".quack"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".quack", ".qk"}

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode indicates if the program is running under `go test`.
// No package reads it; codegen's label names are deterministic without it.
var IsTestMode = false

// Root is the name of the superclass-of-everything sentinel used throughout
// the catalog and type lattice.
const Root = "$"

// Built-in class names.
const (
	ObjClassName     = "Obj"
	IntClassName     = "Int"
	BooleanClassName = "Boolean"
	StringClassName  = "String"
	NothingClassName = "Nothing"
)

// ConstructorMethodName is the synthesized name of every class's constructor.
const ConstructorMethodName = "$constructor"

// ThisSentinel is the receiver name substituted for the literal "this" in
// emitted opcodes (`load $`, `store_field $:f`). Calls on this name the
// current class instead (`call C:m`).
const ThisSentinel = "$"

// DefaultMainClassFallback is used when the source file has no usable stem
// (e.g. reading from stdin) and --main-class was not given.
const DefaultMainClassFallback = "Main"

// DefaultOutputDir and DefaultObjDir are the CLI's default directories.
const (
	DefaultOutputDir = "out"
	DefaultObjDir    = "OBJ"
)
