package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about how a source file was loaded.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (stdin, test, extension).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	FileTranscodedUTF16
)

// File captures metadata and content for a single source file.
// Content is normalized to UTF-8 with LF line endings before storage.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Flags   FileFlags
}

// Pos is a line-granular position inside a file. Line is 1-based.
type Pos struct {
	File FileID
	Line uint32
}
