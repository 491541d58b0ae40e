// Package fileutil provides the file operations the preprocessing goals are
// built from.
//
// # Purpose
//
// The fileutil package is designed for:
//   - Copying a source file to its destination, creating parent directories
//   - Removing a destination tree, with or without its root directory
//   - Deriving destination paths by swapping the file extension
//   - Reading and writing whole files as lines in a named text encoding
//
// # Main Components
//
// CopyFile - byte copy preserving the source permission bits.
//
// RemoveTree - deletes everything beneath a directory; includeSelf also
// deletes the directory itself. A missing path is not an error.
//
// NormalizeExtension / DestinationPath - extension handling. Extensions are
// accepted with or without the leading dot.
//
// TextCodec - named encoding looked up through golang.org/x/text/encoding/htmlindex.
// Lines are split on "\n", "\r\n" and "\r"; writes append the configured line
// ending after every line and go through filelock.AtomicWrite.
//
// # Usage Examples
//
// Rewriting a file in Shift_JIS:
//
//	codec, err := fileutil.LookupEncoding("shift_jis")
//	if err != nil {
//	    return err
//	}
//	lines, err := codec.ReadLines(src)
//	if err != nil {
//	    return err
//	}
//	return codec.WriteLines(dst, transform(lines), "\n", 0644)
//
// Destination path for a template file:
//
//	dst, err := fileutil.DestinationPath("src", "out", "src/a/Foo.jtmpl", "java")
//	// dst == "out/a/Foo.java"
package fileutil
