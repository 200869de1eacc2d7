// Package pathutil implements the pure path-derivation helpers that decide
// where a walk is rooted and where each discovered file lands at the
// destination: BasePath, DestPath, and OutputPath. A trailing slash is always
// stripped before further splicing. Path lengths are not checked against
// model.PathSizePlus.
package pathutil

import (
	"os"
	"path"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

func stripTrailingSlash(p string) string {
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	return p
}

// BasePath computes the root the walker is entering.
//
// original_source's get_base_path guards this with
// `strncmp(".", dir_name, PATHSIZE_PLUS == 0) && S_ISDIR(...)` before falling
// back to `S_ISDIR(...) && !wildcard`. `PATHSIZE_PLUS == 0` is a compile-time
// false, so the strncmp call always compares zero bytes and always returns
// 0 (equal) - which is falsy as the left operand of the `&&`, so that branch
// can never be taken and execution always falls through to the second
// condition. BasePath therefore implements only the reachable behavior: the
// path itself (trailing slashes stripped) when it's a directory and
// !wildcard, otherwise dirname(path).
func BasePath(p string, wildcard bool, isDir bool) string {
	if isDir && !wildcard {
		return stripTrailingSlash(p)
	}
	return stripTrailingSlash(path.Dir(p))
}

// DestPath computes the destination path for an entire source tree: when
// recursing, the source is a directory, the destination exists and is
// itself a directory, and exactly one source path is being copied, the
// source's basename is appended to the destination; otherwise the
// destination is used as given.
func DestPath(srcPath string, srcIsDir bool, destPath string, destExists, destIsDir bool, recurse bool, numPaths int) string {
	final := stripTrailingSlash(destPath)
	src := stripTrailingSlash(srcPath)
	if recurse && src != ".." && destExists && destIsDir && srcIsDir && numPaths == 1 {
		final = final + "/" + path.Base(src)
	}
	return final
}

// OutputPath computes the final per-file destination by splicing the
// portion of src.Path after base onto dest.Path. Non-recursive mode uses
// just the basename. When base == ".", the full source path is appended
// (the relative-path shortcut called out in spec.md §4.7).
func OutputPath(base, srcPath, destPath string, destIsDir, recurse bool) string {
	out := stripTrailingSlash(destPath)
	var slice string
	switch {
	case !recurse:
		slice = path.Base(srcPath)
	case base == ".":
		slice = srcPath
	case srcPath == base:
		slice = ""
	default:
		slice = strings.TrimPrefix(srcPath, base+"/")
	}
	if destIsDir && slice != "" {
		out = out + "/" + slice
	}
	return out
}

// MkPath walks thePath and creates every element that doesn't yet exist,
// "mkdir -p" semantics: an existing non-directory prefix fails with
// ENOTDIR, a second invocation against a fully-created path is a no-op.
func MkPath(thePath string, perm os.FileMode) error {
	clean := path.Clean(thePath)
	if clean == "/" || clean == "." {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	prefix := ""
	if strings.HasPrefix(clean, "/") {
		prefix = "/"
	}
	for _, part := range parts {
		if part == "" {
			continue
		}
		prefix += part
		if err := ensureDir(prefix, perm); err != nil {
			return err
		}
		prefix += "/"
	}
	return nil
}

func ensureDir(p string, perm os.FileMode) error {
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.Mkdir(p, perm); mkErr != nil && !os.IsExist(mkErr) {
				return errors.Wrapf(mkErr, "mkpath: create %s", p)
			}
			return nil
		}
		return errors.Wrapf(err, "mkpath: stat %s", p)
	}
	if !info.IsDir() {
		return errors.Wrapf(syscall.ENOTDIR, "mkpath: %s exists and is not a directory", p)
	}
	return nil
}
