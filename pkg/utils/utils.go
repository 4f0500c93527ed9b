package utils

import "strings"

// SplitName splits a file name into its basename and extension. The extension
// is whatever follows the last dot, without the dot. Names whose only dot is
// the leading one (".gitignore") and names ending in a dot have no extension.
func SplitName(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// JoinName reverses SplitName.
func JoinName(base, ext string) string {
	if ext == "" {
		return base
	}
	return base + "." + ext
}
