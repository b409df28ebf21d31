// Package cache keeps what is needed to rebuild only changed elements:
// per element checksums of flattened styles, their classification against
// the previous build, and the locked checksum file of the base directory.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cn1css/cascade"
)

var ErrCacheCorruption = errors.New("checksum cache is corrupted")

// Canonical returns serialization of all element variants the checksum is
// computed over: "STYLE=...;UNSELECTED=...;SELECTED=...;PRESSED=...;DISABLED=...".
func Canonical(g *cascade.Graph, name string) (string, error) {
	var sb strings.Builder
	for i, v := range cascade.AllVariants {
		tbl, err := g.Flatten(name, v)
		if err != nil {
			return "", err
		}
		label := strings.ToUpper(v.String())
		if v == cascade.VariantDefault {
			label = "STYLE"
		}
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(label)
		sb.WriteByte('=')
		sb.WriteString(tbl.String())
	}
	return sb.String(), nil
}

// Checksum returns md5 of element canonical serialization in hex.
func Checksum(g *cascade.Graph, name string) (string, error) {
	s, err := Canonical(g, name)
	if err != nil {
		return "", err
	}
	return Sum(s), nil
}

// Sum returns md5 of s in hex.
func Sum(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Checksums computes checksums of every element of the graph.
func Checksums(g *cascade.Graph) (map[string]string, error) {
	res := make(map[string]string)
	for _, name := range g.Names() {
		sum, err := Checksum(g, name)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", name, err)
		}
		res[name] = sum
	}
	return res, nil
}

// FileChecksum returns md5 of file content in hex.
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("unable to read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
