package convert

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"linux-aurora/internal/utils"

	"github.com/pierrec/lz4/v4"
)

// BundleExt is the file extension of scene bundles.
const BundleExt = ".pkg"

// lz4Suffix marks bundle entries stored as LZ4 frames. ReadFile strips it
// and returns the decompressed bytes.
const lz4Suffix = ".lz4"

// maxBundleString bounds version and entry name lengths so a corrupt header
// cannot request a huge allocation.
const maxBundleString = 4096

type bundleEntry struct {
	Name   string
	Offset uint32
	Size   uint32
}

// Bundle is a read-only view of a scene package: a length-prefixed version
// string, an entry table and the concatenated entry data.
type Bundle struct {
	Version string

	r       io.ReaderAt
	closer  io.Closer
	data    int64
	entries []bundleEntry
}

func readBundleString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n > maxBundleString {
		return "", fmt.Errorf("bundle string of %d bytes", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// OpenBundle opens a bundle on disk. Entries are read in place.
func OpenBundle(p string) (*Bundle, error) {
	utils.Debug("Bundle: opening %s", p)
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	b, err := NewBundle(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open bundle %s: %w", p, err)
	}
	b.closer = f
	return b, nil
}

// NewBundle parses the bundle header from r, which holds size bytes.
func NewBundle(r io.ReaderAt, size int64) (*Bundle, error) {
	sr := io.NewSectionReader(r, 0, size)

	version, err := readBundleString(sr)
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}

	var count uint32
	if err := binary.Read(sr, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read entry count: %w", err)
	}
	utils.Debug("Bundle: version %s, %d entries", version, count)

	entries := make([]bundleEntry, 0, min(count, 1024))
	for i := range count {
		name, err := readBundleString(sr)
		if err != nil {
			return nil, fmt.Errorf("read entry %d: %w", i, err)
		}
		var loc [2]uint32
		if err := binary.Read(sr, binary.LittleEndian, &loc); err != nil {
			return nil, fmt.Errorf("read entry %s: %w", name, err)
		}
		entries = append(entries, bundleEntry{Name: cleanEntryName(name), Offset: loc[0], Size: loc[1]})
	}

	data, _ := sr.Seek(0, io.SeekCurrent)
	for _, e := range entries {
		if data+int64(e.Offset)+int64(e.Size) > size {
			return nil, fmt.Errorf("entry %s runs past the end of the bundle", e.Name)
		}
	}

	return &Bundle{Version: version, r: r, data: data, entries: entries}, nil
}

func cleanEntryName(name string) string {
	return strings.TrimPrefix(path.Clean(strings.ReplaceAll(name, "\\", "/")), "/")
}

// Names lists the entries in table order, with any LZ4 suffix removed.
func (b *Bundle) Names() []string {
	names := make([]string, len(b.entries))
	for i, e := range b.entries {
		names[i] = strings.TrimSuffix(e.Name, lz4Suffix)
	}
	return names
}

func (b *Bundle) lookup(name string) (bundleEntry, bool, bool) {
	name = cleanEntryName(name)
	for _, e := range b.entries {
		switch e.Name {
		case name:
			return e, false, true
		case name + lz4Suffix:
			return e, true, true
		}
	}
	return bundleEntry{}, false, false
}

// Has reports whether the bundle holds name.
func (b *Bundle) Has(name string) bool {
	_, _, ok := b.lookup(name)
	return ok
}

// ReadFile returns the contents of name. A missing entry yields an error
// matching fs.ErrNotExist.
func (b *Bundle) ReadFile(name string) ([]byte, error) {
	e, packed, ok := b.lookup(name)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	section := io.NewSectionReader(b.r, b.data+int64(e.Offset), int64(e.Size))
	if !packed {
		buf := make([]byte, e.Size)
		if _, err := io.ReadFull(section, buf); err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return buf, nil
	}

	var out bytes.Buffer
	if _, err := io.Copy(&out, lz4.NewReader(section)); err != nil {
		return nil, fmt.Errorf("decompress %s: %w", name, err)
	}
	return out.Bytes(), nil
}

// Extract writes every entry below dir, decompressing LZ4 entries.
func (b *Bundle) Extract(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	for i, name := range b.Names() {
		dest := filepath.Join(root, filepath.FromSlash(name))
		if dest != root && !strings.HasPrefix(dest, root+string(filepath.Separator)) {
			return fmt.Errorf("entry %s escapes %s", name, dir)
		}
		data, err := b.ReadFile(name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return err
		}
		if i%10 == 0 || i == len(b.entries)-1 {
			utils.Debug("Bundle: extracted %d/%d: %s", i+1, len(b.entries), name)
		}
	}
	return nil
}

// Close releases the underlying file for bundles from OpenBundle.
func (b *Bundle) Close() error {
	if b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.closer = nil
	return err
}

// BundleFile is one entry handed to WriteBundle.
type BundleFile struct {
	Name string
	Data []byte
	// Compress stores the entry as an LZ4 frame.
	Compress bool
}

// ErrDuplicateEntry is returned by WriteBundle when two files share a name.
var ErrDuplicateEntry = errors.New("duplicate bundle entry")

// WriteBundle packs files into the bundle layout NewBundle reads.
func WriteBundle(w io.Writer, version string, files []BundleFile) error {
	var body bytes.Buffer
	entries := make([]bundleEntry, 0, len(files))
	var seen []string

	for _, f := range files {
		name := cleanEntryName(f.Name)
		if slices.Contains(seen, name) {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
		}
		seen = append(seen, name)

		offset := body.Len()
		if f.Compress {
			zw := lz4.NewWriter(&body)
			if _, err := zw.Write(f.Data); err != nil {
				return err
			}
			if err := zw.Close(); err != nil {
				return err
			}
			name += lz4Suffix
		} else {
			body.Write(f.Data)
		}
		entries = append(entries, bundleEntry{Name: name, Offset: uint32(offset), Size: uint32(body.Len() - offset)})
	}

	var head bytes.Buffer
	writeString := func(s string) {
		binary.Write(&head, binary.LittleEndian, uint32(len(s)))
		head.WriteString(s)
	}
	writeString(version)
	binary.Write(&head, binary.LittleEndian, uint32(len(entries)))
	for _, e := range entries {
		writeString(e.Name)
		binary.Write(&head, binary.LittleEndian, [2]uint32{e.Offset, e.Size})
	}

	if _, err := w.Write(head.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}
