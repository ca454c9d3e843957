package convert

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// headerSize is enough to see BOM, some leading white space and beginning of
// JSON value.
const headerSize = 512

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

var npfType = filetype.NewType("npf", "application/json")

func init() {
	filetype.AddMatcher(npfType, isNPFHeader)
}

// isNPFHeader checks beginning of UTF-8 data for something looking like JSON
// object or array. NPF sources are either posts (objects) or lists of
// posts or blocks (arrays).
func isNPFHeader(buf []byte) bool {
	buf = bytes.TrimLeft(buf, " \t\r\n")
	if len(buf) < 2 {
		return false
	}
	switch buf[0] {
	case '{':
		rest := bytes.TrimLeft(buf[1:], " \t\r\n")
		return len(rest) > 0 && (rest[0] == '"' || rest[0] == '}')
	case '[':
		rest := bytes.TrimLeft(buf[1:], " \t\r\n")
		return len(rest) > 0 && (rest[0] == '{' || rest[0] == ']')
	}
	return false
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF looks for byte order mark. UTF-32 LE must be checked before
// UTF-16 LE, their marks share first two bytes.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// decoder returns transformation producing UTF-8 (without BOM) from the
// source in specified encoding.
func decoder(enc srcEncoding) transform.Transformer {
	switch enc {
	case encUnknown:
		return transform.Nop
	case encUTF8:
		return unicode.UTF8BOM.NewDecoder()
	case encUTF16BigEndian:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	case encUTF16LittleEndian:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case encUTF32BigEndian:
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder()
	case encUTF32LittleEndian:
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder()
	}
	// this should never happen
	panic(fmt.Sprintf("unsupported source encoding %d", enc))
}

func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	t := decoder(enc)
	if enc == encUnknown {
		return r
	}
	return transform.NewReader(r, t)
}

// detectPost checks header of the source and reports whether it looks like
// NPF and in what encoding it is.
func detectPost(header []byte) (bool, srcEncoding) {
	enc := detectUTF(header)
	if enc != encUnknown {
		// header may end in the middle of a character, only what could be
		// converted is checked
		header, _, _ = transform.Bytes(decoder(enc), header)
	}
	return filetype.IsType(header, npfType), enc
}

func readHeader(r io.Reader) ([]byte, error) {
	header := make([]byte, headerSize)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return header[:n], nil
}

// isArchiveFile checks if file is a zip archive.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header, err := readHeader(f)
	if err != nil {
		return false, err
	}
	return filetype.Is(header, "zip"), nil
}

// isPostFile checks if file is NPF JSON and returns its encoding.
func isPostFile(path string) (bool, srcEncoding, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, encUnknown, err
	}
	defer f.Close()

	header, err := readHeader(f)
	if err != nil {
		return false, encUnknown, err
	}
	ok, enc := detectPost(header)
	return ok, enc, nil
}

// isPostInArchive checks if archived file is NPF JSON and returns its
// encoding.
func isPostInArchive(f *zip.File) (bool, srcEncoding, error) {
	r, err := f.Open()
	if err != nil {
		return false, encUnknown, err
	}
	defer r.Close()

	header, err := readHeader(r)
	if err != nil {
		return false, encUnknown, err
	}
	ok, enc := detectPost(header)
	return ok, enc, nil
}
