package exif

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

const (
	tagMake              = 0x010f
	tagDateTime          = 0x0132
	tagExifIFDPointer    = 0x8769
	tagDateTimeOriginal  = 0x9003
	tagDateTimeDigitized = 0x9004

	typeASCII = 2
	typeLong  = 4
)

type asciiTag struct {
	id    uint16
	value string
}

// buildTIFF lays out a little-endian TIFF: header, IFD0, an optional Exif
// sub-IFD, then the string values. Tags must be given in ascending id order.
func buildTIFF(ifd0, exifIFD []asciiTag) []byte {
	le := binary.LittleEndian
	ifdSize := func(entries int) int { return 2 + 12*entries + 4 }

	ifd0Entries := len(ifd0)
	if len(exifIFD) > 0 {
		ifd0Entries++
	}
	exifOffset := 8 + ifdSize(ifd0Entries)
	dataOffset := exifOffset
	if len(exifIFD) > 0 {
		dataOffset += ifdSize(len(exifIFD))
	}

	head := make([]byte, dataOffset)
	copy(head, "II")
	le.PutUint16(head[2:], 42)
	le.PutUint32(head[4:], 8)

	var data []byte
	writeIFD := func(at int, tags []asciiTag, subIFD uint32) {
		count := len(tags)
		if subIFD != 0 {
			count++
		}
		le.PutUint16(head[at:], uint16(count))
		pos := at + 2
		for _, tag := range tags {
			value := append([]byte(tag.value), 0)
			le.PutUint16(head[pos:], tag.id)
			le.PutUint16(head[pos+2:], typeASCII)
			le.PutUint32(head[pos+4:], uint32(len(value)))
			le.PutUint32(head[pos+8:], uint32(dataOffset+len(data)))
			data = append(data, value...)
			pos += 12
		}
		if subIFD != 0 {
			le.PutUint16(head[pos:], tagExifIFDPointer)
			le.PutUint16(head[pos+2:], typeLong)
			le.PutUint32(head[pos+4:], 1)
			le.PutUint32(head[pos+8:], subIFD)
			pos += 12
		}
		le.PutUint32(head[pos:], 0)
	}

	var pointer uint32
	if len(exifIFD) > 0 {
		pointer = uint32(exifOffset)
	}
	writeIFD(8, ifd0, pointer)
	if len(exifIFD) > 0 {
		writeIFD(exifOffset, exifIFD, 0)
	}
	return append(head, data...)
}

// wrapJPEG embeds a TIFF block as the APP1 Exif segment of an empty JPEG.
func wrapJPEG(tiff []byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{0xff, 0xd8, 0xff, 0xe1})
	segment := append([]byte("Exif\x00\x00"), tiff...)
	binary.Write(&b, binary.BigEndian, uint16(len(segment)+2))
	b.Write(segment)
	b.Write([]byte{0xff, 0xd9})
	return b.Bytes()
}

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
