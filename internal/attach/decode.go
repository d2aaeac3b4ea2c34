// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package attach

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// errBinary marks content that decoded under no charset without control
// garbage; it is almost certainly not text.
var errBinary = errors.New("file does not look like text")

// fallbackEncodings are tried in order when content is not valid UTF-8.
// The order matters: GBK subsumes GB2312 and must come before Big5, and
// Latin-1 accepts any byte sequence so it is last.
var fallbackEncodings = []encoding.Encoding{
	simplifiedchinese.GBK,
	simplifiedchinese.GB18030,
	traditionalchinese.Big5,
	japanese.ShiftJIS,
	charmap.ISO8859_1,
}

// decodeText converts raw file bytes to a UTF-8 string, trying UTF-8
// first and then each fallback charset. Binary content is rejected.
func decodeText(data []byte) (string, error) {
	if looksBinary(data) {
		return "", errBinary
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	for _, enc := range fallbackEncodings {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		if utf8.Valid(decoded) {
			return string(decoded), nil
		}
	}
	return "", errBinary
}

// looksBinary reports whether content contains NUL bytes, the usual
// marker separating binary files from any text charset.
func looksBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}
