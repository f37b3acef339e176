// This file includes a selection of byte offset conversion methods from the gopls "protocol" package.
// Based on the following: https://github.com/golang/tools/blob/67d73b2960c82b2c8db0b9d0694c66a789a1db11/gopls/internal/lsp/protocol/mapper.go

// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// License Revision: https://github.com/golang/tools/blob/67d73b2960c82b2c8db0b9d0694c66a789a1db11/LICENSE

package protocol

import (
	"bytes"
	"fmt"
	"sync"
	"unicode/utf8"

	"go.lsp.dev/protocol"
)

// TextOffsetMapper is used for conversions related to text offsets.
type TextOffsetMapper struct {
	Content []byte

	// Line-number information is requested only for a tiny
	// fraction of Mappers, so we compute it lazily.
	// Call initLines() before accessing fields below.
	linesOnce sync.Once
	lineStart []int // byte offset of start of ith line (0-based); last=EOF iff \n-terminated
}

// NewTextOffsetMapper creates a new mapper for the given content.
func NewTextOffsetMapper(content []byte) *TextOffsetMapper {
	return &TextOffsetMapper{Content: content}
}

// initLines populates the lineStart table.
func (m *TextOffsetMapper) initLines() {
	m.linesOnce.Do(func() {
		nlines := bytes.Count(m.Content, []byte("\n"))
		m.lineStart = make([]int, 1, nlines+1) // initially []int{0}
		for offset, b := range m.Content {
			if b == '\n' {
				m.lineStart = append(m.lineStart, offset+1)
			}
		}
	})
}

// PositionOffset converts a protocol (UTF-16) position to a byte offset.
func (m *TextOffsetMapper) PositionOffset(p protocol.Position) (int, error) {
	m.initLines()

	// Validate line number.
	if p.Line > uint32(len(m.lineStart)) {
		return 0, fmt.Errorf("line number %d out of range 0-%d", p.Line, len(m.lineStart))
	} else if p.Line == uint32(len(m.lineStart)) {
		if p.Character == 0 {
			return len(m.Content), nil // EOF
		}
		return 0, fmt.Errorf("column is beyond end of file")
	}

	offset := m.lineStart[p.Line]
	content := m.Content[offset:] // rest of file from start of enclosing line

	// Advance bytes up to the required number of UTF-16 codes.
	col8 := 0
	for col16 := 0; col16 < int(p.Character); col16++ {
		r, sz := utf8.DecodeRune(content)
		if sz == 0 {
			return 0, fmt.Errorf("column is beyond end of file")
		}
		if r == '\n' {
			return 0, fmt.Errorf("column is beyond end of line")
		}
		if sz == 1 && r == utf8.RuneError {
			return 0, fmt.Errorf("buffer contains invalid UTF-8 text")
		}
		content = content[sz:]

		if r >= 0x10000 {
			col16++ // rune was encoded by a pair of surrogate UTF-16 codes

			if col16 == int(p.Character) {
				break // requested position is in the middle of a rune
			}
		}
		col8 += sz
	}
	return offset + col8, nil
}
