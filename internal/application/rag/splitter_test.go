package rag

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestRecursiveSplitter_Examples(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
		text      string
		want      []string
	}{
		{
			name:      "短文本整段返回",
			chunkSize: 2000,
			overlap:   400,
			text:      "  Vuelo a Sevilla el lunes.  ",
			want:      []string{"Vuelo a Sevilla el lunes."},
		},
		{
			name:      "空文本",
			chunkSize: 10,
			overlap:   2,
			text:      "   ",
			want:      nil,
		},
		{
			name:      "按空格合并无重叠",
			chunkSize: 10,
			overlap:   3,
			text:      "aaaa bbbb cccc dddd",
			want:      []string{"aaaa bbbb", "cccc dddd"},
		},
		{
			name:      "按空格合并带重叠",
			chunkSize: 10,
			overlap:   4,
			text:      "ab cd ef gh ij kl",
			want:      []string{"ab cd ef", "ef gh ij", "ij kl"},
		},
		{
			name:      "没有分隔符时按字符切",
			chunkSize: 4,
			overlap:   0,
			text:      "abcdefghij",
			want:      []string{"abcd", "efgh", "ij"},
		},
		{
			name:      "段落优先",
			chunkSize: 12,
			overlap:   0,
			text:      "Día 1\n\nDía 2\n\nDía 3",
			want:      []string{"Día 1\n\nDía 2", "Día 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRecursiveSplitter(tt.chunkSize, tt.overlap)
			assert.Equal(t, tt.want, s.Split(tt.text))
		})
	}
}

func TestRecursiveSplitter_LongDocument(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		sb.WriteString("El itinerario incluye visitas guiadas a la Alhambra, tapas en el Albaicín y un paseo al atardecer. ")
		if i%7 == 6 {
			sb.WriteString("\n\n")
		}
	}
	text := sb.String()

	s := NewRecursiveSplitter(2000, 400)
	chunks := s.Split(text)

	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 2000)
		assert.NotEmpty(t, c)
		assert.Equal(t, strings.TrimSpace(c), c)
	}

	// 段落本身不超长时以段落为单位合并，不会从段落中间切开
	for _, c := range chunks {
		assert.True(t, strings.HasPrefix(c, "El itinerario"), c[:20])
	}
}

func TestRecursiveSplitter_OverlapBetweenSentences(t *testing.T) {
	text := strings.Repeat("Uno dos tres. ", 20)

	s := NewRecursiveSplitter(60, 20)
	chunks := s.Split(text)
	assert.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prevLast := chunks[i-1][strings.LastIndex(chunks[i-1], "Uno"):]
		// 分隔符留在后一块开头
		assert.True(t, strings.HasPrefix(chunks[i], ". "), chunks[i])
		assert.True(t, strings.HasPrefix(strings.TrimPrefix(chunks[i], ". "), prevLast), "chunk %d should start with the tail of chunk %d", i, i-1)
	}
}

func TestRecursiveSplitter_MultibyteMeasuredInRunes(t *testing.T) {
	s := NewRecursiveSplitter(5, 0)
	got := s.Split("ñññññññ")
	assert.Equal(t, []string{"ñññññ", "ññ"}, got)
}

func TestSplitKeepingSeparator(t *testing.T) {
	assert.Equal(t, []string{"a", "\n\nb", "\n\nc"}, splitKeepingSeparator("a\n\nb\n\nc", "\n\n"))
	assert.Equal(t, []string{"\n\nb"}, splitKeepingSeparator("\n\nb", "\n\n"))
	assert.Equal(t, []string{"a", "b"}, splitKeepingSeparator("ab", ""))
}
