package core

import (
	"bytes"
	"io"
	"testing"
)

func TestLatin1ToUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"ascii passes through", []byte("Weizenmehl 550"), "Weizenmehl 550"},
		{"umlauts", []byte{'M', 0xFC, 'h', 'l', 'e'}, "Mühle"},
		{"sharp s", []byte{'M', 'a', 0xDF}, "Maß"},
		{"high byte boundary", []byte{0x80, 0xFF}, "\u0080ÿ"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Latin1ToUTF8(tt.in)); got != tt.want {
				t.Errorf("Latin1ToUTF8(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLatin1ToUTF8_EveryByte(t *testing.T) {
	for b := 0; b < 256; b++ {
		got := []rune(string(Latin1ToUTF8([]byte{byte(b)})))
		if len(got) != 1 || got[0] != rune(b) {
			t.Fatalf("byte 0x%02X decoded to %q, want U+%04X", b, string(got), b)
		}
	}
}

func TestNewLatin1Reader(t *testing.T) {
	r := NewLatin1Reader(bytes.NewReader([]byte{'K', 0xE4, 's', 'e'}))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if string(got) != "Käse" {
		t.Errorf("read %q, want %q", got, "Käse")
	}
}

func TestNewLatin1Reader_ByteOrderMark(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"utf-8 bom", []byte("\xef\xbb\xbf100001;Käse"), "100001;Käse"},
		{"no bom is latin-1", []byte("100001;K\xe4se"), "100001;Käse"},
		{"utf-16le mark is latin-1", []byte("\xff\xfe01;K\xe4se\n02;Brot"), "ÿþ01;Käse\n02;Brot"},
		{"utf-16be mark is latin-1", []byte("\xfe\xff01;K\xe4se"), "þÿ01;Käse"},
		{"partial utf-8 bom is latin-1", []byte("\xef\xbb01"), "ï»01"},
		{"shorter than a bom", []byte("A"), "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewLatin1Reader(bytes.NewReader(tt.in)))
			if err != nil {
				t.Fatalf("ReadAll() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("read %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeDecimal(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0,5", "0.5"},
		{"1.234,56", "1.234.56"},
		{"Salz, fein", "Salz. fein"},
		{"12", "12"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeDecimal(tt.in); got != tt.want {
			t.Errorf("NormalizeDecimal(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
