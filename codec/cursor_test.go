package codec

import "testing"

func TestCursorReadWriteRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		enc  func(w Writer) error
		dec  func(c *Cursor) (interface{}, error)
		want interface{}
	}{
		{"u8", func(w Writer) error { return WriteU8(w, 0xAB) },
			func(c *Cursor) (interface{}, error) { return c.ReadU8() }, uint8(0xAB)},
		{"u16", func(w Writer) error { return WriteU16(w, 0x1234) },
			func(c *Cursor) (interface{}, error) { return c.ReadU16() }, uint16(0x1234)},
		{"u32", func(w Writer) error { return WriteU32(w, 0xDEADBEEF) },
			func(c *Cursor) (interface{}, error) { return c.ReadU32() }, uint32(0xDEADBEEF)},
		{"u64", func(w Writer) error { return WriteU64(w, 0x0102030405060708) },
			func(c *Cursor) (interface{}, error) { return c.ReadU64() }, uint64(0x0102030405060708)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &byteBuf{}
			if err := tt.enc(buf); err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := tt.dec(NewCursor(buf.b))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCursorReadNRequiresEnoughBytes(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3})
	if _, err := c.ReadN(4); err == nil {
		t.Fatal("expected error reading past end of buffer")
	}
}

func TestCursorRewindAndForward(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3, 4})
	if _, err := c.ReadN(2); err != nil {
		t.Fatalf("ReadN: %v", err)
	}
	if err := c.Rewind(2); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	if c.Position() != 0 {
		t.Errorf("Position after rewind = %d, want 0", c.Position())
	}
	if err := c.Forward(3); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if c.Position() != 3 {
		t.Errorf("Position after forward = %d, want 3", c.Position())
	}
	if err := c.Rewind(10); err == nil {
		t.Fatal("expected error rewinding past start")
	}
}

func TestCursorPeekDoesNotAdvance(t *testing.T) {
	c := NewCursor([]byte{0x42, 0x43})
	v, err := c.PeekU8()
	if err != nil {
		t.Fatalf("PeekU8: %v", err)
	}
	if v != 0x42 {
		t.Errorf("PeekU8 = %#x, want 0x42", v)
	}
	if c.Position() != 0 {
		t.Errorf("Position after peek = %d, want 0", c.Position())
	}
}

func TestCursorReadRestAliasesBuffer(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3, 4, 5})
	if _, err := c.ReadN(2); err != nil {
		t.Fatalf("ReadN: %v", err)
	}
	rest := c.ReadRest()
	if len(rest) != 3 || rest[0] != 3 {
		t.Errorf("ReadRest = %v, want [3 4 5]", rest)
	}
	if c.Len() != 0 {
		t.Errorf("Len after ReadRest = %d, want 0", c.Len())
	}
}

type byteBuf struct{ b []byte }

func (b *byteBuf) Write(p []byte) (int, error) {
	b.b = append(b.b, p...)
	return len(p), nil
}
