package code

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"lox/internal/object"
)

const (
	imageMagic   = "loxc"
	imageVersion = 1
)

var ErrBadImage = errors.New("code: malformed chunk image")

type ConstantKind uint8

const (
	ConstNil ConstantKind = iota + 1
	ConstBool
	ConstNumber
	ConstString
)

// ImageConstant is the serialized form of one constant pool entry.
type ImageConstant struct {
	Kind   ConstantKind `cbor:"1,keyasint"`
	Bool   bool         `cbor:"2,keyasint,omitempty"`
	Number float64      `cbor:"3,keyasint,omitempty"`
	Chars  string       `cbor:"4,keyasint,omitempty"`
}

// Image is a chunk as written to disk. Strings are stored by content and
// re-interned when the image is loaded into a heap.
type Image struct {
	Magic     string          `cbor:"1,keyasint"`
	Version   uint8           `cbor:"2,keyasint"`
	Code      []byte          `cbor:"3,keyasint"`
	Lines     []int           `cbor:"4,keyasint"`
	Constants []ImageConstant `cbor:"5,keyasint"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("code: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalChunk serializes a chunk to CBOR bytes.
func MarshalChunk(c *Chunk) ([]byte, error) {
	img := Image{
		Magic:     imageMagic,
		Version:   imageVersion,
		Code:      c.Code,
		Lines:     c.Lines,
		Constants: make([]ImageConstant, 0, len(c.Constants)),
	}
	for i, k := range c.Constants {
		switch v := k.(type) {
		case object.Nil:
			img.Constants = append(img.Constants, ImageConstant{Kind: ConstNil})
		case object.Boolean:
			img.Constants = append(img.Constants, ImageConstant{Kind: ConstBool, Bool: v.Value})
		case object.Number:
			img.Constants = append(img.Constants, ImageConstant{Kind: ConstNumber, Number: v.Value})
		case *object.String:
			img.Constants = append(img.Constants, ImageConstant{Kind: ConstString, Chars: v.Chars})
		default:
			return nil, fmt.Errorf("code: constant %d: unsupported type %T", i, k)
		}
	}
	return cborEncMode.Marshal(&img)
}

// UnmarshalChunk decodes and validates a chunk image, interning its string
// constants through in.
func UnmarshalChunk(data []byte, in object.Interner) (*Chunk, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("code: unmarshal chunk: %w", err)
	}
	if img.Magic != imageMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadImage, img.Magic)
	}
	if img.Version != imageVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadImage, img.Version)
	}
	if len(img.Code) != len(img.Lines) {
		return nil, fmt.Errorf("%w: %d code bytes but %d lines", ErrBadImage, len(img.Code), len(img.Lines))
	}
	if len(img.Constants) > MaxConstants {
		return nil, fmt.Errorf("%w: %d constants", ErrBadImage, len(img.Constants))
	}

	c := &Chunk{
		Code:      img.Code,
		Lines:     img.Lines,
		Constants: make([]object.Object, 0, len(img.Constants)),
	}
	for i, k := range img.Constants {
		switch k.Kind {
		case ConstNil:
			c.Constants = append(c.Constants, object.Null)
		case ConstBool:
			c.Constants = append(c.Constants, object.NativeBool(k.Bool))
		case ConstNumber:
			c.Constants = append(c.Constants, object.Number{Value: k.Number})
		case ConstString:
			s, err := in.CopyString(k.Chars)
			if err != nil {
				return nil, fmt.Errorf("code: constant %d: %w", i, err)
			}
			c.Constants = append(c.Constants, s)
		default:
			return nil, fmt.Errorf("%w: constant %d has kind %d", ErrBadImage, i, k.Kind)
		}
	}

	if err := Verify(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Verify checks that every instruction is known, complete, only refers to
// constants that exist and never pops an empty stack. Code has no jumps, so
// depth is tracked in one linear pass. Chunks produced by the compiler always
// pass.
func Verify(c *Chunk) error {
	if len(c.Code) != len(c.Lines) {
		return fmt.Errorf("%w: %d code bytes but %d lines", ErrBadImage, len(c.Code), len(c.Lines))
	}
	depth := 0
	for offset := 0; offset < len(c.Code); {
		op := Opcode(c.Code[offset])
		def, ok := Lookup(op)
		if !ok {
			return fmt.Errorf("%w: unknown opcode %d at %d", ErrBadImage, op, offset)
		}
		if offset+def.Width() > len(c.Code) {
			return fmt.Errorf("%w: truncated %s at %d", ErrBadImage, def.Name, offset)
		}
		if op == OpConstant {
			if idx := int(c.Code[offset+1]); idx >= len(c.Constants) {
				return fmt.Errorf("%w: constant index %d out of range at %d", ErrBadImage, idx, offset)
			}
		}
		needs, delta := StackEffect(op)
		if depth < needs {
			return fmt.Errorf("%w: stack underflow in %s at %d", ErrBadImage, def.Name, offset)
		}
		depth += delta
		offset += def.Width()
	}
	return nil
}
