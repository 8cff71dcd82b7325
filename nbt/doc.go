// Package nbt implements the NBT binary tag format and its textual
// companion SNBT.
//
// NBT is a named, typed tree serialized big-endian:
//   - 12 value kinds: byte, short, int, long, float, double,
//     byte array, string, list, compound, int array, long array
//   - Lists are homogeneous and their elements unnamed
//   - Compounds are ordered maps with unique keys
//   - Ids above 12 are open for extension types via the registry
//
// # Wire Layout
//
// Every named tag is <id:u8><name_len:u16><name:utf8><payload>. An
// end tag is the bare byte 0x00 and only ever terminates a compound
// payload; it is never a value. Streams may be raw, gzip or zlib;
// the read side sniffs the framing, the write side states it.
//
// # Textual Form
//
// Compound:   {key:value,other:"quoted key ok"}
// List:       [1,2,3]
// Arrays:     [B;1,2] [I;3,4] [L;5,6]
// Numbers:    1b 2s 3 4l 1.5f 2.5 (suffix fixes the kind)
// Strings:    "always quoted as values"
// Booleans:   true / false (read as bytes 1 / 0)
//
// # Example
//
//	root := nbt.Compound()
//	root.Put("name", nbt.String("Benannt"))
//	root.Put("count", nbt.Int(42))
//
//	data, err := nbt.Marshal(root)
//	...
//	back, err := nbt.Unmarshal(data)
//	...
//	s, err := nbt.EmitSNBT(back) // {name:"Benannt",count:42}
//
// # Errors
//
// Failures map to package sentinels (ErrUnexpectedEOF,
// ErrNestingTooDeep, ErrUnknownTypeID, ...) testable with errors.Is.
// Binary decode errors carry the byte offset, textual parse errors the
// line and column.
package nbt
