package nbt

import (
	"fmt"
	"testing"
)

// ============================================================
// Codec Benchmarks
// ============================================================
//
// Run with:
//   go test -bench=. -benchmem ./nbt/

// benchSmall is a handful of scalars under one root.
func benchSmall() *Tag {
	root := Compound()
	root.Put("id", Int(1001))
	root.Put("name", String("stone"))
	root.Put("hardness", Float(1.5))
	return root
}

// benchInventory models a saved player inventory: a list of item
// compounds plus position and metadata, the shape this codec mostly
// sees in the wild.
func benchInventory() *Tag {
	root := Compound().WithName("player")
	items := List(TagEnd)
	for i := 0; i < 32; i++ {
		item := Compound()
		item.Put("id", String(fmt.Sprintf("item_%d", i%12)))
		item.Put("count", Byte(int8(i%64)))
		item.Put("slot", Short(int16(i)))
		meta := Compound()
		meta.Put("damage", Int(int32(i*7)))
		meta.Put("unbreakable", Byte(0))
		item.Put("tag", meta)
		if err := items.Append(item); err != nil {
			panic(err)
		}
	}
	root.Put("inventory", items)

	pos := List(TagEnd)
	if err := pos.Append(Double(128.5), Double(64.0), Double(-240.25)); err != nil {
		panic(err)
	}
	root.Put("pos", pos)
	root.Put("dimension", String("overworld"))
	root.Put("xp", Int(1337))
	root.Put("seen_chunks", IntArray(make([]int32, 256)))
	return root
}

// benchLargeArrays stresses the bulk element paths.
func benchLargeArrays() *Tag {
	ints := make([]int32, 10_000)
	for i := range ints {
		ints[i] = int32(i)
	}
	longs := make([]int64, 4_000)
	for i := range longs {
		longs[i] = int64(i) << 20
	}
	root := Compound()
	root.Put("heightmap", IntArray(ints))
	root.Put("block_states", LongArray(longs))
	root.Put("biomes", ByteArray(make([]byte, 16*1024)))
	return root
}

// ============================================================
// Binary Benchmarks
// ============================================================

// BenchmarkMarshal_Small benchmarks encoding a few scalars.
func BenchmarkMarshal_Small(b *testing.B) {
	root := benchSmall()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Marshal(root)
	}
}

// BenchmarkMarshal_Inventory benchmarks encoding a realistic document.
func BenchmarkMarshal_Inventory(b *testing.B) {
	root := benchInventory()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Marshal(root)
	}
}

// BenchmarkMarshal_LargeArrays benchmarks encoding bulk array payloads.
func BenchmarkMarshal_LargeArrays(b *testing.B) {
	root := benchLargeArrays()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Marshal(root)
	}
}

// BenchmarkMarshalGzip_Inventory benchmarks encoding through the gzip framing.
func BenchmarkMarshalGzip_Inventory(b *testing.B) {
	root := benchInventory()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MarshalCompressed(root, CompressionGzip)
	}
}

// BenchmarkUnmarshal_Small benchmarks decoding a few scalars.
func BenchmarkUnmarshal_Small(b *testing.B) {
	data, err := Marshal(benchSmall())
	if err != nil {
		b.Fatalf("Marshal failed: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Unmarshal(data)
	}
}

// BenchmarkUnmarshal_Inventory benchmarks decoding a realistic document.
func BenchmarkUnmarshal_Inventory(b *testing.B) {
	data, err := Marshal(benchInventory())
	if err != nil {
		b.Fatalf("Marshal failed: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Unmarshal(data)
	}
}

// BenchmarkUnmarshal_LargeArrays benchmarks decoding bulk array payloads.
func BenchmarkUnmarshal_LargeArrays(b *testing.B) {
	data, err := Marshal(benchLargeArrays())
	if err != nil {
		b.Fatalf("Marshal failed: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Unmarshal(data)
	}
}

// ============================================================
// Text Benchmarks
// ============================================================

// BenchmarkEmitSNBT_Inventory benchmarks compact text rendering.
func BenchmarkEmitSNBT_Inventory(b *testing.B) {
	root := benchInventory()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = EmitSNBT(root)
	}
}

// BenchmarkEmitSNBT_Pretty benchmarks indented text rendering.
func BenchmarkEmitSNBT_Pretty(b *testing.B) {
	root := benchInventory()
	codec := New(WithEmitOptions(EmitOptions{Pretty: true}))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = codec.EmitSNBT(root)
	}
}

// BenchmarkParseSNBT_Small benchmarks parsing a short document.
func BenchmarkParseSNBT_Small(b *testing.B) {
	text, err := EmitSNBT(benchSmall())
	if err != nil {
		b.Fatalf("EmitSNBT failed: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseSNBT(text)
	}
}

// BenchmarkParseSNBT_Inventory benchmarks parsing a realistic document.
func BenchmarkParseSNBT_Inventory(b *testing.B) {
	text, err := EmitSNBT(benchInventory())
	if err != nil {
		b.Fatalf("EmitSNBT failed: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseSNBT(text)
	}
}

// ============================================================
// Allocation-Focused Benchmarks
// ============================================================

// BenchmarkMarshal_Allocs measures allocations on the encode path.
func BenchmarkMarshal_Allocs(b *testing.B) {
	root := benchInventory()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Marshal(root)
	}
}

// BenchmarkUnmarshal_Allocs measures allocations on the decode path.
func BenchmarkUnmarshal_Allocs(b *testing.B) {
	data, err := Marshal(benchInventory())
	if err != nil {
		b.Fatalf("Marshal failed: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Unmarshal(data)
	}
}
