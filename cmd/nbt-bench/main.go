// nbt-bench - NBT size benchmark runner
//
// Synthesizes representative tag trees and compares encoded sizes:
//   - Binary, raw vs gzip vs zlib framing
//   - SNBT (compact) and JSON boundary forms
//
// Output: CSV and markdown summary
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/Neumenon/nbt/nbt"
)

type CaseResult struct {
	Name    string
	Binary  int
	Gzip    int
	Zlib    int
	SNBT    int
	JSON    int
	GzipPct float64
	SNBTPct float64
}

func main() {
	cases := buildCorpus()

	fmt.Fprintf(os.Stderr, "NBT Benchmark Runner\n")
	fmt.Fprintf(os.Stderr, "====================\n")
	fmt.Fprintf(os.Stderr, "Corpus: %d synthesized cases\n\n", len(cases))

	var results []CaseResult
	var totalBinary, totalGzip, totalZlib, totalSNBT, totalJSON int

	for _, c := range cases {
		raw, err := nbt.Marshal(c.root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: %v\n", c.name, err)
			continue
		}
		gz, err := nbt.MarshalCompressed(c.root, nbt.CompressionGzip)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: gzip: %v\n", c.name, err)
			continue
		}
		zl, err := nbt.MarshalCompressed(c.root, nbt.CompressionZlib)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: zlib: %v\n", c.name, err)
			continue
		}
		text, err := nbt.EmitSNBT(c.root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: snbt: %v\n", c.name, err)
			continue
		}
		jsonData, err := nbt.ToJSON(c.root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: json: %v\n", c.name, err)
			continue
		}

		r := CaseResult{
			Name:   c.name,
			Binary: len(raw),
			Gzip:   len(gz),
			Zlib:   len(zl),
			SNBT:   len(text),
			JSON:   len(jsonData),
		}
		r.GzipPct = pctOf(r.Binary-r.Gzip, r.Binary)
		r.SNBTPct = pctOf(r.SNBT-r.Binary, r.Binary)
		results = append(results, r)

		totalBinary += r.Binary
		totalGzip += r.Gzip
		totalZlib += r.Zlib
		totalSNBT += r.SNBT
		totalJSON += r.JSON
	}

	csvPath := "bench_results.csv"
	if csvFile, err := os.Create(csvPath); err == nil {
		writeCSV(csvFile, results)
		csvFile.Close()
		fmt.Fprintf(os.Stderr, "CSV written to: %s\n", csvPath)
	}

	mdPath := "BENCH.md"
	if mdFile, err := os.Create(mdPath); err == nil {
		writeMarkdown(mdFile, results, totalBinary, totalGzip, totalZlib, totalSNBT, totalJSON)
		mdFile.Close()
		fmt.Fprintf(os.Stderr, "Markdown written to: %s\n", mdPath)
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Cases:        %d\n", len(results))
	fmt.Printf("Binary total: %d bytes\n", totalBinary)
	fmt.Printf("Gzip total:   %d bytes (%.1f%% saved)\n", totalGzip, pctOf(totalBinary-totalGzip, totalBinary))
	fmt.Printf("Zlib total:   %d bytes (%.1f%% saved)\n", totalZlib, pctOf(totalBinary-totalZlib, totalBinary))
	fmt.Printf("SNBT total:   %d bytes (%+.1f%% vs binary)\n", totalSNBT, pctOf(totalSNBT-totalBinary, totalBinary))
	fmt.Printf("JSON total:   %d bytes (%+.1f%% vs binary)\n", totalJSON, pctOf(totalJSON-totalBinary, totalBinary))
}

func pctOf(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

type benchCase struct {
	name string
	root *nbt.Tag
}

func buildCorpus() []benchCase {
	return []benchCase{
		{"flat-scalars", flatScalars()},
		{"deep-nesting", deepNesting(64)},
		{"large-arrays", largeArrays()},
		{"string-heavy", stringHeavy(200)},
		{"player-inventory", playerInventory(32)},
		{"random-bytes", randomBytes(16 * 1024)},
	}
}

func flatScalars() *nbt.Tag {
	c := nbt.Compound().WithName("scalars")
	c.Put("b", nbt.Byte(127))
	c.Put("s", nbt.Short(-12345))
	c.Put("i", nbt.Int(1<<30))
	c.Put("l", nbt.Long(1<<60))
	c.Put("f", nbt.Float(3.14159))
	c.Put("d", nbt.Double(2.718281828459045))
	c.Put("str", nbt.String("hello world"))
	return c
}

func deepNesting(depth int) *nbt.Tag {
	leaf := nbt.Compound()
	leaf.Put("value", nbt.Int(42))
	node := leaf
	for i := 0; i < depth; i++ {
		parent := nbt.Compound()
		parent.Put("child", node)
		node = parent
	}
	return node.WithName("deep")
}

func largeArrays() *nbt.Tag {
	ints := make([]int32, 10_000)
	for i := range ints {
		ints[i] = int32(i)
	}
	longs := make([]int64, 4_000)
	for i := range longs {
		longs[i] = int64(i) * 977
	}
	bytes := make([]byte, 16*1024)
	for i := range bytes {
		bytes[i] = byte(i % 7)
	}
	c := nbt.Compound().WithName("arrays")
	c.Put("ints", nbt.IntArray(ints))
	c.Put("longs", nbt.LongArray(longs))
	c.Put("bytes", nbt.ByteArray(bytes))
	return c
}

func stringHeavy(n int) *nbt.Tag {
	words := []string{"stone", "dirt", "oak_planks", "iron_ingot", "redstone_dust"}
	l := nbt.List(nbt.TagString)
	for i := 0; i < n; i++ {
		l.Append(nbt.String(fmt.Sprintf("minecraft:%s_%d", words[i%len(words)], i)))
	}
	c := nbt.Compound().WithName("strings")
	c.Put("entries", l)
	return c
}

func playerInventory(slots int) *nbt.Tag {
	inv := nbt.List(nbt.TagCompound)
	for i := 0; i < slots; i++ {
		item := nbt.Compound()
		item.Put("id", nbt.Short(int16(256+i)))
		item.Put("count", nbt.Byte(int8(1+i%64)))
		tag := nbt.Compound()
		tag.Put("damage", nbt.Int(int32(i*17)))
		item.Put("tag", tag)
		inv.Append(item)
	}
	pos := nbt.List(nbt.TagDouble)
	pos.Append(nbt.Double(128.5), nbt.Double(64.0), nbt.Double(-220.25))
	c := nbt.Compound().WithName("player")
	c.Put("name", nbt.String("Benannt"))
	c.Put("pos", pos)
	c.Put("inventory", inv)
	return c
}

func randomBytes(n int) *nbt.Tag {
	rng := rand.New(rand.NewSource(42))
	data := make([]byte, n)
	rng.Read(data)
	c := nbt.Compound().WithName("noise")
	c.Put("blob", nbt.ByteArray(data))
	return c
}

func writeCSV(w io.Writer, results []CaseResult) {
	fmt.Fprintln(w, "name,binary_bytes,gzip_bytes,zlib_bytes,snbt_bytes,json_bytes,gzip_saved_pct,snbt_overhead_pct")
	for _, r := range results {
		fmt.Fprintf(w, "%s,%d,%d,%d,%d,%d,%.1f,%.1f\n",
			r.Name, r.Binary, r.Gzip, r.Zlib, r.SNBT, r.JSON, r.GzipPct, r.SNBTPct)
	}
}

func writeMarkdown(w io.Writer, results []CaseResult, totalBinary, totalGzip, totalZlib, totalSNBT, totalJSON int) {
	fmt.Fprintf(w, "# NBT Size Benchmark Results\n\n")
	fmt.Fprintf(w, "**Date:** %s  \n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(w, "**Corpus:** %d synthesized cases  \n\n", len(results))

	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "| Form | Total bytes | vs binary |\n")
	fmt.Fprintf(w, "|------|-------------|----------|\n")
	fmt.Fprintf(w, "| Binary (raw) | %d | — |\n", totalBinary)
	fmt.Fprintf(w, "| Binary (gzip) | %d | %+.1f%% |\n", totalGzip, pctOf(totalGzip-totalBinary, totalBinary))
	fmt.Fprintf(w, "| Binary (zlib) | %d | %+.1f%% |\n", totalZlib, pctOf(totalZlib-totalBinary, totalBinary))
	fmt.Fprintf(w, "| SNBT (compact) | %d | %+.1f%% |\n", totalSNBT, pctOf(totalSNBT-totalBinary, totalBinary))
	fmt.Fprintf(w, "| JSON | %d | %+.1f%% |\n\n", totalJSON, pctOf(totalJSON-totalBinary, totalBinary))

	sorted := make([]CaseResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].GzipPct > sorted[j].GzipPct
	})

	fmt.Fprintf(w, "## Best Gzip Savings\n\n")
	fmt.Fprintf(w, "| Case | Binary | Gzip | Saved |\n")
	fmt.Fprintf(w, "|------|--------|------|-------|\n")
	for i := 0; i < min(5, len(sorted)); i++ {
		r := sorted[i]
		fmt.Fprintf(w, "| %s | %d | %d | %.1f%% |\n", r.Name, r.Binary, r.Gzip, r.GzipPct)
	}

	fmt.Fprintf(w, "\n## Detailed Results\n\n")
	fmt.Fprintf(w, "| Case | Binary | Gzip | Zlib | SNBT | JSON |\n")
	fmt.Fprintf(w, "|------|--------|------|------|------|------|\n")
	for _, r := range results {
		fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %d |\n",
			r.Name, r.Binary, r.Gzip, r.Zlib, r.SNBT, r.JSON)
	}

	fmt.Fprintf(w, "\n## Methodology\n\n")
	fmt.Fprintf(w, "- **Binary:** big-endian tag encoding via `nbt.Marshal`\n")
	fmt.Fprintf(w, "- **Gzip/Zlib:** `nbt.MarshalCompressed` with the respective framing\n")
	fmt.Fprintf(w, "- **SNBT:** compact textual form via `nbt.EmitSNBT`\n")
	fmt.Fprintf(w, "- **JSON:** lossy boundary form via `nbt.ToJSON`\n")
}
