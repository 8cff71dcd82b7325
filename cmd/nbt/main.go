// nbt - NBT codec CLI tool
//
// Usage:
//
//	nbt view [-c] <file>                              Print a tag file as SNBT
//	nbt convert -from=<fmt> -to=<fmt> [-z=<mode>] <in> <out>
//	nbt diff <a> <b>                                  Structural diff of two tag files
//	nbt query <file> <expr>                           Evaluate an expression against the document
//	nbt patch <file> <patch.json> [-o=<out>]          Apply an RFC 6902 patch
//	nbt check <file>                                  Decode and validate
//	nbt hash <file>...                                Content digest of the canonical encoding
//	nbt version                                       Print version info
//
// Binary input framing (raw, gzip, zlib) is sniffed; output framing is
// explicit via -z. "-" reads stdin or writes stdout.
package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/expr-lang/expr"
	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Neumenon/nbt/nbt"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		cmdView(args)
	case "convert":
		cmdConvert(args)
	case "diff":
		cmdDiff(args)
	case "query":
		cmdQuery(args)
	case "patch":
		cmdPatch(args)
	case "check":
		cmdCheck(args)
	case "hash":
		cmdHash(args)
	case "version", "-v", "--version":
		fmt.Printf("nbt %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `nbt - NBT codec tool

Usage:
  nbt view [-c] <file>                      Print a tag file as SNBT (pretty; -c compact)
  nbt convert -from=<fmt> -to=<fmt> [-z=<mode>] <in> <out>
                                            Convert between formats
  nbt diff <a> <b>                          Structural diff of two tag files (exit 1 if different)
  nbt query <file> <expr>                   Evaluate an expression against the JSON-shaped document
  nbt patch <file> <patch.json> [-o=<out>] [-z=<mode>]
                                            Apply an RFC 6902 patch through the JSON form
  nbt check <file>                          Decode and validate, reporting structural issues
  nbt hash <file>...                        SHA-256 of the canonical uncompressed encoding
  nbt version                               Print version info

Formats: nbt (binary), snbt, json, yaml.
Framing modes (-z): none (default), gzip, zlib. Input framing is always sniffed.
"-" reads stdin / writes stdout.

The json and yaml forms and the patch command go through a lossy boundary:
numeric widths widen and array kinds are re-derived on the way back.

Examples:
  nbt view level.dat
  nbt convert -from=nbt -to=json level.dat -
  nbt convert -from=snbt -to=nbt -z=gzip in.snbt out.nbt
  nbt query player.dat 'Inventory[0].id'
  nbt diff before.dat after.dat
`)
}

func cmdView(args []string) {
	compact := false
	file := ""
	for _, arg := range args {
		switch {
		case arg == "-c" || arg == "--compact":
			compact = true
		default:
			file = arg
		}
	}
	if file == "" {
		fatal("view: missing file")
	}
	root := readTagArg(file)
	codec := nbt.New(nbt.WithEmitOptions(nbt.EmitOptions{Pretty: !compact}))
	s, err := codec.EmitSNBT(root)
	if err != nil {
		fatal("render: %v", err)
	}
	fmt.Println(s)
}

func cmdConvert(args []string) {
	from, to := "", ""
	mode := nbt.CompressionNone
	var files []string
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "-from="):
			from = strings.TrimPrefix(arg, "-from=")
		case strings.HasPrefix(arg, "-to="):
			to = strings.TrimPrefix(arg, "-to=")
		case strings.HasPrefix(arg, "-z="):
			m, err := nbt.ParseCompression(strings.TrimPrefix(arg, "-z="))
			if err != nil {
				fatal("convert: %v", err)
			}
			mode = m
		default:
			files = append(files, arg)
		}
	}
	if from == "" || to == "" {
		fatal("convert: -from and -to are required")
	}
	if len(files) != 2 {
		fatal("convert: need <in> and <out>")
	}
	root := loadAs(from, files[0])
	writeAs(to, files[1], root, mode)
}

func loadAs(format, path string) *nbt.Tag {
	switch format {
	case "nbt":
		return readTagArg(path)
	case "snbt":
		t, err := nbt.ParseSNBT(strings.TrimSpace(string(readInput(path))))
		if err != nil {
			fatal("parse snbt: %v", err)
		}
		return t
	case "json":
		t, err := nbt.FromJSON(readInput(path))
		if err != nil {
			fatal("parse json: %v", err)
		}
		return t
	case "yaml":
		t, err := nbt.FromYAML(readInput(path))
		if err != nil {
			fatal("parse yaml: %v", err)
		}
		return t
	default:
		fatal("unknown format: %s", format)
		return nil
	}
}

func writeAs(format, path string, root *nbt.Tag, mode nbt.Compression) {
	switch format {
	case "nbt":
		if path == "-" {
			if err := nbt.WriteCompressed(os.Stdout, root, mode); err != nil {
				fatal("write: %v", err)
			}
			return
		}
		if err := nbt.WriteFile(path, root, mode); err != nil {
			fatal("write: %v", err)
		}
	case "snbt":
		codec := nbt.New(nbt.WithEmitOptions(nbt.EmitOptions{Pretty: true}))
		s, err := codec.EmitSNBT(root)
		if err != nil {
			fatal("render: %v", err)
		}
		writeOutput(path, []byte(s+"\n"))
	case "json":
		data, err := nbt.ToJSON(root)
		if err != nil {
			fatal("convert to json: %v", err)
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, data, "", "  "); err != nil {
			fatal("indent json: %v", err)
		}
		pretty.WriteByte('\n')
		writeOutput(path, pretty.Bytes())
	case "yaml":
		data, err := nbt.ToYAML(root)
		if err != nil {
			fatal("convert to yaml: %v", err)
		}
		writeOutput(path, data)
	default:
		fatal("unknown format: %s", format)
	}
}

func cmdDiff(args []string) {
	if len(args) != 2 {
		fatal("diff: need two files")
	}
	a := readTagArg(args[0])
	b := readTagArg(args[1])
	if a.Equal(b) {
		fmt.Fprintln(os.Stderr, "identical")
		return
	}

	codec := nbt.New(nbt.WithEmitOptions(nbt.EmitOptions{Pretty: true}))
	sa, err := codec.EmitSNBT(a)
	if err != nil {
		fatal("render %s: %v", args[0], err)
	}
	sb, err := codec.EmitSNBT(b)
	if err != nil {
		fatal("render %s: %v", args[1], err)
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(sa, sb, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	printDiffs(diffs, isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
	os.Exit(1)
}

// printDiffs colors insertions and deletions on a terminal and falls
// back to inline {+...+} / [-...-] markers when piped.
func printDiffs(diffs []diffmatchpatch.Diff, tty bool) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			if tty {
				fmt.Print(green(d.Text))
			} else {
				fmt.Printf("{+%s+}", d.Text)
			}
		case diffmatchpatch.DiffDelete:
			if tty {
				fmt.Print(red(d.Text))
			} else {
				fmt.Printf("[-%s-]", d.Text)
			}
		default:
			fmt.Print(d.Text)
		}
	}
	fmt.Println()
}

func cmdQuery(args []string) {
	if len(args) != 2 {
		fatal("query: need <file> and <expr>")
	}
	root := readTagArg(args[0])
	data, err := nbt.ToJSON(root)
	if err != nil {
		fatal("query: %v", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		fatal("query: %v", err)
	}
	env := map[string]any{"root": doc}
	if obj, ok := doc.(map[string]any); ok {
		for k, v := range obj {
			if _, taken := env[k]; !taken {
				env[k] = v
			}
		}
	}
	result, err := expr.Eval(args[1], env)
	if err != nil {
		fatal("query: %v", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		fatal("query: %v", err)
	}
	fmt.Println(string(out))
}

func cmdPatch(args []string) {
	outPath := ""
	mode := nbt.CompressionNone
	var files []string
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "-o="):
			outPath = strings.TrimPrefix(arg, "-o=")
		case strings.HasPrefix(arg, "-z="):
			m, err := nbt.ParseCompression(strings.TrimPrefix(arg, "-z="))
			if err != nil {
				fatal("patch: %v", err)
			}
			mode = m
		default:
			files = append(files, arg)
		}
	}
	if len(files) != 2 {
		fatal("patch: need <file> and <patch.json>")
	}
	root := readTagArg(files[0])
	docJSON, err := nbt.ToJSON(root)
	if err != nil {
		fatal("patch: %v", err)
	}
	p, err := jsonpatch.DecodePatch(readInput(files[1]))
	if err != nil {
		fatal("patch: decode: %v", err)
	}
	patched, err := p.Apply(docJSON)
	if err != nil {
		fatal("patch: apply: %v", err)
	}
	result, err := nbt.FromJSON(patched)
	if err != nil {
		fatal("patch: rebuild: %v", err)
	}
	result.WithName(root.Name())
	if outPath == "" {
		codec := nbt.New(nbt.WithEmitOptions(nbt.EmitOptions{Pretty: true}))
		s, err := codec.EmitSNBT(result)
		if err != nil {
			fatal("patch: render: %v", err)
		}
		fmt.Println(s)
		return
	}
	if err := nbt.WriteFile(outPath, result, mode); err != nil {
		fatal("patch: write: %v", err)
	}
}

func cmdCheck(args []string) {
	if len(args) != 1 {
		fatal("check: need one file")
	}
	file := args[0]
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	root, err := readTag(file)
	if err != nil {
		fmt.Printf("%s: %s\n", file, red("unreadable"))
		fmt.Printf("  %v\n", err)
		os.Exit(1)
	}
	issues := nbt.Validate(root)
	if len(issues) == 0 {
		fmt.Printf("%s: %s\n", file, green("ok"))
		return
	}
	fmt.Printf("%s: %s\n", file, red(fmt.Sprintf("%d issue(s)", len(issues))))
	for _, issue := range issues {
		fmt.Printf("  %s\n", issue)
	}
	os.Exit(1)
}

// cmdHash prints a content digest per file. Hashing the re-encoded
// uncompressed form makes the digest independent of the stream framing,
// so a gzipped and a raw copy of the same document agree.
func cmdHash(args []string) {
	if len(args) == 0 {
		fatal("hash: need at least one file")
	}
	for _, file := range args {
		root := readTagArg(file)
		data, err := nbt.Marshal(root)
		if err != nil {
			fatal("hash %s: %v", file, err)
		}
		sum := sha256.Sum256(data)
		fmt.Printf("%s  %s\n", hex.EncodeToString(sum[:]), file)
	}
}

func readTag(path string) (*nbt.Tag, error) {
	if path == "-" {
		return nbt.Read(os.Stdin)
	}
	return nbt.ReadFile(path)
}

func readTagArg(path string) *nbt.Tag {
	t, err := readTag(path)
	if err != nil {
		fatal("read %s: %v", path, err)
	}
	return t
}

func readInput(path string) []byte {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fatal("read stdin: %v", err)
		}
		return data
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fatal("read %s: %v", path, err)
	}
	return data
}

func writeOutput(path string, data []byte) {
	if path == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			fatal("write stdout: %v", err)
		}
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fatal("write %s: %v", path, err)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "nbt: "+format+"\n", args...)
	os.Exit(1)
}
