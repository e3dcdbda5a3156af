// Graft CLI - assemble a method, build its graph, and inspect the result.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/graft/builder"
	"github.com/chazu/graft/bytecode"
	"github.com/chazu/graft/compile"
	"github.com/chazu/graft/config"
	"github.com/chazu/graft/graph"
	"github.com/chazu/graft/graph/dump"
	"github.com/chazu/graft/meta"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	configDir := flag.String("c", "", "Directory containing graft.toml (default: built-in config)")
	className := flag.String("class", "Main", "Class name for the assembled method")
	methodName := flag.String("name", "main", "Method name for the assembled method")
	returnKind := flag.String("ret", "int", "Return kind (void, int, long, double, object)")
	params := flag.String("params", "", "Comma-separated parameter kinds")
	output := flag.String("o", "", "Write a CBOR graph dump to this file instead of printing")
	logPath := flag.String("log", "", "Record the compilation in a SQLite compile log at this path")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: graft [options] file.gasm\n\n")
		fmt.Fprintf(os.Stderr, "Assembles the given file, builds the IR graph, and prints it.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  graft sum.gasm                   # print the graph as text\n")
		fmt.Fprintf(os.Stderr, "  graft -params int,int sum.gasm   # method taking two ints\n")
		fmt.Fprintf(os.Stderr, "  graft -o sum.cbor sum.gasm       # write a CBOR dump\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configDir != "" {
		loaded, err := config.Load(*configDir)
		if err != nil {
			fail("Error loading config: %v", err)
		}
		cfg = loaded
	}

	verbosity := cfg.Log.Verbosity
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	sig, err := parseSignature(*params, *returnKind)
	if err != nil {
		fail("Error: %v", err)
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fail("Error reading %s: %v", flag.Arg(0), err)
	}
	code, err := bytecode.Assemble(string(src))
	if err != nil {
		fail("Error assembling %s: %v", flag.Arg(0), err)
	}

	resolver := meta.NewResolver()
	method := &meta.Method{
		Class:     *className,
		Name:      *methodName,
		Sig:       sig,
		MaxLocals: 8,
		Code:      code,
	}
	resolver.RegisterMethod(method)

	providers := builder.Providers{
		MetaAccess: resolver,
		Constants:  resolver,
		Snippets:   resolver,
	}
	opts := builder.Options{
		MaxInlineDepth:  cfg.Compiler.MaxInlineDepth,
		InlineCodeLimit: cfg.Compiler.InlineCodeLimit,
		EagerResolving:  cfg.Compiler.EagerResolving,
	}

	var driverOpts []compile.DriverOption
	if *logPath != "" {
		store, err := compile.OpenStore(*logPath)
		if err != nil {
			fail("Error opening compile log: %v", err)
		}
		defer store.Close()
		driverOpts = append(driverOpts, compile.WithStore(store))
	}

	driver := compile.NewDriver(providers, opts, cfg.Compiler.HotThreshold, driverOpts...)
	defer driver.Stop()

	g, err := driver.Compile(method)
	if err != nil {
		fail("Compilation failed: %v", err)
	}

	if *output != "" {
		data, err := dump.Marshal(g)
		if err != nil {
			fail("Error encoding dump: %v", err)
		}
		if err := os.WriteFile(*output, data, 0644); err != nil {
			fail("Error writing %s: %v", *output, err)
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(data), filepath.Clean(*output))
		return
	}

	fmt.Print(graph.Format(g))
}

func parseSignature(params, ret string) (meta.Signature, error) {
	var sig meta.Signature
	if params != "" {
		for _, name := range strings.Split(params, ",") {
			k, err := parseKind(strings.TrimSpace(name))
			if err != nil {
				return sig, err
			}
			sig.Params = append(sig.Params, k)
		}
	}
	k, err := parseKind(ret)
	if err != nil {
		return sig, err
	}
	sig.Return = k
	return sig, nil
}

func parseKind(name string) (meta.Kind, error) {
	switch strings.ToLower(name) {
	case "void":
		return meta.Void, nil
	case "boolean":
		return meta.Boolean, nil
	case "byte":
		return meta.Byte, nil
	case "short":
		return meta.Short, nil
	case "char":
		return meta.Char, nil
	case "int":
		return meta.Int, nil
	case "long":
		return meta.Long, nil
	case "float":
		return meta.Float, nil
	case "double":
		return meta.Double, nil
	case "object":
		return meta.Object, nil
	default:
		return meta.Void, fmt.Errorf("unknown kind %q", name)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
