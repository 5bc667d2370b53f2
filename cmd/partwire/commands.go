package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/partwire"
	"github.com/rawbytedev/partwire/pkg/blobstore"
	"github.com/rawbytedev/partwire/pkg/frame"
	"github.com/rawbytedev/partwire/pkg/header"
	"github.com/rawbytedev/partwire/pkg/selector"
)

// selectorList collects repeated -select flags.
type selectorList []string

func (s *selectorList) String() string { return strings.Join(*s, ",") }

func (s *selectorList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func readDocument(path string, stdin io.Reader) (any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

func encodeCommand(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	codec := fs.String("codec", "", "Frame compression: none, zstd, s2 or lz4")
	framed := fs.Bool("frame", false, "Wrap the output in a frame")
	storeKey := fs.String("store", "", "Store the frame under this key instead of printing it")
	verbose := fs.Bool("v", false, "Verbose output")
	var selects selectorList
	fs.Var(&selects, "select", "JSON pointer of a part to encode (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("encode: expected one input file, got %d", fs.NArg())
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *codec != "" {
		cfg.Frame.Compression = *codec
	}
	if *framed || *storeKey != "" {
		cfg.Frame.Enabled = true
	}

	doc, err := readDocument(fs.Arg(0), stdin)
	if err != nil {
		return err
	}
	paths, err := selector.ParseAll(selects...)
	if err != nil {
		return err
	}
	out, err := partwire.NewEncoder(cfg.EncoderOptions()).AppendPaths(nil, doc, paths)
	if err != nil {
		return err
	}
	if *verbose {
		log.Printf("encoded %s: %d bytes, %d selectors", fs.Arg(0), len(out), len(selects))
	}

	if cfg.Frame.Enabled {
		c, err := frame.ParseCodec(cfg.Frame.Compression)
		if err != nil {
			return err
		}
		h := frame.Header{Codec: c, SchemaID: cfg.Frame.SchemaID}
		if h.SchemaID == 0 {
			h.SchemaID = partwire.SchemaID(doc)
		}
		if !selector.IsWhole(paths) {
			h.Flags |= frame.FlagPartial
		}
		if out, err = frame.Encode(out, h); err != nil {
			return err
		}
		if *verbose {
			log.Printf("framed with %v: %d bytes", c, len(out))
		}
	}

	if *storeKey == "" {
		_, err = fmt.Fprintln(stdout, hex.EncodeToString(out))
		return err
	}
	store, err := blobstore.Open(cfg.Store.Path, cfg.Store.Bucket, blobstore.Options{})
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Put(*storeKey, out); err != nil {
		return err
	}
	if *verbose {
		log.Printf("stored %q in %s", *storeKey, cfg.Store.Path)
	}
	return nil
}

func headerCommand(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("header: expected at least one number")
	}
	for _, arg := range args {
		n, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("header: %w", err)
		}
		b, err := header.Append(nil, n)
		if err != nil {
			return fmt.Errorf("header %d: %w", n, err)
		}
		fmt.Fprintf(stdout, "%d\tclass %d\t%s\n", n, b[0]&3, hex.EncodeToString(b))
	}
	return nil
}

func getCommand(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	key := fs.String("store", "", "Key of the stored frame")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" && fs.NArg() == 1 {
		*key = fs.Arg(0)
	}
	if *key == "" {
		return fmt.Errorf("get: no key")
	}
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	store, err := blobstore.Open(cfg.Store.Path, cfg.Store.Bucket, blobstore.Options{ReadOnly: true})
	if err != nil {
		return err
	}
	defer store.Close()

	data, err := store.Get(*key)
	if err != nil {
		return err
	}
	h, payload, err := frame.Decode(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "version: %d\n", h.Version)
	fmt.Fprintf(stdout, "codec: %v\n", h.Codec)
	fmt.Fprintf(stdout, "partial: %t\n", h.Partial())
	fmt.Fprintf(stdout, "schema: %016x\n", h.SchemaID)
	fmt.Fprintf(stdout, "payload: %s\n", hex.EncodeToString(payload))
	return nil
}

func profileCommand(args []string, stdin io.Reader) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	output := fs.String("o", "mem.prof", "Heap profile output")
	rounds := fs.Int("n", 10000, "Number of encodes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("profile: expected one input file, got %d", fs.NArg())
	}
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	doc, err := readDocument(fs.Arg(0), stdin)
	if err != nil {
		return err
	}

	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	defer f.Close()
	runtime.MemProfileRate = 1
	enc := partwire.NewEncoder(cfg.EncoderOptions())
	for i := 0; i < *rounds; i++ {
		if _, err := enc.Encode(doc); err != nil {
			return err
		}
	}
	return pprof.WriteHeapProfile(f)
}
