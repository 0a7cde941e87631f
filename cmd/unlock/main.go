package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bytedance/sonic"

	"github.com/saudadez21/novel-downloader-sub001/internal/decrypt"
	"github.com/saudadez21/novel-downloader-sub001/internal/logging"
)

// Exit codes, one per failure class, so scripts can branch on them.
const (
	exitUsage     = 1
	exitInput     = 2
	exitMalformed = 3
	exitRejected  = 4
	exitTimeout   = 5
	exitRuntime   = 6
	exitWrite     = 7
)

func main() {
	os.Exit(run())
}

func run() int {
	in := flag.String("in", "", "JSON request file with the four decrypt fields; - reads stdin")
	modulePath := flag.String("module", "", "vendor unlocking module file")
	globalName := flag.String("global", "", "vendor global object name (default Fock)")
	setupFn := flag.String("setup", "", "user key setup entry point (default setupUserKey)")
	unlockFn := flag.String("unlock", "", "unlock entry point (default unlock)")
	hostname := flag.String("host", "vipreader.qidian.com", "hostname presented to the vendor module")
	deadline := flag.Duration("deadline", 5*time.Second, "per-attempt deadline")
	out := flag.String("o", "", "plaintext output file; stdout when empty")
	verbose := flag.Bool("v", false, "debug logging to stderr")
	flag.Parse()

	if *in == "" || *modulePath == "" {
		fmt.Fprintln(os.Stderr, "usage: unlock -in request.json -module unlock.js [-o out.txt]")
		flag.PrintDefaults()
		return exitUsage
	}

	raw, err := readInput(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read request: %v\n", err)
		return exitInput
	}
	var fields map[string]any
	if err := sonic.Unmarshal(raw, &fields); err != nil {
		fmt.Fprintf(os.Stderr, "parse request: %v\n", err)
		return exitInput
	}

	moduleSrc, err := os.ReadFile(*modulePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read module: %v\n", err)
		return exitInput
	}

	req, err := decrypt.RequestFromFields(fields)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid request: %v\n", err)
		return exitMalformed
	}

	opts := []decrypt.Option{decrypt.WithDeadline(*deadline)}
	if *verbose {
		logger, lerr := logging.New(logging.Config{
			Level:       "debug",
			Development: true,
			OutputPaths: []string{"stderr"},
		})
		if lerr == nil {
			opts = append(opts, decrypt.WithLogger(logger))
		}
	}

	env := decrypt.Env{
		Hostname: *hostname,
		Module: decrypt.VendorModule{
			Source:     string(moduleSrc),
			GlobalName: *globalName,
			SetupFn:    *setupFn,
			UnlockFn:   *unlockFn,
		},
	}

	plaintext, err := decrypt.New(opts...).Decrypt(env, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unlock failed: %v\n", err)
		switch {
		case decrypt.IsMalformed(err):
			return exitMalformed
		case decrypt.IsTimeout(err):
			return exitTimeout
		default:
			if _, rejected := decrypt.IsRejected(err); rejected {
				return exitRejected
			}
			return exitRuntime
		}
	}

	// The sink is opened only after a successful unlock so failures
	// never truncate an existing output file.
	sink := io.Writer(os.Stdout)
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open output: %v\n", err)
			return exitWrite
		}
		defer f.Close()
		sink = f
	}
	if _, err := io.WriteString(sink, plaintext); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return exitWrite
	}
	return 0
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
