// Command huffman encodes and decodes files with a static Huffman
// code: huffman [-e|-d] [-a] [-p] -i <input> -o <output>.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/archivelab/huffman/internal/applog"
	"github.com/archivelab/huffman/internal/artifact"
	"github.com/archivelab/huffman/internal/cliflags"
	"github.com/archivelab/huffman/internal/codec"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := cliflags.Parse(args)
	if errors.Is(err, cliflags.ErrHelpRequested) {
		fmt.Println(cliflags.Usage())
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, cliflags.Usage())
		return 1
	}

	applog.Configure(flags.Verbose)
	log := applog.Get()

	in, err := os.Open(flags.Input)
	if err != nil {
		log.Errorf("open input: %v", err)
		return 2
	}
	defer in.Close()

	out, err := os.Create(flags.Output)
	if err != nil {
		log.Errorf("create output: %v", err)
		return 2
	}
	defer out.Close()

	if flags.Encode {
		err = runEncode(in, out, flags)
	} else {
		err = runDecode(in, out, flags)
	}
	if err != nil {
		log.Errorf("huffman: %v", err)
		return 3
	}
	return 0
}

// requestedMode translates the CLI's "-a" flag into the artifact.Mode
// both Encode and Decode expect.
func requestedMode(flags *cliflags.Flags) artifact.Mode {
	if flags.ASCII {
		return artifact.ModeText
	}
	return artifact.ModeBit
}

func runEncode(in *os.File, out *os.File, flags *cliflags.Flags) error {
	var print io.Writer
	var body bytes.Buffer
	if flags.Print {
		print = &body
	}

	if err := codec.Encode(context.Background(), in, out, requestedMode(flags), print); err != nil {
		return err
	}
	if flags.Print {
		fmt.Println(body.String())
	}
	return nil
}

func runDecode(in *os.File, out *os.File, flags *cliflags.Flags) error {
	var print io.Writer
	var body bytes.Buffer
	if flags.Print {
		print = &body
	}

	if err := codec.Decode(context.Background(), in, out, requestedMode(flags), print); err != nil {
		return err
	}
	if flags.Print {
		fmt.Println(body.String())
	}
	return nil
}
