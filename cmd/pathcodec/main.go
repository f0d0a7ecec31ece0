package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/microsync/internal/pathcodec"
)

func main() {
	decode := flag.Bool("d", false, "decode instead of encode")
	rounds := flag.Int("rounds", pathcodec.DefaultMaxDecodeRounds, "max percent-decode rounds")
	flag.Parse()

	codec := pathcodec.New(*rounds)
	apply := codec.Encode
	if *decode {
		apply = codec.Decode
	}

	if flag.NArg() > 0 {
		for _, arg := range flag.Args() {
			fmt.Println(apply(arg))
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fmt.Println(apply(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "pathcodec: %v\n", err)
		os.Exit(1)
	}
}
