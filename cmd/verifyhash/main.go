package main

import (
	"flag"
	"fmt"

	"github.com/lploc94/cloudflare-sentinel/ml"
)

// Reference inputs used to cross-check the hash against other runtimes.
var referenceInputs = []string{
	"",
	"hello",
	"test",
	"sql",
	" sq",
	"ql ",
	"SELECT",
	"你好",
	"SELECT * FROM users WHERE id=1",
	"nio",
}

func main() {
	nFeatures := flag.Int("n_features", ml.DefaultNFeatures, "feature space size for bucket column")
	flag.Parse()

	inputs := flag.Args()
	if len(inputs) == 0 {
		inputs = referenceInputs
	}

	fmt.Printf("%-32s %-12s %s\n", "input", "hash", "bucket")
	for _, input := range inputs {
		hash := ml.HashToken(input)
		fmt.Printf("%-32q %-12d %d\n", input, hash, hash%uint32(*nFeatures))
	}
}
