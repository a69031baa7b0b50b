package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/lploc94/cloudflare-sentinel/pipeline"
)

func main() {
	samplesDir := flag.String("samples", "./data/samples", "directory of labeled *.txt sample files")
	outputPath := flag.String("output", "./data/dataset.jsonl", "dataset output path")
	raw := flag.Bool("raw", false, "keep attack payloads as-is instead of injecting into request templates")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	count, err := pipeline.Prepare(pipeline.PrepareConfig{
		SamplesDir: *samplesDir,
		OutputPath: *outputPath,
		Raw:        *raw,
		Seed:       *seed,
	})
	if err != nil {
		log.Fatalf("failed to prepare dataset: %v", err)
	}
	fmt.Printf("wrote %d samples to %s\n", count, *outputPath)
}
