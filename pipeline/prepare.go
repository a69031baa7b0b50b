package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/lploc94/cloudflare-sentinel/ml"
)

// Request templates attack payloads are injected into. Safe samples are
// already full requests and are used as-is.
var requestTemplates = []string{
	"GET /api/users?id=%s",
	"GET /api/search?q=%s",
	"GET /api/products?filter=%s",
	"POST /api/login username=%s&password=test",
	"POST /api/data query=%s",
	"GET /page?file=%s",
	"GET /api/fetch?url=%s",
	"GET /api/items?sort=%s",
	"POST /api/comment body=%s",
	"GET /download?path=%s",
}

// PrepareConfig 数据集构建配置
type PrepareConfig struct {
	SamplesDir string
	OutputPath string
	Raw        bool // use attack samples as-is instead of injecting
	Seed       int64
}

// Prepare builds a JSONL dataset from the sample files in SamplesDir.
// Each *.txt file contributes samples labeled with the file stem;
// `#` comments and blank lines are skipped. Returns the sample count.
func Prepare(config PrepareConfig) (int, error) {
	entries, err := filepath.Glob(filepath.Join(config.SamplesDir, "*.txt"))
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("no sample files in %s", config.SamplesDir)
	}

	rnd := rand.New(rand.NewSource(config.Seed))
	var samples []ml.Sample
	for _, path := range entries {
		label := strings.TrimSuffix(filepath.Base(path), ".txt")
		lines, err := loadSampleFile(path)
		if err != nil {
			return 0, fmt.Errorf("load %s: %w", path, err)
		}
		for _, line := range lines {
			text := line
			// Safe samples are already full requests; attack samples
			// are bare payloads injected into request templates.
			if label != "safe" && !config.Raw {
				text = injectPayload(line, rnd)
			}
			samples = append(samples, ml.Sample{Text: text, Label: label})
		}
	}

	cleaner := NewCleaner()
	samples = cleaner.Clean(samples)
	if len(samples) == 0 {
		return 0, fmt.Errorf("all samples rejected by cleaning rules")
	}

	rnd.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})

	if err := writeDataset(config.OutputPath, samples); err != nil {
		return 0, err
	}
	return len(samples), nil
}

func loadSampleFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func injectPayload(payload string, rnd *rand.Rand) string {
	template := requestTemplates[rnd.Intn(len(requestTemplates))]
	return fmt.Sprintf(template, payload)
}

func writeDataset(path string, samples []ml.Sample) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, sample := range samples {
		if err := encoder.Encode(sample); err != nil {
			return err
		}
	}
	return writer.Flush()
}
