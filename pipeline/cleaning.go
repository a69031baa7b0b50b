// Package pipeline builds training datasets from labeled sample files.
package pipeline

import (
	"strings"
	"sync"

	"github.com/lploc94/cloudflare-sentinel/ml"
)

// CleaningRule 清洗规则
type CleaningRule interface {
	Apply(sample ml.Sample) (ml.Sample, bool)
	Name() string
}

// CleaningStats 清洗统计
type CleaningStats struct {
	TotalProcessed int64            `json:"total_processed"`
	Passed         int64            `json:"passed"`
	Rejected       int64            `json:"rejected"`
	RejectedByRule map[string]int64 `json:"rejected_by_rule"`
}

// Cleaner runs every sample through the rule chain in order; the first
// rule that rejects wins.
type Cleaner struct {
	rules []CleaningRule

	stats     CleaningStats
	statsLock sync.Mutex
}

func NewCleaner(rules ...CleaningRule) *Cleaner {
	if len(rules) == 0 {
		rules = []CleaningRule{
			NewTrimRule(),
			NewMinLengthRule(4),
			NewDedupeRule(),
		}
	}
	return &Cleaner{
		rules: rules,
		stats: CleaningStats{RejectedByRule: make(map[string]int64)},
	}
}

// Clean filters and normalizes samples, preserving input order.
func (c *Cleaner) Clean(samples []ml.Sample) []ml.Sample {
	cleaned := make([]ml.Sample, 0, len(samples))
	for _, sample := range samples {
		c.statsLock.Lock()
		c.stats.TotalProcessed++
		c.statsLock.Unlock()

		keep := true
		for _, rule := range c.rules {
			var ok bool
			sample, ok = rule.Apply(sample)
			if !ok {
				c.statsLock.Lock()
				c.stats.Rejected++
				c.stats.RejectedByRule[rule.Name()]++
				c.statsLock.Unlock()
				keep = false
				break
			}
		}
		if keep {
			c.statsLock.Lock()
			c.stats.Passed++
			c.statsLock.Unlock()
			cleaned = append(cleaned, sample)
		}
	}
	return cleaned
}

func (c *Cleaner) Stats() CleaningStats {
	c.statsLock.Lock()
	defer c.statsLock.Unlock()
	stats := c.stats
	stats.RejectedByRule = make(map[string]int64, len(c.stats.RejectedByRule))
	for rule, count := range c.stats.RejectedByRule {
		stats.RejectedByRule[rule] = count
	}
	return stats
}

// TrimRule 去除首尾空白
type TrimRule struct{}

func NewTrimRule() *TrimRule { return &TrimRule{} }

func (r *TrimRule) Name() string { return "trim" }

func (r *TrimRule) Apply(sample ml.Sample) (ml.Sample, bool) {
	sample.Text = strings.TrimSpace(sample.Text)
	return sample, sample.Text != ""
}

// MinLengthRule 最小长度规则
type MinLengthRule struct {
	min int
}

func NewMinLengthRule(min int) *MinLengthRule { return &MinLengthRule{min: min} }

func (r *MinLengthRule) Name() string { return "min_length" }

func (r *MinLengthRule) Apply(sample ml.Sample) (ml.Sample, bool) {
	return sample, len(sample.Text) >= r.min
}

// DedupeRule 去重规则 - identical text under the same label adds nothing.
type DedupeRule struct {
	seen map[string]bool
}

func NewDedupeRule() *DedupeRule { return &DedupeRule{seen: make(map[string]bool)} }

func (r *DedupeRule) Name() string { return "dedupe" }

func (r *DedupeRule) Apply(sample ml.Sample) (ml.Sample, bool) {
	key := sample.Label + "\x00" + sample.Text
	if r.seen[key] {
		return sample, false
	}
	r.seen[key] = true
	return sample, true
}
