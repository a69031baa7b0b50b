package ml

import "testing"

func newTestVectorizer(t *testing.T) *HashingVectorizer {
	t.Helper()
	v, err := NewHashingVectorizer(DefaultVectorizerConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

func TestTransformEmptyText(t *testing.T) {
	v := newTestVectorizer(t)
	vector := v.Transform("")
	if len(vector) != DefaultNFeatures {
		t.Fatalf("expected %d features, got %d", DefaultNFeatures, len(vector))
	}
	for i, count := range vector {
		if count != 0 {
			t.Fatalf("expected zero vector, index %d = %f", i, count)
		}
	}
}

func TestTransformCountConservation(t *testing.T) {
	// The sum of all entries equals the token count: collisions merge,
	// nothing is dropped.
	v := newTestVectorizer(t)
	cases := []string{
		"hello",
		"union select",
		"GET /api/users?id=1",
		"你好",
		"SELECT * FROM users WHERE id=1' OR '1'='1",
	}
	for _, text := range cases {
		tokens := TokenizeCharWB(text, 3, 5)
		vector := v.Transform(text)
		sum := 0.0
		for _, count := range vector {
			if count < 0 {
				t.Fatalf("negative count for %q", text)
			}
			sum += count
		}
		if sum != float64(len(tokens)) {
			t.Fatalf("Transform(%q): sum %f, expected %d tokens", text, sum, len(tokens))
		}
	}
}

func TestTransformKnownIndices(t *testing.T) {
	// hash("hello") = 613153351, mod 4096 = 2631; the n-gram "hello"
	// appears exactly once in the padded word " hello ".
	v := newTestVectorizer(t)
	vector := v.Transform("hello")
	if vector[2631] != 1 {
		t.Fatalf("expected count 1 at index 2631, got %f", vector[2631])
	}
	// "nio" is the middle 3-gram of padded " union ": 3585969451 mod 4096 = 3371.
	vector = v.Transform("union select")
	if vector[3371] != 1 {
		t.Fatalf("expected count 1 at index 3371, got %f", vector[3371])
	}
}

func TestTransformRepeatedTokensIncrement(t *testing.T) {
	v := newTestVectorizer(t)
	once := v.Transform("sql")
	twice := v.Transform("sql sql")
	for i := range once {
		if twice[i] != 2*once[i] {
			t.Fatalf("index %d: expected %f, got %f", i, 2*once[i], twice[i])
		}
	}
}

func TestVectorizerConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*VectorizerConfig)
	}{
		{"zero features", func(c *VectorizerConfig) { c.NFeatures = 0 }},
		{"inverted range", func(c *VectorizerConfig) { c.NgramRange = [2]int{5, 3} }},
		{"unknown analyzer", func(c *VectorizerConfig) { c.Analyzer = "word" }},
		{"alternate sign", func(c *VectorizerConfig) { c.AlternateSign = true }},
		{"l2 norm", func(c *VectorizerConfig) { c.Norm = "l2" }},
	}
	for _, tc := range cases {
		config := DefaultVectorizerConfig()
		tc.mutate(&config)
		if _, err := NewHashingVectorizer(config); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
