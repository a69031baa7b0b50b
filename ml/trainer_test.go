package ml

import "testing"

func trainingSamples() []Sample {
	return []Sample{
		{Text: "GET /api/users?id=1", Label: "safe"},
		{Text: "GET /api/products?page=2&limit=20", Label: "safe"},
		{Text: "POST /api/login username=john&password=secret", Label: "safe"},
		{Text: "GET /api/search?q=hello world", Label: "safe"},
		{Text: "GET /api/orders?sort=created_at", Label: "safe"},
		{Text: "GET /health", Label: "safe"},
		{Text: "GET /api/users?id=1' OR '1'='1", Label: "attack"},
		{Text: "GET /api/search?q=1 UNION SELECT username,password FROM users", Label: "attack"},
		{Text: "GET /api/items?id=1; DROP TABLE users--", Label: "attack"},
		{Text: "GET /api/products?filter=' OR 1=1--", Label: "attack"},
		{Text: "POST /api/data query=1' AND SLEEP(5)--", Label: "attack"},
		{Text: "GET /api/fetch?id=1 UNION ALL SELECT NULL,NULL--", Label: "attack"},
	}
}

func TestTrainBinary(t *testing.T) {
	trainer, err := NewTrainer(DefaultTrainerConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	model, err := trainer.Train(trainingSamples())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Classes are ordered lexicographically; the artifact must pass the
	// same validation the inference engine applies at load time,
	// including the symmetric binary expansion.
	if model.Classes[0] != "attack" || model.Classes[1] != "safe" {
		t.Fatalf("unexpected class order: %v", model.Classes)
	}
	if err := model.Validate(DefaultVectorizerConfig()); err != nil {
		t.Fatalf("trained model failed validation: %v", err)
	}

	// A dozen samples is too small a fixture to assert generalization;
	// the fitted model must at least separate the samples it saw.
	predict := func(text string) string {
		prediction, err := model.Predict(trainer.Vectorizer().Transform(text))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return prediction.Label
	}
	for _, sample := range trainingSamples() {
		if got := predict(sample.Text); got != sample.Label {
			t.Fatalf("predict(%q) = %q, expected %q", sample.Text, got, sample.Label)
		}
	}
}

func TestTrainIsDeterministic(t *testing.T) {
	config := DefaultTrainerConfig()
	samples := trainingSamples()

	first, err := mustTrain(config, samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := mustTrain(config, samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for c := range first.Weights {
		if first.Bias[c] != second.Bias[c] {
			t.Fatalf("bias[%d] differs between runs", c)
		}
		for j := range first.Weights[c] {
			if first.Weights[c][j] != second.Weights[c][j] {
				t.Fatalf("weights[%d][%d] differs between runs", c, j)
			}
		}
	}
}

func TestTrainMulticlass(t *testing.T) {
	samples := append(trainingSamples(),
		Sample{Text: "GET /search?q=<script>alert(1)</script>", Label: "xss"},
		Sample{Text: "GET /page?name=<img src=x onerror=alert(1)>", Label: "xss"},
		Sample{Text: "POST /api/comment body=<svg onload=alert(document.cookie)>", Label: "xss"},
		Sample{Text: "GET /comment?text=<script>document.location='http://evil'</script>", Label: "xss"},
	)

	trainer, err := NewTrainer(DefaultTrainerConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	model, err := trainer.Train(samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(model.Classes) != 3 || len(model.Weights) != 3 || len(model.Bias) != 3 {
		t.Fatalf("expected 3 aligned classes, got %v", model.Classes)
	}
	if err := model.Validate(DefaultVectorizerConfig()); err != nil {
		t.Fatalf("trained model failed validation: %v", err)
	}

	prediction, err := model.Predict(trainer.Vectorizer().Transform("GET /search?q=<script>alert(2)</script>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prediction.Label != "xss" {
		t.Fatalf("expected xss, got %q (scores %v)", prediction.Label, prediction.Scores)
	}
}

func TestTrainRejectsSingleClass(t *testing.T) {
	trainer, err := NewTrainer(DefaultTrainerConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = trainer.Train([]Sample{
		{Text: "GET /", Label: "safe"},
		{Text: "GET /health", Label: "safe"},
	})
	if err == nil {
		t.Fatal("expected error for single-class dataset")
	}
}

func mustTrain(config TrainerConfig, samples []Sample) (*Model, error) {
	trainer, err := NewTrainer(config)
	if err != nil {
		return nil, err
	}
	return trainer.Train(samples)
}
