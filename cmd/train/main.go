package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/lploc94/cloudflare-sentinel/db"
	"github.com/lploc94/cloudflare-sentinel/ml"
)

func main() {
	dataPath := flag.String("data", "./data/dataset.jsonl", "training dataset (JSONL)")
	modelPath := flag.String("output", "./models/classifier.json", "model output path")
	epochs := flag.Int("epochs", 30, "training epochs")
	learningRate := flag.Float64("lr", 0.1, "learning rate")
	l2 := flag.Float64("l2", 1e-4, "L2 regularization strength")
	testRatio := flag.Float64("test_ratio", 0.2, "held-out test ratio")
	seed := flag.Int64("seed", 42, "random seed")
	dbPath := flag.String("db", "", "sqlite database to record training metrics in (optional)")
	flag.Parse()

	samples, err := ml.LoadDataset(*dataPath)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	log.Printf("loaded %d samples from %s", len(samples), *dataPath)

	train, test := ml.SplitDataset(samples, *testRatio, *seed)
	log.Printf("train=%d test=%d", len(train), len(test))

	trainer, err := ml.NewTrainer(ml.TrainerConfig{
		Epochs:       *epochs,
		LearningRate: *learningRate,
		L2:           *l2,
		Seed:         *seed,
	})
	if err != nil {
		log.Fatalf("invalid trainer config: %v", err)
	}

	model, err := trainer.Train(train)
	if err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	if len(test) > 0 {
		metrics, err := ml.EvaluateModel(model, trainer.Vectorizer(), test)
		if err != nil {
			log.Fatalf("failed to evaluate model: %v", err)
		}
		log.Printf("accuracy=%.4f samples=%d", metrics.Accuracy, metrics.Samples)
		for _, class := range model.Classes {
			log.Printf("class %-12s precision=%.4f recall=%.4f",
				class, metrics.Precision[class], metrics.Recall[class])
		}
		if *dbPath != "" {
			if err := recordTrainingRun(*dbPath, *modelPath, metrics, len(samples)); err != nil {
				log.Fatalf("failed to record training run: %v", err)
			}
			log.Printf("training metrics recorded in %s", *dbPath)
		}
	}

	if err := ml.SaveModelFile(model, *modelPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}
	fmt.Printf("model saved to %s\n", *modelPath)
}

func recordTrainingRun(dbPath, modelPath string, metrics ml.Metrics, dataPoints int) error {
	if err := db.InitDB(dbPath); err != nil {
		return err
	}
	defer db.Close()

	return db.SaveTrainingLog(db.TrainingLog{
		ModelName:  filepath.Base(modelPath),
		Accuracy:   metrics.Accuracy,
		Precision:  metrics.MacroPrecision(),
		Recall:     metrics.MacroRecall(),
		TrainedAt:  time.Now().UTC(),
		DataPoints: dataPoints,
	})
}
