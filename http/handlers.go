package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lploc94/cloudflare-sentinel/db"
	"github.com/lploc94/cloudflare-sentinel/ml"
	"github.com/lploc94/cloudflare-sentinel/monitoring"
)

// Package-level wiring set up by main before the server starts. The cache
// fronts the classifier: identical request text always produces the same
// decision, so repeated payloads skip vectorization entirely.
var (
	classifier    *ml.Classifier
	decisionCache *lru.Cache[string, ml.Prediction]
	detectionHub  *monitoring.Hub
	logDetections bool
)

// SetClassifier wires the classification engine.
func SetClassifier(c *ml.Classifier) {
	classifier = c
}

// InitDecisionCache sets up the LRU decision cache.
func InitDecisionCache(size int) error {
	cache, err := lru.New[string, ml.Prediction](size)
	if err != nil {
		return err
	}
	decisionCache = cache
	return nil
}

// SetDetectionHub wires the websocket broadcast hub.
func SetDetectionHub(h *monitoring.Hub) {
	detectionHub = h
}

// EnableDetectionLog turns on sqlite persistence of decisions.
func EnableDetectionLog(enabled bool) {
	logDetections = enabled
}

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/classify", handleClassify)
	mux.HandleFunc("GET /api/model", handleModelInfo)
	mux.HandleFunc("GET /api/detections", handleDetections)
	mux.HandleFunc("GET /api/stats", handleStats)
	mux.HandleFunc("GET /api/ws/live", handleLiveStream)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Scores     []float64 `json:"scores"`
	Cached     bool      `json:"cached"`
}

func handleClassify(w http.ResponseWriter, r *http.Request) {
	if classifier == nil {
		http.Error(w, "classifier not ready", http.StatusServiceUnavailable)
		return
	}

	var request classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	// Empty text is a valid input: the decision is bias-driven.

	cached := false
	var prediction ml.Prediction
	if decisionCache != nil {
		prediction, cached = decisionCache.Get(request.Text)
	}
	if !cached {
		var err error
		prediction, err = classifier.Classify(request.Text)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if decisionCache != nil {
			decisionCache.Add(request.Text, prediction)
		}
	}

	recordDetection(request.Text, prediction, cached)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(classifyResponse{
		Label:      prediction.Label,
		Confidence: prediction.Confidence,
		Scores:     prediction.Scores,
		Cached:     cached,
	})
}

func recordDetection(text string, prediction ml.Prediction, cached bool) {
	textHash := ml.HashToken(text)
	if logDetections && !cached {
		// Best-effort; the classification already succeeded.
		_ = db.SaveDetection(textHash, prediction.Label, prediction.Confidence, len(text))
	}
	if detectionHub != nil {
		detectionHub.BroadcastDetection(monitoring.DetectionMessage{
			Label:      prediction.Label,
			Confidence: prediction.Confidence,
			TextHash:   textHash,
			TextLength: len(text),
			Cached:     cached,
			Timestamp:  time.Now(),
		})
	}
}

func handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if classifier == nil || classifier.Model() == nil {
		http.Error(w, "classifier not ready", http.StatusServiceUnavailable)
		return
	}
	model := classifier.Model()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"type":       model.Type,
		"classes":    model.Classes,
		"vectorizer": model.Vectorizer,
		"path":       classifier.Path(),
		"loaded_at":  classifier.LoadedAt(),
	})
}

func handleDetections(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("label")
	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	detections, err := db.QueryDetections(label, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count": len(detections),
		"data":  detections,
	})
}

func handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{}

	if counts, err := db.CountDetectionsByLabel(); err == nil {
		stats["detections_by_label"] = counts
	}
	if decisionCache != nil {
		stats["cache_entries"] = decisionCache.Len()
	}
	if detectionHub != nil {
		stats["ws_clients"] = detectionHub.ClientCount()
	}
	if classifier != nil && classifier.Model() != nil {
		stats["model_classes"] = classifier.Model().Classes
		stats["model_loaded_at"] = classifier.LoadedAt()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func handleLiveStream(w http.ResponseWriter, r *http.Request) {
	if detectionHub == nil {
		http.Error(w, "live stream not enabled", http.StatusServiceUnavailable)
		return
	}
	detectionHub.HandleWebSocket(w, r)
}
