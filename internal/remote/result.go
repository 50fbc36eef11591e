// internal/remote/result.go
//
// Response decoding for the advisory backend.  The backend is loose about
// field names (older deployments answer `crop`, newer ones
// `recommended_crop`), so each endpoint gets its own decoder with an
// explicit fallback order rather than optional-field chaining at the
// call sites.

package remote

import "encoding/json"

/*──────────────────────────── crop ───────────────────────────────────────*/

// CropResult is the decoded answer from the crop-recommend endpoint.
type CropResult struct {
	Crop    string
	Details string
}

func decodeCrop(raw []byte) CropResult {
	var body struct {
		RecommendedCrop string `json:"recommended_crop"`
		Crop            string `json:"crop"`
		Details         string `json:"details"`
	}
	_ = json.Unmarshal(raw, &body)

	out := CropResult{Details: body.Details}
	switch {
	case body.RecommendedCrop != "":
		out.Crop = body.RecommendedCrop
	case body.Crop != "":
		out.Crop = body.Crop
	default:
		out.Crop = "Result available"
	}
	return out
}

/*──────────────────────────── fertilizer ─────────────────────────────────*/

// FertilizerResult is the decoded answer from the fertilizer endpoint.
type FertilizerResult struct {
	Fertilizer string
	Details    string
}

func decodeFertilizer(raw []byte) FertilizerResult {
	var body struct {
		RecommendedFertilizer string `json:"recommended_fertilizer"`
		Fertilizer            string `json:"fertilizer"`
		Details               string `json:"details"`
	}
	_ = json.Unmarshal(raw, &body)

	out := FertilizerResult{Details: body.Details}
	switch {
	case body.RecommendedFertilizer != "":
		out.Fertilizer = body.RecommendedFertilizer
	case body.Fertilizer != "":
		out.Fertilizer = body.Fertilizer
	default:
		out.Fertilizer = "Result available"
	}
	return out
}

/*──────────────────────────── disease ────────────────────────────────────*/

// DiseaseResult is the decoded answer from the disease-prediction
// endpoint.  Confidence and Recommendation are optional; HasConfidence
// distinguishes absent from zero.
type DiseaseResult struct {
	Disease        string
	Confidence     float64
	HasConfidence  bool
	Recommendation string
}

func decodeDisease(raw []byte) DiseaseResult {
	var body struct {
		PredictedDisease string   `json:"predicted_disease"`
		Disease          string   `json:"disease"`
		Confidence       *float64 `json:"confidence"`
		Recommendation   string   `json:"recommendation"`
	}
	_ = json.Unmarshal(raw, &body)

	out := DiseaseResult{Recommendation: body.Recommendation}
	switch {
	case body.PredictedDisease != "":
		out.Disease = body.PredictedDisease
	case body.Disease != "":
		out.Disease = body.Disease
	default:
		out.Disease = "Unknown"
	}
	if body.Confidence != nil {
		out.Confidence = *body.Confidence
		out.HasConfidence = true
	}
	return out
}

/*──────────────────────────── chat ───────────────────────────────────────*/

// normalizeChatJSON reduces a JSON chat payload to a display string:
// `response` field first, then `message`, then the raw serialized body.
func normalizeChatJSON(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return string(raw)
	}
	if s, ok := body["response"].(string); ok && s != "" {
		return s
	}
	if s, ok := body["message"].(string); ok && s != "" {
		return s
	}
	return string(raw)
}
