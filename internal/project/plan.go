package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/DeckCalc/internal/model"
)

// SavePlan writes an estimate request document as indented JSON.
func SavePlan(path string, req model.EstimateRequest) error {
	if err := writeJSON(path, req); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

// LoadPlan reads an estimate request document. A file holding a bare plan
// (no "plan" wrapper) is accepted too and loads with every other field unset.
func LoadPlan(path string) (model.EstimateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.EstimateRequest{}, fmt.Errorf("failed to read plan file: %w", err)
	}

	var req model.EstimateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return model.EstimateRequest{}, fmt.Errorf("failed to parse plan file: %w", err)
	}
	if len(req.Plan.Polygon.Outer) == 0 {
		var plan model.Plan
		if err := json.Unmarshal(data, &plan); err == nil && len(plan.Polygon.Outer) > 0 {
			req = model.EstimateRequest{Plan: plan}
		}
	}
	if len(req.Plan.Polygon.Outer) == 0 {
		return model.EstimateRequest{}, fmt.Errorf("plan file %s has no deck outline", path)
	}
	return req, nil
}
