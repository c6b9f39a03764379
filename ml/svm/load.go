package svm

import (
	"encoding/json"
	"fmt"
	jsonpatch "github.com/evanphx/json-patch"
	"os"
)

// LoadModel decodes a JSON model and builds the SVM. A non-empty patch is
// applied to the raw document as a JSON merge patch first, which lets a
// configuration override e.g. param.gamma without a retrained file.
func LoadModel(data []byte, patch []byte) (*SVM, error) {
	if len(patch) > 0 {
		patched, err := jsonpatch.MergePatch(data, patch)
		if err != nil {
			return nil, fmt.Errorf("failed to apply model patch: %w", err)
		}
		data = patched
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model: %w", err)
	}

	return New(model)
}

func LoadModelFromFile(filePath string, patch []byte) (*SVM, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return LoadModel(data, patch)
}
