package mcp

func emptyInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           map[string]interface{}{},
	}
}

func listFilesInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"directory": map[string]interface{}{"type": "string", "description": "Directory to scan for image files"},
			"recursive": map[string]interface{}{"type": "boolean", "default": false},
			"max_count": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 5000, "default": 100},
		},
		"required": []string{"directory"},
	}
}

func listFilesOutputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"directory":   map[string]interface{}{"type": "string"},
			"total_count": map[string]interface{}{"type": "integer"},
			"truncated":   map[string]interface{}{"type": "boolean"},
			"files": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]interface{}{
						"path":          map[string]interface{}{"type": "string"},
						"name":          map[string]interface{}{"type": "string"},
						"size_bytes":    map[string]interface{}{"type": "integer"},
						"modified_time": map[string]interface{}{"type": "integer"},
					},
					"required": []string{"path", "name", "size_bytes", "modified_time"},
				},
			},
		},
		"required": []string{"directory", "total_count", "truncated", "files"},
	}
}

func analyzeFileInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"path":           map[string]interface{}{"type": "string", "description": "Image file to analyze"},
			"force_fallback": map[string]interface{}{"type": "boolean", "default": false, "description": "Skip OCR and go straight to the vision model"},
		},
		"required": []string{"path"},
	}
}

func analyzeFileOutputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"path":               map[string]interface{}{"type": "string"},
			"extracted_text":     map[string]interface{}{"type": "string"},
			"vision_description": map[string]interface{}{"type": "string"},
			"method":             map[string]interface{}{"type": "string", "enum": []string{"ocr", "vision"}},
			"word_count":         map[string]interface{}{"type": "integer"},
			"elapsed_ms":         map[string]interface{}{"type": "number"},
			"success":            map[string]interface{}{"type": "boolean"},
			"error":              map[string]interface{}{"type": "string"},
		},
		"required": []string{"path", "method", "word_count", "elapsed_ms", "success"},
	}
}

func listCategoriesOutputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"base_folder": map[string]interface{}{"type": "string"},
			"categories": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]interface{}{
						"name":        map[string]interface{}{"type": "string"},
						"description": map[string]interface{}{"type": "string"},
						"keywords":    map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					},
					"required": []string{"name"},
				},
			},
		},
		"required": []string{"base_folder", "categories"},
	}
}

func suggestCategoryInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"text":       map[string]interface{}{"type": "string", "description": "Extracted text or description to classify"},
			"categories": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		},
		"required": []string{"text"},
	}
}

func suggestCategoryOutputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"category":         map[string]interface{}{"type": "string"},
			"confidence":       map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
			"matched_keywords": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		},
		"required": []string{"category", "confidence", "matched_keywords"},
	}
}

func createDirectoryInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"category": map[string]interface{}{"type": "string"},
			"base_dir": map[string]interface{}{"type": "string", "description": "Defaults to the configured base folder"},
		},
		"required": []string{"category"},
	}
}

func createDirectoryOutputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"path":    map[string]interface{}{"type": "string"},
			"created": map[string]interface{}{"type": "boolean"},
		},
		"required": []string{"path", "created"},
	}
}

func moveFileInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"source":        map[string]interface{}{"type": "string"},
			"dest_dir":      map[string]interface{}{"type": "string"},
			"new_name":      map[string]interface{}{"type": "string", "description": "Defaults to the source filename"},
			"keep_original": map[string]interface{}{"type": "boolean", "description": "Copy instead of move"},
		},
		"required": []string{"source", "dest_dir"},
	}
}

func moveFileOutputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"original_path": map[string]interface{}{"type": "string"},
			"new_path":      map[string]interface{}{"type": "string"},
			"operation":     map[string]interface{}{"type": "string", "enum": []string{"move", "copy"}},
			"success":       map[string]interface{}{"type": "boolean"},
			"error":         map[string]interface{}{"type": "string"},
			"error_code":    map[string]interface{}{"type": "string"},
		},
		"required": []string{"original_path", "operation", "success"},
	}
}

func suggestFilenameInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"original_name": map[string]interface{}{"type": "string"},
			"category":      map[string]interface{}{"type": "string"},
			"text":          map[string]interface{}{"type": "string", "description": "Extracted text to derive the name from"},
		},
		"required": []string{"original_name"},
	}
}

func suggestFilenameOutputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"filename":  map[string]interface{}{"type": "string"},
			"extension": map[string]interface{}{"type": "string"},
		},
		"required": []string{"filename", "extension"},
	}
}
