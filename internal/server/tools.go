package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

// documentProps are accepted by every tool that reads one document.
func documentProps() map[string]interface{} {
	return map[string]interface{}{
		"path": stringProp("Absolute path to a PDF or image file. Either path or data is required."),
		"data": stringProp("Base64-encoded document bytes, used when path is not given"),
		"name": stringProp("File name for data inputs, used to name the output (default: document)"),
	}
}

func analyzeProps() map[string]interface{} {
	props := documentProps()
	props["preset"] = stringProp("Preset id filtering kinds and supplying styles (default: default)")
	props["threshold"] = map[string]interface{}{
		"type":        "number",
		"description": "Drop detections scoring below this confidence (0-1). Overrides the preset.",
	}
	props["custom_patterns"] = map[string]interface{}{
		"type":        "array",
		"description": "Extra regex rules checked before the built-in detectors",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id":             stringProp("Pattern id"),
				"name":           stringProp("Human-readable name"),
				"pattern":        stringProp("Regular expression (RE2 syntax)"),
				"kind":           stringProp("Kind assigned to matches, e.g. API_KEY"),
				"confidence":     map[string]interface{}{"type": "number"},
				"case_sensitive": map[string]interface{}{"type": "boolean"},
			},
			"required": []string{"pattern", "kind"},
		},
	}
	return props
}

func outputProps(props map[string]interface{}) map[string]interface{} {
	props["format"] = stringProp("Raster output format: png or jpeg (default: keep JPEG, otherwise PNG). PDFs stay PDF.")
	props["output_path"] = stringProp("Where to write the redacted file for path inputs (default: <name>-redacted.<ext> next to the input or in the output directory)")
	props["preview"] = map[string]interface{}{
		"type":        "integer",
		"description": "Return a PNG preview of the first page fitted to this many pixels (0 = none)",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	applyProps := outputProps(documentProps())
	applyProps["preset"] = stringProp("Preset supplying the style for actions that name none")
	applyProps["session_id"] = stringProp("Session id returned by redact_analyze, recorded in history")
	applyProps["detections"] = map[string]interface{}{
		"type":        "array",
		"description": "The detections returned by redact_analyze for this document",
		"items":       map[string]interface{}{"type": "object"},
	}
	applyProps["actions"] = map[string]interface{}{
		"type":        "array",
		"description": "Redactions to apply. Omit to redact every detection with the preset style.",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"detection_id": stringProp("Id of a detection"),
				"style":        stringProp("BOX, BLUR, PIXELATE, LABEL, MASK_LAST4, PATTERN, GRADIENT, SOLID_COLOR, VECTOR_OVERLAY or REMOVE_METADATA (default: the preset style)"),
				"config":       map[string]interface{}{"type": "object", "description": "Style parameters (colors, radius, label text)"},
			},
			"required": []string{"detection_id"},
		},
	}

	reviewProps := analyzeProps()
	reviewProps["preview"] = map[string]interface{}{
		"type":        "integer",
		"description": "Return a PNG of one page with every detection outlined and labelled, fitted to this many pixels (0 = none). PDF pages need the rasterizer.",
	}
	reviewProps["page"] = map[string]interface{}{
		"type":        "integer",
		"description": "Zero-based page for the preview (default: 0)",
	}
	reviewProps["grid"] = map[string]interface{}{
		"type":        "integer",
		"description": "Overlay a pixel coordinate grid on the preview every N pixels (0 = none)",
	}

	batchProps := map[string]interface{}{
		"paths": map[string]interface{}{
			"type":        "array",
			"description": "Absolute paths of the documents to redact",
			"items":       map[string]interface{}{"type": "string"},
		},
		"preset":     stringProp("Preset id (default: default)"),
		"format":     stringProp("Raster output format: png or jpeg"),
		"output_dir": stringProp("Directory for the redacted files (default: next to each input)"),
	}

	return []Tool{
		{
			Name:        "redact_analyze",
			Description: "Find sensitive content (emails, phone numbers, card numbers, IBANs, SSNs, passports, JWTs, API keys, addresses, names, barcodes) in a PDF or image. Returns detections with ids, boxes normalized to 0-1 from the top-left, confidence and a masked preview. Nothing is modified.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": reviewProps,
			},
		},
		{
			Name:        "redact_apply",
			Description: "Burn redactions into a copy of a document. Pass back the detections from redact_analyze and the actions to apply. Unknown detection ids are skipped and reported, never fatal.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": applyProps,
				"required":   []string{"detections"},
			},
		},
		{
			Name:        "redact_auto",
			Description: "Analyze a document and redact every detection with the preset's styles in one call.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": outputProps(analyzeProps()),
			},
		},
		{
			Name:        "redact_batch",
			Description: "Auto-redact several files concurrently with a bounded worker pool. A failing file does not stop the others.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": batchProps,
				"required":   []string{"paths"},
			},
		},
		{
			Name:        "redact_presets",
			Description: "List the available presets with their enabled kinds, styles and thresholds.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "redact_history",
			Description: "List past redactions, newest first. Entries hold reports and file names only.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum entries to return (default: 20)",
					},
				},
			},
		},
		{
			Name:        "redact_info",
			Description: "Report the server version, which engines are active (OCR, barcodes, rasterizer, secret scanner) and the supported kinds and styles.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}
