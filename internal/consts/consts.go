package consts

import "time"

// Input limits for the request flows
const (
	// MinDescriptionLength is the shortest accepted code-generation description
	MinDescriptionLength = 10
	// MinJavaCodeLength is the shortest accepted snippet for error explanation
	MinJavaCodeLength = 10
	// MinPlaygroundCodeLength is the shortest snippet accepted by the playground
	MinPlaygroundCodeLength = 1
	// DefaultMaxInputTokens caps the estimated size of a single flow input
	DefaultMaxInputTokens = 16000
)

// Live analysis of the generation form
const (
	// LiveAnalysisDebounce is how long input must be idle before it is analyzed
	LiveAnalysisDebounce = 1 * time.Second
	// LiveAnalysisMinLength is the length a candidate snippet must exceed
	LiveAnalysisMinLength = 15
	// LiveAnalysisPrefix marks description text that looks like Java source
	LiveAnalysisPrefix = "public"
	// AnalysisPreviewLength truncates explanations shown as previews
	AnalysisPreviewLength = 300
)

// Buffer sizes for various operations
const (
	// BufferSize1KB is 1 kilobyte
	BufferSize1KB = 1024
	// BufferSize1MB is 1 megabyte
	BufferSize1MB = 1024 * 1024
)

// LLM default configurations
const (
	// DefaultMaxTokens is the default maximum tokens for LLM responses
	DefaultMaxTokens = 4096
	// DefaultTemperature is used when the config does not set one
	DefaultTemperature = 0.2
)

// Timeouts for various operations
const (
	// Timeout5Seconds is a 5 second timeout
	Timeout5Seconds = 5 * time.Second
	// Timeout10Seconds is a 10 second timeout
	Timeout10Seconds = 10 * time.Second
	// Timeout60Seconds is a 60 second timeout (1 minute)
	Timeout60Seconds = 60 * time.Second
	// Timeout2Minutes is a 2 minute timeout
	Timeout2Minutes = 2 * time.Minute
)

// History defaults
const (
	// DefaultHistoryLimit is the number of runs shown when no limit is given
	DefaultHistoryLimit = 20
)
