package backend

// Schema is a JSON Schema that a successful response body must satisfy.
type Schema struct {
	// Name identifies the schema in the compiled-schema cache.
	Name       string
	Definition map[string]any
}

// idType accepts the loosely typed identifiers the backend emits.
var idType = map[string]any{"type": []any{"string", "number"}}

var optionalText = map[string]any{"type": []any{"string", "number", "null"}}

var optionalNumber = map[string]any{"type": []any{"number", "string", "null"}}

func envelope(name string, data map[string]any, extra map[string]any, extraRequired ...string) *Schema {
	props := map[string]any{
		"status":  map[string]any{"const": "success"},
		"message": map[string]any{"type": []any{"string", "null"}},
	}
	required := []any{"status"}
	if data != nil {
		props["data"] = data
		required = append(required, "data")
	}
	for k, v := range extra {
		props[k] = v
	}
	for _, r := range extraRequired {
		required = append(required, r)
	}
	return &Schema{
		Name: name,
		Definition: map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		},
	}
}

var questionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"QuestionID":   idType,
		"QuestionText": map[string]any{"type": "string", "minLength": 1},
		"OptionA":      optionalText,
		"OptionB":      optionalText,
		"OptionC":      optionalText,
		"OptionD":      optionalText,
	},
	"required": []any{"QuestionID", "QuestionText"},
}

// QuizSchema validates getTopicMCQs responses. An empty or missing data
// array is a valid "no quiz" answer, so data is an optional array.
var QuizSchema = &Schema{
	Name: OpFetchQuiz,
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{"const": "success"},
			"data": map[string]any{
				"type":  []any{"array", "null"},
				"items": questionSchema,
			},
			"isAssignmentCompleted": map[string]any{"type": []any{"boolean", "null"}},
		},
		"required": []any{"status"},
	},
}

// ScoreSchema validates submitMCQAssignment responses.
var ScoreSchema = envelope(OpSubmitAnswers, map[string]any{
	"type": "object",
	"properties": map[string]any{
		"totalQuestions": map[string]any{"type": "integer", "minimum": 0},
		"attemptedCount": map[string]any{"type": "integer", "minimum": 0},
		"correctCount":   map[string]any{"type": "integer", "minimum": 0},
		"perQuestionResult": map[string]any{
			"type": []any{"array", "null"},
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"questionText": map[string]any{"type": "string"},
					"studentText":  optionalText,
					"isCorrect":    map[string]any{"type": "boolean"},
					"correctText":  optionalText,
				},
				"required": []any{"questionText", "isCorrect"},
			},
		},
	},
	"required": []any{"totalQuestions", "attemptedCount", "correctCount"},
}, nil)

// CompletionSchema validates markTopicComplete responses.
var CompletionSchema = envelope(OpMarkTopicComplete, nil, map[string]any{
	"isCourseCompleted": map[string]any{"type": []any{"boolean", "null"}},
})

// TopicDetailSchema validates getTopicDetail responses.
var TopicDetailSchema = envelope(OpTopicDetail, map[string]any{
	"type": "object",
	"properties": map[string]any{
		"TopicID":     idType,
		"TopicIndex":  idType,
		"TotalTopics": idType,
		"Title":       map[string]any{"type": "string"},
	},
	"required": []any{"TopicID", "Title"},
}, map[string]any{
	"isCompleted":           map[string]any{"type": []any{"boolean", "null"}},
	"isAssignmentCompleted": map[string]any{"type": []any{"boolean", "null"}},
})

// CourseTopicsSchema validates getCourseTopicsList responses.
var CourseTopicsSchema = envelope(OpCourseTopics, map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"TopicID": idType,
			"Title":   map[string]any{"type": "string"},
		},
		"required": []any{"Title"},
	},
}, nil)

// CoursesSchema validates getAllCourses responses.
var CoursesSchema = envelope(OpCourses, map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"CourseID": idType,
			"Title":    map[string]any{"type": "string"},
			"Progress": map[string]any{"type": []any{"number", "string", "null"}},
		},
		"required": []any{"CourseID", "Title"},
	},
}, nil)

// ProfileSchema validates getProfile responses.
var ProfileSchema = envelope(OpProfile, map[string]any{
	"type": "object",
	"properties": map[string]any{
		"Name":  map[string]any{"type": "string"},
		"Email": optionalText,
		"Phone": optionalText,
	},
	"required": []any{"Name"},
}, nil)

// AckSchema validates responses that carry no payload.
var AckSchema = envelope("ack", nil, nil)

// CertificateSchema validates generateCertificate responses.
var CertificateSchema = envelope(OpCertificate, nil, map[string]any{
	"base64":   map[string]any{"type": "string", "minLength": 1},
	"fileName": map[string]any{"type": []any{"string", "null"}},
}, "base64")
