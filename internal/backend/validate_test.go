package backend

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateResponse_Quiz(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"questions", `{"status":"success","data":[{"QuestionID":1,"QuestionText":"Q","OptionA":"a"}]}`, false},
		{"no data", `{"status":"success"}`, false},
		{"null data", `{"status":"success","data":null}`, false},
		{"missing text", `{"status":"success","data":[{"QuestionID":1}]}`, true},
		{"empty text", `{"status":"success","data":[{"QuestionID":1,"QuestionText":""}]}`, true},
		{"bad id", `{"status":"success","data":[{"QuestionID":true,"QuestionText":"Q"}]}`, true},
		{"not success", `{"status":"error"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(OpFetchQuiz, QuizSchema, json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got: %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_Score(t *testing.T) {
	ok := `{"status":"success","data":{"totalQuestions":3,"attemptedCount":2,"correctCount":1,"perQuestionResult":[{"questionText":"Q","isCorrect":true}]}}`
	if err := validateResponse(OpSubmitAnswers, ScoreSchema, json.RawMessage(ok)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	negative := `{"status":"success","data":{"totalQuestions":-1,"attemptedCount":0,"correctCount":0}}`
	if err := validateResponse(OpSubmitAnswers, ScoreSchema, json.RawMessage(negative)); err == nil {
		t.Fatal("expected error for negative total")
	}

	noData := `{"status":"success"}`
	if err := validateResponse(OpSubmitAnswers, ScoreSchema, json.RawMessage(noData)); err == nil {
		t.Fatal("expected error for missing data")
	}
}

func TestValidateResponse_Certificate(t *testing.T) {
	if err := validateResponse(OpCertificate, CertificateSchema, json.RawMessage(`{"status":"success","base64":"QUJD"}`)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := validateResponse(OpCertificate, CertificateSchema, json.RawMessage(`{"status":"success"}`)); err == nil {
		t.Fatal("expected error for missing base64")
	}
}

func TestValidateResponse_MalformedJSON(t *testing.T) {
	err := validateResponse(OpProfile, ProfileSchema, json.RawMessage(`{not json`))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse("any", nil, json.RawMessage(`anything`)); err != nil {
		t.Fatalf("expected nil error for nil schema, got: %v", err)
	}
}

func TestGetCompiledSchema_Cached(t *testing.T) {
	first, err := getCompiledSchema(CoursesSchema)
	if err != nil {
		t.Fatal(err)
	}
	second, err := getCompiledSchema(CoursesSchema)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("expected cached schema to be reused")
	}
}
