package tui

import "github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"

// AnswerMsg carries one completed chat answer.
type AnswerMsg struct {
	Answer domain.Answer
}

// AnswerErrorMsg is sent when a chat turn fails.
type AnswerErrorMsg struct {
	Err error
}
